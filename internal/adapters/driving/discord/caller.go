package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/logger"
)

// callerOf identifies the user behind an interaction. Role IDs are
// resolved to names only when withRoles is set, since that costs a request.
func callerOf(api API, i *discordgo.Interaction, withRoles bool) domain.Caller {
	var c domain.Caller
	user := i.User
	if i.Member != nil {
		if i.Member.User != nil {
			user = i.Member.User
		}
		c.Administrator = i.Member.Permissions&discordgo.PermissionAdministrator != 0
	}
	if user != nil {
		c.ID = user.ID
		c.Name = user.Username
		if i.Member != nil && i.Member.Nick != "" {
			c.Name = i.Member.Nick
		}
	}
	if withRoles && i.Member != nil && i.GuildID != "" && len(i.Member.Roles) > 0 {
		c.Roles = roleNames(api, i.GuildID, i.Member.Roles)
	}
	return c
}

func roleNames(api API, guildID string, ids []string) []string {
	roles, err := api.GuildRoles(guildID)
	if err != nil {
		logger.Warn("Failed to load roles for guild %s: %v", guildID, err)
		return nil
	}
	byID := make(map[string]string, len(roles))
	for _, r := range roles {
		byID[r.ID] = r.Name
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}
