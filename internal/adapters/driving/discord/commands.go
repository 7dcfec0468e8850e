package discord

import "github.com/bwmarrin/discordgo"

// Slash command names.
const (
	cmdLibrary = "library"
	cmdStats   = "library-stats"
	cmdUpdate  = "quick-update-library"
	cmdRebuild = "rebuild-library"
	cmdCheck   = "check-library"
)

// commands is the full command set, registered with a bulk overwrite so
// removed commands disappear.
func commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdLibrary,
			Description: "Browse the digital library",
		},
		{
			Name:        cmdStats,
			Description: "Show library statistics (admin only)",
		},
		{
			Name:        cmdUpdate,
			Description: "Fetch new and changed articles (admin only)",
		},
		{
			Name:        cmdRebuild,
			Description: "Re-fetch every article in the library (admin only)",
		},
		{
			Name:        cmdCheck,
			Description: "Report new and changed articles without fetching (admin only)",
		},
	}
}
