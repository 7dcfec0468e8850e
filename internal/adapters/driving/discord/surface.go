package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/custodia-labs/librarian/internal/core/domain"
	"github.com/custodia-labs/librarian/internal/core/ports/driven"
)

var (
	_ driven.Surface    = (*messageSurface)(nil)
	_ driven.EventReply = (*interactionReply)(nil)
)

// messageSurface is the ephemeral library message opened by /library.
//
// Interaction tokens expire after 15 minutes, so the surface follows the
// most recent interaction on its message: every component event and modal
// submit edits the same message and carries a fresh token.
type messageSurface struct {
	api API
	id  string

	mu      sync.Mutex
	current *discordgo.Interaction

	// options are the dropdown values last rendered on the message.
	options domain.OptionSet

	onDone func(id string)
}

func newMessageSurface(api API, i *discordgo.Interaction, onDone func(id string)) *messageSurface {
	return &messageSurface{api: api, id: i.ID, current: i, onDone: onDone}
}

// ID is the interaction ID of the opening /library command.
func (s *messageSurface) ID() string { return s.id }

// track records a newer interaction on the surface's message.
func (s *messageSurface) track(i *discordgo.Interaction) {
	s.mu.Lock()
	s.current = i
	s.mu.Unlock()
}

// render builds the message for view and remembers its dropdown values.
func (s *messageSurface) render(view domain.View) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	s.mu.Lock()
	s.options = view.Options
	s.mu.Unlock()
	return renderView(view, s.id)
}

// selection resolves a select value against the dropdown it came from.
func (s *messageSurface) selection(action, value string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch action {
	case actionCategory:
		return optionValue(value, s.options.Categories)
	case actionAuthor:
		return optionValue(value, s.options.Authors)
	case actionTag:
		return optionValue(value, s.options.Tags)
	}
	return "", false
}

func (s *messageSurface) interaction() *discordgo.Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *messageSurface) Remove(_ context.Context) error {
	s.done()
	if err := s.api.InteractionResponseDelete(s.interaction()); err != nil {
		return fmt.Errorf("delete library message: %w", err)
	}
	return nil
}

func (s *messageSurface) Replace(_ context.Context, view domain.View) error {
	s.done()
	embed, components := s.render(view)
	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := s.api.InteractionResponseEdit(s.interaction(), &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		return fmt.Errorf("replace library message: %w", err)
	}
	return nil
}

func (s *messageSurface) done() {
	if s.onDone != nil {
		s.onDone(s.id)
	}
}

// interactionReply answers one component or modal interaction.
// The platform requires an answer within three seconds, so Acknowledge
// defers the update and Render edits the message afterwards.
type interactionReply struct {
	api       API
	i         *discordgo.Interaction
	surfaceID string
	surface   *messageSurface
}

func (r *interactionReply) Acknowledge(_ context.Context) error {
	if err := r.api.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		return fmt.Errorf("acknowledge interaction: %w", err)
	}
	return nil
}

func (r *interactionReply) Render(_ context.Context, view domain.View) error {
	var (
		embed      *discordgo.MessageEmbed
		components []discordgo.MessageComponent
	)
	if r.surface != nil {
		embed, components = r.surface.render(view)
	} else {
		embed, components = renderView(view, r.surfaceID)
	}
	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := r.api.InteractionResponseEdit(r.i, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		return fmt.Errorf("render library message: %w", err)
	}
	return nil
}

func (r *interactionReply) Notice(_ context.Context, text string) error {
	if _, err := r.api.FollowupMessageCreate(r.i, false, &discordgo.WebhookParams{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	}); err != nil {
		return fmt.Errorf("send notice: %w", err)
	}
	return nil
}
