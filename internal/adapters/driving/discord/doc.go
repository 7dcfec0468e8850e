// Package discord is the chat-platform surface of the library.
//
// It registers the slash commands, turns component and modal interactions
// into browsing events, and renders platform-neutral views as embeds with
// dropdowns and buttons. All behaviour lives in the core services; this
// package only translates.
package discord
