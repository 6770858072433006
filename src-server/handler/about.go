// This package contains all the Discord event handlers
//
// Interactions and prefix commands follow the same layout: one public
// function that registers the handler (and, for slash commands, the
// information to send to Discord), and one private function that handles
// the event. The Dispatch* functions route gateway events to them.
//
// Handlers take a discord.Session instead of *discordgo.Session so they can
// be exercised with discordtest.
//
// Only return errors when it's the backend's fault, nil if user's fault.
package handler
