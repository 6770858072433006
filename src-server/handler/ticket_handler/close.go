package ticket_handler

import (
	"context"
	"fmt"
	"log/slog"

	"proflare/src-server/discord"
	"proflare/src-server/metric"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// closeHandler deletes the ticket the command was sent in. Outside of a ticket it does nothing.
func closeHandler(as *utils.AppState) utils.PrefixCmdHandler {
	return func(s discord.Session, m *discordgo.MessageCreate, _ string) error {
		if m.GuildID == "" {
			return nil
		}
		channel, err := s.Channel(m.ChannelID)
		if err != nil {
			return fmt.Errorf("closeHandler: can't get channel %s: %w", m.ChannelID, err)
		}
		if !as.Tickets.Recognizes(channel) {
			return nil
		}

		if _, err := s.ChannelMessageSend(channel.ID, "🔒 Closing ticket…"); err != nil {
			slog.Warn("can't send closing notice", "channel", channel.ID, "error", err)
		}

		closed, err := as.Tickets.Close(context.Background(), channel, m.Author.ID)
		if err != nil {
			slog.Warn("can't close ticket", "channel", channel.ID, "error", err)
			return nil
		}
		if closed {
			metric.TicketsClosed.Inc()
		}
		return nil
	}
}
