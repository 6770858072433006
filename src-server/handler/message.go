package handler

import (
	"fmt"
	"log/slog"
	"time"

	"proflare/src-server/discord"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// Message registers "message <text>": the original is deleted and the text
// re-posted by the bot, with user and role mentions enabled.
func Message(as *utils.AppState) {
	as.AddPrefixCmdHandler("message", messageHandler(as))
}

func messageHandler(as *utils.AppState) utils.PrefixCmdHandler {
	return func(s discord.Session, m *discordgo.MessageCreate, rest string) error {
		if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
			slog.Warn("messageHandler: can't delete original", "channel", m.ChannelID, "error", err)
		}
		if rest == "" {
			return nil
		}

		startTimer := time.Now()
		if _, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
			Content: rest,
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Parse: []discordgo.AllowedMentionType{
					discordgo.AllowedMentionTypeUsers,
					discordgo.AllowedMentionTypeRoles,
				},
			},
		}); err != nil {
			return fmt.Errorf("messageHandler: can't re-post message: %w", err)
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
		return nil
	}
}
