package verify_handler

import (
	"fmt"
	"time"

	"proflare/src-server/discord"
	"proflare/src-server/embed"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func panelHandler(as *utils.AppState) utils.PrefixCmdHandler {
	return func(s discord.Session, m *discordgo.MessageCreate, _ string) error {
		startTimer := time.Now()
		if _, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "✅ Verification Panel",
					Description: "Click the button below to verify yourself!",
					Color:       embed.RandomColor(),
				},
			},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							CustomID: verifyButtonID,
							Label:    "Verify",
							Style:    discordgo.SuccessButton,
						},
					},
				},
			},
		}); err != nil {
			return fmt.Errorf("verify panelHandler: can't send panel: %w", err)
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
		return nil
	}
}
