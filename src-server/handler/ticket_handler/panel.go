package ticket_handler

import (
	"fmt"
	"time"

	"proflare/src-server/discord"
	"proflare/src-server/embed"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// Discord allows at most 5 buttons per action row.
const buttonsPerRow = 5

func suggestPanelHandler(as *utils.AppState) utils.PrefixCmdHandler {
	return func(s discord.Session, m *discordgo.MessageCreate, _ string) error {
		return sendPanel(as, s, m.ChannelID, &discordgo.MessageEmbed{
			Title:       "📩 Suggestion Panel",
			Description: "Click the button below to create a suggestion ticket!",
			Color:       embed.RandomColor(),
			Footer:      &discordgo.MessageEmbedFooter{Text: "Only one ticket per suggestion."},
		}, []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						CustomID: suggestButtonID,
						Label:    "Create Suggestion Ticket",
						Style:    discordgo.PrimaryButton,
					},
				},
			},
		})
	}
}

func bugPanelHandler(as *utils.AppState) utils.PrefixCmdHandler {
	return func(s discord.Session, m *discordgo.MessageCreate, _ string) error {
		return sendPanel(as, s, m.ChannelID, &discordgo.MessageEmbed{
			Title:       "🐛 Bug Report Panel",
			Description: "Click a button to report a bug!",
			Color:       embed.RandomColor(),
			Footer:      &discordgo.MessageEmbedFooter{Text: "Choose the type of bug."},
		}, bugButtonRows(as.Tickets.BugTypes()))
	}
}

func bugButtonRows(bugTypes []string) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for start := 0; start < len(bugTypes); start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(bugTypes))
		buttons := make([]discordgo.MessageComponent, 0, end-start)
		for _, bugType := range bugTypes[start:end] {
			buttons = append(buttons, discordgo.Button{
				CustomID: bugButtonPrefix + bugType,
				Label:    bugType,
				Style:    discordgo.DangerButton,
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

func sendPanel(as *utils.AppState, s discord.Session, channelID string, e *discordgo.MessageEmbed, rows []discordgo.MessageComponent) error {
	startTimer := time.Now()
	if _, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{e},
		Components: rows,
	}); err != nil {
		return fmt.Errorf("sendPanel: can't send %q panel: %w", e.Title, err)
	}
	as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
	return nil
}
