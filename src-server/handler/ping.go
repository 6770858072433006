package handler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"proflare/src-server/discord"
	"proflare/src-server/model"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func Ping(as *utils.AppState) {
	id := "ping"
	as.AddAppCmdHandler(id, pingHandler(as))
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:        id,
		Description: "Show the bot's health.",
	})
}

func pingHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s discord.Session, i *discordgo.InteractionCreate) error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		memUsage := float64(m.Sys) / 1024 / 1024

		latency := "n/a"
		if as.DgSession != nil {
			latency = fmt.Sprintf("%dms", as.DgSession.HeartbeatLatency().Milliseconds())
		}

		openTickets, verifiedUsers := "n/a", "n/a"
		if as.BunDB != nil {
			ctx := context.Background()
			startTimer := time.Now()
			if count, err := as.BunDB.NewSelect().Model((*model.Ticket)(nil)).Count(ctx); err != nil {
				slog.Warn("pingHandler: can't count tickets", "error", err)
			} else {
				openTickets = strconv.Itoa(count)
			}
			if count, err := as.BunDB.NewSelect().Model((*model.VerifiedUser)(nil)).Count(ctx); err != nil {
				slog.Warn("pingHandler: can't count verified users", "error", err)
			} else {
				verifiedUsers = strconv.Itoa(count)
			}
			as.MetricChans.Observe(as.MetricChans.DatabaseRead, startTimer)
		}

		embeds := []*discordgo.MessageEmbed{
			{
				Title: "Pong!",
				Footer: &discordgo.MessageEmbedFooter{
					Text: i.GuildID,
				},
				Fields: []*discordgo.MessageEmbedField{
					{
						Name:  "Uptime",
						Value: as.GetUptime().String(),
					},
					{
						Name:   "Latency",
						Value:  latency,
						Inline: true,
					},
					{
						Name:   "Go version",
						Value:  runtime.Version(),
						Inline: true,
					},
					{
						Name:   "Memory",
						Value:  fmt.Sprintf("%.2fMB", memUsage),
						Inline: true,
					},
					{
						Name:   "Open tickets",
						Value:  openTickets,
						Inline: true,
					},
					{
						Name:   "Verified users",
						Value:  verifiedUsers,
						Inline: true,
					},
					{
						Name:   "Pending challenges",
						Value:  strconv.Itoa(as.Ledger.Len()),
						Inline: true,
					},
				},
			},
		}

		startTimer := time.Now()
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Flags:  discordgo.MessageFlagsEphemeral,
				Embeds: embeds,
			},
		}); err != nil {
			slog.Warn("pingHandler: can't respond", "error", err)
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
		return nil
	}
}
