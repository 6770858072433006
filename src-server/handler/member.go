package handler

import (
	"log/slog"
	"time"

	"proflare/src-server/announce"
	"proflare/src-server/discord"
	"proflare/src-server/metric"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// DispatchMemberAdd welcomes a member who joined the target guild.
func DispatchMemberAdd(as *utils.AppState, s discord.Session, m *discordgo.GuildMemberAdd) {
	if m == nil || m.Member == nil || !as.Config.IsTargetGuild(m.GuildID) {
		return
	}
	announceMember(as, s, "join", as.Config.GetJoinChannelID(), as.JoinRotation, m.Member)
}

// DispatchMemberUpdate thanks a member of the target guild who just started boosting.
func DispatchMemberUpdate(as *utils.AppState, s discord.Session, m *discordgo.GuildMemberUpdate) {
	if m == nil || m.Member == nil || !as.Config.IsTargetGuild(m.GuildID) {
		return
	}
	if !announce.BoostStarted(m.BeforeUpdate, m.Member, time.Now()) {
		return
	}
	announceMember(as, s, "boost", as.Config.GetBoostChannelID(), as.BoostRotation, m.Member)
}

func announceMember(as *utils.AppState, s discord.Session, kind, channelID string, rotation *announce.Rotation, member *discordgo.Member) {
	if channelID == "" {
		return
	}

	startTimer := time.Now()
	if _, err := s.ChannelMessageSendEmbed(channelID, rotation.Render(member, guildName(s, member.GuildID))); err != nil {
		slog.Warn("can't post announcement", "kind", kind, "channel", channelID, "error", err)
		return
	}
	as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
	metric.Announcements.WithLabelValues(kind).Inc()
}

func guildName(s discord.Session, guildID string) string {
	for _, guild := range s.SharedGuilds() {
		if guild.ID == guildID {
			return guild.Name
		}
	}
	return "the server"
}
