package verify_handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"proflare/src-server/discord"
	"proflare/src-server/metric"
	"proflare/src-server/model"
	"proflare/src-server/utils"
	"proflare/src-server/verify"

	"github.com/bwmarrin/discordgo"
)

// Answer treats a DM as the answer to its author's pending challenge.
// It reports false when the author has nothing pending.
func Answer(as *utils.AppState, s discord.Session, m *discordgo.MessageCreate) bool {
	outcome := as.Ledger.Submit(m.Author.ID, m.Content)
	if outcome == verify.NoPendingChallenge {
		return false
	}
	metric.VerificationOutcomes.WithLabelValues(outcome.String()).Inc()

	var reply string
	switch outcome {
	case verify.Incorrect:
		reply = "❌ Wrong answer, try again."
	case verify.Correct:
		granted := grantVerifiedRole(as, s, m.Author)
		recordVerifiedUser(as, m.Author, granted)
		if granted == 0 {
			reply = "✅ Correct, but I couldn't give you the verified role. Please contact a moderator."
		} else {
			reply = "✅ Correct! You are now verified."
		}
	}

	startTimer := time.Now()
	if _, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:   reply,
		Reference: m.Reference(),
	}); err != nil {
		slog.Warn("can't reply to verification answer", "user", m.Author.ID, "error", err)
		return true
	}
	as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)
	return true
}

// grantVerifiedRole adds the verified role in every guild shared with user
// and logs each grant. It returns the number of guilds the role was added in.
func grantVerifiedRole(as *utils.AppState, s discord.Session, user *discordgo.User) int {
	roleID := as.Config.GetVerifiedRoleID()
	logChannelID := as.Config.GetVerifyLogChannelID()

	granted := 0
	for _, guild := range s.SharedGuilds() {
		if _, err := s.GuildMember(guild.ID, user.ID); err != nil {
			continue
		}
		if err := s.GuildMemberRoleAdd(guild.ID, user.ID, roleID); err != nil {
			slog.Warn("can't add verified role", "guild", guild.ID, "user", user.ID, "error", err)
			continue
		}
		granted++
		metric.VerificationRoleGrants.Inc()

		if logChannelID == "" {
			continue
		}
		if _, err := s.ChannelMessageSend(logChannelID, fmt.Sprintf(
			"✅ %s (%s) verified in **%s**", user.Mention(), user.String(), guild.Name,
		)); err != nil {
			slog.Warn("can't post verification log", "channel", logChannelID, "error", err)
		}
	}
	return granted
}

func recordVerifiedUser(as *utils.AppState, user *discordgo.User, granted int) {
	if as.BunDB == nil {
		return
	}
	startTimer := time.Now()
	record := model.VerifiedUser{
		UserID:     user.ID,
		Username:   user.String(),
		GuildCount: granted,
	}
	if err := record.Upsert(context.Background(), as.BunDB); err != nil {
		slog.Warn("can't record verified user", "user", user.ID, "error", err)
		return
	}
	as.MetricChans.Observe(as.MetricChans.DatabaseWrite, startTimer)
}
