package verify_handler

import (
	"fmt"
	"log/slog"
	"time"

	"proflare/src-server/discord"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

const dmClosedMsg = "I can't DM you. Please allow direct messages from server members and click Verify again."

func buttonHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s discord.Session, i *discordgo.InteractionCreate) error {
		if as.Config.GetVerifiedRoleID() == "" {
			utils.InteractRespHiddenReply(s, i, "Verification not configured properly.")
			return nil
		}
		user := utils.InteractionUser(i)
		if user == nil {
			return fmt.Errorf("verify buttonHandler: interaction without a user")
		}

		a, b := as.Ledger.Begin(user.ID)

		dm, err := s.UserChannelCreate(user.ID)
		if err != nil {
			slog.Warn("can't open DM channel", "user", user.ID, "error", err)
			utils.InteractRespHiddenReply(s, i, dmClosedMsg)
			return nil
		}

		startTimer := time.Now()
		if _, err := s.ChannelMessageSend(dm.ID, fmt.Sprintf(
			"🧮 To verify, answer this: what is **%d + %d**? Reply here with just the number.", a, b,
		)); err != nil {
			slog.Warn("can't send verification challenge", "user", user.ID, "error", err)
			utils.InteractRespHiddenReply(s, i, dmClosedMsg)
			return nil
		}
		as.MetricChans.Observe(as.MetricChans.DiscordSendMessage, startTimer)

		utils.InteractRespHiddenReply(s, i, "📬 Check your DMs to finish verification.")
		return nil
	}
}
