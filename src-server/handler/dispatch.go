package handler

import (
	"log/slog"
	"strings"

	"proflare/src-server/discord"
	"proflare/src-server/handler/verify_handler"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// DispatchInteraction routes slash commands, message components and modal
// submits to the handlers registered in the AppState.
func DispatchInteraction(as *utils.AppState, s discord.Session, i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil {
		return
	}

	execute := func(id string, handler utils.InteractionHandler, ok bool) {
		if ok {
			if err := handler(s, i); err != nil {
				slog.Error("handler error", "id", id, "error", err.Error())
			}
			return
		}
		utils.InteractRespHiddenReply(s, i, "Expired interaction")
		username := "unknown"
		if user := utils.InteractionUser(i); user != nil {
			username = user.Username
		}
		slog.Debug("someone used an expired interaction", "username", username, "custom_id", id)
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand: // slash commands
		id := i.ApplicationCommandData().Name
		handler, ok := as.GetAppCmdHandler(id)
		execute(id, handler, ok)
	case discordgo.InteractionMessageComponent: // buttons, dropdowns, etc
		id := i.MessageComponentData().CustomID
		handler, ok := as.GetMsgComponentHandler(id)
		execute(id, handler, ok)
	case discordgo.InteractionModalSubmit: // modal a.k.a. text input
		id := i.ModalSubmitData().CustomID
		handler, ok := as.GetModalHandler(id)
		execute(id, handler, ok)
	default:
		slog.Error("unknown interaction type", "type", i.Type)
	}
}

// DispatchMessage handles verification answers sent by DM and prefix commands.
func DispatchMessage(as *utils.AppState, s discord.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot {
		return
	}

	if m.GuildID == "" && as.Ledger.Pending(m.Author.ID) {
		verify_handler.Answer(as, s, m)
		return
	}

	name, rest, ok := utils.ParsePrefixCmd(m.Content, as.Config.GetCommandPrefix())
	if !ok {
		return
	}
	if adminCmds[name] && !as.Config.IsAllowedUser(m.Author.ID) {
		slog.Debug("admin command from non-admin", "command", name, "user", m.Author.ID)
		return
	}

	// "panel <kind>" commands are registered under their full name
	if name == "panel" {
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return
		}
		name, rest = "panel "+strings.ToLower(fields[0]), ""
	}

	handler, ok := as.GetPrefixCmdHandler(name)
	if !ok {
		return
	}
	if err := handler(s, m, rest); err != nil {
		slog.Error("prefix command error", "command", name, "error", err.Error())
	}
}

// only ALLOWED_USER_ID may run these
var adminCmds = map[string]bool{
	"message": true,
	"panel":   true,
}
