package ticket_handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"proflare/src-server/discord"
	"proflare/src-server/metric"
	"proflare/src-server/ticket"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func suggestButtonHandler() utils.InteractionHandler {
	return func(s discord.Session, i *discordgo.InteractionCreate) error {
		if err := utils.InteractRespTextModal(s, i, suggestModalID, "Create Suggestion",
			titleInput(suggestTitleID),
			descInput(suggestDescID),
		); err != nil {
			return fmt.Errorf("suggestButtonHandler: can't open modal: %w", err)
		}
		return nil
	}
}

func bugButtonHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s discord.Session, i *discordgo.InteractionCreate) error {
		bugType := utils.CustomIDArg(i.MessageComponentData().CustomID)
		if !as.Tickets.KnowsBugType(bugType) {
			utils.InteractRespHiddenReply(s, i, "This bug type is no longer available.")
			return nil
		}
		if err := utils.InteractRespTextModal(s, i, bugModalPrefix+bugType, bugType+" Bug Report",
			titleInput(bugTitleID),
			descInput(bugDescID),
		); err != nil {
			return fmt.Errorf("bugButtonHandler: can't open modal: %w", err)
		}
		return nil
	}
}

func titleInput(customID string) discordgo.TextInput {
	return discordgo.TextInput{
		CustomID:  customID,
		Label:     "Title",
		Style:     discordgo.TextInputShort,
		Required:  true,
		MaxLength: 100,
	}
}

func descInput(customID string) discordgo.TextInput {
	return discordgo.TextInput{
		CustomID:  customID,
		Label:     "Description",
		Style:     discordgo.TextInputParagraph,
		Required:  true,
		MaxLength: 4000,
	}
}

func modalSubmitHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s discord.Session, i *discordgo.InteractionCreate) error {
		data := i.ModalSubmitData()
		values := utils.ModalValues(data)

		req := ticket.OpenRequest{
			GuildID: i.GuildID,
			Opener:  utils.InteractionUser(i),
		}
		switch {
		case data.CustomID == suggestModalID:
			req.Kind = ticket.Suggestion()
			req.Title = values[suggestTitleID]
			req.Body = values[suggestDescID]
		case strings.HasPrefix(data.CustomID, bugModalPrefix):
			req.Kind = ticket.Bug(utils.CustomIDArg(data.CustomID))
			req.Title = values[bugTitleID]
			req.Body = values[bugDescID]
		default:
			return fmt.Errorf("modalSubmitHandler: unexpected modal %q", data.CustomID)
		}

		if req.GuildID == "" || req.Opener == nil {
			utils.InteractRespHiddenReply(s, i, "Tickets can only be opened inside a server.")
			return nil
		}
		if !as.TicketLimiter.Allow(req.Opener.ID) {
			utils.InteractRespHiddenReply(s, i, "You're opening tickets too fast, please wait a moment.")
			return nil
		}

		channel, err := as.Tickets.Open(context.Background(), req)
		switch {
		case errors.Is(err, ticket.ErrNoCategory), errors.Is(err, ticket.ErrCategoryNotFound):
			slog.Warn("can't open ticket", "guild", req.GuildID, "error", err)
			utils.InteractRespHiddenReply(s, i, "Category not found.")
			return nil
		case errors.Is(err, ticket.ErrUnknownBugType):
			utils.InteractRespHiddenReply(s, i, "This bug type is no longer available.")
			return nil
		case err != nil && channel == nil:
			slog.Warn("can't open ticket", "guild", req.GuildID, "kind", req.Kind.String(), "error", err)
			utils.InteractRespHiddenReply(s, i, "I couldn't create your ticket. Please contact a moderator.")
			return nil
		case err != nil:
			// the channel exists, only its summary is missing
			slog.Warn("ticket opened without summary", "channel", channel.ID, "error", err)
		}

		metric.TicketsOpened.WithLabelValues(kindLabel(req.Kind)).Inc()
		utils.InteractRespHiddenReply(s, i, fmt.Sprintf("Ticket created: %s", channel.Mention()))
		return nil
	}
}

func kindLabel(k ticket.Kind) string {
	if k.IsBug() {
		return "bug"
	}
	return "suggestion"
}
