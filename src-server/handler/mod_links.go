package handler

import (
	"fmt"

	"proflare/src-server/discord"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

type modLink struct {
	id          string
	description string
	reply       string
}

var modLinks = []modLink{
	{
		id:          "autototem",
		description: "Get the AutoTotem+ download link",
		reply:       "🔥 **AutoTotem+**: https://modrinth.com/mod/autototem+",
	},
	{
		id:          "autorocket",
		description: "Get the AutoRocket+ download link",
		reply:       "🚀 **AutoRocket+**: https://modrinth.com/mod/autorocket+",
	},
	{
		id:          "performance-eternal",
		description: "Get the Performance Eternal modpack link",
		reply:       "⚡ **Performance Eternal**: https://modrinth.com/modpack/performance-eternal",
	},
}

// ModLinks registers one slash command per project, each replying with its download link.
func ModLinks(as *utils.AppState) {
	for _, link := range modLinks {
		as.AddAppCmdHandler(link.id, modLinkHandler(link))
		as.AddAppCmdInfo(link.id, &discordgo.ApplicationCommand{
			Name:        link.id,
			Description: link.description,
		})
	}
}

func modLinkHandler(link modLink) utils.InteractionHandler {
	return func(s discord.Session, i *discordgo.InteractionCreate) error {
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: link.reply,
			},
		}); err != nil {
			return fmt.Errorf("modLinkHandler: can't respond to %s: %w", link.id, err)
		}
		return nil
	}
}
