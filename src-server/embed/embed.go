package embed

import (
	"math/rand/v2"
	"time"

	"github.com/bwmarrin/discordgo"
)

func RandomColor() int {
	return rand.IntN(0xffffff + 1)
}

// Member builds the announcement card used for joins and boosts.
func Member(title string, member *discordgo.Member) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:     title,
		Color:     RandomColor(),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if member != nil && member.User != nil {
		e.Description = member.User.Mention()
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{
			URL: member.AvatarURL(""),
		}
	}
	return e
}
