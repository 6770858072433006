// Package discord narrows *discordgo.Session down to the calls the bot makes,
// so handlers can run against a recording fake in tests.
package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// Session is the subset of *discordgo.Session used by the handlers.
type Session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error

	// SharedGuilds lists the guilds the bot is currently a member of.
	SharedGuilds() []*discordgo.Guild
}

// Client adapts a live gateway session to Session.
type Client struct {
	*discordgo.Session
}

func NewClient(s *discordgo.Session) *Client {
	return &Client{Session: s}
}

func (c *Client) SharedGuilds() []*discordgo.Guild {
	if c.State == nil {
		return nil
	}
	c.State.RLock()
	defer c.State.RUnlock()
	guilds := make([]*discordgo.Guild, len(c.State.Guilds))
	copy(guilds, c.State.Guilds)
	return guilds
}

// IsRESTErrorCode reports whether err is a Discord API error carrying the given JSON error code.
func IsRESTErrorCode(err error, code int) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	return restErr.Message.Code == code
}
