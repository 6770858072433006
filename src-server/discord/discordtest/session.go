// Package discordtest provides an in-memory discord.Session that records
// every outbound call instead of talking to Discord.
package discordtest

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type SentMessage struct {
	ChannelID string
	Content   string
	Embeds    []*discordgo.MessageEmbed
	Data      *discordgo.MessageSend
}

type CreatedChannel struct {
	GuildID string
	Data    discordgo.GuildChannelCreateData
}

type RoleGrant struct {
	GuildID string
	UserID  string
	RoleID  string
}

type DeletedMessage struct {
	ChannelID string
	MessageID string
}

type Session struct {
	mu sync.Mutex

	// inputs
	Guilds   []*discordgo.Guild
	Channels map[string]*discordgo.Channel
	Roles    map[string][]*discordgo.Role
	// guild id -> user id -> member
	Members map[string]map[string]*discordgo.Member
	// users whose DM channel can't be opened
	ClosedDMs map[string]bool
	// guilds where adding a role fails
	RoleAddErrs map[string]error
	CreateErr   error

	// recorded calls
	Sent            []SentMessage
	Created         []CreatedChannel
	DeletedChannels []string
	DeletedMessages []DeletedMessage
	RoleGrants      []RoleGrant
	Responses       []*discordgo.InteractionResponse

	nextID int
}

func NewSession() *Session {
	return &Session{
		Channels:    make(map[string]*discordgo.Channel),
		Roles:       make(map[string][]*discordgo.Role),
		Members:     make(map[string]map[string]*discordgo.Member),
		ClosedDMs:   make(map[string]bool),
		RoleAddErrs: make(map[string]error),
		nextID:      1000,
	}
}

// AddMember registers a member so GuildMember and SharedGuilds can find it.
func (s *Session) AddMember(guildID string, user *discordgo.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Members[guildID] == nil {
		s.Members[guildID] = make(map[string]*discordgo.Member)
	}
	s.Members[guildID][user.ID] = &discordgo.Member{GuildID: guildID, User: user}
}

// RESTError builds the error discordgo returns for a failed API call.
func RESTError(status, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: strconv.Itoa(status)},
		Message:  &discordgo.APIErrorMessage{Code: code, Message: fmt.Sprintf("code %d", code)},
	}
}

func (s *Session) newID() string {
	s.nextID++
	return strconv.Itoa(s.nextID)
}

func (s *Session) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, SentMessage{ChannelID: channelID, Content: content})
	return &discordgo.Message{ID: s.newID(), ChannelID: channelID, Content: content}, nil
}

func (s *Session) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, SentMessage{ChannelID: channelID, Content: data.Content, Embeds: data.Embeds, Data: data})
	return &discordgo.Message{ID: s.newID(), ChannelID: channelID, Content: data.Content}, nil
}

func (s *Session) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, SentMessage{ChannelID: channelID, Embeds: []*discordgo.MessageEmbed{embed}})
	return &discordgo.Message{ID: s.newID(), ChannelID: channelID}, nil
}

func (s *Session) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeletedMessages = append(s.DeletedMessages, DeletedMessage{ChannelID: channelID, MessageID: messageID})
	return nil
}

func (s *Session) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.Channels[channelID]; ok {
		return ch, nil
	}
	return nil, RESTError(http.StatusNotFound, discordgo.ErrCodeUnknownChannel)
}

func (s *Session) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.Channels[channelID]
	if !ok {
		return nil, RESTError(http.StatusNotFound, discordgo.ErrCodeUnknownChannel)
	}
	delete(s.Channels, channelID)
	s.DeletedChannels = append(s.DeletedChannels, channelID)
	return ch, nil
}

func (s *Session) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	s.Created = append(s.Created, CreatedChannel{GuildID: guildID, Data: data})
	ch := &discordgo.Channel{
		ID:                   s.newID(),
		GuildID:              guildID,
		Name:                 data.Name,
		Type:                 data.Type,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	s.Channels[ch.ID] = ch
	return ch, nil
}

func (s *Session) GuildRoles(guildID string, _ ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Roles[guildID], nil
}

func (s *Session) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.Members[guildID][userID]; ok {
		return m, nil
	}
	return nil, RESTError(http.StatusNotFound, discordgo.ErrCodeUnknownMember)
}

func (s *Session) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.RoleAddErrs[guildID]; err != nil {
		return err
	}
	s.RoleGrants = append(s.RoleGrants, RoleGrant{GuildID: guildID, UserID: userID, RoleID: roleID})
	return nil
}

func (s *Session) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClosedDMs[recipientID] {
		return nil, RESTError(http.StatusForbidden, discordgo.ErrCodeCannotSendMessagesToThisUser)
	}
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

func (s *Session) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Responses = append(s.Responses, resp)
	return nil
}

func (s *Session) SharedGuilds() []*discordgo.Guild {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Guilds
}

// LastResponse returns the most recent interaction response, or nil.
func (s *Session) LastResponse() *discordgo.InteractionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Responses) == 0 {
		return nil
	}
	return s.Responses[len(s.Responses)-1]
}
