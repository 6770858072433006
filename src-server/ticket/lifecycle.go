// Package ticket opens and closes the private channels that hold a single
// suggestion or bug report.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"slices"
	"time"

	"proflare/src-server/discord"
	"proflare/src-server/embed"
	"proflare/src-server/model"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
)

var (
	ErrNoCategory       = errors.New("ticket category is not configured")
	ErrCategoryNotFound = errors.New("ticket category not found")
	ErrUnknownBugType   = errors.New("unknown bug type")
)

// how many disambiguators to draw before accepting a name already in use
const nameAttempts = 5

const (
	openerAllow  = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages
	adminAllow   = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages
	everyoneDeny = discordgo.PermissionViewChannel
)

type Config struct {
	CategoryID string
	BugTypes   []string
	// shown in the summary message, e.g. "!close"
	CloseCommand string
}

type Lifecycle struct {
	session discord.Session
	db      bun.IDB
	config  Config
	pattern *regexp.Regexp
	intN    func(n int) int
}

type Option func(*Lifecycle)

// WithIntN replaces the random source used for channel name disambiguators.
func WithIntN(intN func(n int) int) Option {
	return func(l *Lifecycle) {
		l.intN = intN
	}
}

// New creates a Lifecycle. db may be nil, in which case open tickets are not recorded.
func New(session discord.Session, db bun.IDB, config Config, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		session: session,
		db:      db,
		config:  config,
		pattern: namePattern(config.BugTypes),
		intN:    rand.IntN,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lifecycle) BugTypes() []string {
	return l.config.BugTypes
}

func (l *Lifecycle) KnowsBugType(bugType string) bool {
	return slices.Contains(l.config.BugTypes, bugType)
}

type OpenRequest struct {
	GuildID string
	Kind    Kind
	Opener  *discordgo.User
	Title   string
	Body    string
}

// Open creates the ticket channel and posts its summary. The returned channel
// is non-nil whenever the channel was created, even if posting the summary failed.
func (l *Lifecycle) Open(ctx context.Context, req OpenRequest) (*discordgo.Channel, error) {
	if l.config.CategoryID == "" {
		return nil, fmt.Errorf("Open: %w", ErrNoCategory)
	}
	if req.Kind.IsBug() && !l.KnowsBugType(req.Kind.BugType()) {
		return nil, fmt.Errorf("Open: %w: %q", ErrUnknownBugType, req.Kind.BugType())
	}
	if req.Opener == nil {
		return nil, fmt.Errorf("Open: opener is required")
	}

	category, err := l.session.Channel(l.config.CategoryID)
	if err != nil || category.GuildID != req.GuildID {
		return nil, fmt.Errorf("Open: %w: %s", ErrCategoryNotFound, l.config.CategoryID)
	}

	roles, err := l.session.GuildRoles(req.GuildID)
	if err != nil {
		return nil, fmt.Errorf("Open: can't get guild roles: %w", err)
	}

	name := l.pickName(ctx, req.GuildID, req.Kind)
	channel, err := l.session.GuildChannelCreateComplex(req.GuildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             l.config.CategoryID,
		PermissionOverwrites: Overwrites(req.GuildID, req.Opener.ID, roles),
	})
	if err != nil {
		return nil, fmt.Errorf("Open: can't create channel %s: %w", name, err)
	}

	if l.db != nil {
		record := model.Ticket{
			ChannelID: channel.ID,
			GuildID:   req.GuildID,
			Name:      channel.Name,
			Kind:      req.Kind.String(),
			OpenerID:  req.Opener.ID,
			Title:     req.Title,
			Body:      req.Body,
		}
		if err := record.Insert(ctx, l.db); err != nil {
			slog.Warn("can't record ticket", "channel", channel.ID, "error", err)
		}
	}

	if _, err := l.session.ChannelMessageSendEmbed(
		channel.ID,
		SummaryEmbed(req.Title, req.Body, l.config.CloseCommand, req.Opener),
	); err != nil {
		return channel, fmt.Errorf("Open: can't post summary to %s: %w", channel.ID, err)
	}

	return channel, nil
}

// pickName draws disambiguators until it finds a name no open ticket in the
// guild holds, giving up after nameAttempts draws.
func (l *Lifecycle) pickName(ctx context.Context, guildID string, kind Kind) string {
	name := ChannelName(kind, l.intN(maxDisambiguator))
	if l.db == nil {
		return name
	}
	for attempt := 1; attempt < nameAttempts; attempt++ {
		taken, err := model.TicketNameTaken(ctx, l.db, guildID, name)
		if err != nil {
			slog.Warn("can't check ticket name", "name", name, "error", err)
			return name
		}
		if !taken {
			return name
		}
		name = ChannelName(kind, l.intN(maxDisambiguator))
	}
	return name
}

// Recognizes reports whether channel looks like a ticket this lifecycle opened.
func (l *Lifecycle) Recognizes(channel *discordgo.Channel) bool {
	if channel == nil || !l.pattern.MatchString(channel.Name) {
		return false
	}
	if l.config.CategoryID != "" && channel.ParentID != l.config.CategoryID {
		return false
	}
	return true
}

// Close deletes channel if it is a ticket. Non-ticket channels are left alone
// and closed is false.
func (l *Lifecycle) Close(ctx context.Context, channel *discordgo.Channel, invokerID string) (closed bool, err error) {
	if !l.Recognizes(channel) {
		return false, nil
	}
	if _, err := l.session.ChannelDelete(channel.ID); err != nil {
		return false, fmt.Errorf("Close: can't delete channel %s: %w", channel.ID, err)
	}
	slog.Info("ticket closed", "channel", channel.Name, "by", invokerID)

	if l.db != nil {
		if err := model.DeleteTicketByChannel(ctx, l.db, channel.ID); err != nil {
			slog.Warn("can't remove ticket record", "channel", channel.ID, "error", err)
		}
	}
	return true, nil
}

// Overwrites restricts a ticket to its opener and the guild's administrators.
// The @everyone role shares its ID with the guild.
func Overwrites(guildID, openerID string, roles []*discordgo.Role) []*discordgo.PermissionOverwrite {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:    openerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: openerAllow,
		},
		{
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: everyoneDeny,
		},
	}
	for _, role := range roles {
		if role.ID == guildID || role.Permissions&discordgo.PermissionAdministrator == 0 {
			continue
		}
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    role.ID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: adminAllow,
		})
	}
	return overwrites
}

func SummaryEmbed(title, body, closeCommand string, opener *discordgo.User) *discordgo.MessageEmbed {
	if closeCommand == "" {
		closeCommand = "!close"
	}
	e := &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("%s\n\n💡 **Do `%s` to close this ticket.**", body, closeCommand),
		Color:       embed.RandomColor(),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if opener != nil {
		e.Footer = &discordgo.MessageEmbedFooter{
			Text: "Opened by " + opener.String(),
		}
	}
	return e
}
