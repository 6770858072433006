package ticket_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"

	"proflare/src-server/discord/discordtest"
	"proflare/src-server/model"
	"proflare/src-server/ticket"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	guildID    = "1"
	categoryID = "500"
	adminRole  = "900"
	modRole    = "901"
)

var bugTypes = []string{"AutoTotem", "AutoRocket", "Performance Eternal", "Other"}

func newDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	bundb := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() { bundb.Close() })
	if err := model.CreateSchema(context.Background(), bundb); err != nil {
		t.Fatal(err)
	}
	return bundb
}

func newSession() *discordtest.Session {
	s := discordtest.NewSession()
	s.Channels[categoryID] = &discordgo.Channel{
		ID:      categoryID,
		GuildID: guildID,
		Name:    "tickets",
		Type:    discordgo.ChannelTypeGuildCategory,
	}
	s.Roles[guildID] = []*discordgo.Role{
		{ID: guildID, Name: "@everyone"},
		{ID: adminRole, Name: "Admin", Permissions: discordgo.PermissionAdministrator},
		{ID: modRole, Name: "Mod", Permissions: discordgo.PermissionManageMessages},
	}
	return s
}

func newLifecycle(s *discordtest.Session, db bun.IDB, opts ...ticket.Option) *ticket.Lifecycle {
	return ticket.New(s, db, ticket.Config{
		CategoryID:   categoryID,
		BugTypes:     bugTypes,
		CloseCommand: "!close",
	}, opts...)
}

var opener = &discordgo.User{ID: "42", Username: "opener", Discriminator: "0"}

func findOverwrite(overwrites []*discordgo.PermissionOverwrite, id string) *discordgo.PermissionOverwrite {
	for _, o := range overwrites {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func TestOpenSuggestion(t *testing.T) {
	ctx := context.Background()
	s := newSession()
	db := newDB(t)
	l := newLifecycle(s, db)

	channel, err := l.Open(ctx, ticket.OpenRequest{
		GuildID: guildID,
		Kind:    ticket.Suggestion(),
		Opener:  opener,
		Title:   "Dark mode",
		Body:    "please add it",
	})
	if err != nil {
		t.Fatal(err)
	}

	if !regexp.MustCompile(`^suggest-[0-9]+$`).MatchString(channel.Name) {
		t.Errorf("unexpected channel name %q", channel.Name)
	}
	if len(s.Created) != 1 {
		t.Fatalf("expected one channel create, got %d", len(s.Created))
	}
	data := s.Created[0].Data
	if data.ParentID != categoryID {
		t.Errorf("channel created under %q, want %q", data.ParentID, categoryID)
	}
	if data.Type != discordgo.ChannelTypeGuildText {
		t.Errorf("channel type = %v", data.Type)
	}

	// case: permission overwrites
	func() {
		o := findOverwrite(data.PermissionOverwrites, opener.ID)
		if o == nil || o.Allow&discordgo.PermissionViewChannel == 0 || o.Allow&discordgo.PermissionSendMessages == 0 {
			t.Errorf("opener can't view and send: %+v", o)
		}
		if o != nil && o.Type != discordgo.PermissionOverwriteTypeMember {
			t.Errorf("opener overwrite should target a member")
		}
		o = findOverwrite(data.PermissionOverwrites, guildID)
		if o == nil || o.Deny&discordgo.PermissionViewChannel == 0 {
			t.Errorf("@everyone isn't denied view: %+v", o)
		}
		o = findOverwrite(data.PermissionOverwrites, adminRole)
		if o == nil || o.Allow&discordgo.PermissionViewChannel == 0 || o.Allow&discordgo.PermissionSendMessages == 0 {
			t.Errorf("admin role can't view and send: %+v", o)
		}
		if findOverwrite(data.PermissionOverwrites, modRole) != nil {
			t.Error("non-admin role should not get an overwrite")
		}
	}()

	// case: summary message
	func() {
		if len(s.Sent) != 1 || s.Sent[0].ChannelID != channel.ID {
			t.Fatalf("expected a summary in %s, got %+v", channel.ID, s.Sent)
		}
		summary := s.Sent[0].Embeds[0]
		if summary.Title != "Dark mode" {
			t.Errorf("summary title = %q", summary.Title)
		}
		if !strings.Contains(summary.Description, "please add it") || !strings.Contains(summary.Description, "!close") {
			t.Errorf("summary description = %q", summary.Description)
		}
		if summary.Footer == nil || !strings.Contains(summary.Footer.Text, "opener") {
			t.Errorf("summary footer = %+v", summary.Footer)
		}
	}()

	// case: ticket recorded
	func() {
		record := new(model.Ticket)
		if err := db.NewSelect().Model(record).Where("channel_id = ?", channel.ID).Scan(ctx); err != nil {
			t.Fatal(err)
		}
		if record.Kind != "suggestion" || record.OpenerID != opener.ID || record.Title != "Dark mode" {
			t.Errorf("unexpected record %+v", record)
		}
	}()
}

func TestOpenBug(t *testing.T) {
	s := newSession()
	l := newLifecycle(s, nil, ticket.WithIntN(func(int) int { return 1234 }))

	channel, err := l.Open(context.Background(), ticket.OpenRequest{
		GuildID: guildID,
		Kind:    ticket.Bug("Performance Eternal"),
		Opener:  opener,
		Title:   "Crash",
		Body:    "on startup",
	})
	if err != nil {
		t.Fatal(err)
	}
	if channel.Name != "bug-performanceeternal-1234" {
		t.Errorf("channel name = %q", channel.Name)
	}
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown bug type", func(t *testing.T) {
		s := newSession()
		_, err := newLifecycle(s, nil).Open(ctx, ticket.OpenRequest{
			GuildID: guildID, Kind: ticket.Bug("Nope"), Opener: opener,
		})
		if !errors.Is(err, ticket.ErrUnknownBugType) {
			t.Errorf("err = %v", err)
		}
		if len(s.Created) != 0 {
			t.Error("no channel should be created")
		}
	})

	t.Run("no category configured", func(t *testing.T) {
		s := newSession()
		l := ticket.New(s, nil, ticket.Config{BugTypes: bugTypes})
		_, err := l.Open(ctx, ticket.OpenRequest{GuildID: guildID, Kind: ticket.Suggestion(), Opener: opener})
		if !errors.Is(err, ticket.ErrNoCategory) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("category in another guild", func(t *testing.T) {
		s := newSession()
		_, err := newLifecycle(s, nil).Open(ctx, ticket.OpenRequest{
			GuildID: "2", Kind: ticket.Suggestion(), Opener: opener,
		})
		if !errors.Is(err, ticket.ErrCategoryNotFound) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("create fails", func(t *testing.T) {
		s := newSession()
		s.CreateErr = discordtest.RESTError(403, discordgo.ErrCodeMissingPermissions)
		channel, err := newLifecycle(s, nil).Open(ctx, ticket.OpenRequest{
			GuildID: guildID, Kind: ticket.Suggestion(), Opener: opener,
		})
		if err == nil || channel != nil {
			t.Errorf("expected failure, got channel=%v err=%v", channel, err)
		}
		if len(s.Sent) != 0 {
			t.Error("no summary should be posted")
		}
	})
}

func TestOpenAvoidsNamesInUse(t *testing.T) {
	ctx := context.Background()
	s := newSession()
	db := newDB(t)

	draws := []int{7, 7, 8}
	l := newLifecycle(s, db, ticket.WithIntN(func(int) int {
		v := draws[0]
		draws = draws[1:]
		return v
	}))

	first, err := l.Open(ctx, ticket.OpenRequest{GuildID: guildID, Kind: ticket.Suggestion(), Opener: opener})
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Open(ctx, ticket.OpenRequest{GuildID: guildID, Kind: ticket.Suggestion(), Opener: opener})
	if err != nil {
		t.Fatal(err)
	}
	if first.Name != "suggest-7" || second.Name != "suggest-8" {
		t.Errorf("names = %q, %q", first.Name, second.Name)
	}
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	t.Run("bug ticket is deleted", func(t *testing.T) {
		s := newSession()
		db := newDB(t)
		l := newLifecycle(s, db)
		channel := &discordgo.Channel{ID: "77", GuildID: guildID, Name: "bug-autototem-1234", ParentID: categoryID}
		s.Channels[channel.ID] = channel
		if err := (&model.Ticket{ChannelID: "77", GuildID: guildID, Name: channel.Name, Kind: "bug:AutoTotem", OpenerID: "42"}).Insert(ctx, db); err != nil {
			t.Fatal(err)
		}

		closed, err := l.Close(ctx, channel, "42")
		if err != nil {
			t.Fatal(err)
		}
		if !closed || len(s.DeletedChannels) != 1 || s.DeletedChannels[0] != "77" {
			t.Errorf("closed=%v deleted=%v", closed, s.DeletedChannels)
		}
		count, err := db.NewSelect().Model((*model.Ticket)(nil)).Count(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Error("ticket record should be removed")
		}
	})

	for _, tc := range []struct {
		name    string
		channel *discordgo.Channel
	}{
		{"general", &discordgo.Channel{ID: "10", Name: "general", ParentID: categoryID}},
		{"unknown bug type", &discordgo.Channel{ID: "11", Name: "bug-nope-1234", ParentID: categoryID}},
		{"no disambiguator", &discordgo.Channel{ID: "12", Name: "suggest-", ParentID: categoryID}},
		{"outside category", &discordgo.Channel{ID: "13", Name: "suggest-12", ParentID: "other"}},
		{"nil channel", nil},
	} {
		t.Run(tc.name+" is left alone", func(t *testing.T) {
			s := newSession()
			closed, err := newLifecycle(s, nil).Close(ctx, tc.channel, "42")
			if err != nil {
				t.Fatal(err)
			}
			if closed || len(s.DeletedChannels) != 0 {
				t.Errorf("closed=%v deleted=%v", closed, s.DeletedChannels)
			}
		})
	}
}
