package scheduler_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"proflare/src-server/discord/discordtest"
	"proflare/src-server/model"
	"proflare/src-server/scheduler"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

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

func TestSweepStaleTickets(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	s := discordtest.NewSession()

	for i, channelID := range []string{"10", "11", "12", "13", "14"} {
		ticket := model.Ticket{
			ChannelID: channelID,
			GuildID:   "1",
			Name:      "suggest-" + channelID,
			Kind:      "suggestion",
			OpenerID:  "42",
		}
		if err := ticket.Insert(ctx, db); err != nil {
			t.Fatal(err)
		}
		// only the even ones still exist
		if i%2 == 0 {
			s.Channels[channelID] = &discordgo.Channel{ID: channelID, Name: ticket.Name}
		}
	}

	removed, err := scheduler.SweepStaleTickets(ctx, db, s)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	var left []model.Ticket
	if err := db.NewSelect().Model(&left).Order("channel_id ASC").Scan(ctx); err != nil {
		t.Fatal(err)
	}
	if len(left) != 3 || left[0].ChannelID != "10" || left[1].ChannelID != "12" || left[2].ChannelID != "14" {
		t.Errorf("left = %+v", left)
	}

	// nothing else to do
	removed, err = scheduler.SweepStaleTickets(ctx, db, s)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Errorf("second sweep removed %d", removed)
	}
}

func TestStaleTicketsStopsOnShutdown(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	config, err := utils.LoadConfig(func(key string) string {
		return map[string]string{
			"DISCORD_TOKEN":         "token",
			"CLIENT_ID":             "app",
			"TICKET_SWEEP_INTERVAL": "10ms",
		}[key]
	})
	if err != nil {
		t.Fatal(err)
	}
	as := utils.NewAppStateFrom(config, db, discordtest.NewSession())

	ticket := model.Ticket{ChannelID: "10", GuildID: "1", Name: "suggest-10", Kind: "suggestion", OpenerID: "42"}
	if err := ticket.Insert(ctx, db); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		scheduler.StaleTickets(as)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		count, err := db.NewSelect().Model((*model.Ticket)(nil)).Count(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if count == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("stale ticket was never removed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	as.GracefulShutdown()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper didn't stop")
	}
}
