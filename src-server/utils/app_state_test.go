package utils_test

import (
	"testing"
	"time"

	"proflare/src-server/discord"
	"proflare/src-server/discord/discordtest"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func newAppState(t *testing.T) *utils.AppState {
	t.Helper()
	c, err := utils.LoadConfig(env(map[string]string{"DISCORD_TOKEN": "token", "CLIENT_ID": "app"}))
	if err != nil {
		t.Fatal(err)
	}
	return utils.NewAppStateFrom(c, nil, discordtest.NewSession())
}

func named(name string, calls *[]string) utils.InteractionHandler {
	return func(discord.Session, *discordgo.InteractionCreate) error {
		*calls = append(*calls, name)
		return nil
	}
}

func TestCustomIDLookup(t *testing.T) {
	as := newAppState(t)
	var calls []string
	as.AddMsgComponentHandler("verify_button", named("verify", &calls))
	as.AddMsgComponentHandler("bug:", named("bug", &calls))
	as.AddModalHandler("bug_modal:", named("bug_modal", &calls))

	for _, id := range []string{"verify_button", "bug:AutoTotem", "bug:Performance Eternal"} {
		handler, ok := as.GetMsgComponentHandler(id)
		if !ok {
			t.Fatalf("no handler for %q", id)
		}
		handler(nil, nil)
	}
	if handler, ok := as.GetModalHandler("bug_modal:Other"); ok {
		handler(nil, nil)
	} else {
		t.Error("no modal handler for bug_modal:Other")
	}

	want := []string{"verify", "bug", "bug", "bug_modal"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}

	for _, id := range []string{"verify", "bug", "suggest:x", ""} {
		if _, ok := as.GetMsgComponentHandler(id); ok {
			t.Errorf("%q should not resolve", id)
		}
	}
}

func TestCustomIDArg(t *testing.T) {
	for in, want := range map[string]string{
		"bug:AutoTotem":  "AutoTotem",
		"bug_modal:a:b":  "a:b",
		"suggest_create": "",
		"bug:":           "",
	} {
		if got := utils.CustomIDArg(in); got != want {
			t.Errorf("CustomIDArg(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrefixCmdCaseInsensitive(t *testing.T) {
	as := newAppState(t)
	as.AddPrefixCmdHandler("close", func(discord.Session, *discordgo.MessageCreate, string) error { return nil })
	if _, ok := as.GetPrefixCmdHandler("CLOSE"); !ok {
		t.Error("prefix commands should match case-insensitively")
	}
}

func TestAppCmdInfo(t *testing.T) {
	as := newAppState(t)
	as.AddAppCmdInfo("ping", &discordgo.ApplicationCommand{Name: "ping"})
	count := 0
	as.IterateAppCmdInfo(func(string, *discordgo.ApplicationCommand) { count++ })
	if count != 1 {
		t.Errorf("count = %d", count)
	}
	as.NukeAppCmdInfo()
	count = 0
	as.IterateAppCmdInfo(func(string, *discordgo.ApplicationCommand) { count++ })
	if count != 0 {
		t.Errorf("count after nuke = %d", count)
	}
}

func TestGracefulShutdownClosesChans(t *testing.T) {
	as := newAppState(t)
	a, b := as.CreateGracefulShutdownChan(), as.CreateGracefulShutdownChan()
	as.GracefulShutdown()
	for _, ch := range []chan struct{}{a, b} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("shutdown channel not closed")
		}
	}
}

func TestObserveDoesNotBlock(t *testing.T) {
	m := utils.NewMetric()
	start := time.Now()
	for range cap(m.DiscordSendMessage) + 5 {
		m.Observe(m.DiscordSendMessage, start)
	}
	if len(m.DiscordSendMessage) != cap(m.DiscordSendMessage) {
		t.Errorf("len = %d", len(m.DiscordSendMessage))
	}
}

func TestUserLimiter(t *testing.T) {
	l := utils.NewUserLimiter(time.Hour)
	if !l.Allow("a") || !l.Allow("b") {
		t.Fatal("first action should be allowed")
	}
	if l.Allow("a") {
		t.Error("second action within the interval should be refused")
	}

	off := utils.NewUserLimiter(0)
	for range 3 {
		if !off.Allow("a") {
			t.Error("disabled limiter refused")
		}
	}
}
