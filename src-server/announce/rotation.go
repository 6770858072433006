// Package announce renders the welcome and boost cards posted when a member
// joins or boosts a guild.
package announce

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"proflare/src-server/embed"

	"github.com/bwmarrin/discordgo"
)

type Mode string

const (
	ModeRandom     Mode = "random"
	ModeRoundRobin Mode = "round-robin"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRandom:
		return ModeRandom, nil
	case ModeRoundRobin:
		return ModeRoundRobin, nil
	}
	return "", fmt.Errorf("ParseMode: unknown rotation mode %q", s)
}

// Template renders the announcement text for member in the guild named guildName.
type Template func(member *discordgo.Member, guildName string) string

var JoinTemplates = []Template{
	func(m *discordgo.Member, guild string) string { return fmt.Sprintf("Welcome %s to **%s**!", mention(m), guild) },
	func(m *discordgo.Member, _ string) string { return fmt.Sprintf("%s just joined — say hi!", username(m)) },
	func(m *discordgo.Member, _ string) string { return fmt.Sprintf("Everyone welcome %s!", mention(m)) },
	func(m *discordgo.Member, _ string) string { return fmt.Sprintf("%s has entered the server", mention(m)) },
	func(m *discordgo.Member, _ string) string { return fmt.Sprintf("%s joined the party!", username(m)) },
}

var BoostTemplates = []Template{
	func(m *discordgo.Member, _ string) string {
		return fmt.Sprintf("%s just boosted the server! Thank you!", username(m))
	},
	func(m *discordgo.Member, _ string) string { return fmt.Sprintf("%s is a booster! Much appreciated!", username(m)) },
	func(m *discordgo.Member, _ string) string { return fmt.Sprintf("%s gave the server a boost!", mention(m)) },
	func(m *discordgo.Member, _ string) string {
		return fmt.Sprintf("%s just supported us with a boost!", username(m))
	},
	func(m *discordgo.Member, _ string) string { return fmt.Sprintf("%s just became a server booster!", mention(m)) },
}

func mention(m *discordgo.Member) string {
	if m == nil || m.User == nil {
		return "someone"
	}
	return m.User.Mention()
}

func username(m *discordgo.Member) string {
	if m == nil || m.User == nil {
		return "someone"
	}
	return m.User.Username
}

// Rotation hands out templates either at random or in order.
type Rotation struct {
	mu        sync.Mutex
	mode      Mode
	templates []Template
	next      int
	intN      func(n int) int
}

func NewRotation(mode Mode, templates []Template) *Rotation {
	return &Rotation{
		mode:      mode,
		templates: templates,
		intN:      rand.IntN,
	}
}

func (r *Rotation) Next() Template {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode == ModeRoundRobin {
		t := r.templates[r.next]
		r.next = (r.next + 1) % len(r.templates)
		return t
	}
	return r.templates[r.intN(len(r.templates))]
}

// Render picks the next template and wraps its text in a member card.
func (r *Rotation) Render(member *discordgo.Member, guildName string) *discordgo.MessageEmbed {
	return embed.Member(r.Next()(member, guildName), member)
}

// boosts whose premium_since is this recent count as new when the previous
// member state wasn't cached
const uncachedBoostWindow = time.Minute

// BoostStarted reports whether an update moved the member from not boosting to boosting.
func BoostStarted(before, after *discordgo.Member, now time.Time) bool {
	if after == nil || after.PremiumSince == nil {
		return false
	}
	if before == nil {
		return now.Sub(*after.PremiumSince) < uncachedBoostWindow
	}
	return before.PremiumSince == nil
}
