package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"proflare/src-server/announce"
)

var defaultBugTypes = []string{"AutoTotem", "AutoRocket", "Performance Eternal", "Other"}

type Config struct {
	port string

	discordToken    string
	discordClientID string
	discordGuildID  string

	joinChannelID      string
	boostChannelID     string
	verifiedRoleID     string
	verifyLogChannelID string
	ticketCategoryID   string
	allowedUserID      string

	commandPrefix    string
	bugTypes         []string
	announceRotation announce.Mode
	ticketRateLimit  time.Duration

	databasePath             string
	metricCollectionInterval time.Duration
	ticketSweepInterval      time.Duration
}

// NewConfig reads the environment and exits the process when a required
// key is missing or malformed.
func NewConfig() *Config {
	config, err := LoadConfig(os.Getenv)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	return config
}

// LoadConfig builds a Config from getenv. All problems are reported at once.
func LoadConfig(getenv func(string) string) (*Config, error) {
	var errs []error

	required := func(key string) string {
		value := strings.TrimSpace(getenv(key))
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is not set", key))
		}
		return value
	}
	optional := func(key, fallback string) string {
		value := strings.TrimSpace(getenv(key))
		if value == "" {
			return fallback
		}
		return value
	}
	duration := func(key, fallback string, allowZero bool) time.Duration {
		d, err := time.ParseDuration(optional(key, fallback))
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		case d < 0 || (d == 0 && !allowZero):
			errs = append(errs, fmt.Errorf("%s must be positive", key))
		}
		return d
	}

	c := &Config{
		port: optional("PORT", "3000"),

		discordToken:    required("DISCORD_TOKEN"),
		discordClientID: required("CLIENT_ID"),
		discordGuildID:  optional("GUILD_ID", ""),

		joinChannelID:      optional("JOIN_CHANNEL_ID", ""),
		boostChannelID:     optional("BOOST_CHANNEL_ID", ""),
		verifiedRoleID:     optional("VERIFIED_ROLE_ID", ""),
		verifyLogChannelID: optional("VERIFY_LOG_CHANNEL_ID", ""),
		ticketCategoryID:   optional("SUGGEST_CATEGORY_ID", ""),
		allowedUserID:      optional("ALLOWED_USER_ID", ""),

		commandPrefix:   optional("COMMAND_PREFIX", "!"),
		ticketRateLimit: duration("TICKET_RATE_LIMIT", "30s", true),

		databasePath:             optional("DATABASE_PATH", "./sqlite.db"),
		metricCollectionInterval: duration("METRIC_COLLECTION_INTERVAL", "10s", false),
		ticketSweepInterval:      duration("TICKET_SWEEP_INTERVAL", "10m", false),
	}

	c.bugTypes = func() []string {
		raw := optional("BUG_TYPES", "")
		if raw == "" {
			return defaultBugTypes
		}
		var bugTypes []string
		for _, bugType := range strings.Split(raw, ",") {
			if bugType = strings.TrimSpace(bugType); bugType != "" {
				bugTypes = append(bugTypes, bugType)
			}
		}
		if len(bugTypes) == 0 {
			errs = append(errs, fmt.Errorf("BUG_TYPES has no entries"))
		}
		return bugTypes
	}()

	mode, err := announce.ParseMode(optional("ANNOUNCE_ROTATION", ""))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid ANNOUNCE_ROTATION: %w", err))
	}
	c.announceRotation = mode

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	c.logValues()
	return c, nil
}

func (c *Config) logValues() {
	slog.Debug("env", "PORT", c.port)
	slog.Debug("env", "DISCORD_TOKEN", c.discordToken[:min(3, len(c.discordToken))]+"...")
	slog.Debug("env", "CLIENT_ID", c.discordClientID)
	for key, value := range map[string]string{
		"GUILD_ID":              c.discordGuildID,
		"JOIN_CHANNEL_ID":       c.joinChannelID,
		"BOOST_CHANNEL_ID":      c.boostChannelID,
		"VERIFIED_ROLE_ID":      c.verifiedRoleID,
		"VERIFY_LOG_CHANNEL_ID": c.verifyLogChannelID,
		"SUGGEST_CATEGORY_ID":   c.ticketCategoryID,
		"ALLOWED_USER_ID":       c.allowedUserID,
	} {
		if value == "" {
			slog.Warn(key + " is not set")
			continue
		}
		slog.Debug("env", key, value)
	}
}

// Get PORT env, default to 3000
func (c *Config) GetPort() string {
	return c.port
}

// Get DISCORD_TOKEN env
func (c *Config) GetDiscordToken() string {
	return c.discordToken
}

// Get CLIENT_ID env
func (c *Config) GetDiscordClientID() string {
	return c.discordClientID
}

// Get GUILD_ID env, empty means every guild
func (c *Config) GetDiscordGuildID() string {
	return c.discordGuildID
}

func (c *Config) GetJoinChannelID() string {
	return c.joinChannelID
}

func (c *Config) GetBoostChannelID() string {
	return c.boostChannelID
}

func (c *Config) GetVerifiedRoleID() string {
	return c.verifiedRoleID
}

func (c *Config) GetVerifyLogChannelID() string {
	return c.verifyLogChannelID
}

// Get SUGGEST_CATEGORY_ID env
func (c *Config) GetTicketCategoryID() string {
	return c.ticketCategoryID
}

// Get ALLOWED_USER_ID env, the only user allowed to run admin prefix commands
func (c *Config) GetAllowedUserID() string {
	return c.allowedUserID
}

// Get COMMAND_PREFIX env, default to "!"
func (c *Config) GetCommandPrefix() string {
	return c.commandPrefix
}

// Get BUG_TYPES env, comma separated
func (c *Config) GetBugTypes() []string {
	return c.bugTypes
}

// Get ANNOUNCE_ROTATION env, default to random
func (c *Config) GetAnnounceRotation() announce.Mode {
	return c.announceRotation
}

// Get TICKET_RATE_LIMIT env, default to 30s, 0 disables the limit
func (c *Config) GetTicketRateLimit() time.Duration {
	return c.ticketRateLimit
}

// Get DATABASE_PATH env, default to ./sqlite.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get METRIC_COLLECTION_INTERVAL env, default to 10s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get TICKET_SWEEP_INTERVAL env, default to 10m
func (c *Config) GetTicketSweepInterval() time.Duration {
	return c.ticketSweepInterval
}

// IsTargetGuild reports whether guildID is the configured guild, or any guild if none is configured.
func (c *Config) IsTargetGuild(guildID string) bool {
	return c.discordGuildID == "" || c.discordGuildID == guildID
}

// IsAllowedUser reports whether userID may run the admin prefix commands.
func (c *Config) IsAllowedUser(userID string) bool {
	return c.allowedUserID != "" && c.allowedUserID == userID
}
