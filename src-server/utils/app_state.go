package utils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"proflare/src-server/announce"
	"proflare/src-server/discord"
	"proflare/src-server/model"
	"proflare/src-server/ticket"
	"proflare/src-server/verify"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// InteractionHandler handles slash commands, message components and modal
// submits. Only return an error when it's the backend's fault.
type InteractionHandler func(s discord.Session, i *discordgo.InteractionCreate) error

// PrefixCmdHandler handles a "<prefix><name> rest" message.
type PrefixCmdHandler func(s discord.Session, m *discordgo.MessageCreate, rest string) error

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

type AppState struct {
	Config    *Config
	RawDB     *sql.DB
	BunDB     *bun.DB
	DgSession *discordgo.Session
	// what handlers talk to; wraps DgSession outside of tests
	Session discord.Session

	Ledger        *verify.Ledger
	Tickets       *ticket.Lifecycle
	JoinRotation  *announce.Rotation
	BoostRotation *announce.Rotation
	TicketLimiter *UserLimiter

	MetricChans        *Metric
	AppCloseSignalChan chan os.Signal

	// will be send to Discord
	appCmdInfo map[string]*discordgo.ApplicationCommand
	// handling commands from Discord WSAPI
	appCmdHandler map[string]InteractionHandler
	// same as above but for msg components (buttons, dropdowns, etc)
	msgComponentHandler map[string]InteractionHandler
	// same as above but for modal (text input)
	modalHandler map[string]InteractionHandler
	// "!name" style commands in regular messages
	prefixCmdHandler map[string]PrefixCmdHandler

	gracefulShutdownChans []chan struct{}
	mu                    sync.RWMutex
	startedAt             time.Time
}

// NewAppState wires the real config, database and Discord session together.
func NewAppState() *AppState {
	config := NewConfig()

	rawDB, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=rwc", config.GetDatabasePath()))
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	rawDB.SetMaxIdleConns(8)

	bunDB := bun.NewDB(rawDB, sqlitedialect.New())
	bunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))
	if err := model.CreateSchema(context.Background(), bunDB); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}

	dgSession, err := discordgo.New("Bot " + config.GetDiscordToken())
	if err != nil {
		slog.Error("can't create discord session", "error", err)
		os.Exit(1)
	}
	dgSession.Identify.Intents = intents

	as := NewAppStateFrom(config, bunDB, discord.NewClient(dgSession))
	as.RawDB = rawDB
	as.DgSession = dgSession
	return as
}

// NewAppStateFrom builds an AppState around already opened dependencies.
// bunDB may be nil.
func NewAppStateFrom(config *Config, bunDB *bun.DB, session discord.Session) *AppState {
	as := &AppState{
		Config:  config,
		BunDB:   bunDB,
		Session: session,

		Ledger:        verify.NewLedger(),
		JoinRotation:  announce.NewRotation(config.GetAnnounceRotation(), announce.JoinTemplates),
		BoostRotation: announce.NewRotation(config.GetAnnounceRotation(), announce.BoostTemplates),
		TicketLimiter: NewUserLimiter(config.GetTicketRateLimit()),

		MetricChans:        NewMetric(),
		AppCloseSignalChan: make(chan os.Signal, 1),

		appCmdInfo:          make(map[string]*discordgo.ApplicationCommand),
		appCmdHandler:       make(map[string]InteractionHandler),
		msgComponentHandler: make(map[string]InteractionHandler),
		modalHandler:        make(map[string]InteractionHandler),
		prefixCmdHandler:    make(map[string]PrefixCmdHandler),

		startedAt: time.Now(),
	}

	ticketConfig := ticket.Config{
		CategoryID:   config.GetTicketCategoryID(),
		BugTypes:     config.GetBugTypes(),
		CloseCommand: config.GetCommandPrefix() + "close",
	}
	if bunDB != nil {
		as.Tickets = ticket.New(session, bunDB, ticketConfig)
	} else {
		as.Tickets = ticket.New(session, nil, ticketConfig)
	}

	return as
}

func (as *AppState) GetUptime() time.Duration {
	return time.Since(as.startedAt).Round(time.Second)
}

// #region - slash commands

func (as *AppState) AddAppCmdInfo(id string, info *discordgo.ApplicationCommand) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.appCmdInfo[id] = info
}

func (as *AppState) IterateAppCmdInfo(fn func(id string, info *discordgo.ApplicationCommand)) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	for id, info := range as.appCmdInfo {
		fn(id, info)
	}
}

// NukeAppCmdInfo drops the command definitions once they've been sent to Discord.
func (as *AppState) NukeAppCmdInfo() {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.appCmdInfo = make(map[string]*discordgo.ApplicationCommand)
}

func (as *AppState) AddAppCmdHandler(id string, handler InteractionHandler) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.appCmdHandler[id] = handler
}

func (as *AppState) GetAppCmdHandler(id string) (InteractionHandler, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	handler, ok := as.appCmdHandler[id]
	return handler, ok
}

// #endregion

// #region - message components & modals

// AddMsgComponentHandler registers a handler for a custom ID. An ID ending
// in ':' matches every custom ID starting with it, e.g. "bug:" handles "bug:Other".
func (as *AppState) AddMsgComponentHandler(id string, handler InteractionHandler) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.msgComponentHandler[id] = handler
}

func (as *AppState) GetMsgComponentHandler(customID string) (InteractionHandler, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return lookupCustomID(as.msgComponentHandler, customID)
}

// AddModalHandler works like AddMsgComponentHandler, for modal submits.
func (as *AppState) AddModalHandler(id string, handler InteractionHandler) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.modalHandler[id] = handler
}

func (as *AppState) GetModalHandler(customID string) (InteractionHandler, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return lookupCustomID(as.modalHandler, customID)
}

func lookupCustomID(handlers map[string]InteractionHandler, customID string) (InteractionHandler, bool) {
	if handler, ok := handlers[customID]; ok {
		return handler, true
	}
	if idx := strings.IndexByte(customID, ':'); idx >= 0 {
		handler, ok := handlers[customID[:idx+1]]
		return handler, ok
	}
	return nil, false
}

// CustomIDArg returns what follows the first ':' of a custom ID.
func CustomIDArg(customID string) string {
	if _, arg, ok := strings.Cut(customID, ":"); ok {
		return arg
	}
	return ""
}

// #endregion

// #region - prefix commands

func (as *AppState) AddPrefixCmdHandler(name string, handler PrefixCmdHandler) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.prefixCmdHandler[strings.ToLower(name)] = handler
}

func (as *AppState) GetPrefixCmdHandler(name string) (PrefixCmdHandler, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	handler, ok := as.prefixCmdHandler[strings.ToLower(name)]
	return handler, ok
}

// #endregion

// #region - shutdown

// CreateGracefulShutdownChan returns a channel closed by GracefulShutdown.
func (as *AppState) CreateGracefulShutdownChan() chan struct{} {
	as.mu.Lock()
	defer as.mu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, ch)
	return ch
}

func (as *AppState) GracefulShutdown() {
	as.mu.Lock()
	for _, ch := range as.gracefulShutdownChans {
		close(ch)
	}
	as.gracefulShutdownChans = nil
	as.mu.Unlock()

	if as.DgSession != nil {
		if err := as.DgSession.Close(); err != nil {
			slog.Warn("can't close discord session", "error", err)
		}
	}
	if as.BunDB != nil {
		if err := as.BunDB.Close(); err != nil {
			slog.Warn("can't close database", "error", err)
		}
	}
}

// #endregion
