package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"proflare/src-server/handler"
	"proflare/src-server/handler/ticket_handler"
	"proflare/src-server/handler/verify_handler"
	"proflare/src-server/metric"
	"proflare/src-server/route"
	"proflare/src-server/scheduler"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	// There are 2 important things (and others) inside the AppState:
	// - appCmdInfo: a map of all slash commands
	// - the handler maps for slash commands, components, modals and prefix commands
	as := utils.NewAppState()

	// injecting handlers into the AppState
	handler.Ping(as)
	handler.ModLinks(as)
	handler.Message(as)
	ticket_handler.Init(as)
	verify_handler.Init(as)

	// tell discordgo how to route gateway events (w/ the handler maps)
	as.DgSession.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		handler.DispatchInteraction(as, as.Session, i)
	})
	as.DgSession.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		handler.DispatchMessage(as, as.Session, m)
	})
	as.DgSession.AddHandler(func(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
		handler.DispatchMemberAdd(as, as.Session, m)
	})
	as.DgSession.AddHandler(func(_ *discordgo.Session, m *discordgo.GuildMemberUpdate) {
		handler.DispatchMemberUpdate(as, as.Session, m)
	})
	as.DgSession.AddHandlerOnce(func(_ *discordgo.Session, r *discordgo.Ready) {
		slog.Info("bot online", "username", r.User.String(), "guilds", len(r.Guilds))
	})

	// open a connection to Discord
	if err := as.DgSession.Open(); err != nil {
		slog.Error("can't open connection to discord", "error", err)
		os.Exit(1)
	}

	// tell Discord what commands we have (w/ appCmdInfo), as a global list
	if _, err := as.DgSession.ApplicationCommandBulkOverwrite(
		as.Config.GetDiscordClientID(),
		"",
		func() []*discordgo.ApplicationCommand {
			var cmds []*discordgo.ApplicationCommand
			as.IterateAppCmdInfo(func(k string, v *discordgo.ApplicationCommand) {
				cmds = append(cmds, v)
			})
			return cmds
		}()); err != nil {
		slog.Error("can't create slash commands", "error", err.Error())
	}

	// cleanup appCmdInfo from memory
	as.NukeAppCmdInfo()
	runtime.GC()

	metric.Init(as)
	go scheduler.StaleTickets(as)

	// http server
	go func() {
		muxer := http.NewServeMux()
		muxer.Handle("GET /metrics", promhttp.Handler())
		route.Health(muxer)
		if err := http.ListenAndServe(":"+as.Config.GetPort(), route.LogMiddleware(muxer)); err != nil {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit")

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan

	slog.Info("Gracefully shutting down...")
	as.GracefulShutdown()
}
