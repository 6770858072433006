package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"proflare/src-server/discord"
	"proflare/src-server/model"
	"proflare/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
)

const (
	WORKER_COUNT = 4
)

// StaleTickets periodically forgets tickets whose channel was deleted by hand,
// until the app shuts down.
func StaleTickets(as *utils.AppState) {
	if as.BunDB == nil {
		return
	}
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	ticker := time.NewTicker(as.Config.GetTicketSweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-gracefulShutdownCh:
			return
		case <-ticker.C:
			removed, err := SweepStaleTickets(context.Background(), as.BunDB, as.Session)
			if err != nil {
				slog.Error("StaleTickets: can't sweep tickets", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("stale tickets removed", "count", removed)
			}
		}
	}
}

// SweepStaleTickets checks every recorded ticket and deletes the ones whose
// channel no longer exists. Other lookup failures keep the row.
func SweepStaleTickets(ctx context.Context, db bun.IDB, session discord.Session) (int, error) {
	tickets := make([]model.Ticket, 0)
	if err := db.NewSelect().
		Model(&tickets).
		Column("id", "channel_id").
		Scan(ctx); err != nil {
		return 0, fmt.Errorf("SweepStaleTickets: can't get tickets: %w", err)
	}
	if len(tickets) == 0 {
		return 0, nil
	}

	jobs := make(chan model.Ticket, len(tickets))
	for _, ticket := range tickets {
		jobs <- ticket
	}
	close(jobs)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		stale []string
	)
	for range min(WORKER_COUNT, len(tickets)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticket := range jobs {
				_, err := session.Channel(ticket.ChannelID)
				switch {
				case err == nil:
					continue
				case discord.IsRESTErrorCode(err, discordgo.ErrCodeUnknownChannel):
					mu.Lock()
					stale = append(stale, ticket.ID)
					mu.Unlock()
				default:
					slog.Warn("SweepStaleTickets: can't check channel", "channel", ticket.ChannelID, "error", err)
				}
			}
		}()
	}
	wg.Wait()

	if len(stale) == 0 {
		return 0, nil
	}
	if _, err := db.NewDelete().
		Model((*model.Ticket)(nil)).
		Where("id IN (?)", bun.In(stale)).
		Exec(ctx); err != nil {
		return 0, fmt.Errorf("SweepStaleTickets: can't delete stale tickets: %w", err)
	}
	return len(stale), nil
}
