package model

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// An open ticket channel. The row lives as long as the channel does.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID        string    `bun:"id,pk"`                     // required
	ChannelID string    `bun:"channel_id,notnull,unique"` // required
	GuildID   string    `bun:"guild_id,notnull"`          // required
	Name      string    `bun:"name,notnull"`              // required
	Kind      string    `bun:"kind,notnull"`              // required
	OpenerID  string    `bun:"opener_id,notnull"`         // required
	Title     string    `bun:"title"`                     // optional
	Body      string    `bun:"body"`                      // optional
	CreatedAt time.Time `bun:"created_at,notnull"`        // required
}

func (t *Ticket) Insert(ctx context.Context, db bun.IDB) error {
	if t.ChannelID == "" {
		return fmt.Errorf("(*Ticket).Insert: channel id is required")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	if _, err := db.NewInsert().
		Model(t).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Ticket).Insert: %w", err)
	}
	return nil
}

// DeleteTicketByChannel removes the ticket bound to channelID, if any.
func DeleteTicketByChannel(ctx context.Context, db bun.IDB, channelID string) error {
	if _, err := db.NewDelete().
		Model((*Ticket)(nil)).
		Where("channel_id = ?", channelID).
		Exec(ctx); err != nil {
		return fmt.Errorf("DeleteTicketByChannel: %w", err)
	}
	return nil
}

func TicketNameTaken(ctx context.Context, db bun.IDB, guildID, name string) (bool, error) {
	exists, err := db.NewSelect().
		Model((*Ticket)(nil)).
		Where("guild_id = ?", guildID).
		Where("name = ?", name).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("TicketNameTaken: %w", err)
	}
	return exists, nil
}
