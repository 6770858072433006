package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type VerifiedUser struct {
	bun.BaseModel `bun:"table:verified_users"`

	UserID     string    `bun:"user_id,pk"`          // required
	Username   string    `bun:"username,notnull"`    // required
	GuildCount int       `bun:"guild_count,notnull"` // guilds the role was granted in
	VerifiedAt time.Time `bun:"verified_at,notnull"` // required
}

func (v *VerifiedUser) Upsert(ctx context.Context, db bun.IDB) error {
	if v.UserID == "" {
		return fmt.Errorf("(*VerifiedUser).Upsert: user id is empty")
	}
	if v.VerifiedAt.IsZero() {
		v.VerifiedAt = time.Now().UTC()
	}

	if _, err := db.NewInsert().
		Model(v).
		On("CONFLICT (user_id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("guild_count = EXCLUDED.guild_count").
		Set("verified_at = EXCLUDED.verified_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*VerifiedUser).Upsert: %w", err)
	}
	return nil
}
