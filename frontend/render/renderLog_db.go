package render

import (
	"context"

	"github.com/uptrace/bun"

	"microsling/infrastructure/sqlite"
	"microsling/models"
)

const (
	DefaultRenderLogLimit = 20
	MaxRenderLogLimit     = 200
)

// LoadRenderLog returns the newest audit rows first.
func LoadRenderLog(ctx context.Context, db *sqlite.DB, limit int) ([]models.RenderAudit, error) {
	if limit <= 0 {
		limit = DefaultRenderLogLimit
	}
	if limit > MaxRenderLogLimit {
		limit = MaxRenderLogLimit
	}

	rows := make([]models.RenderAudit, 0, limit)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&rows).
			OrderExpr("ra.created_at DESC, ra.id DESC").
			Limit(limit).
			Scan(ctx)
	})
	return rows, err
}
