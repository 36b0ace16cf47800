package audit

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/uptrace/bun"
	"golang.org/x/crypto/blake2b"

	"microsling/infrastructure/sqlite"
	"microsling/models"
)

// Entry describes one render invocation before it is stored.
type Entry struct {
	RequestID   string
	Action      string
	Outcome     string
	Title       string
	Body        string
	ContentType string
	Escaped     bool
}

// Service writes render audit rows.
type Service struct {
	now func() time.Time
}

func NewService() *Service {
	return &Service{now: time.Now}
}

// Write inserts the entry inside the caller transaction. The body itself is
// not stored, only its length and BLAKE2b-256 digest.
func (s *Service) Write(ctx context.Context, tx bun.Tx, e Entry) error {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	row := &models.RenderAudit{
		RequestID:   e.RequestID,
		Action:      e.Action,
		Outcome:     e.Outcome,
		Title:       e.Title,
		BodyLength:  int64(len(e.Body)),
		ContentType: e.ContentType,
		Escaped:     e.Escaped,
		CreatedAt:   now().UTC(),
	}
	if e.Body != "" {
		row.BodyDigest = Digest(e.Body)
	}
	_, err := tx.NewInsert().Model(row).Exec(ctx)
	return err
}

// Record writes the entry in its own write transaction.
func (s *Service) Record(ctx context.Context, db *sqlite.DB, e Entry) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return s.Write(ctx, tx, e)
	})
}

// Digest returns the hex BLAKE2b-256 digest of body.
func Digest(body string) string {
	sum := blake2b.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
