package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Render audit outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeMalformedInput = "malformed_input"
	OutcomeTooLarge       = "too_large"
)

// RenderAudit records one invocation of the render action host.
type RenderAudit struct {
	bun.BaseModel `bun:"table:render_audits,alias:ra"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	RequestID   string    `bun:"request_id,notnull" json:"request_id"`
	Action      string    `bun:"action,notnull" json:"action"`
	Outcome     string    `bun:"outcome,notnull" json:"outcome"`
	Title       string    `bun:"title,notnull" json:"title"`
	BodyDigest  string    `bun:"body_digest,notnull" json:"body_digest"`
	BodyLength  int64     `bun:"body_length,notnull" json:"body_length"`
	ContentType string    `bun:"content_type,notnull" json:"content_type"`
	Escaped     bool      `bun:"escaped,notnull,default:false" json:"escaped"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
