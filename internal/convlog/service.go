package convlog

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verdantlabs/voicerelay/internal/queue"
)

// consecutive insert failures before the service logs at error level.
const failureAlertThreshold = 5

// Service persists finished exchanges. Inserts run off the turn path;
// a failing database never blocks a device's conversation.
type Service struct {
	db           *pgxpool.Pool
	failureCount atomic.Int64
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) Insert(ctx context.Context, p queue.ConversationLogPayload) error {
	occurredAt := time.Unix(p.OccurredAt, 0).UTC()

	_, err := s.db.Exec(ctx,
		`INSERT INTO conversations
		   (device_id, user_text, reply_text, language, provider, input_method,
		    tool_name, duration_ms, total_batches, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.DeviceID, p.UserText, p.ReplyText, p.Language, p.Provider, p.InputMethod,
		nullable(p.ToolName), p.DurationMs, p.TotalBatches, occurredAt,
	)
	if err != nil {
		n := s.failureCount.Add(1)
		if n >= failureAlertThreshold {
			slog.Error("conversation log inserts failing repeatedly",
				"consecutive_failures", n,
				"device_id", p.DeviceID,
				"error", err,
			)
		}
		return fmt.Errorf("insert conversation: %w", err)
	}

	s.failureCount.Store(0)
	return nil
}

// ConsecutiveFailures reports the current failure streak.
func (s *Service) ConsecutiveFailures() int64 {
	return s.failureCount.Load()
}

// Recent returns the latest conversations for a device, newest first.
func (s *Service) Recent(ctx context.Context, deviceID string, limit int) ([]Conversation, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, device_id, user_text, reply_text, language, provider,
		        input_method, COALESCE(tool_name, ''), duration_ms, total_batches, occurred_at
		   FROM conversations
		  WHERE device_id = $1
		  ORDER BY occurred_at DESC
		  LIMIT $2`,
		deviceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(
			&c.ID, &c.DeviceID, &c.UserText, &c.ReplyText, &c.Language, &c.Provider,
			&c.InputMethod, &c.ToolName, &c.DurationMs, &c.TotalBatches, &c.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Conversation is one persisted exchange.
type Conversation struct {
	ID           int64     `json:"id"`
	DeviceID     string    `json:"device_id"`
	UserText     string    `json:"user_text"`
	ReplyText    string    `json:"reply_text"`
	Language     string    `json:"language"`
	Provider     string    `json:"provider"`
	InputMethod  string    `json:"input_method"`
	ToolName     string    `json:"tool_name,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	TotalBatches int       `json:"total_batches"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
