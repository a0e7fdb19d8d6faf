package queue

const (
	TypeConversationLog = "conversation:log"
)

// ConversationLogPayload records one finished exchange for persistence.
type ConversationLogPayload struct {
	DeviceID     string `json:"device_id"`
	UserText     string `json:"user_text"`
	ReplyText    string `json:"reply_text"`
	Language     string `json:"language"`
	Provider     string `json:"provider"`
	InputMethod  string `json:"input_method"` // "text" or "voice"
	ToolName     string `json:"tool_name,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
	TotalBatches int    `json:"total_batches"`
	OccurredAt   int64  `json:"occurred_at"` // unix seconds
}
