package convlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/verdantlabs/voicerelay/internal/queue"
)

// Worker consumes conversation:log tasks. Returning an error hands the
// task back to asynq for its bounded retry schedule.
type Worker struct {
	service *Service
}

func NewWorker(service *Service) *Worker {
	return &Worker{service: service}
}

func (w *Worker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.ConversationLogPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		// Unparseable payloads never succeed on retry.
		return fmt.Errorf("unmarshal conversation log: %v: %w", err, asynq.SkipRetry)
	}

	if err := w.service.Insert(ctx, payload); err != nil {
		return err
	}

	slog.Debug("conversation logged",
		"device_id", payload.DeviceID,
		"input_method", payload.InputMethod,
	)
	return nil
}
