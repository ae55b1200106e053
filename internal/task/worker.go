package task

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Sender interface {
	Send(to, subject, body string) error
}

type Worker struct {
	queue  *Queue
	sender Sender
}

func NewWorker(queue *Queue, sender Sender) *Worker {
	return &Worker{
		queue:  queue,
		sender: sender,
	}
}

// Run processes tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		t, payload, err := w.queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			zap.L().Error("task dequeue failed", zap.Error(err))
			time.Sleep(time.Second)

			continue
		}
		if t == nil {
			if ctx.Err() != nil {
				return
			}

			continue
		}

		if err = w.Handle(t); err != nil {
			// The payload stays on the processing list for inspection.
			zap.L().Error("task failed",
				zap.String("type", t.Type),
				zap.Uint("event_id", t.EventID),
				zap.Error(err))

			continue
		}

		if err = w.queue.Ack(ctx, payload); err != nil {
			zap.L().Error("task ack failed", zap.Error(err))
		}
	}
}

func (w *Worker) Handle(t *Task) error {
	switch t.Type {
	case TypePublishEmail:
		if err := w.sender.Send(t.Recipient, t.Subject, t.Message); err != nil {
			return fmt.Errorf("w.sender.Send -> %w", err)
		}

		return nil
	default:
		return fmt.Errorf("unknown task type %q", t.Type)
	}
}
