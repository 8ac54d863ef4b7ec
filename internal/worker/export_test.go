package worker

import (
	"context"

	"basegraph.app/correlate/internal/queue"
)

// HandleFailedMessage exposes the retry policy to the external test package.
func (w *Worker) HandleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	w.handleFailedMessage(ctx, msg, err)
}
