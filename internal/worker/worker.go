package worker

import (
	"context"
)

// Worker - фоновая задача под управлением WorkerManager
type Worker interface {
	// Start блокируется до отмены ctx или Stop
	Start(ctx context.Context) error

	Stop() error

	Name() string
}
