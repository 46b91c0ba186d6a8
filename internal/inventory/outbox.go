package inventory

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
	"github.com/Vanityerp/Vanity-hub-sub002/internal/store"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultBatchSize    = 50
	maxDeliveryAttempts = 5
)

// RecordRetrier re-attempts transaction records whose initial persist failed.
// Satisfied by the service layer's retry queue.
type RecordRetrier interface {
	RetryPendingRecords(ctx context.Context) int
}

// Worker drains pending inventory movements on a fixed tick, applying each as
// an atomic conditional stock decrement. Delivery is at-least-once: a movement
// that keeps failing is parked as failed after maxDeliveryAttempts so one bad
// row cannot wedge the queue.
type Worker struct {
	repo         store.Repository
	retrier      RecordRetrier
	pollInterval time.Duration
	batchSize    int
}

func NewWorker(repo store.Repository, retrier RecordRetrier, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Worker{
		repo:         repo,
		retrier:      retrier,
		pollInterval: pollInterval,
		batchSize:    defaultBatchSize,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	log.Printf("[inventory] outbox worker started, poll interval %s", w.pollInterval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[inventory] outbox worker stopped")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick processes one batch. Exported so tests and the startup path can drive
// the worker without the ticker.
func (w *Worker) Tick(ctx context.Context) {
	if w.retrier != nil {
		if recovered := w.retrier.RetryPendingRecords(ctx); recovered > 0 {
			log.Printf("[inventory] recovered %d queued transaction records", recovered)
		}
	}

	movements, err := w.repo.ListPendingMovements(ctx, w.batchSize)
	if err != nil {
		log.Printf("[inventory] WARN: failed to list pending movements: %v", err)
		return
	}

	for _, movement := range movements {
		w.deliver(ctx, movement)
	}
}

func (w *Worker) deliver(ctx context.Context, movement domain.InventoryMovement) {
	qty := -movement.QuantityDelta
	if qty <= 0 {
		// Only decrements flow through the outbox today.
		log.Printf("[inventory] WARN: skipping movement %s with non-negative delta %d", movement.ID, movement.QuantityDelta)
		if err := w.repo.MarkMovementFailed(ctx, movement.ID, movement.Attempts+1, true); err != nil {
			log.Printf("[inventory] WARN: failed to park movement %s: %v", movement.ID, err)
		}
		return
	}

	err := w.repo.DecrementStock(ctx, movement.ProductID, qty)
	if err == nil {
		if err := w.repo.MarkMovementDelivered(ctx, movement.ID, time.Now().UTC()); err != nil {
			// Next tick redelivers. At-least-once, so the decrement may
			// apply twice; the conditional update still stops stock from
			// going negative.
			log.Printf("[inventory] WARN: delivered movement %s but failed to mark it: %v", movement.ID, err)
		}
		return
	}

	attempts := movement.Attempts + 1
	parked := attempts >= maxDeliveryAttempts || errors.Is(err, store.ErrInsufficientStock) || errors.Is(err, store.ErrNotFound)
	if parked {
		log.Printf("[inventory] WARN: parking movement %s for product %s after %d attempts: %v", movement.ID, movement.ProductID, attempts, err)
	} else {
		log.Printf("[inventory] WARN: delivery attempt %d failed for movement %s: %v", attempts, movement.ID, err)
	}
	if markErr := w.repo.MarkMovementFailed(ctx, movement.ID, attempts, parked); markErr != nil {
		log.Printf("[inventory] WARN: failed to update movement %s after delivery error: %v", movement.ID, markErr)
	}
}
