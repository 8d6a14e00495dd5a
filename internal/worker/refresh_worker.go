// Package worker keeps cached dashboard snapshots fresh by reacting to
// table change notifications.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"wisewallet/internal/amqp"
	"wisewallet/internal/cache"
	"wisewallet/internal/log"
	"wisewallet/internal/services"
)

// refreshTimeout bounds a single snapshot recomputation.
const refreshTimeout = 10 * time.Second

// RefreshWorker invalidates and recomputes dashboard snapshots when a
// table change arrives. Changes for the same owner within the debounce
// window collapse into a single recomputation.
type RefreshWorker struct {
	reconcile *services.Reconciler
	snapshots *cache.SnapshotCache
	debounce  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

func NewRefreshWorker(reconcile *services.Reconciler, snapshots *cache.SnapshotCache, debounce time.Duration) *RefreshWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &RefreshWorker{
		reconcile: reconcile,
		snapshots: snapshots,
		debounce:  debounce,
		ctx:       ctx,
		cancel:    cancel,
		pending:   make(map[string]*time.Timer),
	}
}

// HandleTableChanged processes a single change notification. The owner's
// cached snapshots are invalidated immediately; the recomputation runs
// after the debounce window so bursts of writes cost one refresh.
func (w *RefreshWorker) HandleTableChanged(msg *amqp.TableChangedMessage) error {
	if msg.OwnerID == "" {
		slog.Warn("Dropping change notification without owner",
			log.FieldComponent, log.ComponentWorker,
			log.FieldTable, msg.Table,
			log.FieldOperation, msg.Op)
		return nil
	}

	generation := w.snapshots.Invalidate(msg.OwnerID)
	slog.Info("Snapshot invalidated",
		log.FieldComponent, log.ComponentWorker,
		log.FieldTable, msg.Table,
		log.FieldOperation, msg.Op,
		log.FieldGeneration, generation)

	if w.debounce <= 0 {
		return w.refresh(msg.OwnerID)
	}

	w.scheduleRefresh(msg.OwnerID)
	return nil
}

// scheduleRefresh arms or extends the owner's debounce timer.
func (w *RefreshWorker) scheduleRefresh(ownerID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[ownerID]; ok {
		timer.Reset(w.debounce)
		return
	}

	w.wg.Add(1)
	w.pending[ownerID] = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()

		w.mu.Lock()
		delete(w.pending, ownerID)
		w.mu.Unlock()

		if w.ctx.Err() != nil {
			return
		}
		if err := w.refresh(ownerID); err != nil {
			slog.Error("Snapshot refresh failed", "error", err)
		}
	})
}

// refresh recomputes the current month's snapshot for one owner. A result
// computed against a stale generation is discarded.
func (w *RefreshWorker) refresh(ownerID string) error {
	ctx, cancel := context.WithTimeout(w.ctx, refreshTimeout)
	defer cancel()

	generation := w.snapshots.Generation(ownerID)
	now := time.Now()

	summary, err := w.reconcile.MonthSummary(ctx, ownerID, now)
	if err != nil {
		return fmt.Errorf("recompute month summary: %w", err)
	}

	if !w.snapshots.Put(ownerID, now.Year(), now.Month(), summary, generation) {
		slog.Debug("Stale snapshot discarded after refresh", log.FieldGeneration, generation)
		return nil
	}

	slog.Info("Snapshot refreshed",
		log.FieldComponent, log.ComponentWorker,
		log.FieldYear, now.Year(),
		log.FieldMonth, int(now.Month()),
		"transactions", len(summary.Transactions),
		"effective_budget_cents", summary.EffectiveBudget.Cents)
	return nil
}

// Stop cancels in-flight refreshes and waits for armed timers to drain.
func (w *RefreshWorker) Stop() {
	w.cancel()

	w.mu.Lock()
	for ownerID, timer := range w.pending {
		if timer.Stop() {
			w.wg.Done()
		}
		delete(w.pending, ownerID)
	}
	w.mu.Unlock()

	w.wg.Wait()
}
