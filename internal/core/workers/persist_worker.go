package workers

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/metrics"
)

const DefaultQueueSize = 100

type HistoryWriter interface {
	Write(ctx context.Context, userID string, history domain.History) error
}

type PersistJob struct {
	UserID  string
	History domain.History
}

// FailureFunc is told about every write-back that did not make it to the store.
type FailureFunc func(userID string, err error)

// PersistWorker writes whole history documents in the background.
// Enqueue never blocks the caller.
type PersistWorker struct {
	repo      HistoryWriter
	jobs      chan PersistJob
	onFailure FailureFunc
	metrics   *metrics.Metrics
	done      chan struct{}
}

func NewPersistWorker(repo HistoryWriter, queueSize int, onFailure FailureFunc) *PersistWorker {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &PersistWorker{
		repo:      repo,
		jobs:      make(chan PersistJob, queueSize),
		onFailure: onFailure,
		metrics:   metrics.New(),
		done:      make(chan struct{}),
	}
}

// SetFailureHandler replaces the failure callback. Call it before Start.
func (w *PersistWorker) SetFailureHandler(fn FailureFunc) {
	w.onFailure = fn
}

func (w *PersistWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		log.Info("[PERSIST] worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.drain()
				log.Info("[PERSIST] worker shutting down")
				return
			}
		}
	}()
}

// Wait blocks until a started worker has drained its queue after ctx was cancelled.
func (w *PersistWorker) Wait() {
	<-w.done
}

// Enqueue schedules a write of history. The snapshot must not be mutated afterwards.
func (w *PersistWorker) Enqueue(userID string, history domain.History) bool {
	select {
	case w.jobs <- PersistJob{UserID: userID, History: history}:
		return true
	default:
		log.Warnf("[PERSIST] queue full, dropping write for user %s", userID)
		w.metrics.PersistDroppedTotal.Inc()
		return false
	}
}

// drain flushes what is already queued with a fresh context so shutdown does not lose the last writes.
func (w *PersistWorker) drain() {
	for {
		select {
		case job := <-w.jobs:
			w.processJob(context.Background(), job)
		default:
			return
		}
	}
}

func (w *PersistWorker) processJob(ctx context.Context, job PersistJob) {
	if err := w.repo.Write(ctx, job.UserID, job.History); err != nil {
		log.Errorf("[PERSIST] write failed for user %s: %v", job.UserID, err)
		w.metrics.PersistTotal.WithLabelValues("error").Inc()
		if w.onFailure != nil {
			w.onFailure(job.UserID, err)
		}
		return
	}

	w.metrics.PersistTotal.WithLabelValues("ok").Inc()
	log.Debugf("[PERSIST] history saved for user %s (%d days)", job.UserID, len(job.History))
}
