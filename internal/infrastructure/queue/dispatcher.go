package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/washhub/carwash-web/internal/api/metrics"
	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	drainTimeout   = 5 * time.Second
)

// Dispatcher persists audit records off the request path. Records are routed
// to a fixed set of workers using consistent hashing on the subject, so the
// trail of one booking is written in the order it was recorded.
type Dispatcher struct {
	workers []chan domain.AuditRecord
	repo    ports.AuditRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditRecord, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditRecord, channelBuffer)
	}
	return d
}

var _ ports.AuditSink = (*Dispatcher)(nil)

// Start launches all worker goroutines. When ctx is cancelled each worker
// flushes what is already queued and exits; Wait blocks until they are done.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record queues rec on the worker responsible for its subject. It never
// blocks: when that worker's queue is full the record is dropped.
func (d *Dispatcher) Record(rec domain.AuditRecord) {
	idx := d.shardIndex(rec.Subject)
	select {
	case d.workers[idx] <- rec:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditWritesTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("kind", string(rec.Kind)).
			Str("subject", rec.Subject).
			Int("worker_id", idx).
			Msg("audit queue full, record dropped")
	}
}

// ListenAuth adapts the dispatcher to an auth-provider subscription.
func (d *Dispatcher) ListenAuth(ev ports.AuthEvent) {
	if ev.UserID == "" {
		return
	}
	d.Record(domain.AuditRecord{
		Kind:    domain.AuditAuthEvent,
		Subject: ev.UserID,
		Actor:   ev.UserID,
		To:      string(ev.Type),
		At:      time.Now().UTC(),
	})
}

// shardIndex maps a subject deterministically to a worker index.
func (d *Dispatcher) shardIndex(subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subject))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditRecord) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case rec := <-ch:
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.write(ctx, id, rec)
		}
	}
}

func (d *Dispatcher) drain(id int, ch <-chan domain.AuditRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case rec := <-ch:
			d.write(ctx, id, rec)
		default:
			return
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, id int, rec domain.AuditRecord) {
	if err := d.repo.Insert(ctx, &rec); err != nil {
		metrics.AuditWritesTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("kind", string(rec.Kind)).
			Str("subject", rec.Subject).
			Int("worker_id", id).
			Msg("audit write failed")
		return
	}
	metrics.AuditWritesTotal.WithLabelValues("ok").Inc()
}
