package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/incident-tracker/internal/core/domain"
	"github.com/sirpyerre/incident-tracker/internal/core/ports"
	"github.com/sirpyerre/incident-tracker/pkg/metrics"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
	defaultTimeout = 10 * time.Second

	subjectIncidentCreated = "New Incident Created"
)

var _ ports.Notifier = (*Dispatcher)(nil)

// Options tunes the dispatcher. Zero values fall back to the defaults.
type Options struct {
	Workers    int
	Buffer     int
	Timeout    time.Duration
	Recipients []string
	// SenderName labels delivery metrics (e.g. "smtp").
	SenderName string
}

// Dispatcher delivers incident notifications on a fixed pool of workers.
// Notify never blocks: when the buffer is full the notification is dropped
// and counted. Deliveries run detached from the request that produced them,
// each bounded by Options.Timeout.
type Dispatcher struct {
	jobs    chan ports.Notification
	sender  ports.NotificationSender
	opts    Options
	log     zerolog.Logger
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

func NewDispatcher(sender ports.NotificationSender, opts Options, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Buffer <= 0 {
		opts.Buffer = channelBuffer
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.SenderName == "" {
		opts.SenderName = "unknown"
	}
	return &Dispatcher{
		jobs:   make(chan ports.Notification, opts.Buffer),
		sender: sender,
		opts:   opts,
		log:    log,
	}
}

// Start launches the worker goroutines. Workers exit when ctx is cancelled
// or after Stop has drained the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
}

// Notify renders the announcement for incident and queues it.
func (d *Dispatcher) Notify(incident domain.Incident) {
	n := Render(incident, d.opts.Recipients)

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Int64("incident_id", incident.ID).Msg("notifier stopped, notification dropped")
		return
	}

	select {
	case d.jobs <- n:
		metrics.NotificationsQueueDepth.Inc()
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Int64("incident_id", incident.ID).Msg("notification queue full, notification dropped")
	}
}

// Stop refuses new notifications and waits for queued ones to be delivered,
// giving up when ctx expires.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notifier drain: %w", ctx.Err())
	}
}

// Render builds the announcement sent for a newly created incident.
func Render(incident domain.Incident, recipients []string) ports.Notification {
	return ports.Notification{
		Subject:    subjectIncidentCreated,
		Body:       fmt.Sprintf("New incident: %s\nDescription: %s", incident.Title, incident.Description),
		Recipients: recipients,
		IncidentID: incident.ID,
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-d.jobs:
			if !ok {
				return
			}
			metrics.NotificationsQueueDepth.Dec()
			d.deliver(id, n)
		}
	}
}

func (d *Dispatcher) deliver(workerID int, n ports.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
	defer cancel()

	start := time.Now()
	err := d.sender.Send(ctx, n)
	metrics.NotificationDuration.WithLabelValues(d.opts.SenderName).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Int64("incident_id", n.IncidentID).
			Int("worker_id", workerID).
			Msg("notification delivery failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	d.log.Debug().Int64("incident_id", n.IncidentID).Msg("notification sent")
}
