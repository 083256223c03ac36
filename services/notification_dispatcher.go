package services

import (
	"context"
	"sync"
	"time"

	"coliseumAPI/internal/metrics"
	"coliseumAPI/internal/types/notification"

	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, ev notification.Event) error
}

const (
	dispatchQueueSize    = 100
	dispatchEnqueueWait  = 5 * time.Second
	dispatchNotifyBudget = 10 * time.Second
)

// NotificationDispatcher is the post-commit outbox. Workflows publish events after
// their write succeeded; workers deliver them and only log failures.
type NotificationDispatcher struct {
	notifier Notifier
	log      *zap.SugaredLogger
	workers  int
	jobQueue chan notification.Event
	wg       sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewNotificationDispatcher(notifier Notifier, workers int, log *zap.SugaredLogger) *NotificationDispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &NotificationDispatcher{
		notifier: notifier,
		log:      log,
		workers:  workers,
		jobQueue: make(chan notification.Event, dispatchQueueSize),
	}
	d.startWorkers()
	return d
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

func (d *NotificationDispatcher) worker(id int) {
	defer d.wg.Done()
	for ev := range d.jobQueue {
		d.process(id, ev)
	}
}

func (d *NotificationDispatcher) process(worker int, ev notification.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchNotifyBudget)
	defer cancel()

	if err := d.notifier.Notify(ctx, ev); err != nil {
		metrics.NotificationsDispatched.WithLabelValues(string(ev.Type), "failed").Inc()
		d.log.Warnw("Notification delivery failed",
			"worker", worker, "type", ev.Type, "recipient", ev.RecipientID, "error", err)
		return
	}
	metrics.NotificationsDispatched.WithLabelValues(string(ev.Type), "sent").Inc()
}

// Publish queues an event. A full queue drops the event after a short wait; the
// triggering write has already committed either way.
func (d *NotificationDispatcher) Publish(ctx context.Context, ev notification.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.NotificationsDispatched.WithLabelValues(string(ev.Type), "dropped").Inc()
		d.log.Warnw("Notification dropped: dispatcher stopped", "type", ev.Type, "recipient", ev.RecipientID)
		return
	}

	select {
	case d.jobQueue <- ev:
		return
	default:
	}

	timer := time.NewTimer(dispatchEnqueueWait)
	defer timer.Stop()

	select {
	case d.jobQueue <- ev:
	case <-timer.C:
		metrics.NotificationsDispatched.WithLabelValues(string(ev.Type), "dropped").Inc()
		d.log.Warnw("Notification dropped: queue full", "type", ev.Type, "recipient", ev.RecipientID)
	case <-ctx.Done():
		metrics.NotificationsDispatched.WithLabelValues(string(ev.Type), "dropped").Inc()
		d.log.Warnw("Notification dropped: request cancelled", "type", ev.Type, "recipient", ev.RecipientID)
	}
}

// Stop refuses new events, delivers everything already queued and waits for the
// workers to exit.
func (d *NotificationDispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobQueue)
	d.mu.Unlock()

	d.wg.Wait()
	d.log.Info("Notification dispatcher stopped")
}
