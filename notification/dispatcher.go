// Package notification delivers mail and fans activity entries out to
// sinks without blocking the request that produced them.
package notification

import (
	"fmt"
	"html/template"
	"sync"

	"enquiry-app/models"

	"go.uber.org/zap"
)

type Publisher interface {
	Publish(entries ...models.ActivityLog)
}

type Sink interface {
	Deliver(entry models.ActivityLog) error
}

type Dispatcher struct {
	queue chan models.ActivityLog
	sinks []Sink
	log   *zap.Logger
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(log *zap.Logger, buffer int, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{
		queue: make(chan models.ActivityLog, buffer),
		sinks: sinks,
		log:   log,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for entry := range d.queue {
		for _, s := range d.sinks {
			if err := s.Deliver(entry); err != nil {
				d.log.Warn("activity delivery failed",
					zap.String("entity_type", entry.EntityType),
					zap.String("entity_id", entry.EntityID.String()),
					zap.Error(err))
			}
		}
	}
}

// Publish never blocks; entries are dropped when the queue is full or the
// dispatcher is closed.
func (d *Dispatcher) Publish(entries ...models.ActivityLog) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("activity dispatcher closed, dropping entries", zap.Int("count", len(entries)))
		return
	}
	for _, e := range entries {
		select {
		case d.queue <- e:
		default:
			d.log.Warn("activity queue full, dropping entry", zap.String("action", e.ActionName))
		}
	}
}

// Close drains the queue and waits for the worker.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Deliver(e models.ActivityLog) error {
	s.log.Info("activity",
		zap.String("entity_type", e.EntityType),
		zap.String("entity_id", e.EntityID.String()),
		zap.Int("performed_by", e.PerformedBy),
		zap.String("performed_by_email", e.PerformedByEmail),
		zap.String("action", e.ActionName),
		zap.Time("timestamp", e.CreatedAt))
	return nil
}

// MailSink forwards activity to a fixed list of watchers.
type MailSink struct {
	mailer     Mailer
	recipients []string
}

func NewMailSink(mailer Mailer, recipients []string) *MailSink {
	return &MailSink{mailer: mailer, recipients: recipients}
}

func (s *MailSink) Deliver(e models.ActivityLog) error {
	if len(s.recipients) == 0 {
		return nil
	}
	subject := fmt.Sprintf("[%s %s] activity", e.EntityType, e.EntityID)
	body := fmt.Sprintf("<html><body><p>%s</p></body></html>", template.HTMLEscapeString(e.ActionName))
	return s.mailer.Send(s.recipients, subject, body)
}

// Discard drops everything; handy in tests and CLI tools.
type Discard struct{}

func (Discard) Publish(...models.ActivityLog) {}
