// Package notification delivers workflow emails to reporters and unit
// mailboxes. Everything here is fire-and-forget: Enqueue never blocks and
// a delivery failure is logged and counted, never surfaced to the caller.
package notification

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/disnaker/sipelan/internal/shared/metrics"
)

// EmailProvider interface for email delivery backends
type EmailProvider interface {
	Send(ctx context.Context, n *Notification) error
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Workers       int
	BufferSize    int
	RetryAttempts int
	RetryDelay    time.Duration
	SendTimeout   time.Duration
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Workers:       4,
		BufferSize:    256,
		RetryAttempts: 3,
		RetryDelay:    10 * time.Second,
		SendTimeout:   15 * time.Second,
	}
}

// Service is the notification service
type Service struct {
	provider EmailProvider
	config   ServiceConfig

	notifCh chan *Notification

	mu      sync.Mutex
	stats   Stats
	started bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewService creates a new notification service
func NewService(provider EmailProvider, config ServiceConfig) *Service {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1
	}
	return &Service{
		provider: provider,
		config:   config,
		notifCh:  make(chan *Notification, config.BufferSize),
		stopCh:   make(chan struct{}),
	}
}

// Start starts the delivery workers
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("notification service already started")
	}
	s.started = true
	s.mu.Unlock()

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	return nil
}

// Stop drains nothing: queued notifications not yet picked up are dropped.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
}

// Enqueue queues a notification for delivery without blocking. A full
// buffer drops the notification; the workflow transition it belongs to has
// already committed and must not be held up.
func (s *Service) Enqueue(n *Notification) {
	if n == nil || n.Recipient == "" {
		return
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.Status = StatusPending
	n.CreatedAt = time.Now()

	select {
	case s.notifCh <- n:
		s.mu.Lock()
		s.stats.Enqueued++
		s.mu.Unlock()
	default:
		s.mu.Lock()
		s.stats.Dropped++
		s.mu.Unlock()
		log.Printf("notification buffer full, dropping %s for %s", n.Kind, n.ComplaintCode)
		metrics.RecordNotification(string(n.Kind), false)
	}
}

// GetStats returns a snapshot of delivery counters
func (s *Service) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Service) worker(ctx context.Context, id int) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case n := <-s.notifCh:
			s.deliver(ctx, n)
		}
	}
}

func (s *Service) deliver(ctx context.Context, n *Notification) {
	var err error
	for attempt := 0; attempt <= s.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			n.RetryCount = attempt
			select {
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			case <-time.After(s.config.RetryDelay):
			}
		}

		sendCtx, cancel := context.WithTimeout(ctx, s.config.SendTimeout)
		err = s.provider.Send(sendCtx, n)
		cancel()

		if err == nil {
			now := time.Now()
			n.Status = StatusSent
			n.SentAt = &now
			s.mu.Lock()
			s.stats.Sent++
			s.mu.Unlock()
			metrics.RecordNotification(string(n.Kind), true)
			return
		}
	}

	n.Status = StatusFailed
	n.ErrorMessage = err.Error()
	s.mu.Lock()
	s.stats.Failed++
	s.mu.Unlock()
	log.Printf("notification %s for %s failed after %d attempts: %v", n.Kind, n.ComplaintCode, n.RetryCount+1, err)
	metrics.RecordNotification(string(n.Kind), false)
}
