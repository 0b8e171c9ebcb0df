package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gnezdo/gnezdo/internal/booking"
	"github.com/gnezdo/gnezdo/internal/logger"
	"github.com/gnezdo/gnezdo/internal/metrics"
	"github.com/gnezdo/gnezdo/internal/utils"
)

// Event types sent to the configured webhook.
const (
	EventBookingCreated = "booking.created"
	EventBookingDeleted = "booking.deleted"
)

// Event is the payload posted on every booking mutation.
type Event struct {
	Type       string         `json:"event"`
	TenantID   string         `json:"tenant_id"`
	PropertyID string         `json:"property_id"`
	BookingID  string         `json:"booking_id"`
	StartDate  booking.Date   `json:"start_date"`
	EndDate    booking.Date   `json:"end_date"`
	Source     booking.Source `json:"source"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Notifier delivers booking-mutation events to an external URL,
// fire-and-forget: delivery failures are logged and counted, never surfaced
// to the request that caused them. A full queue drops the event.
type Notifier struct {
	url    string
	client *http.Client
	logger logger.Logger
	queue  chan Event
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewNotifier creates a notifier posting to url. An empty url disables
// delivery entirely; Notify becomes a no-op.
func NewNotifier(url string, timeout time.Duration, queueSize int, log logger.Logger) *Notifier {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: log,
		queue:  make(chan Event, queueSize),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool { return n.url != "" }

// Start launches the delivery worker.
func (n *Notifier) Start(ctx context.Context) {
	if !n.Enabled() {
		close(n.doneCh)
		return
	}

	go func() {
		defer close(n.doneCh)
		for {
			select {
			case ev := <-n.queue:
				n.deliver(ctx, ev)
			case <-n.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the delivery worker. Queued events are abandoned; the contract
// is best-effort.
func (n *Notifier) Stop() {
	if !n.Enabled() {
		return
	}
	close(n.stopCh)
	<-n.doneCh
}

// Notify enqueues an event without blocking the caller.
func (n *Notifier) Notify(ev Event) {
	if !n.Enabled() {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	select {
	case n.queue <- ev:
	default:
		metrics.IncWebhookDropped()
		n.logger.Warn("webhook queue full, dropping event",
			logger.String("event", ev.Type),
			logger.String("booking_id", ev.BookingID))
	}
}

func (n *Notifier) deliver(ctx context.Context, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		n.logger.Error("failed to marshal webhook event", logger.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("failed to build webhook request", logger.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		metrics.IncWebhookFailed()
		n.logger.Warn("webhook delivery failed",
			logger.String("event", ev.Type),
			logger.Error(err))
		return
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode >= 300 {
		metrics.IncWebhookFailed()
		n.logger.Warn("webhook delivery rejected",
			logger.String("event", ev.Type),
			logger.Error(fmt.Errorf("unexpected status %d", resp.StatusCode)))
		return
	}

	metrics.IncWebhookDelivered()
	n.logger.Debug("webhook delivered",
		logger.String("event", ev.Type),
		logger.String("booking_id", ev.BookingID))
}
