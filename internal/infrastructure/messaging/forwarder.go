package messaging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/analytics"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/pkg/config"
)

// HTTPForwarder mirrors consented analytics events to an external collector
// endpoint. Delivery is best-effort through a bounded queue; when the queue is
// saturated events are dropped rather than blocking the tracker.
type HTTPForwarder struct {
	endpoint string
	client   *http.Client
	queue    chan *analytics.TrackedEvent
	logger   *logging.ChanneledLogger
}

// NewHTTPForwarder creates a forwarder for the given collector endpoint.
// Returns nil when no endpoint is configured so callers can treat forwarding
// as absent.
func NewHTTPForwarder(endpoint string, logger *logging.ChanneledLogger) *HTTPForwarder {
	if endpoint == "" {
		return nil
	}
	return &HTTPForwarder{
		endpoint: endpoint,
		client:   &http.Client{Timeout: config.AnalyticsForwardTimeout},
		queue:    make(chan *analytics.TrackedEvent, 256),
		logger:   logger,
	}
}

// Forward enqueues an event for delivery.
func (f *HTTPForwarder) Forward(event *analytics.TrackedEvent) {
	select {
	case f.queue <- event:
	default:
		f.logger.Analytics().Warn("Forwarder queue saturated, dropping event",
			"eventName", event.EventName)
	}
}

// Run drains the queue until it is closed. Intended to run on its own
// goroutine.
func (f *HTTPForwarder) Run() {
	for event := range f.queue {
		f.deliver(event)
	}
}

// Stop closes the queue; Run returns once the remaining events are delivered.
func (f *HTTPForwarder) Stop() {
	close(f.queue)
}

func (f *HTTPForwarder) deliver(event *analytics.TrackedEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		f.logger.Analytics().Error("Failed to encode forwarded event", "error", err.Error())
		return
	}

	start := time.Now()
	resp, err := f.client.Post(f.endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		f.logger.Analytics().Warn("Event forward failed",
			"error", err.Error(), "eventName", event.EventName)
		return
	}
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		f.logger.Analytics().Warn("Event forward rejected",
			"status", resp.StatusCode, "eventName", event.EventName)
		return
	}

	f.logger.Analytics().Debug("Event forwarded",
		"eventName", event.EventName, "duration", time.Since(start))
}
