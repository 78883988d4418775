package realtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"projectflow-backend/shared/config"
)

// Publisher delivers events to all subscribers of a named topic.
// Delivery is best-effort, at-most-once.
type Publisher interface {
	Publish(topic string, event Event) error
}

// PublishRequest is the wire format of the notification-service publish
// endpoint.
type PublishRequest struct {
	Topic string `json:"topic"`
	Event Event  `json:"event"`
}

// HTTPPublisher posts events to the notification service.
type HTTPPublisher struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPPublisher creates a publisher targeting the configured
// notification service.
func NewHTTPPublisher() *HTTPPublisher {
	cfg := config.GetConfig()
	return &HTTPPublisher{
		baseURL: cfg.NotificationServiceURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Publish posts the event to the notification-service publish endpoint.
func (p *HTTPPublisher) Publish(topic string, event Event) error {
	body, err := json.Marshal(PublishRequest{Topic: topic, Event: event})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	resp, err := p.httpClient.Post(
		fmt.Sprintf("%s/api/realtime/publish", p.baseURL),
		"application/json",
		bytes.NewBuffer(body),
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notification service returned status: %d", resp.StatusCode)
	}

	return nil
}

// Dispatch publishes in the background after the originating mutation has
// committed. Failures are logged and never propagated: the mutation result
// does not depend on broadcast delivery.
func Dispatch(pub Publisher, topic string, event Event) {
	if pub == nil {
		return
	}
	go func() {
		if err := pub.Publish(topic, event); err != nil {
			log.Printf("⚠️ Broadcast to %s failed: %v", topic, err)
		}
	}()
}
