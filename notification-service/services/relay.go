package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"projectflow-backend/shared/config"
	"projectflow-backend/shared/realtime"

	"github.com/redis/go-redis/v9"
)

// relayChannel carries events between notification-service instances so
// a subscriber connected to one instance still sees events published to
// another.
const relayChannel = "projectflow:realtime"

// Relay distributes events across instances via Redis pub/sub. With
// Redis disabled it degrades to local-only delivery.
type Relay struct {
	client *redis.Client
}

// NewRelay connects to Redis when the relay is enabled; otherwise it
// returns a local-only relay.
func NewRelay() *Relay {
	cfg := config.GetConfig()
	if !cfg.RedisEnabled {
		log.Printf("🔄 Redis relay disabled, events stay on this instance")
		return &Relay{}
	}

	db, _ := strconv.Atoi(cfg.RedisDB)
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("⚠️ Redis unavailable, falling back to local delivery: %v", err)
		return &Relay{}
	}

	log.Printf("✅ Redis relay connected: %s:%s", cfg.RedisHost, cfg.RedisPort)
	return &Relay{client: client}
}

// Distribute hands an event to every instance. Without Redis it goes
// straight to the local hub.
func (r *Relay) Distribute(topic string, event realtime.Event) {
	if r.client == nil {
		GetTopicHub().Broadcast(topic, event)
		return
	}

	payload, err := json.Marshal(realtime.PublishRequest{Topic: topic, Event: event})
	if err != nil {
		log.Printf("❌ Failed to marshal relay payload: %v", err)
		return
	}
	if err := r.client.Publish(context.Background(), relayChannel, payload).Err(); err != nil {
		log.Printf("⚠️ Redis publish failed, delivering locally: %v", err)
		GetTopicHub().Broadcast(topic, event)
	}
}

// Listen feeds relayed events into the local hub. It blocks and is meant
// to run in its own goroutine; it is a no-op without Redis.
func (r *Relay) Listen(ctx context.Context) {
	if r.client == nil {
		return
	}

	pubsub := r.client.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var req realtime.PublishRequest
			if err := json.Unmarshal([]byte(msg.Payload), &req); err != nil {
				log.Printf("❌ Failed to decode relayed event: %v", err)
				continue
			}
			GetTopicHub().Broadcast(req.Topic, req.Event)
		}
	}
}
