package services

import (
	"log"
	"net/http"
	"sync"

	"projectflow-backend/shared/config"
	"projectflow-backend/shared/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TopicHub fans events out to WebSocket subscribers grouped by topic.
type TopicHub struct {
	topics     map[string]map[*websocket.Conn]bool // topic -> connections
	mutex      sync.RWMutex
	upgrader   websocket.Upgrader
	register   chan *subscription
	unregister chan *subscription
	broadcast  chan *topicMessage
}

type subscription struct {
	Topic      string
	Connection *websocket.Conn
}

type topicMessage struct {
	Topic string
	Event realtime.Event
}

// Global hub instance
var hub *TopicHub
var once sync.Once

// GetTopicHub returns singleton topic hub
func GetTopicHub() *TopicHub {
	once.Do(func() {
		hub = &TopicHub{
			topics: make(map[string]map[*websocket.Conn]bool),
			upgrader: websocket.Upgrader{
				CheckOrigin: func(r *http.Request) bool {
					origin := r.Header.Get("Origin")

					// Browsers send an Origin header; service clients don't.
					if origin == "" || origin == config.GetConfig().FrontendURL {
						return true
					}

					log.Printf("🚫 WebSocket connection rejected from origin: %s", origin)
					return false
				},
			},
			register:   make(chan *subscription, 100),
			unregister: make(chan *subscription, 100),
			broadcast:  make(chan *topicMessage, 1000),
		}
		go hub.run()
	})
	return hub
}

// run handles the hub event loop
func (h *TopicHub) run() {
	for {
		select {
		case sub := <-h.register:
			h.subscribe(sub)

		case sub := <-h.unregister:
			h.unsubscribe(sub)

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *TopicHub) subscribe(sub *subscription) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conns, exists := h.topics[sub.Topic]
	if !exists {
		conns = make(map[*websocket.Conn]bool)
		h.topics[sub.Topic] = conns
	}
	conns[sub.Connection] = true
	log.Printf("🔌 Subscriber joined %s (Total: %d)", sub.Topic, len(conns))
}

func (h *TopicHub) unsubscribe(sub *subscription) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conns, exists := h.topics[sub.Topic]; exists {
		if conns[sub.Connection] {
			delete(conns, sub.Connection)
			sub.Connection.Close()
			log.Printf("🔌 Subscriber left %s (Total: %d)", sub.Topic, len(conns))
		}
		if len(conns) == 0 {
			delete(h.topics, sub.Topic)
		}
	}
}

// deliver writes the event to every subscriber of the topic. Comment
// events published on a project topic are also relayed to the comment
// channel of their task.
func (h *TopicHub) deliver(message *topicMessage) {
	h.sendToTopic(message.Topic, message.Event)

	if message.Event.Action == realtime.ActionComment {
		taskTopic := realtime.TaskTopic(message.Event.Task.ID)
		if taskTopic != message.Topic {
			h.sendToTopic(taskTopic, message.Event)
		}
	}
}

func (h *TopicHub) sendToTopic(topic string, event realtime.Event) {
	h.mutex.RLock()
	conns := make([]*websocket.Conn, 0, len(h.topics[topic]))
	for conn := range h.topics[topic] {
		conns = append(conns, conn)
	}
	h.mutex.RUnlock()

	if len(conns) == 0 {
		return
	}

	failCount := 0
	for _, conn := range conns {
		if err := conn.WriteJSON(event); err != nil {
			failCount++
			go func(c *websocket.Conn) {
				h.unregister <- &subscription{Topic: topic, Connection: c}
			}(conn)
		}
	}

	log.Printf("📡 Broadcast to %s: %d success, %d failed (Action: %s)",
		topic, len(conns)-failCount, failCount, event.Action)
}

// Broadcast queues an event for delivery to a topic's subscribers.
func (h *TopicHub) Broadcast(topic string, event realtime.Event) {
	select {
	case h.broadcast <- &topicMessage{Topic: topic, Event: event}:
		// Message queued successfully
	default:
		log.Printf("⚠️ Broadcast queue full, dropping event for %s", topic)
	}
}

// HandleSubscription upgrades the connection and keeps it subscribed to
// the topic until the client goes away.
func (h *TopicHub) HandleSubscription(c *gin.Context, topic string) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Failed to upgrade WebSocket: %v", err)
		return
	}

	sub := &subscription{Topic: topic, Connection: conn}
	h.register <- sub

	defer func() {
		h.unregister <- sub
	}()

	// Drain client frames; subscribers only listen.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ WebSocket error on %s: %v", topic, err)
			}
			break
		}
	}
}

// SubscriberCount returns the number of connections on a topic.
func (h *TopicHub) SubscriberCount(topic string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.topics[topic])
}

// TopicCount returns the number of live topics.
func (h *TopicHub) TopicCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.topics)
}
