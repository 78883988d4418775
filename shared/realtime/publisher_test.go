package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPPublisherPostsEvent(t *testing.T) {
	var mu sync.Mutex
	var received *PublishRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/realtime/publish", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req PublishRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		mu.Lock()
		received = &req
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pub := &HTTPPublisher{baseURL: srv.URL, httpClient: srv.Client()}

	taskID := uuid.New()
	event := Event{
		Action: ActionCreate,
		Task:   TaskSnapshot{ID: taskID, Title: "hello", Status: "TODO"},
	}

	require.NoError(t, pub.Publish("task_project_x", event))

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, received)
	assert.Equal(t, "task_project_x", received.Topic)
	assert.Equal(t, ActionCreate, received.Event.Action)
	assert.Equal(t, taskID, received.Event.Task.ID)
}

func TestHTTPPublisherNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	pub := &HTTPPublisher{baseURL: srv.URL, httpClient: srv.Client()}
	err := pub.Publish("topic", Event{Action: ActionUpdate})
	assert.Error(t, err)
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, Event) error {
	return assert.AnError
}

func TestDispatchSwallowsFailures(t *testing.T) {
	// Dispatch must not panic or propagate; it logs and moves on.
	Dispatch(failingPublisher{}, "topic", Event{Action: ActionComment})
	Dispatch(nil, "topic", Event{Action: ActionComment})
	time.Sleep(50 * time.Millisecond)
}

func TestTopicNames(t *testing.T) {
	projectID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	taskID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	assert.Equal(t, "task_project_11111111-2222-3333-4444-555555555555", TaskProjectTopic(projectID))
	assert.Equal(t, "task_aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", TaskTopic(taskID))
}
