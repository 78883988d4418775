package services

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"projectflow-backend/shared/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws/tasks/:project_id", func(c *gin.Context) {
		projectID, err := uuid.Parse(c.Param("project_id"))
		require.NoError(t, err)
		GetTopicHub().HandleSubscription(c, realtime.TaskProjectTopic(projectID))
	})
	router.GET("/ws/comments/:task_id", func(c *gin.Context) {
		taskID, err := uuid.Parse(c.Param("task_id"))
		require.NoError(t, err)
		GetTopicHub().HandleSubscription(c, realtime.TaskTopic(taskID))
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) realtime.Event {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event realtime.Event
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func waitForSubscriber(t *testing.T, topic string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if GetTopicHub().SubscriberCount(topic) > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no subscriber on %s", topic)
}

func TestHubDeliversToProjectTopic(t *testing.T) {
	srv := newHubServer(t)
	projectID := uuid.New()

	conn := dial(t, srv, "/ws/tasks/"+projectID.String())
	topic := realtime.TaskProjectTopic(projectID)
	waitForSubscriber(t, topic)

	event := realtime.Event{
		Action: realtime.ActionUpdate,
		Task:   realtime.TaskSnapshot{ID: uuid.New(), Title: "live", Status: "IN_PROGRESS"},
	}
	GetTopicHub().Broadcast(topic, event)

	got := readEvent(t, conn)
	assert.Equal(t, realtime.ActionUpdate, got.Action)
	assert.Equal(t, "live", got.Task.Title)
}

func TestHubRelaysCommentsToTaskTopic(t *testing.T) {
	srv := newHubServer(t)
	projectID := uuid.New()
	taskID := uuid.New()

	taskConn := dial(t, srv, "/ws/comments/"+taskID.String())
	waitForSubscriber(t, realtime.TaskTopic(taskID))

	comment := realtime.CommentSnapshot{ID: uuid.New(), Content: "hi"}
	event := realtime.Event{
		Action:  realtime.ActionComment,
		Task:    realtime.TaskSnapshot{ID: taskID},
		Comment: &comment,
	}

	// Published on the project topic; the hub relays to the task topic.
	GetTopicHub().Broadcast(realtime.TaskProjectTopic(projectID), event)

	got := readEvent(t, taskConn)
	assert.Equal(t, realtime.ActionComment, got.Action)
	require.NotNil(t, got.Comment)
	assert.Equal(t, "hi", got.Comment.Content)
}

func TestHubNonCommentEventsStayOnProjectTopic(t *testing.T) {
	srv := newHubServer(t)
	projectID := uuid.New()
	taskID := uuid.New()

	taskConn := dial(t, srv, "/ws/comments/"+taskID.String())
	waitForSubscriber(t, realtime.TaskTopic(taskID))

	event := realtime.Event{
		Action: realtime.ActionUpdate,
		Task:   realtime.TaskSnapshot{ID: taskID},
	}
	GetTopicHub().Broadcast(realtime.TaskProjectTopic(projectID), event)

	require.NoError(t, taskConn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var got realtime.Event
	err := taskConn.ReadJSON(&got)
	assert.Error(t, err, "update events must not leak onto the comment channel")
}

func TestHubMultipleSubscribers(t *testing.T) {
	srv := newHubServer(t)
	projectID := uuid.New()
	topic := realtime.TaskProjectTopic(projectID)

	first := dial(t, srv, "/ws/tasks/"+projectID.String())
	second := dial(t, srv, "/ws/tasks/"+projectID.String())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && GetTopicHub().SubscriberCount(topic) < 2 {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 2, GetTopicHub().SubscriberCount(topic))

	event := realtime.Event{Action: realtime.ActionAssign, Task: realtime.TaskSnapshot{ID: uuid.New()}}
	GetTopicHub().Broadcast(topic, event)

	assert.Equal(t, realtime.ActionAssign, readEvent(t, first).Action)
	assert.Equal(t, realtime.ActionAssign, readEvent(t, second).Action)
}
