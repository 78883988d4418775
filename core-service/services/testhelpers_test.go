package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"projectflow-backend/shared/database"
	"projectflow-backend/shared/database/models"
	"projectflow-backend/shared/realtime"
	utils "projectflow-backend/shared/utils/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A fresh connection would get a fresh in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type publishedEvent struct {
	Topic string
	Event realtime.Event
}

// recordingPublisher captures dispatched events for assertions.
type recordingPublisher struct {
	mutex  sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(topic string, event realtime.Event) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Event: event})
	return nil
}

// waitForEvents blocks until n events arrived; dispatch is asynchronous.
func (p *recordingPublisher) waitForEvents(t *testing.T, n int) []publishedEvent {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.mutex.Lock()
		if len(p.events) >= n {
			events := make([]publishedEvent, len(p.events))
			copy(events, p.events)
			p.mutex.Unlock()
			return events
		}
		p.mutex.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d broadcast events", n)
	return nil
}

func installRecorder(t *testing.T) *recordingPublisher {
	t.Helper()

	rec := &recordingPublisher{}
	SetPublisher(rec)
	t.Cleanup(func() { SetPublisher(nil) })
	return rec
}

// fakeObjectStore keeps attachment bodies in memory.
type fakeObjectStore struct {
	mutex   sync.Mutex
	objects map[string][]byte
	failPut bool
}

func installFakeStore(t *testing.T) *fakeObjectStore {
	t.Helper()

	fake := &fakeObjectStore{objects: make(map[string][]byte)}
	SetObjectStore(fake)
	t.Cleanup(func() { SetObjectStore(nil) })
	return fake
}

func (s *fakeObjectStore) Put(_ context.Context, objectKey, _ string, reader io.Reader, _ int64) error {
	if s.failPut {
		return fmt.Errorf("storage unavailable")
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.objects[objectKey] = body
	return nil
}

func (s *fakeObjectStore) Get(_ context.Context, objectKey string) (io.ReadCloser, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	body, ok := s.objects[objectKey]
	if !ok {
		return nil, fmt.Errorf("object %s not found", objectKey)
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (s *fakeObjectStore) Remove(_ context.Context, objectKey string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.objects, objectKey)
	return nil
}

func (s *fakeObjectStore) count() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.objects)
}

// createTestOrg builds an organization with its owner and default roles.
func createTestOrg(t *testing.T, db *gorm.DB, name string) *CreateOrganizationResult {
	t.Helper()

	result, err := CreateOrganization(db, CreateOrganizationInput{
		Name:          name,
		OwnerEmail:    fmt.Sprintf("owner-%s@%s.test", uuid.NewString()[:8], GenerateSlug(name)),
		OwnerUsername: fmt.Sprintf("owner-%s", uuid.NewString()[:8]),
		OwnerPassword: "password123",
	})
	require.NoError(t, err)
	return result
}

// loadActor reloads a user with the relations the engine needs.
func loadActor(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.User {
	t.Helper()

	actor, err := GetActor(db, userID)
	require.NoError(t, err)
	return actor
}

// createOrgUser adds a user to the organization with the named default role.
func createOrgUser(t *testing.T, db *gorm.DB, org *models.Organization, roleName string) *models.User {
	t.Helper()

	var role models.Role
	require.NoError(t, db.Where("organization_id = ? AND name = ?", org.ID, roleName).First(&role).Error)

	hashed, err := utils.HashPassword("password123")
	require.NoError(t, err)

	suffix := uuid.NewString()[:8]
	user := models.User{
		Email:          fmt.Sprintf("user-%s@test.local", suffix),
		Username:       fmt.Sprintf("user-%s", suffix),
		Password:       hashed,
		OrganizationID: &org.ID,
		RoleID:         &role.ID,
	}
	require.NoError(t, db.Create(&user).Error)
	return loadActor(t, db, user.ID)
}

// createSuperuser adds a platform superuser without an organization.
func createSuperuser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hashed, err := utils.HashPassword("password123")
	require.NoError(t, err)

	suffix := uuid.NewString()[:8]
	user := models.User{
		Email:       fmt.Sprintf("super-%s@test.local", suffix),
		Username:    fmt.Sprintf("super-%s", suffix),
		Password:    hashed,
		IsSuperuser: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return loadActor(t, db, user.ID)
}

// createTestProject adds a project to the organization.
func createTestProject(t *testing.T, db *gorm.DB, actor *models.User, org *models.Organization, name string) *models.Project {
	t.Helper()

	project, err := CreateProject(db, actor, CreateProjectInput{
		OrganizationSlug: org.Slug,
		Name:             name,
	})
	require.NoError(t, err)
	return project
}

// createTestTask adds a task to the project.
func createTestTask(t *testing.T, db *gorm.DB, actor *models.User, projectID uuid.UUID, title string) *models.Task {
	t.Helper()

	task, err := CreateTask(db, actor, CreateTaskInput{
		ProjectID: projectID,
		Title:     title,
	})
	require.NoError(t, err)
	return task
}
