package services

import (
	"testing"

	"projectflow-backend/shared/apperrors"
	"projectflow-backend/shared/database/models"
	"projectflow-backend/shared/permissions"
	"projectflow-backend/shared/realtime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskDefaultsAndBroadcast(t *testing.T) {
	db := newTestDB(t)
	rec := installRecorder(t)

	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")

	task, err := CreateTask(db, owner, CreateTaskInput{
		ProjectID: project.ID,
		Title:     "First task",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusTodo, task.Status)
	assert.Equal(t, models.TaskPriorityMedium, task.Priority)

	events := rec.waitForEvents(t, 1)
	assert.Equal(t, realtime.TaskProjectTopic(project.ID), events[0].Topic)
	assert.Equal(t, realtime.ActionCreate, events[0].Event.Action)
	assert.Equal(t, task.ID, events[0].Event.Task.ID)
	assert.Nil(t, events[0].Event.Comment)
}

func TestCreateTaskWithAssignees(t *testing.T) {
	db := newTestDB(t)
	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	member := createOrgUser(t, db, &acme.Organization, permissions.RoleMember)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")

	task, err := CreateTask(db, owner, CreateTaskInput{
		ProjectID:   project.ID,
		Title:       "Assigned",
		AssigneeIDs: []uuid.UUID{member.ID},
	})
	require.NoError(t, err)

	loaded, err := GetTask(db, owner, task.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Assignees, 1)
	assert.Equal(t, member.ID, loaded.Assignees[0].ID)
}

func TestCreateTaskCrossOrgAssigneeRejected(t *testing.T) {
	db := newTestDB(t)
	acme := createTestOrg(t, db, "Acme")
	other := createTestOrg(t, db, "Other")

	owner := loadActor(t, db, acme.Owner.ID)
	outsider := loadActor(t, db, other.Owner.ID)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")

	_, err := CreateTask(db, owner, CreateTaskInput{
		ProjectID:   project.ID,
		Title:       "Bad assignee",
		AssigneeIDs: []uuid.UUID{outsider.ID},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidationConflict, apperrors.KindOf(err))

	// Superuser privilege doesn't bend organization boundaries here.
	super := createSuperuser(t, db)
	_, err = CreateTask(db, super, CreateTaskInput{
		ProjectID:   project.ID,
		Title:       "Still bad",
		AssigneeIDs: []uuid.UUID{outsider.ID},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidationConflict, apperrors.KindOf(err))
}

func TestCreateTaskMissingAssignee(t *testing.T) {
	db := newTestDB(t)
	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")

	_, err := CreateTask(db, owner, CreateTaskInput{
		ProjectID:   project.ID,
		Title:       "Ghost assignee",
		AssigneeIDs: []uuid.UUID{uuid.New()},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestCreateTaskInvalidPriority(t *testing.T) {
	db := newTestDB(t)
	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")

	_, err := CreateTask(db, owner, CreateTaskInput{
		ProjectID: project.ID,
		Title:     "Bad",
		Priority:  "BLOCKER",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidationConflict, apperrors.KindOf(err))
}

func TestUpdateTaskBroadcastsUpdate(t *testing.T) {
	db := newTestDB(t)
	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")
	task := createTestTask(t, db, owner, project.ID, "Task")

	rec := installRecorder(t)

	status := models.TaskStatusDone
	updated, err := UpdateTask(db, owner, task.ID, UpdateTaskInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, updated.Status)
	assert.Equal(t, "Task", updated.Title)

	events := rec.waitForEvents(t, 1)
	assert.Equal(t, realtime.ActionUpdate, events[0].Event.Action)
	assert.Equal(t, models.TaskStatusDone, events[0].Event.Task.Status)
}

func TestUpdateTaskReplacesAssignees(t *testing.T) {
	db := newTestDB(t)
	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	first := createOrgUser(t, db, &acme.Organization, permissions.RoleMember)
	second := createOrgUser(t, db, &acme.Organization, permissions.RoleMember)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")

	task, err := CreateTask(db, owner, CreateTaskInput{
		ProjectID:   project.ID,
		Title:       "Handover",
		AssigneeIDs: []uuid.UUID{first.ID},
	})
	require.NoError(t, err)

	_, err = UpdateTask(db, owner, task.ID, UpdateTaskInput{
		AssigneeIDs: []uuid.UUID{second.ID},
	})
	require.NoError(t, err)

	loaded, err := GetTask(db, owner, task.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Assignees, 1)
	assert.Equal(t, second.ID, loaded.Assignees[0].ID)
}

func TestAssignTaskBroadcastsAssign(t *testing.T) {
	db := newTestDB(t)
	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	member := createOrgUser(t, db, &acme.Organization, permissions.RoleMember)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")
	task := createTestTask(t, db, owner, project.ID, "Task")

	rec := installRecorder(t)

	_, err := AssignTask(db, owner, task.ID, []uuid.UUID{member.ID})
	require.NoError(t, err)

	events := rec.waitForEvents(t, 1)
	assert.Equal(t, realtime.ActionAssign, events[0].Event.Action)
	require.Len(t, events[0].Event.Task.Assignees, 1)
	assert.Equal(t, member.ID, events[0].Event.Task.Assignees[0].ID)
}

func TestAssignTaskRequiresPermission(t *testing.T) {
	db := newTestDB(t)
	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	member := createOrgUser(t, db, &acme.Organization, permissions.RoleMember)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")
	task := createTestTask(t, db, owner, project.ID, "Task")

	// Member lacks assign_task.
	_, err := AssignTask(db, member, task.ID, []uuid.UUID{member.ID})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindPermissionDenied, apperrors.KindOf(err))
}

func TestTaskTenancy(t *testing.T) {
	db := newTestDB(t)
	acme := createTestOrg(t, db, "Acme")
	other := createTestOrg(t, db, "Other")

	owner := loadActor(t, db, acme.Owner.ID)
	outsider := loadActor(t, db, other.Owner.ID)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")
	task := createTestTask(t, db, owner, project.ID, "Task")

	// Reads surface NotFound.
	_, err := GetTask(db, outsider, task.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	// Mutations surface PermissionDenied.
	title := "hijack"
	_, err = UpdateTask(db, outsider, task.ID, UpdateTaskInput{Title: &title})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindPermissionDenied, apperrors.KindOf(err))

	// Listing is empty, not an error.
	tasks, err := ListTasks(db, outsider, project.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDeleteTaskNoBroadcast(t *testing.T) {
	db := newTestDB(t)
	acme := createTestOrg(t, db, "Acme")
	owner := loadActor(t, db, acme.Owner.ID)
	project := createTestProject(t, db, owner, &acme.Organization, "Board")
	task := createTestTask(t, db, owner, project.ID, "Task")

	_, err := CreateComment(db, owner, task.ID, "gone soon")
	require.NoError(t, err)

	rec := installRecorder(t)

	require.NoError(t, DeleteTask(db, owner, task.ID))

	var count int64
	db.Model(&models.TaskComment{}).Where("task_id = ?", task.ID).Count(&count)
	assert.Zero(t, count)

	_, err = GetTask(db, owner, task.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	rec.mutex.Lock()
	defer rec.mutex.Unlock()
	assert.Empty(t, rec.events)
}

func TestOrganizationProjectTaskFlow(t *testing.T) {
	db := newTestDB(t)
	rec := installRecorder(t)

	result, err := CreateOrganization(db, CreateOrganizationInput{
		Name:          "Acme",
		OwnerEmail:    "a@acme.com",
		OwnerUsername: "acme-owner",
		OwnerPassword: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	var roleCount int64
	db.Model(&models.Role{}).Where("organization_id = ? AND is_default = ?", result.Organization.ID, true).Count(&roleCount)
	assert.EqualValues(t, 4, roleCount)

	owner := loadActor(t, db, result.Owner.ID)
	require.NotNil(t, owner.Role)
	assert.Equal(t, permissions.RoleAdmin, owner.Role.Name)

	project, err := CreateProject(db, owner, CreateProjectInput{
		OrganizationSlug: result.Organization.Slug,
		Name:             "Launch",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusActive, project.Status)

	task, err := CreateTask(db, owner, CreateTaskInput{
		ProjectID: project.ID,
		Title:     "Liftoff checklist",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusTodo, task.Status)
	assert.Equal(t, models.TaskPriorityMedium, task.Priority)

	events := rec.waitForEvents(t, 1)
	assert.Equal(t, realtime.TaskProjectTopic(project.ID), events[0].Topic)
	assert.Equal(t, realtime.ActionCreate, events[0].Event.Action)
}
