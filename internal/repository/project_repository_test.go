package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskaboard/realtime-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ProjectStoreTestSuite defines the test suite for GormProjectStore
type ProjectStoreTestSuite struct {
	suite.Suite
	db    *gorm.DB
	store ProjectStore
}

// SetupTest runs before each test
func (suite *ProjectStoreTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.Project{},
		&models.Task{},
		&models.Comment{},
	)
	suite.Require().NoError(err)

	suite.store = NewProjectStore(suite.db)
}

// TearDownTest runs after each test
func (suite *ProjectStoreTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *ProjectStoreTestSuite) createTestTask(chatID, title string) *models.Task {
	task, err := suite.store.CreateTask(chatID, CreateTaskInput{
		Title:    title,
		Quadrant: 0,
	})
	suite.Require().NoError(err)
	return task
}

// TestGetOrCreateProject_CreatesOnce tests that a never-seen chat id creates
// exactly one empty project
func (suite *ProjectStoreTestSuite) TestGetOrCreateProject_CreatesOnce() {
	project, err := suite.store.GetOrCreateProject("100500")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "100500", project.ChatID)
	assert.NotZero(suite.T(), project.ID)
	assert.Empty(suite.T(), project.Tasks)
	assert.NotNil(suite.T(), project.Tasks)

	again, err := suite.store.GetOrCreateProject("100500")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), project.ID, again.ID)

	var count int64
	suite.db.Model(&models.Project{}).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

// TestGetOrCreateProject_LoadsNestedState tests eager loading of tasks and
// comments in creation order
func (suite *ProjectStoreTestSuite) TestGetOrCreateProject_LoadsNestedState() {
	first := suite.createTestTask("chat-1", "First")
	second := suite.createTestTask("chat-1", "Second")

	_, err := suite.store.AddComment(first.ID, AddCommentInput{Text: "one", AuthorName: "Alice"})
	suite.Require().NoError(err)
	_, err = suite.store.AddComment(first.ID, AddCommentInput{Text: "two", AuthorName: "Bob"})
	suite.Require().NoError(err)

	project, err := suite.store.GetOrCreateProject("chat-1")

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), project.Tasks, 2)
	assert.Equal(suite.T(), first.ID, project.Tasks[0].ID)
	assert.Equal(suite.T(), second.ID, project.Tasks[1].ID)
	assert.Len(suite.T(), project.Tasks[0].Comments, 2)
	assert.Equal(suite.T(), "one", project.Tasks[0].Comments[0].Text)
	assert.Equal(suite.T(), "two", project.Tasks[0].Comments[1].Text)
}

// TestCreateTask_LazyProject tests that creating a task under an unseen chat
// id creates the project on the fly
func (suite *ProjectStoreTestSuite) TestCreateTask_LazyProject() {
	deadline := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	task, err := suite.store.CreateTask("fresh-chat", CreateTaskInput{
		Title:        "Draft",
		Description:  "Write the draft",
		Quadrant:     2,
		AssigneeName: "Alice",
		Deadline:     &deadline,
	})

	assert.NoError(suite.T(), err)
	assert.NotZero(suite.T(), task.ID)
	assert.Equal(suite.T(), "Draft", task.Title)
	assert.Equal(suite.T(), 2, task.Quadrant)
	assert.Equal(suite.T(), "Alice", task.AssigneeName)
	assert.NotNil(suite.T(), task.Comments)
	assert.Empty(suite.T(), task.Comments)

	var project models.Project
	err = suite.db.Where("chat_id = ?", "fresh-chat").First(&project).Error
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), project.ID, task.ProjectID)
}

// TestUpdateTask_FullReplace tests that an update replaces every mutable
// field and leaves comments alone
func (suite *ProjectStoreTestSuite) TestUpdateTask_FullReplace() {
	deadline := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	task := suite.createTestTask("chat-1", "Old Title")
	_, err := suite.store.AddComment(task.ID, AddCommentInput{Text: "keep me"})
	suite.Require().NoError(err)

	updated, err := suite.store.UpdateTask(task.ID, UpdateTaskInput{
		Title:        "New Title",
		Description:  "New Description",
		Quadrant:     3,
		AssigneeID:   "42",
		AssigneeName: "Bob",
		Deadline:     &deadline,
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Title", updated.Title)
	assert.Equal(suite.T(), "New Description", updated.Description)
	assert.Equal(suite.T(), 3, updated.Quadrant)
	assert.Equal(suite.T(), "42", updated.AssigneeID)
	assert.Len(suite.T(), updated.Comments, 1)

	// A second full replace with an empty deadline clears it
	cleared, err := suite.store.UpdateTask(task.ID, UpdateTaskInput{
		Title:    "New Title",
		Quadrant: 3,
	})
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), cleared.Deadline)
	assert.Len(suite.T(), cleared.Comments, 1)
}

// TestUpdateTask_NotFound tests updating an unknown task
func (suite *ProjectStoreTestSuite) TestUpdateTask_NotFound() {
	_, err := suite.store.UpdateTask(9999, UpdateTaskInput{Title: "Nope"})

	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
}

// TestMoveTask_Success tests moving a task between quadrants
func (suite *ProjectStoreTestSuite) TestMoveTask_Success() {
	task := suite.createTestTask("chat-1", "Movable")

	moved, err := suite.store.MoveTask(task.ID, 3)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, moved.Quadrant)

	var stored models.Task
	suite.db.First(&stored, task.ID)
	assert.Equal(suite.T(), 3, stored.Quadrant)
}

// TestMoveTask_InvalidQuadrant tests the quadrant range check
func (suite *ProjectStoreTestSuite) TestMoveTask_InvalidQuadrant() {
	task := suite.createTestTask("chat-1", "Movable")

	_, err := suite.store.MoveTask(task.ID, 5)
	assert.ErrorIs(suite.T(), err, ErrInvalidQuadrant)

	_, err = suite.store.MoveTask(task.ID, -1)
	assert.ErrorIs(suite.T(), err, ErrInvalidQuadrant)

	var stored models.Task
	suite.db.First(&stored, task.ID)
	assert.Equal(suite.T(), 0, stored.Quadrant)
}

// TestMoveTask_NotFound tests moving an unknown task
func (suite *ProjectStoreTestSuite) TestMoveTask_NotFound() {
	_, err := suite.store.MoveTask(9999, 1)

	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
}

// TestDeleteTask_CascadesComments tests that deleting a task removes its
// comments and makes later comment appends fail
func (suite *ProjectStoreTestSuite) TestDeleteTask_CascadesComments() {
	task := suite.createTestTask("chat-1", "Doomed")
	_, err := suite.store.AddComment(task.ID, AddCommentInput{Text: "gone soon"})
	suite.Require().NoError(err)

	err = suite.store.DeleteTask(task.ID)
	assert.NoError(suite.T(), err)

	var taskCount, commentCount int64
	suite.db.Model(&models.Task{}).Count(&taskCount)
	suite.db.Model(&models.Comment{}).Count(&commentCount)
	assert.Equal(suite.T(), int64(0), taskCount)
	assert.Equal(suite.T(), int64(0), commentCount)

	_, err = suite.store.AddComment(task.ID, AddCommentInput{Text: "too late"})
	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
}

// TestDeleteTask_NotFound tests deleting an unknown task
func (suite *ProjectStoreTestSuite) TestDeleteTask_NotFound() {
	err := suite.store.DeleteTask(9999)

	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
}

// TestAddComment_ReturnsRefreshedTask tests that appending a comment returns
// the parent task with the full ordered thread
func (suite *ProjectStoreTestSuite) TestAddComment_ReturnsRefreshedTask() {
	task := suite.createTestTask("chat-1", "Discussed")

	_, err := suite.store.AddComment(task.ID, AddCommentInput{Text: "first", AuthorID: "1", AuthorName: "Alice"})
	suite.Require().NoError(err)

	refreshed, err := suite.store.AddComment(task.ID, AddCommentInput{Text: "second", AuthorID: "2", AuthorName: "Bob"})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), task.ID, refreshed.ID)
	assert.Len(suite.T(), refreshed.Comments, 2)
	assert.Equal(suite.T(), "first", refreshed.Comments[0].Text)
	assert.Equal(suite.T(), "second", refreshed.Comments[1].Text)
	assert.Equal(suite.T(), "Bob", refreshed.Comments[1].AuthorName)
}

// TestSuite runs the test suite
func TestProjectStoreTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectStoreTestSuite))
}

// TestGetOrCreateProject_StorageFailure tests that a broken database surfaces
// as an error instead of a silent empty project
func TestGetOrCreateProject_StorageFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	assert.NoError(t, err)

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	store := NewProjectStore(db)
	_, err = store.GetOrCreateProject("chat-1")

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
