package tasks

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)

	authed := r.Group("", auth.AuthMiddleware())
	handler.RegisterGroupRoutes(authed.Group("/groups"))
	handler.RegisterRoutes(authed)

	return r
}

func createTestUser(t *testing.T, db *gorm.DB, email string) models.User {
	hash, _ := auth.HashPassword("password123")
	user := models.User{Email: email, PasswordHash: hash, Active: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createTestGroup(t *testing.T, db *gorm.DB, creator models.User, name string) models.Group {
	group := models.Group{Name: name, CreatorID: creator.ID}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("Failed to create test group: %v", err)
	}
	membership := models.Member{UserID: creator.ID, GroupID: group.ID, Role: models.MemberRoleCreator}
	if err := db.Create(&membership).Error; err != nil {
		t.Fatalf("Failed to create creator membership: %v", err)
	}
	return group
}

func addTestMember(t *testing.T, db *gorm.DB, group models.Group, user models.User, role models.MemberRole) {
	member := models.Member{UserID: user.ID, GroupID: group.ID, Role: role}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("Failed to add test member: %v", err)
	}
}

func createTestTask(t *testing.T, db *gorm.DB, group models.Group, creator models.User, desc string) models.Task {
	task := models.Task{GroupID: group.ID, Description: desc, CreatorID: creator.ID, Status: models.TaskStatusPending}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("Failed to create test task: %v", err)
	}
	return task
}

func getAuthHeader(user models.User) string {
	token, _ := auth.GenerateToken(user.ID, user.Email)
	return "Bearer " + token
}

func doRequest(router *gin.Engine, method, path string, body interface{}, user models.User) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(user))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreateTask(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	creator := createTestUser(t, db, "creator@example.com")
	group := createTestGroup(t, db, creator, "Chores")

	resp := doRequest(router, "POST", "/groups/"+group.ID+"/tasks",
		CreateTaskRequest{Description: "Buy milk"}, creator)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var tasks []TaskResponse
	json.Unmarshal(resp.Body.Bytes(), &tasks)

	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Status != "pending" {
		t.Errorf("Expected status pending, got %s", tasks[0].Status)
	}
	if tasks[0].ClaimerID != nil {
		t.Error("Expected new task to be unclaimed")
	}
	if tasks[0].CreatorID != creator.ID {
		t.Errorf("Expected creator %s, got %s", creator.ID, tasks[0].CreatorID)
	}
}

func TestCreateTaskRequiresMembership(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	creator := createTestUser(t, db, "creator@example.com")
	outsider := createTestUser(t, db, "outsider@example.com")
	group := createTestGroup(t, db, creator, "Chores")

	resp := doRequest(router, "POST", "/groups/"+group.ID+"/tasks",
		CreateTaskRequest{Description: "Buy milk"}, outsider)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestListTasks(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	creator := createTestUser(t, db, "creator@example.com")
	group := createTestGroup(t, db, creator, "Chores")
	createTestTask(t, db, group, creator, "Buy milk")
	createTestTask(t, db, group, creator, "Walk dog")

	resp := doRequest(router, "GET", "/groups/"+group.ID+"/tasks", nil, creator)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var tasks []TaskResponse
	json.Unmarshal(resp.Body.Bytes(), &tasks)

	if len(tasks) != 2 {
		t.Errorf("Expected 2 tasks, got %d", len(tasks))
	}
}

func TestClaimTask(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	creator := createTestUser(t, db, "creator@example.com")
	member := createTestUser(t, db, "member@example.com")
	group := createTestGroup(t, db, creator, "Chores")
	addTestMember(t, db, group, member, models.MemberRoleMember)
	task := createTestTask(t, db, group, creator, "Buy milk")

	resp := doRequest(router, "PUT", "/tasks/"+task.ID,
		UpdateTaskRequest{Status: "claimed"}, member)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated models.Task
	db.First(&updated, "id = ?", task.ID)
	if updated.Status != models.TaskStatusClaimed {
		t.Errorf("Expected status claimed, got %s", updated.Status)
	}
	if updated.ClaimerID == nil || *updated.ClaimerID != member.ID {
		t.Error("Expected claimer to be the caller")
	}
}

func TestCompleteTaskRequiresClaimer(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	creator := createTestUser(t, db, "creator@example.com")
	member := createTestUser(t, db, "member@example.com")
	group := createTestGroup(t, db, creator, "Chores")
	addTestMember(t, db, group, member, models.MemberRoleMember)
	task := createTestTask(t, db, group, creator, "Buy milk")

	doRequest(router, "PUT", "/tasks/"+task.ID, UpdateTaskRequest{Status: "claimed"}, member)

	// Even the task author cannot complete someone else's claim
	resp := doRequest(router, "PUT", "/tasks/"+task.ID,
		UpdateTaskRequest{Status: "completed"}, creator)

	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}

	resp = doRequest(router, "PUT", "/tasks/"+task.ID,
		UpdateTaskRequest{Status: "completed"}, member)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCompletePendingTaskRejected(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	creator := createTestUser(t, db, "creator@example.com")
	group := createTestGroup(t, db, creator, "Chores")
	task := createTestTask(t, db, group, creator, "Buy milk")

	// A task must be claimed before it can be completed
	resp := doRequest(router, "PUT", "/tasks/"+task.ID,
		UpdateTaskRequest{Status: "completed"}, creator)

	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.Code)
	}
}

func TestUnclaimTask(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	creator := createTestUser(t, db, "creator@example.com")
	member := createTestUser(t, db, "member@example.com")
	group := createTestGroup(t, db, creator, "Chores")
	addTestMember(t, db, group, member, models.MemberRoleMember)
	task := createTestTask(t, db, group, creator, "Buy milk")

	doRequest(router, "PUT", "/tasks/"+task.ID, UpdateTaskRequest{Status: "claimed"}, member)

	// Only the claimer may release the task
	resp := doRequest(router, "PUT", "/tasks/"+task.ID,
		UpdateTaskRequest{Status: "pending"}, creator)
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}

	resp = doRequest(router, "PUT", "/tasks/"+task.ID,
		UpdateTaskRequest{Status: "pending"}, member)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated models.Task
	db.First(&updated, "id = ?", task.ID)
	if updated.Status != models.TaskStatusPending {
		t.Errorf("Expected status pending, got %s", updated.Status)
	}
	if updated.ClaimerID != nil {
		t.Error("Expected claimer cleared after unclaim")
	}
}

func TestUncompleteTask(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	creator := createTestUser(t, db, "creator@example.com")
	member := createTestUser(t, db, "member@example.com")
	group := createTestGroup(t, db, creator, "Chores")
	addTestMember(t, db, group, member, models.MemberRoleMember)
	task := createTestTask(t, db, group, creator, "Buy milk")

	doRequest(router, "PUT", "/tasks/"+task.ID, UpdateTaskRequest{Status: "claimed"}, member)
	doRequest(router, "PUT", "/tasks/"+task.ID, UpdateTaskRequest{Status: "completed"}, member)

	// Another member cannot move a completed task back
	resp := doRequest(router, "PUT", "/tasks/"+task.ID,
		UpdateTaskRequest{Status: "claimed"}, creator)
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}

	resp = doRequest(router, "PUT", "/tasks/"+task.ID,
		UpdateTaskRequest{Status: "claimed"}, member)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated models.Task
	db.First(&updated, "id = ?", task.ID)
	if updated.Status != models.TaskStatusClaimed {
		t.Errorf("Expected status claimed, got %s", updated.Status)
	}
}

func TestUpdateTaskInvisibleToNonMembers(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	creator := createTestUser(t, db, "creator@example.com")
	outsider := createTestUser(t, db, "outsider@example.com")
	group := createTestGroup(t, db, creator, "Chores")
	task := createTestTask(t, db, group, creator, "Buy milk")

	resp := doRequest(router, "PUT", "/tasks/"+task.ID,
		UpdateTaskRequest{Status: "claimed"}, outsider)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestDeleteOwnTask(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	creator := createTestUser(t, db, "creator@example.com")
	member := createTestUser(t, db, "member@example.com")
	group := createTestGroup(t, db, creator, "Chores")
	addTestMember(t, db, group, member, models.MemberRoleMember)
	task := createTestTask(t, db, group, member, "Buy milk")

	resp := doRequest(router, "DELETE", "/tasks/"+task.ID, nil, member)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	if count != 0 {
		t.Error("Expected task to be deleted")
	}
}

func TestDeleteTaskRequiresAuthorOrElevatedRole(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	creator := createTestUser(t, db, "creator@example.com")
	member := createTestUser(t, db, "member@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	group := createTestGroup(t, db, creator, "Chores")
	addTestMember(t, db, group, member, models.MemberRoleMember)
	addTestMember(t, db, group, admin, models.MemberRoleAdmin)
	task := createTestTask(t, db, group, creator, "Buy milk")

	resp := doRequest(router, "DELETE", "/tasks/"+task.ID, nil, member)
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for plain member, got %d", resp.Code)
	}

	resp = doRequest(router, "DELETE", "/tasks/"+task.ID, nil, admin)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200 for admin, got %d: %s", resp.Code, resp.Body.String())
	}
}
