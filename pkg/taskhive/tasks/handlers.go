package tasks

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/access"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"gorm.io/gorm"
)

// Handler handles task-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new tasks handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateTaskRequest represents the request to create a task
type CreateTaskRequest struct {
	Description string `json:"description" binding:"required"`
}

// UpdateTaskRequest represents the request to move a task through its
// lifecycle
type UpdateTaskRequest struct {
	Status string `json:"status" binding:"required,oneof=pending claimed completed"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID           string  `json:"id"`
	GroupID      string  `json:"group_id"`
	Description  string  `json:"description"`
	CreatorID    string  `json:"creator_id"`
	ClaimerID    *string `json:"claimer_id"`
	ClaimerEmail string  `json:"claimer_email,omitempty"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
}

// taskList returns the group's tasks, newest first, joined with the claimer
// email for display. Mutating task operations respond with this so the caller
// can re-render without a second fetch.
func (h *Handler) taskList(groupID string) ([]TaskResponse, error) {
	var tasks []models.Task
	if err := h.db.Preload("Claimer").Where("group_id = ?", groupID).
		Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		resp := TaskResponse{
			ID:          t.ID,
			GroupID:     t.GroupID,
			Description: t.Description,
			CreatorID:   t.CreatorID,
			ClaimerID:   t.ClaimerID,
			Status:      string(t.Status),
			CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		}
		if t.Claimer != nil {
			resp.ClaimerEmail = t.Claimer.Email
		}
		out[i] = resp
	}
	return out, nil
}

func (h *Handler) membership(groupID, userID string) (models.Member, error) {
	var member models.Member
	err := h.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	return member, err
}

// List returns all tasks for a group
// @Summary List group tasks
// @Description Get all tasks in a group, newest first
// @Tags tasks
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {array} TaskResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{id}/tasks [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	if _, err := h.membership(groupID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	tasks, err := h.taskList(groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// Create adds a pending, unclaimed task to the group
// @Summary Create a task
// @Description Create a new pending task in the group
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param request body CreateTaskRequest true "Task details"
// @Success 201 {array} TaskResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /groups/{id}/tasks [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	if _, err := h.membership(groupID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := models.Task{
		GroupID:     groupID,
		Description: req.Description,
		CreatorID:   userID,
		Status:      models.TaskStatusPending,
	}

	if err := h.db.Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	tasks, err := h.taskList(groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	c.JSON(http.StatusCreated, tasks)
}

// Update moves a task through its lifecycle. Claiming sets the claimer to the
// caller; unclaiming clears it. Unclaiming, completing, and uncompleting are
// allowed only for the current claimer.
// @Summary Update a task's status
// @Description Claim, unclaim, complete, or uncomplete a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body UpdateTaskRequest true "New status"
// @Success 200 {array} TaskResponse
// @Failure 403 {object} map[string]string "Not the claimer"
// @Failure 404 {object} map[string]string "Task not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	taskID := c.Param("id")

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	newStatus := models.TaskStatus(req.Status)

	var task models.Task
	if err := h.db.First(&task, "id = ?", taskID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	// Non-members get the same 404 as a missing task
	if _, err := h.membership(task.GroupID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	if !task.Status.CanTransition(newStatus) {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot move task from " + string(task.Status) + " to " + string(newStatus)})
		return
	}

	isClaimer := task.ClaimerID != nil && *task.ClaimerID == userID

	updates := map[string]interface{}{"status": newStatus}
	switch newStatus {
	case models.TaskStatusClaimed:
		if task.Status == models.TaskStatusCompleted && !isClaimer {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot uncomplete a task completed by someone else"})
			return
		}
		updates["claimer_id"] = userID
	case models.TaskStatusCompleted:
		if !isClaimer {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot complete a task claimed by someone else"})
			return
		}
	case models.TaskStatusPending:
		if !isClaimer {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot unclaim a task claimed by someone else"})
			return
		}
		updates["claimer_id"] = nil
	}

	if err := h.db.Model(&task).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	tasks, err := h.taskList(task.GroupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// Delete removes a task. Authors may delete their own tasks; admins and the
// group creator may delete any.
// @Summary Delete a task
// @Description Delete a task from its group
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {array} TaskResponse
// @Failure 403 {object} map[string]string "Not allowed"
// @Failure 404 {object} map[string]string "Task not found"
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	taskID := c.Param("id")

	var task models.Task
	if err := h.db.First(&task, "id = ?", taskID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	member, err := h.membership(task.GroupID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	if !access.CanDeleteTask(member.Role, task.CreatorID == userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot delete a task created by someone else"})
		return
	}

	if err := h.db.Delete(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	tasks, err := h.taskList(task.GroupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// RegisterRoutes registers the task-scoped routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/tasks/:id", h.Update)
	rg.DELETE("/tasks/:id", h.Delete)
}

// RegisterGroupRoutes registers the group-scoped task routes
func (h *Handler) RegisterGroupRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/tasks", h.List)
	rg.POST("/:id/tasks", h.Create)
}
