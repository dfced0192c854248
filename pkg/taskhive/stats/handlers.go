package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"gorm.io/gorm"
)

// Handler handles aggregate statistics requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new stats handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// StatsResponse represents system-wide totals for the landing page
type StatsResponse struct {
	TotalUsers   int64 `json:"total_users"`
	TotalGroups  int64 `json:"total_groups"`
	TotalTasks   int64 `json:"total_tasks"`
	TotalInvites int64 `json:"total_invites"`
}

// Get returns system-wide totals. Counts only - no rows are fetched.
// @Summary Get system statistics
// @Description Get total user, group, task, and invite counts
// @Tags stats
// @Produce json
// @Success 200 {object} StatsResponse
// @Router /stats [get]
func (h *Handler) Get(c *gin.Context) {
	var stats StatsResponse

	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.Group{}).Count(&stats.TotalGroups)
	h.db.Model(&models.Task{}).Count(&stats.TotalTasks)
	h.db.Model(&models.Invite{}).Count(&stats.TotalInvites)

	c.JSON(http.StatusOK, stats)
}

// RegisterRoutes registers stats routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.Get)
}
