package groups

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/access"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"gorm.io/gorm"
)

// Handler handles group-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new groups handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CreatorID   string `json:"creator_id"`
	Role        string `json:"role,omitempty"` // Caller's role in this group
	MemberCount int    `json:"member_count,omitempty"`
}

// membership returns the caller's membership row for a group, or a
// gorm.ErrRecordNotFound-wrapped error when the caller does not belong to it.
func (h *Handler) membership(groupID, userID string) (models.Member, error) {
	var member models.Member
	err := h.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	return member, err
}

// List returns all groups the current user is a member of
// @Summary List groups
// @Description Get all groups the current user is a member of
// @Tags groups
// @Produce json
// @Success 200 {array} GroupResponse
// @Security BearerAuth
// @Router /groups [get]
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var memberships []models.Member
	if err := h.db.Preload("Group").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	groups := make([]GroupResponse, len(memberships))
	for i, m := range memberships {
		var memberCount int64
		h.db.Model(&models.Member{}).Where("group_id = ?", m.GroupID).Count(&memberCount)

		groups[i] = GroupResponse{
			ID:          m.Group.ID,
			Name:        m.Group.Name,
			CreatorID:   m.Group.CreatorID,
			Role:        string(m.Role),
			MemberCount: int(memberCount),
		}
	}

	c.JSON(http.StatusOK, groups)
}

// Create creates a new group and adds the creator as its sole creator member
// @Summary Create a group
// @Description Create a new group with the current user as creator
// @Tags groups
// @Accept json
// @Produce json
// @Param request body CreateGroupRequest true "Group details"
// @Success 201 {object} GroupResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /groups [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The group and its creator membership are written together: a group
	// never exists without exactly one creator row.
	var group models.Group
	err := h.db.Transaction(func(tx *gorm.DB) error {
		group = models.Group{
			Name:      req.Name,
			CreatorID: userID,
		}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		membership := models.Member{
			UserID:  userID,
			GroupID: group.ID,
			Role:    models.MemberRoleCreator,
		}
		return tx.Create(&membership).Error
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		CreatorID:   group.CreatorID,
		Role:        string(models.MemberRoleCreator),
		MemberCount: 1,
	})
}

// Get returns a specific group with the caller's role
// @Summary Get a group
// @Description Get details of a specific group, including the caller's role
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} GroupResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	// Non-members get the same 404 as a missing group
	membership, err := h.membership(groupID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var group models.Group
	if err := h.db.First(&group, "id = ?", groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var memberCount int64
	h.db.Model(&models.Member{}).Where("group_id = ?", groupID).Count(&memberCount)

	c.JSON(http.StatusOK, GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		CreatorID:   group.CreatorID,
		Role:        string(membership.Role),
		MemberCount: int(memberCount),
	})
}

// Delete deletes a group and everything in it (creator only)
// @Summary Delete a group
// @Description Delete a group and cascade to its members, tasks, and invites (creator only)
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} map[string]string "Group deleted"
// @Failure 403 {object} map[string]string "Creator access required"
// @Security BearerAuth
// @Router /groups/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	membership, err := h.membership(groupID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	if !access.CanDeleteGroup(membership.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Creator access required"})
		return
	}

	// Cascade in a single transaction so a partial delete never leaves
	// orphaned members, tasks, or invites behind.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.Member{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.Invite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, "id = ?", groupID).Error
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

// RegisterRoutes registers group routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", h.Delete)
}
