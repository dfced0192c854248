package groups

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/access"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
)

// MemberResponse represents a group member in API responses
type MemberResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

// UpdateMemberRequest represents a request to update a member's role.
// The creator role is assigned once at group creation and is not a valid
// target here.
type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required,oneof=admin member"`
}

// memberList returns the group's refreshed member list, joined with each
// user's email. Mutating member operations respond with this so the caller
// can re-render without a second fetch.
func (h *Handler) memberList(groupID string) ([]MemberResponse, error) {
	var memberships []models.Member
	if err := h.db.Preload("User").Where("group_id = ?", groupID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	members := make([]MemberResponse, len(memberships))
	for i, m := range memberships {
		members[i] = MemberResponse{
			UserID:   m.UserID,
			Email:    m.User.Email,
			Role:     string(m.Role),
			JoinedAt: m.CreatedAt.Format(time.RFC3339),
		}
	}
	return members, nil
}

// ListMembers returns all members of a group
// @Summary List group members
// @Description Get all members of a group with their roles
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {array} MemberResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	if _, err := h.membership(groupID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	members, err := h.memberList(groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	c.JSON(http.StatusOK, members)
}

// UpdateMember promotes or demotes a member (creator only)
// @Summary Update a member's role
// @Description Set a member's role to admin or member (creator only; the creator row is immutable)
// @Tags groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param userId path string true "User ID"
// @Param request body UpdateMemberRequest true "New role"
// @Success 200 {array} MemberResponse
// @Failure 403 {object} map[string]string "Creator access required"
// @Failure 404 {object} map[string]string "Member not found"
// @Security BearerAuth
// @Router /groups/{id}/members/{userId} [put]
func (h *Handler) UpdateMember(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")
	memberID := c.Param("userId")

	caller, err := h.membership(groupID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if !access.CanManageMembers(caller.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Creator access required"})
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := h.membership(groupID, memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	// The creator role is set at group creation and never reassigned
	if target.Role == models.MemberRoleCreator {
		c.JSON(http.StatusForbidden, gin.H{"error": "The creator's role cannot be changed"})
		return
	}

	target.Role = models.MemberRole(req.Role)
	if err := h.db.Save(&target).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update member"})
		return
	}

	members, err := h.memberList(groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	c.JSON(http.StatusOK, members)
}

// RemoveMember removes a member from a group. The creator may remove any
// non-creator member; everyone else may only remove themself (leave).
// @Summary Remove a group member
// @Description Remove a member from a group, or leave the group when removing yourself
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Param userId path string true "User ID"
// @Success 200 {array} MemberResponse
// @Failure 403 {object} map[string]string "Not allowed"
// @Failure 404 {object} map[string]string "Member not found"
// @Security BearerAuth
// @Router /groups/{id}/members/{userId} [delete]
func (h *Handler) RemoveMember(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")
	memberID := c.Param("userId")

	caller, err := h.membership(groupID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	target, err := h.membership(groupID, memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	// The creator stays for the lifetime of the group; deleting the group is
	// the only way out.
	if target.Role == models.MemberRoleCreator {
		c.JSON(http.StatusForbidden, gin.H{"error": "The creator cannot be removed"})
		return
	}

	if userID != memberID && !access.CanManageMembers(caller.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Creator access required"})
		return
	}

	if err := h.db.Delete(&target).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	members, err := h.memberList(groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	c.JSON(http.StatusOK, members)
}

// RegisterMemberRoutes registers member management routes
func (h *Handler) RegisterMemberRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/members", h.ListMembers)
	rg.PUT("/:id/members/:userId", h.UpdateMember)
	rg.DELETE("/:id/members/:userId", h.RemoveMember)
}
