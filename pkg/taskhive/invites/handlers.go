package invites

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/access"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/database"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"gorm.io/gorm"
)

// Handler handles invite-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new invites handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateInviteRequest represents the request to invite a user by email
type CreateInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdateInviteRequest represents the request to resolve a pending invite
type UpdateInviteRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected revoked"`
}

// InviteResponse represents an invite in API responses
type InviteResponse struct {
	ID         string `json:"id"`
	GroupID    string `json:"group_id"`
	GroupName  string `json:"group_name,omitempty"`
	FromUserID string `json:"from_user_id"`
	FromEmail  string `json:"from_email,omitempty"`
	ToUserID   string `json:"to_user_id"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

func toResponse(invites []models.Invite) []InviteResponse {
	out := make([]InviteResponse, len(invites))
	for i, inv := range invites {
		out[i] = InviteResponse{
			ID:         inv.ID,
			GroupID:    inv.GroupID,
			GroupName:  inv.Group.Name,
			FromUserID: inv.FromUserID,
			FromEmail:  inv.FromUser.Email,
			ToUserID:   inv.ToUserID,
			Status:     string(inv.Status),
			CreatedAt:  inv.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}

// pendingFor returns the user's pending invites, joined with the group name
// and sender email for display.
func (h *Handler) pendingFor(userID string) ([]models.Invite, error) {
	var invites []models.Invite
	err := h.db.Preload("Group").Preload("FromUser").
		Where("to_user_id = ? AND status = ?", userID, models.InviteStatusPending).
		Find(&invites).Error
	return invites, err
}

// forGroup returns every invite for a group regardless of status, for the
// creator's audit view.
func (h *Handler) forGroup(groupID string) ([]models.Invite, error) {
	var invites []models.Invite
	err := h.db.Preload("Group").Preload("FromUser").
		Where("group_id = ?", groupID).
		Find(&invites).Error
	return invites, err
}

func (h *Handler) membership(groupID, userID string) (models.Member, error) {
	var member models.Member
	err := h.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	return member, err
}

// ListMine returns the caller's pending invites
// @Summary List my invites
// @Description Get the authenticated user's pending invites
// @Tags invites
// @Produce json
// @Success 200 {array} InviteResponse
// @Security BearerAuth
// @Router /invites [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	invites, err := h.pendingFor(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invites"})
		return
	}

	c.JSON(http.StatusOK, toResponse(invites))
}

// ListGroup returns all invites for a group, any status (creator only)
// @Summary List group invites
// @Description Get every invite sent for a group, regardless of status
// @Tags invites
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {array} InviteResponse
// @Failure 403 {object} map[string]string "Creator access required"
// @Security BearerAuth
// @Router /groups/{id}/invites [get]
func (h *Handler) ListGroup(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	member, err := h.membership(groupID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if !access.CanInvite(member.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Creator access required"})
		return
	}

	invites, err := h.forGroup(groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invites"})
		return
	}

	c.JSON(http.StatusOK, toResponse(invites))
}

// Create invites a user to the group by email (creator only)
// @Summary Create an invite
// @Description Invite an existing user to the group by email address
// @Tags invites
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param request body CreateInviteRequest true "Recipient email"
// @Success 201 {array} InviteResponse
// @Failure 403 {object} map[string]string "Creator access required"
// @Failure 404 {object} map[string]string "No user with that email"
// @Failure 409 {object} map[string]string "Invite already pending"
// @Security BearerAuth
// @Router /groups/{id}/invites [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID := c.Param("id")

	member, err := h.membership(groupID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	if !access.CanInvite(member.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Creator access required"})
		return
	}

	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Resolve recipient email to an existing user
	var recipient models.User
	if err := h.db.Where("email = ?", req.Email).First(&recipient).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No user found with that email"})
		return
	}

	// Already a member: nothing to invite
	if _, err := h.membership(groupID, recipient.ID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a member"})
		return
	}

	// At most one pending invite per (group, recipient) pair
	var existing models.Invite
	if err := h.db.Where("group_id = ? AND to_user_id = ? AND status = ?",
		groupID, recipient.ID, models.InviteStatusPending).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Invite already pending"})
		return
	}

	invite := models.Invite{
		GroupID:    groupID,
		FromUserID: userID,
		ToUserID:   recipient.ID,
		Status:     models.InviteStatusPending,
	}

	if err := h.db.Create(&invite).Error; err != nil {
		// The partial unique index catches a concurrent duplicate that
		// slipped past the check above.
		if database.IsDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Invite already pending"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invite"})
		return
	}

	invites, err := h.forGroup(groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invites"})
		return
	}

	c.JSON(http.StatusCreated, toResponse(invites))
}

// Update resolves a pending invite. The recipient may accept or reject; the
// group creator may revoke. Accepting inserts the membership row in the same
// transaction - the only path that grows membership besides group creation.
//
// The response shape depends on the transition: accepted and rejected return
// the recipient's remaining pending invites, revoked returns the group's
// invite list, so each caller gets the view relevant to its role.
// @Summary Resolve an invite
// @Description Accept, reject, or revoke a pending invite
// @Tags invites
// @Accept json
// @Produce json
// @Param id path string true "Invite ID"
// @Param request body UpdateInviteRequest true "New status"
// @Success 200 {array} InviteResponse
// @Failure 403 {object} map[string]string "Not allowed"
// @Failure 404 {object} map[string]string "Invite not found"
// @Failure 409 {object} map[string]string "Invite is no longer pending"
// @Security BearerAuth
// @Router /invites/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	inviteID := c.Param("id")

	var req UpdateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	newStatus := models.InviteStatus(req.Status)

	var invite models.Invite
	if err := h.db.First(&invite, "id = ?", inviteID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invite not found"})
		return
	}

	if !invite.Status.CanTransition(newStatus) {
		c.JSON(http.StatusConflict, gin.H{"error": "Invite is no longer pending"})
		return
	}

	switch newStatus {
	case models.InviteStatusAccepted, models.InviteStatusRejected:
		if invite.ToUserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the recipient can resolve this invite"})
			return
		}
	case models.InviteStatusRevoked:
		member, err := h.membership(invite.GroupID, userID)
		if err != nil || !access.CanRevokeInvite(member.Role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Creator access required"})
			return
		}
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invite).Update("status", newStatus).Error; err != nil {
			return err
		}
		if newStatus == models.InviteStatusAccepted {
			member := models.Member{
				GroupID: invite.GroupID,
				UserID:  invite.ToUserID,
				Role:    models.MemberRoleMember,
			}
			return tx.Create(&member).Error
		}
		return nil
	})

	if err != nil {
		if database.IsDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "User is already a member"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invite"})
		return
	}

	var invites []models.Invite
	if newStatus == models.InviteStatusRevoked {
		invites, err = h.forGroup(invite.GroupID)
	} else {
		invites, err = h.pendingFor(invite.ToUserID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invites"})
		return
	}

	c.JSON(http.StatusOK, toResponse(invites))
}

// RegisterRoutes registers the user-scoped invite routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListMine)
	rg.PUT("/:id", h.Update)
}

// RegisterGroupRoutes registers the group-scoped invite routes
func (h *Handler) RegisterGroupRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/invites", h.ListGroup)
	rg.POST("/:id/invites", h.Create)
}
