package users

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/pkg/taskhive/auth"
	"github.com/taskhive/taskhive/pkg/taskhive/models"
	"gorm.io/gorm"
)

// Handler handles user account requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new users handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// UpdateUserRequest represents the request to update the caller's account
type UpdateUserRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// UserResponse represents user data in API responses
type UserResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

// UpdateMe toggles the caller's active flag. Deactivated accounts keep their
// memberships and rows; auth.RequireActive gates every other route until the
// account is reactivated here.
// @Summary Update the current user
// @Description Activate or deactivate the authenticated user's account
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateUserRequest true "Updated account state"
// @Success 200 {object} UserResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /users/me [put]
func (h *Handler) UpdateMe(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Active = *req.Active
	if err := h.db.Model(&user).Update("active", *req.Active).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		ID:     user.ID,
		Email:  user.Email,
		Active: user.Active,
	})
}

// RegisterRoutes registers user account routes. These sit behind
// authentication only, not RequireActive, so a deactivated user can
// reactivate themself.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/me", h.UpdateMe)
}
