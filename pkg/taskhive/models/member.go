package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberRole represents a user's role within a specific group
type MemberRole string

const (
	MemberRoleCreator MemberRole = "creator"
	MemberRoleAdmin   MemberRole = "admin"
	MemberRoleMember  MemberRole = "member"
)

// Member is the many-to-many relationship between users and groups, carrying
// a role. Exactly one creator row exists per group, written in the same
// transaction as the group itself; no operation changes or removes it while
// the group exists. Membership only ever grows through group creation or
// invite acceptance.
//
// Member rows are hard-deleted so a user who left can be re-invited without
// tripping the composite unique index.
type Member struct {
	ID        string     `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time  `json:"joined_at"`
	UpdatedAt time.Time  `json:"-"`
	GroupID   string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_group_user" json:"group_id"`
	UserID    string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_group_user" json:"user_id"`
	Role      MemberRole `gorm:"type:varchar(20);default:'member'" json:"role"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
