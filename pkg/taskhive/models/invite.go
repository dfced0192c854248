package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InviteStatus represents an invite's position in its lifecycle
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusRejected InviteStatus = "rejected"
	InviteStatusRevoked  InviteStatus = "revoked"
)

// inviteTransitions is the invite state machine. Every state other than
// pending is terminal.
var inviteTransitions = map[InviteStatus][]InviteStatus{
	InviteStatusPending:  {InviteStatusAccepted, InviteStatusRejected, InviteStatusRevoked},
	InviteStatusAccepted: {},
	InviteStatusRejected: {},
	InviteStatusRevoked:  {},
}

// Valid reports whether s is a known invite status.
func (s InviteStatus) Valid() bool {
	_, ok := inviteTransitions[s]
	return ok
}

// CanTransition reports whether the state machine allows moving from s to
// next.
func (s InviteStatus) CanTransition(next InviteStatus) bool {
	for _, t := range inviteTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Invite is a pending offer of membership from a sender to a recipient.
// Invites are never deleted outside a group cascade, only transitioned.
//
// The partial unique index enforces the single-pending-invite rule per
// (group, recipient) pair at the store, closing the window where two
// concurrent creates both pass the application-level check.
type Invite struct {
	ID         string       `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	GroupID    string       `gorm:"type:varchar(36);not null;index:idx_pending_invite,unique,where:status = 'pending'" json:"group_id"`
	FromUserID string       `gorm:"type:varchar(36);not null" json:"from_user_id"`
	ToUserID   string       `gorm:"type:varchar(36);not null;index:idx_pending_invite,unique,where:status = 'pending'" json:"to_user_id"`
	Status     InviteStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	// Relationships
	Group    Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	FromUser User  `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
	ToUser   User  `gorm:"foreignKey:ToUserID" json:"to_user,omitempty"`
}

func (i *Invite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
