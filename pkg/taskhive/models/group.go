package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group is a collaborative unit owning members, tasks, and invites.
// Deleting a group cascades to all three.
type Group struct {
	ID        string         `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	CreatorID string         `gorm:"type:varchar(36);not null" json:"creator_id"`

	// Relationships
	Members []Member `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	Tasks   []Task   `gorm:"foreignKey:GroupID" json:"tasks,omitempty"`
	Invites []Invite `gorm:"foreignKey:GroupID" json:"invites,omitempty"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
