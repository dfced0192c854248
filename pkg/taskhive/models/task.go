package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus represents a task's position in its lifecycle
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusClaimed   TaskStatus = "claimed"
	TaskStatusCompleted TaskStatus = "completed"
)

// taskTransitions is the task state machine. A task moves forward one step at
// a time and can be walked back one step; pending -> completed is not an edge.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending:   {TaskStatusClaimed},
	TaskStatusClaimed:   {TaskStatusPending, TaskStatusCompleted},
	TaskStatusCompleted: {TaskStatusClaimed},
}

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	_, ok := taskTransitions[s]
	return ok
}

// CanTransition reports whether the state machine allows moving from s to
// next.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	for _, t := range taskTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Task is a unit of work within a group. ClaimerID is set while the task is
// claimed or completed and nil while it is pending.
type Task struct {
	ID          string     `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	GroupID     string     `gorm:"type:varchar(36);not null;index" json:"group_id"`
	Description string     `gorm:"not null" json:"description"`
	CreatorID   string     `gorm:"type:varchar(36);not null" json:"creator_id"`
	ClaimerID   *string    `gorm:"type:varchar(36)" json:"claimer_id"`
	Status      TaskStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	// Relationships
	Claimer *User `gorm:"foreignKey:ClaimerID" json:"claimer,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
