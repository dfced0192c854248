package models

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestTaskTransitions(t *testing.T) {
	cases := []struct {
		from    TaskStatus
		to      TaskStatus
		allowed bool
	}{
		{TaskStatusPending, TaskStatusClaimed, true},
		{TaskStatusClaimed, TaskStatusPending, true},
		{TaskStatusClaimed, TaskStatusCompleted, true},
		{TaskStatusCompleted, TaskStatusClaimed, true},
		{TaskStatusPending, TaskStatusCompleted, false},
		{TaskStatusCompleted, TaskStatusPending, false},
		{TaskStatusPending, TaskStatusPending, false},
		{TaskStatusClaimed, TaskStatusClaimed, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestInviteTransitions(t *testing.T) {
	terminal := []InviteStatus{InviteStatusAccepted, InviteStatusRejected, InviteStatusRevoked}

	for _, to := range terminal {
		if !InviteStatusPending.CanTransition(to) {
			t.Errorf("Expected pending -> %s to be allowed", to)
		}
	}

	// Terminal states allow no transitions at all
	all := []InviteStatus{InviteStatusPending, InviteStatusAccepted, InviteStatusRejected, InviteStatusRevoked}
	for _, from := range terminal {
		for _, to := range all {
			if from.CanTransition(to) {
				t.Errorf("Expected %s -> %s to be rejected", from, to)
			}
		}
	}
}

func TestStatusValid(t *testing.T) {
	if !TaskStatusPending.Valid() || !TaskStatusClaimed.Valid() || !TaskStatusCompleted.Valid() {
		t.Error("Expected known task statuses to be valid")
	}
	if TaskStatus("archived").Valid() {
		t.Error("Expected unknown task status to be invalid")
	}
	if !InviteStatusPending.Valid() {
		t.Error("Expected pending invite status to be valid")
	}
	if InviteStatus("expired").Valid() {
		t.Error("Expected unknown invite status to be invalid")
	}
}

func TestUUIDAssignedOnCreate(t *testing.T) {
	db := setupTestDB(t)

	user := User{Email: "test@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if user.ID == "" {
		t.Error("Expected user ID to be assigned on create")
	}

	group := Group{Name: "Test Group", CreatorID: user.ID}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}
	if group.ID == "" {
		t.Error("Expected group ID to be assigned on create")
	}
}

func TestPendingInviteUniqueIndex(t *testing.T) {
	db := setupTestDB(t)

	sender := User{Email: "sender@example.com"}
	recipient := User{Email: "recipient@example.com"}
	db.Create(&sender)
	db.Create(&recipient)
	group := Group{Name: "Test Group", CreatorID: sender.ID}
	db.Create(&group)

	first := Invite{
		GroupID:    group.ID,
		FromUserID: sender.ID,
		ToUserID:   recipient.ID,
		Status:     InviteStatusPending,
	}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("Failed to create first invite: %v", err)
	}

	// A second pending invite for the same (group, recipient) pair must be
	// rejected by the store even when the application check is bypassed
	second := Invite{
		GroupID:    group.ID,
		FromUserID: sender.ID,
		ToUserID:   recipient.ID,
		Status:     InviteStatusPending,
	}
	if err := db.Create(&second).Error; err == nil {
		t.Error("Expected unique index to reject a duplicate pending invite")
	}

	// Once the first invite leaves pending, a new pending invite is allowed
	if err := db.Model(&first).Update("status", InviteStatusRejected).Error; err != nil {
		t.Fatalf("Failed to update invite: %v", err)
	}
	third := Invite{
		GroupID:    group.ID,
		FromUserID: sender.ID,
		ToUserID:   recipient.ID,
		Status:     InviteStatusPending,
	}
	if err := db.Create(&third).Error; err != nil {
		t.Errorf("Expected a new pending invite after the first resolved, got: %v", err)
	}
}

func TestMemberUniquePerGroup(t *testing.T) {
	db := setupTestDB(t)

	user := User{Email: "member@example.com"}
	db.Create(&user)
	group := Group{Name: "Test Group", CreatorID: user.ID}
	db.Create(&group)

	first := Member{GroupID: group.ID, UserID: user.ID, Role: MemberRoleCreator}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("Failed to create membership: %v", err)
	}

	dup := Member{GroupID: group.ID, UserID: user.ID, Role: MemberRoleMember}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected unique index to reject a duplicate membership")
	}

	// Hard delete frees the slot so the user can rejoin later
	if err := db.Delete(&first).Error; err != nil {
		t.Fatalf("Failed to delete membership: %v", err)
	}
	rejoin := Member{GroupID: group.ID, UserID: user.ID, Role: MemberRoleMember}
	if err := db.Create(&rejoin).Error; err != nil {
		t.Errorf("Expected rejoining after removal to work, got: %v", err)
	}
}
