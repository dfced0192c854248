package access

import (
	"testing"

	"github.com/taskhive/taskhive/pkg/taskhive/models"
)

func TestCreatorOnlyPredicates(t *testing.T) {
	predicates := map[string]func(models.MemberRole) bool{
		"CanManageMembers": CanManageMembers,
		"CanInvite":        CanInvite,
		"CanRevokeInvite":  CanRevokeInvite,
		"CanDeleteGroup":   CanDeleteGroup,
	}

	for name, pred := range predicates {
		if !pred(models.MemberRoleCreator) {
			t.Errorf("%s should allow creator", name)
		}
		if pred(models.MemberRoleAdmin) {
			t.Errorf("%s should deny admin", name)
		}
		if pred(models.MemberRoleMember) {
			t.Errorf("%s should deny member", name)
		}
	}
}

func TestCanDeleteTask(t *testing.T) {
	if !CanDeleteTask(models.MemberRoleMember, true) {
		t.Error("Author should be able to delete their own task")
	}
	if CanDeleteTask(models.MemberRoleMember, false) {
		t.Error("Plain member should not delete someone else's task")
	}
	if !CanDeleteTask(models.MemberRoleAdmin, false) {
		t.Error("Admin should be able to delete any task")
	}
	if !CanDeleteTask(models.MemberRoleCreator, false) {
		t.Error("Creator should be able to delete any task")
	}
}
