// Package access holds the authorization predicates for group-scoped
// actions. Every mutating handler evaluates one of these against the caller's
// membership row before touching the store; nothing is left to the client.
package access

import "github.com/taskhive/taskhive/pkg/taskhive/models"

// CanManageMembers reports whether a role may promote, demote, or remove
// other members. Only the group creator may.
func CanManageMembers(role models.MemberRole) bool {
	return role == models.MemberRoleCreator
}

// CanInvite reports whether a role may send invites and view the group's
// invite history.
func CanInvite(role models.MemberRole) bool {
	return role == models.MemberRoleCreator
}

// CanRevokeInvite reports whether a role may revoke a pending invite.
func CanRevokeInvite(role models.MemberRole) bool {
	return role == models.MemberRoleCreator
}

// CanDeleteGroup reports whether a role may delete the group and everything
// in it.
func CanDeleteGroup(role models.MemberRole) bool {
	return role == models.MemberRoleCreator
}

// CanDeleteTask reports whether a member may delete a task. Authors may
// delete their own tasks; admins and the creator may delete any.
func CanDeleteTask(role models.MemberRole, isAuthor bool) bool {
	return isAuthor || role == models.MemberRoleAdmin || role == models.MemberRoleCreator
}
