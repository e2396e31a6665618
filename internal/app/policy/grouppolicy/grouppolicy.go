// internal/app/policy/grouppolicy/grouppolicy.go
package grouppolicy

import (
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/domain/models"
)

// Role rules for a group. Every check takes the actor's membership row as
// read fresh from group_members; a non-member has no row and is rejected by
// the caller before reaching these functions.
//
// Each function returns nil when the action is allowed, or a typed
// Unauthorized/Conflict error naming the rule that failed.

// CanManage reports whether the actor may approve or reject join requests,
// add members directly, regenerate the invite code and approve ideas.
func CanManage(actor models.GroupMember) error {
	if actor.IsManager() {
		return nil
	}
	return apperr.Unauthorized(apperr.CodeForbidden, "only the owner or an admin can do this")
}

// CanRemoveMember: the owner may remove anyone but themself; an admin may
// remove plain members only.
func CanRemoveMember(actor, target models.GroupMember) error {
	if actor.UserID == target.UserID {
		return apperr.Conflict(apperr.CodeCannotRemoveSelf, "use leave to remove yourself")
	}
	switch actor.Role {
	case models.RoleOwner:
		return nil
	case models.RoleAdmin:
		if target.Role == models.RoleMember {
			return nil
		}
	}
	return apperr.Unauthorized(apperr.CodeForbidden, "not allowed to remove this member")
}

// CanChangeRole: owner only, never on the owner's row, and the new role must
// be admin or member.
func CanChangeRole(actor, target models.GroupMember, newRole string) error {
	if actor.Role != models.RoleOwner {
		return apperr.Unauthorized(apperr.CodeForbidden, "only the owner can change roles")
	}
	if target.Role == models.RoleOwner {
		return apperr.Conflict(apperr.CodeOwnerRoleImmutable, "the owner's role cannot change")
	}
	if newRole != models.RoleAdmin && newRole != models.RoleMember {
		return apperr.Validation(apperr.CodeInvalidInput, "role must be admin or member")
	}
	return nil
}

// CanDeleteGroup: owner only.
func CanDeleteGroup(actor models.GroupMember) error {
	if actor.Role == models.RoleOwner {
		return nil
	}
	return apperr.Unauthorized(apperr.CodeForbidden, "only the owner can delete the group")
}

// CanLeave: everyone but the owner, who must delete the group instead.
func CanLeave(m models.GroupMember) error {
	if m.Role == models.RoleOwner {
		return apperr.Conflict(apperr.CodeOwnerCannotLeave, "the owner cannot leave the group")
	}
	return nil
}

// CanDeleteAuthored covers ideas and comments: the author, or an owner/admin.
func CanDeleteAuthored(actor models.GroupMember, authorID string) error {
	if actor.UserID == authorID || actor.IsManager() {
		return nil
	}
	return apperr.Unauthorized(apperr.CodeForbidden, "only the author or an admin can delete this")
}
