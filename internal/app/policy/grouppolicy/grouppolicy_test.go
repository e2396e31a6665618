package grouppolicy_test

import (
	"testing"

	"github.com/dalemusser/ideahub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/ideahub/internal/app/system/apperr"
	"github.com/dalemusser/ideahub/internal/domain/models"
)

func member(id, role string) models.GroupMember {
	return models.GroupMember{UserID: id, Role: role}
}

var (
	owner  = member("o", models.RoleOwner)
	admin  = member("a", models.RoleAdmin)
	admin2 = member("a2", models.RoleAdmin)
	plain  = member("m", models.RoleMember)
	plain2 = member("m2", models.RoleMember)
)

func TestCanRemoveMember(t *testing.T) {
	tests := []struct {
		name     string
		actor    models.GroupMember
		target   models.GroupMember
		wantCode string
	}{
		{"owner removes admin", owner, admin, ""},
		{"owner removes member", owner, plain, ""},
		{"owner removes self", owner, owner, apperr.CodeCannotRemoveSelf},
		{"admin removes member", admin, plain, ""},
		{"admin removes admin", admin, admin2, apperr.CodeForbidden},
		{"admin removes owner", admin, owner, apperr.CodeForbidden},
		{"member removes member", plain, plain2, apperr.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := grouppolicy.CanRemoveMember(tt.actor, tt.target)
			if got := apperr.CodeOf(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q (err %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestCanChangeRole(t *testing.T) {
	tests := []struct {
		name     string
		actor    models.GroupMember
		target   models.GroupMember
		role     string
		wantCode string
	}{
		{"owner promotes", owner, plain, models.RoleAdmin, ""},
		{"owner demotes", owner, admin, models.RoleMember, ""},
		{"owner touches own row", owner, owner, models.RoleAdmin, apperr.CodeOwnerRoleImmutable},
		{"owner grants owner", owner, plain, models.RoleOwner, apperr.CodeInvalidInput},
		{"admin promotes", admin, plain, models.RoleAdmin, apperr.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := grouppolicy.CanChangeRole(tt.actor, tt.target, tt.role)
			if got := apperr.CodeOf(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestSimpleRules(t *testing.T) {
	if err := grouppolicy.CanManage(admin); err != nil {
		t.Errorf("admin should manage: %v", err)
	}
	if !apperr.Is(grouppolicy.CanManage(plain), apperr.KindUnauthorized) {
		t.Error("member should not manage")
	}
	if err := grouppolicy.CanDeleteGroup(admin); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("admin delete group: %v", err)
	}
	if !apperr.HasCode(grouppolicy.CanLeave(owner), apperr.CodeOwnerCannotLeave) {
		t.Error("owner should not leave")
	}
	if err := grouppolicy.CanLeave(admin); err != nil {
		t.Errorf("admin leave: %v", err)
	}
	if err := grouppolicy.CanDeleteAuthored(plain, "m"); err != nil {
		t.Errorf("author delete: %v", err)
	}
	if err := grouppolicy.CanDeleteAuthored(plain, "someone-else"); err == nil {
		t.Error("non-author member should not delete")
	}
	if err := grouppolicy.CanDeleteAuthored(admin, "someone-else"); err != nil {
		t.Errorf("admin delete authored: %v", err)
	}
}
