package groups_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/ideahub/internal/app/features/groups"
	"github.com/dalemusser/ideahub/internal/app/services/membership"
	"github.com/dalemusser/ideahub/internal/app/system/auditlog"
	"github.com/dalemusser/ideahub/internal/app/system/ratelimit"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/dalemusser/ideahub/internal/testutil"
	"github.com/dalemusser/ideahub/internal/testutil/memstore"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type env struct {
	mem    *memstore.Store
	h      *groups.Handler
	router chi.Router
}

func newEnv(t *testing.T, maxMembers int) *env {
	t.Helper()
	mem := memstore.New()
	st := mem.Bundle()
	logger := zap.NewNop()
	svc := membership.New(st, &memstore.Outbox{}, auditlog.New(&memstore.AuditTrail{}, logger, auditlog.Uniform("db")), logger, maxMembers)

	for _, u := range []testutil.TestUser{testutil.Alice(), testutil.Bob(), testutil.Carol()} {
		if _, err := st.Users.Upsert(context.Background(), models.User{ID: u.ID, DisplayName: u.Name, Email: u.Email}); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	h := groups.NewHandler(svc, logger)
	return &env{mem: mem, h: h, router: groups.Routes(h, nil, nil)}
}

func (e *env) do(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) createGroup(t *testing.T, owner testutil.TestUser) models.Group {
	t.Helper()
	rec := e.do(testutil.NewJSONRequest("POST", "/", map[string]string{"name": "Team A"}, owner))
	rec.AssertStatus(t, http.StatusCreated)
	var g models.Group
	rec.DecodeJSON(t, &g)
	return g
}

func (e *env) join(t *testing.T, g models.Group, owner, u testutil.TestUser) {
	t.Helper()
	rec := e.do(testutil.NewJSONRequest("POST", "/join", map[string]string{"inviteCode": g.InviteCode}, u))
	rec.AssertStatus(t, http.StatusAccepted)
	rec = e.do(testutil.NewAuthenticatedRequest("POST", "/"+g.ID.Hex()+"/requests/"+u.ID+"/approve", owner))
	rec.AssertStatus(t, http.StatusNoContent)
}

func TestCreateGroup(t *testing.T) {
	e := newEnv(t, 10)
	g := e.createGroup(t, testutil.Alice())

	if g.OwnerID != testutil.Alice().ID || g.MemberCount != 1 {
		t.Errorf("group = %+v", g)
	}
	if len(g.InviteCode) != 9 {
		t.Errorf("invite code = %q", g.InviteCode)
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	e := newEnv(t, 10)
	tests := []struct {
		name string
		body any
	}{
		{"missing name", map[string]string{"description": "x"}},
		{"unknown field", map[string]string{"name": "x", "owner": "bob"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(testutil.NewJSONRequest("POST", "/", tt.body, testutil.Alice()))
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, `"kind":"validation"`)
		})
	}
}

func TestRequiresCaller(t *testing.T) {
	e := newEnv(t, 10)
	rec := e.do(testutil.NewRequest("POST", "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, `"kind":"unauthenticated"`)
}

func TestJoinApproveFlow(t *testing.T) {
	e := newEnv(t, 10)
	alice, bob := testutil.Alice(), testutil.Bob()
	g := e.createGroup(t, alice)

	rec := e.do(testutil.NewJSONRequest("POST", "/join", map[string]string{"inviteCode": g.InviteCode}, bob))
	rec.AssertStatus(t, http.StatusAccepted)
	rec.AssertContains(t, `"status":"pending"`)

	// A second request is a conflict.
	rec = e.do(testutil.NewJSONRequest("POST", "/join", map[string]string{"inviteCode": g.InviteCode}, bob))
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, `"code":"duplicate_request"`)

	// Members cannot see requests; the owner can.
	rec = e.do(testutil.NewAuthenticatedRequest("GET", "/"+g.ID.Hex()+"/requests", bob))
	rec.AssertStatus(t, http.StatusForbidden)
	rec = e.do(testutil.NewAuthenticatedRequest("GET", "/"+g.ID.Hex()+"/requests", alice))
	rec.AssertStatus(t, http.StatusOK)
	var reqs []models.JoinRequest
	rec.DecodeJSON(t, &reqs)
	if len(reqs) != 1 || reqs[0].UserID != bob.ID {
		t.Fatalf("requests = %+v", reqs)
	}

	rec = e.do(testutil.NewAuthenticatedRequest("POST", "/"+g.ID.Hex()+"/requests/"+bob.ID+"/approve", alice))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = e.do(testutil.NewAuthenticatedRequest("GET", "/"+g.ID.Hex()+"/members", bob))
	rec.AssertStatus(t, http.StatusOK)
	var members []models.GroupMember
	rec.DecodeJSON(t, &members)
	if len(members) != 2 {
		t.Errorf("members = %d, want 2", len(members))
	}
}

func TestJoin_InvalidCode(t *testing.T) {
	e := newEnv(t, 10)
	rec := e.do(testutil.NewJSONRequest("POST", "/join", map[string]string{"inviteCode": "ab"}, testutil.Bob()))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, `"code":"invalid_invite_code"`)
}

func TestJoin_ThrottlesUnknownCodes(t *testing.T) {
	e := newEnv(t, 10)
	e.h.JoinLimit = ratelimit.NewJoinLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer e.h.JoinLimit.Stop()
	g := e.createGroup(t, testutil.Alice())

	for i := 0; i < 2; i++ {
		rec := e.do(testutil.NewJSONRequest("POST", "/join", map[string]string{"inviteCode": "ZZZZ-ZZZZ"}, testutil.Bob()))
		rec.AssertStatus(t, http.StatusNotFound)
	}

	rec := e.do(testutil.NewJSONRequest("POST", "/join", map[string]string{"inviteCode": g.InviteCode}, testutil.Bob()))
	rec.AssertStatus(t, http.StatusTooManyRequests)
	rec.AssertContains(t, `"code":"rate_limited"`)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	// Carol is not affected by Bob's misses.
	rec = e.do(testutil.NewJSONRequest("POST", "/join", map[string]string{"inviteCode": g.InviteCode}, testutil.Carol()))
	rec.AssertStatus(t, http.StatusAccepted)
}

func TestApprove_GroupFull(t *testing.T) {
	e := newEnv(t, 2)
	alice, bob, carol := testutil.Alice(), testutil.Bob(), testutil.Carol()
	g := e.createGroup(t, alice)
	e.join(t, g, alice, bob)

	rec := e.do(testutil.NewJSONRequest("POST", "/join", map[string]string{"inviteCode": g.InviteCode}, carol))
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, `"code":"group_full"`)
}

func TestGetGroup_NonMemberForbidden(t *testing.T) {
	e := newEnv(t, 10)
	g := e.createGroup(t, testutil.Alice())

	rec := e.do(testutil.NewAuthenticatedRequest("GET", "/"+g.ID.Hex(), testutil.Carol()))
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertContains(t, `"code":"not_member"`)

	rec = e.do(testutil.NewAuthenticatedRequest("GET", "/not-an-id", testutil.Alice()))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestRoleRemoveLeave(t *testing.T) {
	e := newEnv(t, 10)
	alice, bob, carol := testutil.Alice(), testutil.Bob(), testutil.Carol()
	g := e.createGroup(t, alice)
	e.join(t, g, alice, bob)
	e.join(t, g, alice, carol)
	base := "/" + g.ID.Hex()

	rec := e.do(testutil.NewJSONRequest("PUT", base+"/members/"+bob.ID+"/role", map[string]string{"role": "owner"}, alice))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = e.do(testutil.NewJSONRequest("PUT", base+"/members/"+bob.ID+"/role", map[string]string{"role": "admin"}, alice))
	rec.AssertStatus(t, http.StatusNoContent)

	// Admin bob removes carol.
	rec = e.do(testutil.NewAuthenticatedRequest("DELETE", base+"/members/"+carol.ID, bob))
	rec.AssertStatus(t, http.StatusNoContent)

	// The owner cannot leave.
	rec = e.do(testutil.NewAuthenticatedRequest("DELETE", base+"/members/me", alice))
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, `"code":"owner_cannot_leave"`)

	rec = e.do(testutil.NewAuthenticatedRequest("DELETE", base+"/members/me", bob))
	rec.AssertStatus(t, http.StatusNoContent)

	got, _ := e.mem.Group(g.ID)
	if got.MemberCount != 1 || len(e.mem.MemberRows(g.ID)) != 1 {
		t.Errorf("after leave: count=%d rows=%d", got.MemberCount, len(e.mem.MemberRows(g.ID)))
	}
}

func TestInviteAcceptDecline(t *testing.T) {
	e := newEnv(t, 10)
	alice, bob, carol := testutil.Alice(), testutil.Bob(), testutil.Carol()
	g := e.createGroup(t, alice)
	base := "/" + g.ID.Hex()

	rec := e.do(testutil.NewJSONRequest("POST", base+"/invites", map[string]string{"lookup": "BOB@test.com"}, alice))
	rec.AssertStatus(t, http.StatusCreated)
	var inv models.GroupInvite
	rec.DecodeJSON(t, &inv)
	if inv.InvitedUserID != bob.ID {
		t.Fatalf("invite = %+v", inv)
	}

	rec = e.do(testutil.NewJSONRequest("POST", base+"/invites", map[string]string{"lookup": "nobody@test.com"}, alice))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = e.do(testutil.NewAuthenticatedRequest("POST", base+"/invite/accept", bob))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = e.do(testutil.NewJSONRequest("POST", base+"/invites", map[string]string{"lookup": carol.Email}, alice))
	rec.AssertStatus(t, http.StatusCreated)
	rec = e.do(testutil.NewAuthenticatedRequest("POST", base+"/invite/decline", carol))
	rec.AssertStatus(t, http.StatusNoContent)

	got, _ := e.mem.Group(g.ID)
	if got.MemberCount != 2 || !got.HasMember(bob.ID) || got.HasMember(carol.ID) {
		t.Errorf("group = %+v", got)
	}
}

func TestRegenerateAndDelete(t *testing.T) {
	e := newEnv(t, 10)
	alice, bob := testutil.Alice(), testutil.Bob()
	g := e.createGroup(t, alice)
	e.join(t, g, alice, bob)
	base := "/" + g.ID.Hex()

	rec := e.do(testutil.NewAuthenticatedRequest("POST", base+"/invite-code", alice))
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		InviteCode string `json:"inviteCode"`
	}
	rec.DecodeJSON(t, &body)
	if body.InviteCode == "" || body.InviteCode == g.InviteCode {
		t.Errorf("invite code not regenerated: %q", body.InviteCode)
	}

	rec = e.do(testutil.NewAuthenticatedRequest("DELETE", base, bob))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = e.do(testutil.NewAuthenticatedRequest("DELETE", base, alice))
	rec.AssertStatus(t, http.StatusNoContent)
	if _, ok := e.mem.Group(g.ID); ok {
		t.Error("group still present after delete")
	}
}
