package auditlog_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/ideahub/internal/app/features/auditlog"
	"github.com/dalemusser/ideahub/internal/app/services/membership"
	"github.com/dalemusser/ideahub/internal/app/store/audit"
	auditsys "github.com/dalemusser/ideahub/internal/app/system/auditlog"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/dalemusser/ideahub/internal/testutil"
	"github.com/dalemusser/ideahub/internal/testutil/memstore"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type feed struct {
	Events []struct {
		Category  string `json:"category"`
		EventType string `json:"eventType"`
		ActorID   string `json:"actorId"`
		UserID    string `json:"userId"`
	} `json:"events"`
	Page struct {
		Start   int  `json:"start"`
		End     int  `json:"end"`
		HasNext bool `json:"hasNext"`
	} `json:"page"`
}

type env struct {
	svc    *membership.Service
	trail  *memstore.AuditTrail
	group  models.Group
	router chi.Router
}

// newEnv creates a group owned by Alice with Bob as a plain member, which
// leaves group_created, join_requested and join_approved in the trail.
func newEnv(t *testing.T, events auditlog.EventReader) *env {
	t.Helper()
	ctx := context.Background()
	mem := memstore.New()
	trail := &memstore.AuditTrail{}
	logger := zap.NewNop()
	svc := membership.New(mem.Bundle(), &memstore.Outbox{}, auditsys.New(trail, logger, auditsys.Uniform("db")), logger, 0)

	alice, bob := testutil.Alice(), testutil.Bob()
	g, err := svc.CreateGroup(ctx, alice.Caller(), membership.CreateGroupInput{Name: "Team A"})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := svc.RequestToJoin(ctx, bob.Caller(), g.InviteCode); err != nil {
		t.Fatalf("RequestToJoin: %v", err)
	}
	if err := svc.ApproveJoinRequest(ctx, alice.Caller(), g.ID, bob.ID); err != nil {
		t.Fatalf("ApproveJoinRequest: %v", err)
	}

	if events == nil {
		events = trail
	}
	r := chi.NewRouter()
	r.Mount("/groups/{groupID}/audit", auditlog.Routes(auditlog.NewHandler(svc, events, logger)))
	return &env{svc: svc, trail: trail, group: g, router: r}
}

func (e *env) get(t *testing.T, query string, u testutil.TestUser) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/groups/"+e.group.ID.Hex()+"/audit"+query, u))
	return rec
}

func TestServeList_OwnerSeesNewestFirst(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.get(t, "", testutil.Alice())
	rec.AssertStatus(t, http.StatusOK)

	var got feed
	rec.DecodeJSON(t, &got)
	want := []string{audit.EventJoinApproved, audit.EventJoinRequested, audit.EventGroupCreated}
	if len(got.Events) != len(want) {
		t.Fatalf("got %d events, want %d", len(got.Events), len(want))
	}
	for i, w := range want {
		if got.Events[i].EventType != w {
			t.Errorf("event %d = %q, want %q", i, got.Events[i].EventType, w)
		}
	}
	if got.Page.Start != 1 || got.Page.End != 3 || got.Page.HasNext {
		t.Errorf("page = %+v, want 1..3 without next", got.Page)
	}
}

func TestServeList_Paging(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.get(t, "?limit=2", testutil.Alice())
	rec.AssertStatus(t, http.StatusOK)
	var first feed
	rec.DecodeJSON(t, &first)
	if len(first.Events) != 2 || !first.Page.HasNext {
		t.Fatalf("first page = %d events hasNext=%v, want 2 with next", len(first.Events), first.Page.HasNext)
	}

	rec = e.get(t, "?limit=2&start=3", testutil.Alice())
	var second feed
	rec.DecodeJSON(t, &second)
	if len(second.Events) != 1 || second.Page.HasNext {
		t.Fatalf("second page = %d events hasNext=%v, want 1 without next", len(second.Events), second.Page.HasNext)
	}
	if second.Events[0].EventType != audit.EventGroupCreated {
		t.Errorf("last event = %q, want %q", second.Events[0].EventType, audit.EventGroupCreated)
	}
}

func TestServeList_Filters(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.get(t, "?category=membership&type="+audit.EventJoinRequested, testutil.Alice())
	rec.AssertStatus(t, http.StatusOK)
	var got feed
	rec.DecodeJSON(t, &got)
	if len(got.Events) != 1 || got.Events[0].ActorID != testutil.Bob().ID {
		t.Fatalf("events = %+v, want one join request by bob", got.Events)
	}

	rec = e.get(t, "?category=ideas", testutil.Alice())
	rec.DecodeJSON(t, &got)
	if len(got.Events) != 0 {
		t.Errorf("ideas category returned %d events, want 0", len(got.Events))
	}
}

func TestServeList_UnknownCategory(t *testing.T) {
	e := newEnv(t, nil)
	rec := e.get(t, "?category=auth", testutil.Alice())
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, `"kind":"validation"`)
}

func TestServeList_Access(t *testing.T) {
	e := newEnv(t, nil)

	tests := []struct {
		name string
		user testutil.TestUser
		want int
	}{
		{"plain member", testutil.Bob(), http.StatusForbidden},
		{"outsider", testutil.Carol(), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.get(t, "", tt.user).AssertStatus(t, tt.want)
		})
	}

	t.Run("promoted admin", func(t *testing.T) {
		if err := e.svc.UpdateMemberRole(context.Background(), testutil.Alice().Caller(), e.group.ID, testutil.Bob().ID, models.RoleAdmin); err != nil {
			t.Fatalf("UpdateMemberRole: %v", err)
		}
		e.get(t, "", testutil.Bob()).AssertStatus(t, http.StatusOK)
	})
}

func TestServeList_Unauthenticated(t *testing.T) {
	e := newEnv(t, nil)
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewRequest("GET", "/groups/"+e.group.ID.Hex()+"/audit"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeList_BadGroupID(t *testing.T) {
	e := newEnv(t, nil)
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/groups/nope/audit", testutil.Alice()))
	rec.AssertStatus(t, http.StatusBadRequest)
}

type brokenReader struct{}

func (brokenReader) Query(context.Context, audit.QueryFilter) ([]audit.Event, error) {
	return nil, errors.New("boom")
}

func TestServeList_ReadFailureIsEmpty(t *testing.T) {
	e := newEnv(t, brokenReader{})
	rec := e.get(t, "", testutil.Alice())
	rec.AssertStatus(t, http.StatusOK)
	var got feed
	rec.DecodeJSON(t, &got)
	if len(got.Events) != 0 {
		t.Errorf("got %d events, want 0", len(got.Events))
	}
}
