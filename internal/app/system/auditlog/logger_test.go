package auditlog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dalemusser/ideahub/internal/app/store/audit"
	"github.com/dalemusser/ideahub/internal/app/system/auditlog"
	"github.com/dalemusser/ideahub/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingStore struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (s *recordingStore) Log(_ context.Context, e audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, e)
	return nil
}

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// These should all be no-ops, not panic
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.GroupCreated(ctx, "g1", "u1", "Group")
	logger.Idea(ctx, audit.EventGroupIdeaApproved, "g1", "i1", "u1")
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		mode       string
		wantStored int
		wantLogged int
	}{
		{"all", 1, 1},
		{"db", 1, 0},
		{"log", 0, 1},
		{"off", 0, 0},
		{"", 1, 1},
	}

	for _, tt := range tests {
		t.Run("mode="+tt.mode, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			store := &recordingStore{}
			logger := auditlog.New(store, zap.New(core), auditlog.Uniform(tt.mode))
			ctx, cancel := testutil.TestContext()
			defer cancel()

			logger.MemberAdded(ctx, "g1", "owner", "u2", "member", "approve")

			if len(store.events) != tt.wantStored {
				t.Errorf("stored = %d, want %d", len(store.events), tt.wantStored)
			}
			if logs.Len() != tt.wantLogged {
				t.Errorf("logged = %d, want %d", logs.Len(), tt.wantLogged)
			}
		})
	}
}

func TestLogger_PerCategoryConfig(t *testing.T) {
	store := &recordingStore{}
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Membership: "db",
		Ideas:      "off",
		Repair:     "db",
	})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.GroupCreated(ctx, "g1", "u1", "Group")
	logger.Idea(ctx, audit.EventGroupIdeaCreated, "g1", "i1", "u1")
	logger.Reconciled(ctx, audit.EventGroupReconciled, "g1", map[string]string{"member_count": "2"})

	if len(store.events) != 2 {
		t.Fatalf("expected 2 stored events, got %d", len(store.events))
	}
	if store.events[0].EventType != audit.EventGroupCreated {
		t.Errorf("first event = %q", store.events[0].EventType)
	}
	if store.events[1].Category != audit.CategoryRepair {
		t.Errorf("second category = %q", store.events[1].Category)
	}
}

func TestLogger_StoreFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	store := &recordingStore{err: errors.New("boom")}
	logger := auditlog.New(store, zap.New(core), auditlog.Uniform("db"))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.MembershipDenied(ctx, audit.EventJoinRequested, "g1", "u1", "group_full")

	if logs.FilterMessage("failed to store audit event").Len() != 1 {
		t.Error("expected store failure to be logged")
	}
}

func TestLogger_WritesToMongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Uniform("db"))
	logger.GroupDeleted(ctx, "g1", "owner", 3, 2)

	events, err := store.GetByGroup(ctx, "g1", 10)
	if err != nil {
		t.Fatalf("GetByGroup failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Details["members_removed"] != "3" {
		t.Errorf("members_removed = %q", events[0].Details["members_removed"])
	}
}
