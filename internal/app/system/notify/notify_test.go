package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dalemusser/ideahub/internal/app/system/notify"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memInbox struct {
	mu   sync.Mutex
	rows []models.Notification
	fail map[string]bool
}

func (m *memInbox) Insert(_ context.Context, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[n.UserID] {
		return errors.New("inbox unavailable")
	}
	m.rows = append(m.rows, n)
	return nil
}

func (m *memInbox) users() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, r := range m.rows {
		out = append(out, r.UserID)
	}
	sort.Strings(out)
	return out
}

func setupRedis(t *testing.T) (*notify.RedisPublisher, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client, err := notify.Connect(context.Background(), "redis://"+s.Addr())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return notify.NewRedisPublisher(client, "test"), s
}

func TestSend_FillsIDAndTimestamp(t *testing.T) {
	inbox := &memInbox{}
	svc := notify.New(inbox, nil, zap.NewNop(), 2)

	svc.Send(context.Background(), models.Notification{UserID: "u1", Type: models.NotifyJoinApproved})

	if len(inbox.rows) != 1 {
		t.Fatalf("expected 1 inbox row, got %d", len(inbox.rows))
	}
	if inbox.rows[0].ID == "" {
		t.Error("expected ID to be generated")
	}
	if inbox.rows[0].CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestSend_IgnoresCanceledCaller(t *testing.T) {
	inbox := &memInbox{}
	svc := notify.New(inbox, nil, zap.NewNop(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Send(ctx, models.Notification{UserID: "u1", Type: models.NotifyJoinApproved})

	if len(inbox.rows) != 1 {
		t.Fatalf("expected delivery despite canceled caller, got %d rows", len(inbox.rows))
	}
}

func TestSendMany_FailuresAreIndependent(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	inbox := &memInbox{fail: map[string]bool{"u2": true}}
	svc := notify.New(inbox, nil, zap.New(core), 2)

	svc.SendMany(context.Background(), []string{"u1", "u2", "u3", "u4"}, models.Notification{
		Type:  models.NotifyNewGroupIdea,
		Title: "New idea",
	})

	got := inbox.users()
	want := []string{"u1", "u3", "u4"}
	if len(got) != len(want) {
		t.Fatalf("delivered to %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivered[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if logs.FilterMessage("notification inbox write failed").Len() != 1 {
		t.Error("expected the failed delivery to be logged once")
	}
}

func TestNilService_NoPanic(t *testing.T) {
	var svc *notify.Service
	svc.Send(context.Background(), models.Notification{UserID: "u1"})
	svc.SendMany(context.Background(), []string{"u1"}, models.Notification{})
}

func TestRedisPublisher_QueuesAndPublishes(t *testing.T) {
	pub, s := setupRedis(t)
	ctx := context.Background()

	client, err := notify.Connect(ctx, "redis://"+s.Addr())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()
	sub := client.Subscribe(ctx, pub.UserChannel("u1"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	n := models.Notification{ID: "n1", UserID: "u1", Type: models.NotifyGroupInvite, Title: "Invite"}
	if err := pub.Publish(ctx, n); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	queued, err := s.List(pub.QueueKey())
	if err != nil {
		t.Fatalf("queue read failed: %v", err)
	}
	if len(queued) != 1 {
		t.Fatalf("expected 1 queued notification, got %d", len(queued))
	}
	var decoded models.Notification
	if err := json.Unmarshal([]byte(queued[0]), &decoded); err != nil {
		t.Fatalf("decode queued payload: %v", err)
	}
	if decoded.ID != "n1" || decoded.Type != models.NotifyGroupInvite {
		t.Errorf("queued payload = %+v", decoded)
	}

	rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(rctx)
	if err != nil {
		t.Fatalf("ReceiveMessage failed: %v", err)
	}
	if msg.Channel != "test:user:u1" {
		t.Errorf("channel = %s", msg.Channel)
	}
}

func TestService_PublishFailureDoesNotBlockInbox(t *testing.T) {
	pub, s := setupRedis(t)
	s.Close()

	inbox := &memInbox{}
	svc := notify.New(inbox, pub, zap.NewNop(), 1)
	svc.Send(context.Background(), models.Notification{UserID: "u1", Type: models.NotifyMemberRemoved})

	if len(inbox.rows) != 1 {
		t.Errorf("expected inbox write even when redis is down, got %d", len(inbox.rows))
	}
}

func TestConnect_BadURL(t *testing.T) {
	if _, err := notify.Connect(context.Background(), "not-a-url"); err == nil {
		t.Error("expected error for malformed url")
	}
}
