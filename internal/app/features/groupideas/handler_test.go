package groupideas_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/ideahub/internal/app/features/groupideas"
	ideasvc "github.com/dalemusser/ideahub/internal/app/services/groupideas"
	"github.com/dalemusser/ideahub/internal/app/services/membership"
	"github.com/dalemusser/ideahub/internal/app/system/auditlog"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/dalemusser/ideahub/internal/testutil"
	"github.com/dalemusser/ideahub/internal/testutil/memstore"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	mem    *memstore.Store
	router chi.Router
	group  models.Group
	base   string
}

// newEnv builds a group owned by Alice with Bob as a member. Carol is an
// outsider.
func newEnv(t *testing.T) *env {
	t.Helper()
	mem := memstore.New()
	st := mem.Bundle()
	logger := zap.NewNop()
	audit := auditlog.New(&memstore.AuditTrail{}, logger, auditlog.Uniform("db"))
	out := &memstore.Outbox{}
	members := membership.New(st, out, audit, logger, 10)
	ideas := ideasvc.New(st, out, audit, logger)

	ctx := context.Background()
	alice, bob := testutil.Alice().Caller(), testutil.Bob().Caller()
	g, err := members.CreateGroup(ctx, alice, membership.CreateGroupInput{Name: "Team A"})
	require.NoError(t, err)
	_, err = members.RequestToJoin(ctx, bob, g.InviteCode)
	require.NoError(t, err)
	require.NoError(t, members.ApproveJoinRequest(ctx, alice, g.ID, bob.UserID))

	r := chi.NewRouter()
	r.Mount("/groups/{groupID}/ideas", groupideas.Routes(groupideas.NewHandler(ideas, logger)))
	return &env{mem: mem, router: r, group: g, base: "/groups/" + g.ID.Hex() + "/ideas"}
}

func (e *env) do(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) createIdea(t *testing.T, author testutil.TestUser) models.GroupIdea {
	t.Helper()
	rec := e.do(testutil.NewJSONRequest("POST", e.base+"/", map[string]string{"name": "Dark mode", "description": "<b>please</b>"}, author))
	rec.AssertStatus(t, http.StatusCreated)
	var gi models.GroupIdea
	rec.DecodeJSON(t, &gi)
	return gi
}

func TestCreateAndList(t *testing.T) {
	e := newEnv(t)
	gi := e.createIdea(t, testutil.Bob())
	assert.Equal(t, "please", gi.Description, "markup is stripped")
	assert.False(t, gi.IsApproved)

	rec := e.do(testutil.NewAuthenticatedRequest("GET", e.base+"/", testutil.Alice()))
	rec.AssertStatus(t, http.StatusOK)
	var list []models.GroupIdea
	rec.DecodeJSON(t, &list)
	require.Len(t, list, 1)
	assert.Equal(t, gi.ID, list[0].ID)
}

func TestOutsiderForbidden(t *testing.T) {
	e := newEnv(t)
	gi := e.createIdea(t, testutil.Bob())

	for _, req := range []*http.Request{
		testutil.NewAuthenticatedRequest("GET", e.base+"/", testutil.Carol()),
		testutil.NewAuthenticatedRequest("GET", e.base+"/"+gi.ID.Hex(), testutil.Carol()),
		testutil.NewJSONRequest("PUT", e.base+"/"+gi.ID.Hex()+"/votes", map[string]int{"rating": 4}, testutil.Carol()),
	} {
		rec := e.do(req)
		rec.AssertStatus(t, http.StatusForbidden)
	}
}

func TestVotesAndStats(t *testing.T) {
	e := newEnv(t)
	gi := e.createIdea(t, testutil.Bob())
	path := e.base + "/" + gi.ID.Hex()

	rec := e.do(testutil.NewJSONRequest("PUT", path+"/votes", map[string]int{"rating": 4}, testutil.Alice()))
	rec.AssertStatus(t, http.StatusOK)
	rec = e.do(testutil.NewJSONRequest("PUT", path+"/votes", map[string]int{"rating": 9}, testutil.Bob()))
	rec.AssertStatus(t, http.StatusOK)
	var stats ideasvc.Stats
	rec.DecodeJSON(t, &stats)
	assert.Equal(t, 2, stats.VoteCount)
	assert.InDelta(t, 4.5, stats.AverageRating, 0.001)
	assert.Equal(t, 5, stats.MyRating)

	// Toggle removes Bob's vote, then puts a 5 back.
	rec = e.do(testutil.NewAuthenticatedRequest("POST", path+"/upvote", testutil.Bob()))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &stats)
	assert.Equal(t, 1, stats.VoteCount)
	assert.False(t, stats.Upvoted)

	rec = e.do(testutil.NewAuthenticatedRequest("DELETE", path+"/votes", testutil.Alice()))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &stats)
	assert.Equal(t, 0, stats.VoteCount)

	rec = e.do(testutil.NewAuthenticatedRequest("GET", path, testutil.Alice()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"stats":{"averageRating":0,"voteCount":0`)
}

func TestFeatures(t *testing.T) {
	e := newEnv(t)
	gi := e.createIdea(t, testutil.Bob())
	path := e.base + "/" + gi.ID.Hex() + "/features"

	rec := e.do(testutil.NewJSONRequest("POST", path, map[string]string{"name": "Toggle", "priority": "urgent"}, testutil.Bob()))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = e.do(testutil.NewJSONRequest("POST", path, map[string]string{"name": "Toggle"}, testutil.Bob()))
	rec.AssertStatus(t, http.StatusCreated)
	var f models.Feature
	rec.DecodeJSON(t, &f)
	assert.Equal(t, models.PriorityMedium, f.Priority)
	assert.Equal(t, models.StatusBacklog, f.Status)

	rec = e.do(testutil.NewAuthenticatedRequest("POST", path+"/"+f.ID+"/vote", testutil.Alice()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"voted":true`)

	rec = e.do(testutil.NewJSONRequest("PUT", path+"/"+f.ID+"/status", map[string]string{"status": "inProgress"}, testutil.Alice()))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &f)
	assert.Equal(t, models.StatusInProgress, f.Status)
	assert.Equal(t, []string{testutil.Alice().ID}, f.Votes)

	rec = e.do(testutil.NewAuthenticatedRequest("DELETE", path+"/missing", testutil.Alice()))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = e.do(testutil.NewAuthenticatedRequest("DELETE", path+"/"+f.ID, testutil.Alice()))
	rec.AssertStatus(t, http.StatusNoContent)
}

func TestComments(t *testing.T) {
	e := newEnv(t)
	gi := e.createIdea(t, testutil.Bob())
	path := e.base + "/" + gi.ID.Hex() + "/comments"

	rec := e.do(testutil.NewJSONRequest("POST", path, map[string]string{"text": "Love it"}, testutil.Alice()))
	rec.AssertStatus(t, http.StatusCreated)
	var c models.Comment
	rec.DecodeJSON(t, &c)

	rec = e.do(testutil.NewAuthenticatedRequest("GET", path, testutil.Bob()))
	rec.AssertStatus(t, http.StatusOK)
	var cs []models.Comment
	rec.DecodeJSON(t, &cs)
	require.Len(t, cs, 1)

	// Bob is neither the author nor a manager.
	rec = e.do(testutil.NewAuthenticatedRequest("DELETE", path+"/"+c.ID.Hex(), testutil.Bob()))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = e.do(testutil.NewAuthenticatedRequest("DELETE", path+"/"+c.ID.Hex(), testutil.Alice()))
	rec.AssertStatus(t, http.StatusNoContent)
	assert.Equal(t, 0, e.mem.CountComments(gi.ID))
}

func TestApproveAndDelete(t *testing.T) {
	e := newEnv(t)
	gi := e.createIdea(t, testutil.Bob())
	path := e.base + "/" + gi.ID.Hex()

	rec := e.do(testutil.NewAuthenticatedRequest("POST", path+"/approve", testutil.Bob()))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = e.do(testutil.NewAuthenticatedRequest("POST", path+"/approve", testutil.Alice()))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = e.do(testutil.NewAuthenticatedRequest("DELETE", path, testutil.Bob()))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = e.do(testutil.NewAuthenticatedRequest("GET", path, testutil.Alice()))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestShare(t *testing.T) {
	e := newEnv(t)
	st := e.mem.Bundle()
	private := models.Idea{ID: primitive.NewObjectID(), OwnerID: testutil.Carol().ID, Name: "Secret"}
	public := models.Idea{ID: primitive.NewObjectID(), OwnerID: testutil.Carol().ID, Name: "Open", IsPublic: true}
	require.NoError(t, st.Ideas.Create(context.Background(), private))
	require.NoError(t, st.Ideas.Create(context.Background(), public))

	rec := e.do(testutil.NewJSONRequest("POST", e.base+"/share", map[string]string{"ideaId": private.ID.Hex()}, testutil.Bob()))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = e.do(testutil.NewJSONRequest("POST", e.base+"/share", map[string]string{"ideaId": public.ID.Hex()}, testutil.Bob()))
	rec.AssertStatus(t, http.StatusCreated)
	var gi models.GroupIdea
	rec.DecodeJSON(t, &gi)
	assert.Equal(t, models.SharedFromPublic, gi.SharedFromType)
	assert.Equal(t, "Open", gi.Name)

	rec = e.do(testutil.NewJSONRequest("POST", e.base+"/share", map[string]string{"ideaId": "nope"}, testutil.Bob()))
	rec.AssertStatus(t, http.StatusBadRequest)
}
