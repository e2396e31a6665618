// Package memstore is an in-memory implementation of every store interface
// in services/stores. It mirrors the Mongo stores' contracts, including the
// conditional member add, the versioned feature swap and the duplicate-key
// sentinels, so the core services can be tested without a database.
//
// FailOn injects an error into a named operation ("groups.AddMember",
// "members.Create", ...) to exercise partial-failure paths.
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/dalemusser/ideahub/internal/app/services/stores"
	groupstore "github.com/dalemusser/ideahub/internal/app/store/groups"
	requeststore "github.com/dalemusser/ideahub/internal/app/store/joinrequests"
	memberstore "github.com/dalemusser/ideahub/internal/app/store/members"
	"github.com/dalemusser/ideahub/internal/app/system/txn"
	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type pairKey struct {
	id  primitive.ObjectID
	uid string
}

// Store holds every collection behind one mutex.
type Store struct {
	mu sync.Mutex

	groups        map[primitive.ObjectID]models.Group
	members       map[pairKey]models.GroupMember
	requests      map[pairKey]models.JoinRequest
	invites       map[string]models.GroupInvite
	groupIdeas    map[primitive.ObjectID]models.GroupIdea
	votes         map[pairKey]models.Vote
	comments      map[primitive.ObjectID]models.Comment
	users         map[string]models.User
	ideas         map[primitive.ObjectID]models.Idea
	notifications map[string]models.Notification

	fail map[string]error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		groups:        map[primitive.ObjectID]models.Group{},
		members:       map[pairKey]models.GroupMember{},
		requests:      map[pairKey]models.JoinRequest{},
		invites:       map[string]models.GroupInvite{},
		groupIdeas:    map[primitive.ObjectID]models.GroupIdea{},
		votes:         map[pairKey]models.Vote{},
		comments:      map[primitive.ObjectID]models.Comment{},
		users:         map[string]models.User{},
		ideas:         map[primitive.ObjectID]models.Idea{},
		notifications: map[string]models.Notification{},
		fail:          map[string]error{},
	}
}

// Bundle exposes the Store through the service-facing interfaces. Units of
// work run sequentially, like a standalone mongod.
func (s *Store) Bundle() stores.Bundle {
	return stores.Bundle{
		Groups:        groupsView{s},
		Members:       membersView{s},
		JoinRequests:  requestsView{s},
		Invites:       invitesView{s},
		GroupIdeas:    groupIdeasView{s},
		Votes:         votesView{s},
		Comments:      commentsView{s},
		Users:         usersView{s},
		Ideas:         ideasView{s},
		Notifications: notificationsView{s},
		Txn:           txn.Direct{},
	}
}

// FailOn makes op return err until cleared with FailOn(op, nil).
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

// injected must be called with s.mu held.
func (s *Store) injected(op string) error {
	return s.fail[op]
}

// --- direct accessors for assertions ---

// Group returns the stored group and whether it exists.
func (s *Store) Group(id primitive.ObjectID) (models.Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	return cloneGroup(g), ok
}

// MemberRows returns the member rows of a group sorted by user id.
func (s *Store) MemberRows(groupID primitive.ObjectID) []models.GroupMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.GroupMember
	for k, m := range s.members {
		if k.id == groupID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// CountRequests returns the number of join requests for a group.
func (s *Store) CountRequests(groupID primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.requests {
		if k.id == groupID {
			n++
		}
	}
	return n
}

// HasInvite reports whether the invite key exists.
func (s *Store) HasInvite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.invites[id]
	return ok
}

// CountVotes returns the number of vote rows for an idea.
func (s *Store) CountVotes(ideaID primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.votes {
		if k.id == ideaID {
			n++
		}
	}
	return n
}

// CountComments returns the number of comment rows for an idea.
func (s *Store) CountComments(ideaID primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.comments {
		if c.IdeaID == ideaID {
			n++
		}
	}
	return n
}

// PutGroup writes g as-is, bypassing every invariant. Tests use it to seed drift.
func (s *Store) PutGroup(g models.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = cloneGroup(g)
}

// PutGroupIdea writes gi as-is.
func (s *Store) PutGroupIdea(gi models.GroupIdea) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupIdeas[gi.ID] = cloneIdea(gi)
}

// DropMemberRow deletes one member row without touching counters.
func (s *Store) DropMemberRow(groupID primitive.ObjectID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, pairKey{groupID, userID})
}

func cloneGroup(g models.Group) models.Group {
	if g.MemberIDs != nil {
		g.MemberIDs = append([]string{}, g.MemberIDs...)
	}
	return g
}

func cloneIdea(gi models.GroupIdea) models.GroupIdea {
	if gi.Features != nil {
		fs := make([]models.Feature, len(gi.Features))
		for i, f := range gi.Features {
			if f.Votes != nil {
				f.Votes = append([]string{}, f.Votes...)
			}
			fs[i] = f
		}
		gi.Features = fs
	}
	return gi
}

/* --------------------------------- groups -------------------------------- */

type groupsView struct{ s *Store }

func (v groupsView) Create(_ context.Context, g models.Group) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("groups.Create"); err != nil {
		return err
	}
	for _, other := range v.s.groups {
		if other.InviteCode == g.InviteCode {
			return groupstore.ErrDuplicateInviteCode
		}
	}
	g.NameCI = text.Fold(g.Name)
	if g.MemberIDs == nil {
		g.MemberIDs = []string{}
	}
	v.s.groups[g.ID] = cloneGroup(g)
	return nil
}

func (v groupsView) GetByID(_ context.Context, id primitive.ObjectID) (models.Group, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("groups.GetByID"); err != nil {
		return models.Group{}, err
	}
	g, ok := v.s.groups[id]
	if !ok {
		return models.Group{}, mongo.ErrNoDocuments
	}
	return cloneGroup(g), nil
}

func (v groupsView) GetByInviteCode(_ context.Context, code string) (models.Group, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, g := range v.s.groups {
		if g.InviteCode == code {
			return cloneGroup(g), nil
		}
	}
	return models.Group{}, mongo.ErrNoDocuments
}

func (v groupsView) ListByMember(_ context.Context, userID string) ([]models.Group, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("groups.ListByMember"); err != nil {
		return nil, err
	}
	var out []models.Group
	for _, g := range v.s.groups {
		if g.HasMember(userID) {
			out = append(out, cloneGroup(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v groupsView) ListIDs(_ context.Context) ([]primitive.ObjectID, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var ids []primitive.ObjectID
	for id := range v.s.groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })
	return ids, nil
}

func (v groupsView) SetInviteCode(_ context.Context, id primitive.ObjectID, code string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	g, ok := v.s.groups[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for oid, other := range v.s.groups {
		if oid != id && other.InviteCode == code {
			return groupstore.ErrDuplicateInviteCode
		}
	}
	g.InviteCode = code
	v.s.groups[id] = g
	return nil
}

func (v groupsView) AddMember(_ context.Context, id primitive.ObjectID, userID string, max int) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("groups.AddMember"); err != nil {
		return false, err
	}
	g, ok := v.s.groups[id]
	if !ok {
		return false, mongo.ErrNoDocuments
	}
	if g.HasMember(userID) {
		return false, nil
	}
	if g.MemberCount >= max {
		return false, groupstore.ErrGroupFull
	}
	g = cloneGroup(g)
	g.MemberIDs = append(g.MemberIDs, userID)
	g.MemberCount++
	v.s.groups[id] = g
	return true, nil
}

func (v groupsView) RemoveMember(_ context.Context, id primitive.ObjectID, userID string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("groups.RemoveMember"); err != nil {
		return false, err
	}
	g, ok := v.s.groups[id]
	if !ok || !g.HasMember(userID) {
		return false, nil
	}
	ids := make([]string, 0, len(g.MemberIDs))
	for _, m := range g.MemberIDs {
		if m != userID {
			ids = append(ids, m)
		}
	}
	g.MemberIDs = ids
	g.MemberCount--
	v.s.groups[id] = g
	return true, nil
}

func (v groupsView) SetMembers(_ context.Context, id primitive.ObjectID, seenIDs []string, seenCount int, userIDs []string) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("groups.SetMembers"); err != nil {
		return false, err
	}
	g, ok := v.s.groups[id]
	if !ok {
		return false, mongo.ErrNoDocuments
	}
	if g.MemberCount != seenCount || !slices.Equal(g.MemberIDs, seenIDs) {
		return false, nil
	}
	g.MemberIDs = append([]string{}, userIDs...)
	g.MemberCount = len(userIDs)
	v.s.groups[id] = g
	return true, nil
}

func (v groupsView) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("groups.Delete"); err != nil {
		return 0, err
	}
	if _, ok := v.s.groups[id]; !ok {
		return 0, nil
	}
	delete(v.s.groups, id)
	return 1, nil
}

/* -------------------------------- members -------------------------------- */

type membersView struct{ s *Store }

func (v membersView) Create(_ context.Context, m models.GroupMember) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("members.Create"); err != nil {
		return err
	}
	k := pairKey{m.GroupID, m.UserID}
	if _, ok := v.s.members[k]; ok {
		return memberstore.ErrDuplicateMember
	}
	v.s.members[k] = m
	return nil
}

func (v membersView) Get(_ context.Context, groupID primitive.ObjectID, userID string) (models.GroupMember, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("members.Get"); err != nil {
		return models.GroupMember{}, err
	}
	m, ok := v.s.members[pairKey{groupID, userID}]
	if !ok {
		return models.GroupMember{}, mongo.ErrNoDocuments
	}
	return m, nil
}

func (v membersView) ListByGroup(_ context.Context, groupID primitive.ObjectID) ([]models.GroupMember, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("members.ListByGroup"); err != nil {
		return nil, err
	}
	var out []models.GroupMember
	for k, m := range v.s.members {
		if k.id == groupID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (v membersView) UpdateRole(_ context.Context, groupID primitive.ObjectID, userID, role string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	k := pairKey{groupID, userID}
	m, ok := v.s.members[k]
	if !ok {
		return mongo.ErrNoDocuments
	}
	m.Role = role
	v.s.members[k] = m
	return nil
}

func (v membersView) Remove(_ context.Context, groupID primitive.ObjectID, userID string) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("members.Remove"); err != nil {
		return 0, err
	}
	k := pairKey{groupID, userID}
	if _, ok := v.s.members[k]; !ok {
		return 0, nil
	}
	delete(v.s.members, k)
	return 1, nil
}

func (v membersView) DeleteByGroup(_ context.Context, groupID primitive.ObjectID) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("members.DeleteByGroup"); err != nil {
		return 0, err
	}
	var n int64
	for k := range v.s.members {
		if k.id == groupID {
			delete(v.s.members, k)
			n++
		}
	}
	return n, nil
}

/* ------------------------------ join requests ---------------------------- */

type requestsView struct{ s *Store }

func (v requestsView) Create(_ context.Context, r models.JoinRequest) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	k := pairKey{r.GroupID, r.UserID}
	if _, ok := v.s.requests[k]; ok {
		return requeststore.ErrDuplicateRequest
	}
	v.s.requests[k] = r
	return nil
}

func (v requestsView) Get(_ context.Context, groupID primitive.ObjectID, userID string) (models.JoinRequest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	r, ok := v.s.requests[pairKey{groupID, userID}]
	if !ok {
		return models.JoinRequest{}, mongo.ErrNoDocuments
	}
	return r, nil
}

func (v requestsView) ListByGroup(_ context.Context, groupID primitive.ObjectID) ([]models.JoinRequest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []models.JoinRequest
	for k, r := range v.s.requests {
		if k.id == groupID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (v requestsView) Delete(_ context.Context, groupID primitive.ObjectID, userID string) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("requests.Delete"); err != nil {
		return 0, err
	}
	k := pairKey{groupID, userID}
	if _, ok := v.s.requests[k]; !ok {
		return 0, nil
	}
	delete(v.s.requests, k)
	return 1, nil
}

func (v requestsView) DeleteByGroup(_ context.Context, groupID primitive.ObjectID) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var n int64
	for k := range v.s.requests {
		if k.id == groupID {
			delete(v.s.requests, k)
			n++
		}
	}
	return n, nil
}

/* --------------------------------- invites -------------------------------- */

type invitesView struct{ s *Store }

func (v invitesView) Upsert(_ context.Context, inv models.GroupInvite) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if inv.ID == "" {
		inv.ID = models.InviteKey(inv.GroupID, inv.InvitedUserID)
	}
	v.s.invites[inv.ID] = inv
	return nil
}

func (v invitesView) Get(_ context.Context, id string) (models.GroupInvite, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	inv, ok := v.s.invites[id]
	if !ok {
		return models.GroupInvite{}, mongo.ErrNoDocuments
	}
	return inv, nil
}

func (v invitesView) ListForUser(_ context.Context, userID string) ([]models.GroupInvite, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []models.GroupInvite
	for _, inv := range v.s.invites {
		if inv.InvitedUserID == userID && inv.Status == models.InvitePending {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v invitesView) Delete(_ context.Context, id string) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.invites[id]; !ok {
		return 0, nil
	}
	delete(v.s.invites, id)
	return 1, nil
}

func (v invitesView) DeleteByGroup(_ context.Context, groupID primitive.ObjectID) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var n int64
	for id, inv := range v.s.invites {
		if inv.GroupID == groupID {
			delete(v.s.invites, id)
			n++
		}
	}
	return n, nil
}

/* ------------------------------- group ideas ------------------------------ */

type groupIdeasView struct{ s *Store }

func (v groupIdeasView) Create(_ context.Context, gi models.GroupIdea) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("groupIdeas.Create"); err != nil {
		return err
	}
	if gi.Features == nil {
		gi.Features = []models.Feature{}
	}
	v.s.groupIdeas[gi.ID] = cloneIdea(gi)
	return nil
}

func (v groupIdeasView) GetByID(_ context.Context, id primitive.ObjectID) (models.GroupIdea, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("groupIdeas.GetByID"); err != nil {
		return models.GroupIdea{}, err
	}
	gi, ok := v.s.groupIdeas[id]
	if !ok {
		return models.GroupIdea{}, mongo.ErrNoDocuments
	}
	return cloneIdea(gi), nil
}

func (v groupIdeasView) ListByGroup(_ context.Context, groupID primitive.ObjectID) ([]models.GroupIdea, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("groupIdeas.ListByGroup"); err != nil {
		return nil, err
	}
	var out []models.GroupIdea
	for _, gi := range v.s.groupIdeas {
		if gi.GroupID == groupID {
			out = append(out, cloneIdea(gi))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v groupIdeasView) ListIDsByGroup(_ context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var ids []primitive.ObjectID
	for id, gi := range v.s.groupIdeas {
		if gi.GroupID == groupID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (v groupIdeasView) ListIDs(_ context.Context) ([]primitive.ObjectID, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var ids []primitive.ObjectID
	for id := range v.s.groupIdeas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Hex() < ids[j].Hex() })
	return ids, nil
}

func (v groupIdeasView) Approve(_ context.Context, id primitive.ObjectID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	gi, ok := v.s.groupIdeas[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	gi.IsApproved = true
	v.s.groupIdeas[id] = gi
	return nil
}

func (v groupIdeasView) ReplaceFeatures(_ context.Context, id primitive.ObjectID, expectedVersion int64, features []models.Feature) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("groupIdeas.ReplaceFeatures"); err != nil {
		return false, err
	}
	gi, ok := v.s.groupIdeas[id]
	if !ok || gi.Version != expectedVersion {
		return false, nil
	}
	if features == nil {
		features = []models.Feature{}
	}
	gi.Features = features
	gi.Version++
	v.s.groupIdeas[id] = cloneIdea(gi)
	return true, nil
}

func (v groupIdeasView) IncCommentCount(_ context.Context, id primitive.ObjectID, delta int) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("groupIdeas.IncCommentCount"); err != nil {
		return err
	}
	gi, ok := v.s.groupIdeas[id]
	if !ok || gi.CommentCount+delta < 0 {
		return nil
	}
	gi.CommentCount += delta
	v.s.groupIdeas[id] = gi
	return nil
}

func (v groupIdeasView) SetCommentCount(_ context.Context, id primitive.ObjectID, seen, n int) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("groupIdeas.SetCommentCount"); err != nil {
		return false, err
	}
	gi, ok := v.s.groupIdeas[id]
	if !ok {
		return false, mongo.ErrNoDocuments
	}
	if gi.CommentCount != seen {
		return false, nil
	}
	gi.CommentCount = n
	v.s.groupIdeas[id] = gi
	return true, nil
}

func (v groupIdeasView) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.groupIdeas[id]; !ok {
		return 0, nil
	}
	delete(v.s.groupIdeas, id)
	return 1, nil
}

func (v groupIdeasView) DeleteByGroup(_ context.Context, groupID primitive.ObjectID) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var n int64
	for id, gi := range v.s.groupIdeas {
		if gi.GroupID == groupID {
			delete(v.s.groupIdeas, id)
			n++
		}
	}
	return n, nil
}

/* ---------------------------------- votes --------------------------------- */

type votesView struct{ s *Store }

func (v votesView) Upsert(_ context.Context, vote models.Vote) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("votes.Upsert"); err != nil {
		return err
	}
	v.s.votes[pairKey{vote.IdeaID, vote.UserID}] = vote
	return nil
}

func (v votesView) Get(_ context.Context, ideaID primitive.ObjectID, userID string) (models.Vote, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	vote, ok := v.s.votes[pairKey{ideaID, userID}]
	if !ok {
		return models.Vote{}, mongo.ErrNoDocuments
	}
	return vote, nil
}

func (v votesView) ListByIdea(_ context.Context, ideaID primitive.ObjectID) ([]models.Vote, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("votes.ListByIdea"); err != nil {
		return nil, err
	}
	var out []models.Vote
	for k, vote := range v.s.votes {
		if k.id == ideaID {
			out = append(out, vote)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (v votesView) Delete(_ context.Context, ideaID primitive.ObjectID, userID string) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	k := pairKey{ideaID, userID}
	if _, ok := v.s.votes[k]; !ok {
		return 0, nil
	}
	delete(v.s.votes, k)
	return 1, nil
}

func (v votesView) DeleteByIdeas(_ context.Context, ideaIDs []primitive.ObjectID) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	set := map[primitive.ObjectID]bool{}
	for _, id := range ideaIDs {
		set[id] = true
	}
	var n int64
	for k := range v.s.votes {
		if set[k.id] {
			delete(v.s.votes, k)
			n++
		}
	}
	return n, nil
}

/* --------------------------------- comments ------------------------------- */

type commentsView struct{ s *Store }

func (v commentsView) Create(_ context.Context, c models.Comment) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("comments.Create"); err != nil {
		return err
	}
	v.s.comments[c.ID] = c
	return nil
}

func (v commentsView) GetByID(_ context.Context, id primitive.ObjectID) (models.Comment, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	c, ok := v.s.comments[id]
	if !ok {
		return models.Comment{}, mongo.ErrNoDocuments
	}
	return c, nil
}

func (v commentsView) ListByIdea(_ context.Context, ideaID primitive.ObjectID) ([]models.Comment, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []models.Comment
	for _, c := range v.s.comments {
		if c.IdeaID == ideaID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (v commentsView) CountByIdea(_ context.Context, ideaID primitive.ObjectID) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var n int64
	for _, c := range v.s.comments {
		if c.IdeaID == ideaID {
			n++
		}
	}
	return n, nil
}

func (v commentsView) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.comments[id]; !ok {
		return 0, nil
	}
	delete(v.s.comments, id)
	return 1, nil
}

func (v commentsView) DeleteByIdeas(_ context.Context, ideaIDs []primitive.ObjectID) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	set := map[primitive.ObjectID]bool{}
	for _, id := range ideaIDs {
		set[id] = true
	}
	var n int64
	for id, c := range v.s.comments {
		if set[c.IdeaID] {
			delete(v.s.comments, id)
			n++
		}
	}
	return n, nil
}

/* ---------------------------------- users --------------------------------- */

type usersView struct{ s *Store }

func (v usersView) Upsert(_ context.Context, u models.User) (models.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u.DisplayName = strings.TrimSpace(u.DisplayName)
	u.Email = strings.TrimSpace(u.Email)
	u.EmailCI = models.EmailKey(u.Email)
	u.Username = strings.TrimSpace(u.Username)
	v.s.users[u.ID] = u
	return u, nil
}

func (v usersView) GetByID(_ context.Context, id string) (*models.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u, ok := v.s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

func (v usersView) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return v.find(func(u models.User) string { return u.EmailCI }, models.EmailKey(email))
}

func (v usersView) FindByDisplayName(ctx context.Context, name string) (*models.User, error) {
	return v.find(func(u models.User) string { return u.DisplayName }, strings.TrimSpace(name))
}

func (v usersView) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return v.find(func(u models.User) string { return u.Username }, strings.TrimSpace(username))
}

func (v usersView) find(field func(models.User) string, key string) (*models.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if key == "" {
		return nil, mongo.ErrNoDocuments
	}
	var ids []string
	for id, u := range v.s.users {
		if field(u) == key {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	sort.Strings(ids)
	u := v.s.users[ids[0]]
	return &u, nil
}

/* --------------------------------- ideas ---------------------------------- */

type ideasView struct{ s *Store }

func (v ideasView) Create(_ context.Context, idea models.Idea) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.ideas[idea.ID] = idea
	return nil
}

func (v ideasView) GetByID(_ context.Context, id primitive.ObjectID) (models.Idea, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	idea, ok := v.s.ideas[id]
	if !ok {
		return models.Idea{}, mongo.ErrNoDocuments
	}
	return idea, nil
}

func (v ideasView) ListByOwner(_ context.Context, ownerID string) ([]models.Idea, error) {
	return v.list(func(i models.Idea) bool { return i.OwnerID == ownerID }, 0), nil
}

func (v ideasView) ListPublic(_ context.Context, limit int64) ([]models.Idea, error) {
	if limit <= 0 {
		limit = 50
	}
	return v.list(func(i models.Idea) bool { return i.IsPublic }, limit), nil
}

func (v ideasView) list(keep func(models.Idea) bool, limit int64) []models.Idea {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []models.Idea
	for _, idea := range v.s.ideas {
		if keep(idea) {
			out = append(out, idea)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

/* ------------------------------ notifications ----------------------------- */

type notificationsView struct{ s *Store }

func (v notificationsView) Insert(_ context.Context, n models.Notification) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.injected("notifications.Insert"); err != nil {
		return err
	}
	v.s.notifications[n.ID] = n
	return nil
}

func (v notificationsView) ListForUser(_ context.Context, userID string, limit int64) ([]models.Notification, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var out []models.Notification
	for _, n := range v.s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v notificationsView) MarkRead(_ context.Context, userID, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	n, ok := v.s.notifications[id]
	if !ok || n.UserID != userID {
		return mongo.ErrNoDocuments
	}
	n.Read = true
	v.s.notifications[id] = n
	return nil
}
