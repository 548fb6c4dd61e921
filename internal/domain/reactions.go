package domain

import "time"

// ReactionTally is the stored state of one reaction kind on a post.
// Count always equals len(Users).
type ReactionTally struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

// ReactionSet maps reaction kind → tally.
type ReactionSet map[string]ReactionTally

// NewReactionSet returns a set with every known kind at zero.
func NewReactionSet() ReactionSet {
	rs := make(ReactionSet, len(Reactions))
	for _, r := range Reactions {
		rs[r.ID] = ReactionTally{Count: 0, Users: []string{}}
	}
	return rs
}

// Clone deep-copies the set.
func (rs ReactionSet) Clone() ReactionSet {
	out := make(ReactionSet, len(rs))
	for k, t := range rs {
		users := make([]string, len(t.Users))
		copy(users, t.Users)
		out[k] = ReactionTally{Count: t.Count, Users: users}
	}
	return out
}

// Has reports whether userID voted for kind.
func (rs ReactionSet) Has(kind, userID string) bool {
	for _, u := range rs[kind].Users {
		if u == userID {
			return true
		}
	}
	return false
}

// Add inserts userID into the voter set of kind if absent. Unknown kinds are
// ignored. It reports whether the set changed.
func (rs ReactionSet) Add(kind, userID string) bool {
	if !IsReaction(kind) || rs.Has(kind, userID) {
		return false
	}
	t := rs[kind]
	t.Users = append(t.Users, userID)
	t.Count = len(t.Users)
	rs[kind] = t
	return true
}

// Remove erases userID from the voter set of kind if present. It reports
// whether the set changed.
func (rs ReactionSet) Remove(kind, userID string) bool {
	t, ok := rs[kind]
	if !ok {
		return false
	}
	for i, u := range t.Users {
		if u == userID {
			users := make([]string, 0, len(t.Users)-1)
			users = append(users, t.Users[:i]...)
			users = append(users, t.Users[i+1:]...)
			rs[kind] = ReactionTally{Count: len(users), Users: users}
			return true
		}
	}
	return false
}

// Apply folds a single batch entry into the set.
func (rs ReactionSet) Apply(e ReactionBatchEntry) bool {
	switch e.Action {
	case ActionAdd:
		return rs.Add(e.Kind, e.UserID)
	case ActionRemove:
		return rs.Remove(e.Kind, e.UserID)
	}
	return false
}

// ReactionAction is the direction of a queued reaction toggle.
type ReactionAction string

const (
	ActionAdd    ReactionAction = "add"
	ActionRemove ReactionAction = "remove"
)

// ReactionBatchEntry is a queued, not yet persisted reaction change. Seq is
// assigned by the batcher and orders entries across posts.
type ReactionBatchEntry struct {
	Seq       uint64         `json:"seq"`
	PostID    string         `json:"post_id"`
	Kind      string         `json:"kind"`
	UserID    string         `json:"user_id"`
	Action    ReactionAction `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
}

// ReactionGroup is the slice of a flush batch that targets one post,
// entries kept in enqueue order.
type ReactionGroup struct {
	PostID  string
	Entries []ReactionBatchEntry
}
