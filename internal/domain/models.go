// Package domain defines the persistence models for posts, users and the
// per-day rollups (mood statistics and store usage). These types are mapped
// with GORM and shared across the repository and service layers.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultDisplayName is assigned to users whose identity carries no name.
const DefaultDisplayName = "Anonymous Student"

// Post is a single anonymous mood update.
//
// Fields:
//   - ID: UUID primary key assigned by the store.
//   - AuthorID: opaque user id of the author; never serialized to clients.
//   - Mood: one of the closed mood ids (see Moods).
//   - Text: optional free text, bounded by MaxTextRunes.
//   - CreatedAt: ordering key for the feed (composite index with ID).
//   - IsChallenge / ChallengeID: set when the post answers the daily challenge.
//   - Reactions: per reaction kind counters and voter sets (JSON column).
//   - ExpiresAt: CreatedAt + retention window; the sweeper deletes past it.
//   - UpdatedAt: bumped by reaction flushes; feeds the list ETag.
type Post struct {
	ID          string                          `json:"id"           gorm:"type:char(36);primaryKey;index:idx_posts_feed,priority:2"`
	AuthorID    string                          `json:"-"            gorm:"type:varchar(128);not null;index"`
	Mood        string                          `json:"mood"         gorm:"type:varchar(32);not null"`
	Text        string                          `json:"text"         gorm:"type:varchar(512);not null;default:''"`
	CreatedAt   time.Time                       `json:"created_at"   gorm:"not null;index:idx_posts_feed,priority:1"`
	IsChallenge bool                            `json:"is_challenge" gorm:"not null;default:false"`
	ChallengeID *int                            `json:"challenge_id,omitempty"`
	Reactions   datatypes.JSONType[ReactionSet] `json:"-"            gorm:"not null"`
	ExpiresAt   time.Time                       `json:"expires_at"   gorm:"not null;index"`
	UpdatedAt   time.Time                       `json:"-"`
}

// TableName returns the database table name for Post.
func (Post) TableName() string { return "posts" }

// ReactionsData returns a copy of the post's reaction set.
func (p *Post) ReactionsData() ReactionSet {
	return p.Reactions.Data().Clone()
}

// SetReactions replaces the stored reaction set.
func (p *Post) SetReactions(rs ReactionSet) {
	p.Reactions = datatypes.NewJSONType(rs)
}

// User is the per-account record kept alongside posts. Only the quota gate
// and the session service mutate it.
type User struct {
	ID             string    `json:"id"               gorm:"type:varchar(128);primaryKey"`
	Email          string    `json:"-"                gorm:"type:varchar(320);not null;default:''"`
	DisplayName    string    `json:"display_name"     gorm:"type:varchar(128);not null;default:'Anonymous Student'"`
	CreatedAt      time.Time `json:"created_at"`
	LastActive     time.Time `json:"last_active"`
	TotalPosts     int       `json:"total_posts"      gorm:"not null;default:0"`
	DailyPostCount int       `json:"daily_post_count" gorm:"not null;default:0"`
	LastPostDate   string    `json:"last_post_date"   gorm:"type:char(10);not null;default:''"`
	IsActive       bool      `json:"is_active"        gorm:"not null"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// DailyStats is the running per-day rollup of posts.
type DailyStats struct {
	Date           string                             `json:"date"            gorm:"type:char(10);primaryKey"`
	TotalPosts     int                                `json:"total_posts"     gorm:"not null;default:0"`
	MoodBreakdown  datatypes.JSONType[map[string]int] `json:"mood_breakdown"  gorm:"not null"`
	ActiveUsers    int                                `json:"active_users"    gorm:"not null;default:0"`
	ChallengePosts int                                `json:"challenge_posts" gorm:"not null;default:0"`
	TopMood        string                             `json:"top_mood"        gorm:"type:varchar(32);not null;default:''"`
	CreatedAt      time.Time                          `json:"created_at"`
	UpdatedAt      time.Time                          `json:"updated_at"`
}

// TableName returns the database table name for DailyStats.
func (DailyStats) TableName() string { return "daily_stats" }

// Breakdown returns a copy of the mood → count mapping.
func (d *DailyStats) Breakdown() map[string]int {
	src := d.MoodBreakdown.Data()
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// UsageStats holds the store operation counters for one calendar day.
type UsageStats struct {
	Date              string    `json:"date"               gorm:"type:char(10);primaryKey"`
	DailyReads        int64     `json:"daily_reads"        gorm:"not null;default:0"`
	DailyWrites       int64     `json:"daily_writes"       gorm:"not null;default:0"`
	WarningThreshold  float64   `json:"warning_threshold"  gorm:"not null;default:0.8"`
	CriticalThreshold float64   `json:"critical_threshold" gorm:"not null;default:0.95"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName returns the database table name for UsageStats.
func (UsageStats) TableName() string { return "usage_stats" }
