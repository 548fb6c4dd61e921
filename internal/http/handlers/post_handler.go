// Post HTTP handlers.
//
// This file exposes REST endpoints for the feed:
//   - GET  /posts        (newest first, cursor paginated, weak ETag)
//   - POST /posts        (create; Idempotency-Key supported)
//   - GET  /posts/{id}   (single post)
//
// Idempotency:
// If the client supplies an Idempotency-Key and already created a post with
// it, the original post is returned with `Idempotency-Replayed: true` and
// the daily allowance is not charged again.
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/campus-mood-backend/internal/http/middleware"
	"github.com/tbourn/campus-mood-backend/internal/services"
	"github.com/tbourn/campus-mood-backend/internal/utils"
)

//
// DTOs
//

// CreatePostRequest is the JSON payload for a new mood post.
type CreatePostRequest struct {
	// Mood is one of the vocabulary mood ids.
	Mood string `json:"mood" example:"sleepy_da"`
	// Text is optional, at most 100 characters.
	Text string `json:"text" example:"8am lab again"`
	// ChallengeID marks the post as an answer to a daily challenge.
	ChallengeID *int `json:"challenge_id,omitempty" example:"4"`
}

// CreatePostResponse wraps the created post.
type CreatePostResponse struct {
	Post services.PostView `json:"post"`
}

// ListPostsResponse is one page of the feed.
type ListPostsResponse = services.Page

//
// Handlers
//

// ListPosts godoc
// @ID          listPosts
// @Summary     List posts
// @Description Returns the feed newest first. Pass next_cursor from the previous page as `cursor`.
// @Description Reaction counts include the caller's queued, not yet persisted toggles.
// @Tags        Posts
// @Produce     json
//
// @Param       cursor     query  string  false "Opaque cursor from the previous page"
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(50) default(20)
//
// @Success     200  {object} handlers.ListPostsResponse
// @Success     304  "Not modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad cursor"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /posts [get]
func (h *Handlers) ListPosts(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := userID(c)
	cursor := strings.TrimSpace(c.Query("cursor"))
	pageSize := utils.AtoiDefault(c.Query("page_size"), 0)

	// ETag pre-check (best effort). The viewer is part of the tag because
	// user_reacted differs per viewer.
	if count, latest, seq, err := h.posts.FeedVersion(ctx); err == nil {
		var ts int64
		if latest != nil {
			ts = latest.UnixNano()
		}
		etag := fmt.Sprintf(`W/"posts:%d:%d:%d:%s:%s:%d"`, count, ts, seq, viewer, cursor, pageSize)
		if notModified(c, etag) {
			return
		}
	}

	page, err := h.posts.LoadPosts(ctx, viewer, cursor, pageSize)
	if err != nil {
		failService(c, err, ErrCodeListFailed, "Failed to load posts. Please try again.")
		return
	}
	ok(c, http.StatusOK, page)
}

// CreatePost godoc
// @ID          createPost
// @Summary     Share a mood
// @Description Creates an anonymous mood post. Each user may post a limited number of times per day.
// @Description Supports idempotency via the Idempotency-Key header (same key → same post).
// @Tags        Posts
// @Accept      json
// @Produce     json
//
// @Param       Authorization    header  string  true  "Bearer token"
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreatePostRequest  true  "Post payload"
//
// @Success     201  {object}  handlers.CreatePostResponse  "Created"
// @Success     200  {object}  handlers.CreatePostResponse  "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse       "Validation error"
// @Failure     401  {object}  handlers.ErrorResponse       "Sign in required"
// @Failure     429  {object}  handlers.ErrorResponse       "Daily limit reached"
// @Failure     500  {object}  handlers.ErrorResponse       "Internal error"
// @Router      /posts [post]
func (h *Handlers) CreatePost(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	key, _ := middleware.GetIdempotencyKey(c)

	// Replay path, flagged by the idempotency middleware.
	if key != "" && middleware.IsReplay(c) {
		if prev, err := h.posts.LookupIdempotent(ctx, uid, key); err == nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, CreatePostResponse{Post: h.posts.Views(uid, onePost(prev))[0]})
			return
		}
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid post payload")
		return
	}

	p, replayed, err := h.posts.CreateIdempotent(ctx, uid, key, services.CreatePostInput{
		Mood:        req.Mood,
		Text:        req.Text,
		ChallengeID: req.ChallengeID,
	})
	if err != nil {
		failService(c, err, ErrCodeCreateFailed, MsgCreateFailed)
		return
	}

	status := http.StatusCreated
	if replayed {
		c.Header("Idempotency-Replayed", "true")
		status = http.StatusOK
	}
	ok(c, status, CreatePostResponse{Post: h.posts.Views(uid, onePost(p))[0]})
}

// GetPost godoc
// @ID          getPost
// @Summary     Get a post
// @Tags        Posts
// @Produce     json
// @Param       id   path  string  true  "Post ID"  format(uuid)
// @Success     200  {object}  services.PostView
// @Failure     404  {object}  handlers.ErrorResponse "Post not found"
// @Router      /posts/{id} [get]
func (h *Handlers) GetPost(c *gin.Context) {
	v, err := h.posts.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		failService(c, err, ErrCodeInternal, "Failed to load post. Please try again.")
		return
	}
	ok(c, http.StatusOK, v)
}
