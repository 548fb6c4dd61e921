// Reaction HTTP handlers.
//
//   - PUT    /posts/{id}/reactions/{kind}   (react)
//   - DELETE /posts/{id}/reactions/{kind}   (take the reaction back)
//
// Toggles are queued and persisted in batches; the response is 202 with the
// post as the caller now sees it (queued toggles included).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/campus-mood-backend/internal/domain"
	"github.com/tbourn/campus-mood-backend/internal/services"
)

// ReactionResponse acknowledges a queued toggle.
type ReactionResponse struct {
	// Seq orders the toggle among all queued ones.
	Seq  uint64            `json:"seq"`
	Post services.PostView `json:"post"`
}

// AddReaction godoc
// @ID          addReaction
// @Summary     React to a post
// @Description Queues the caller's reaction. Reacting twice with the same kind is a no-op.
// @Tags        Reactions
// @Produce     json
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       id    path  string  true  "Post ID"  format(uuid)
// @Param       kind  path  string  true  "Reaction kind"  example(semma)
// @Success     202  {object}  handlers.ReactionResponse
// @Failure     400  {object}  handlers.ErrorResponse "Unknown reaction"
// @Failure     404  {object}  handlers.ErrorResponse "Post not found"
// @Router      /posts/{id}/reactions/{kind} [put]
func (h *Handlers) AddReaction(c *gin.Context) {
	h.toggleReaction(c, domain.ActionAdd)
}

// RemoveReaction godoc
// @ID          removeReaction
// @Summary     Remove a reaction
// @Tags        Reactions
// @Produce     json
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       id    path  string  true  "Post ID"  format(uuid)
// @Param       kind  path  string  true  "Reaction kind"  example(semma)
// @Success     202  {object}  handlers.ReactionResponse
// @Failure     400  {object}  handlers.ErrorResponse "Unknown reaction"
// @Failure     404  {object}  handlers.ErrorResponse "Post not found"
// @Router      /posts/{id}/reactions/{kind} [delete]
func (h *Handlers) RemoveReaction(c *gin.Context) {
	h.toggleReaction(c, domain.ActionRemove)
}

func (h *Handlers) toggleReaction(c *gin.Context, action domain.ReactionAction) {
	ctx := c.Request.Context()
	uid := userID(c)
	postID, kind := c.Param("id"), c.Param("kind")

	if !domain.IsReaction(kind) {
		failService(c, services.ErrUnknownReaction, ErrCodeReactFailed, "")
		return
	}
	enqueue := h.reactions.Add
	if action == domain.ActionRemove {
		enqueue = h.reactions.Remove
	}
	entry, err := enqueue(postID, kind, uid)
	if err != nil {
		failService(c, err, ErrCodeReactFailed, "Failed to react. Please try again.")
		return
	}

	// One read renders the result. A toggle for a post that does not exist
	// is answered with 404 and dropped by the next flush.
	view, err := h.posts.Get(ctx, uid, postID)
	if err != nil {
		failService(c, err, ErrCodeReactFailed, "Failed to react. Please try again.")
		return
	}
	ok(c, http.StatusAccepted, ReactionResponse{Seq: entry.Seq, Post: *view})
}

func onePost(p *domain.Post) []domain.Post {
	return []domain.Post{*p}
}
