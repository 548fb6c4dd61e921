// Vocabulary and challenge HTTP handlers.
//
//   - GET /vocabulary         (moods, reactions and limits clients render)
//   - GET /challenges/today   (the rotating daily prompt)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/campus-mood-backend/internal/domain"
)

// VocabularyResponse is the closed vocabulary of the feed.
type VocabularyResponse struct {
	Moods        []domain.Mood     `json:"moods"`
	Reactions    []domain.Reaction `json:"reactions"`
	MaxTextRunes int               `json:"max_text_length"`
}

// Vocabulary godoc
// @ID          vocabulary
// @Summary     Moods and reactions
// @Tags        Meta
// @Produce     json
// @Success     200  {object}  handlers.VocabularyResponse
// @Router      /vocabulary [get]
func (h *Handlers) Vocabulary(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	ok(c, http.StatusOK, VocabularyResponse{
		Moods:        domain.Moods,
		Reactions:    domain.Reactions,
		MaxTextRunes: domain.MaxTextRunes,
	})
}

// TodayChallenge godoc
// @ID          todayChallenge
// @Summary     Today's challenge
// @Tags        Meta
// @Produce     json
// @Success     200  {object}  services.TodayChallenge
// @Router      /challenges/today [get]
func (h *Handlers) TodayChallenge(c *gin.Context) {
	ok(c, http.StatusOK, h.challenges.Today())
}
