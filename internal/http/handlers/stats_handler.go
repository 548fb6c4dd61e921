// Statistics HTTP handlers.
//
//   - GET /stats/daily/{date}   (one day's rollup, 404 when there is none)
//   - GET /stats/recent         (last N days, most recent first)
//   - GET /stats/summary        (aggregate over a window)
//   - GET /usage                (today's store usage, 204 before first use)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/campus-mood-backend/internal/domain"
	"github.com/tbourn/campus-mood-backend/internal/services"
	"github.com/tbourn/campus-mood-backend/internal/utils"
)

// DailyStatsView is a day's rollup as served to clients.
type DailyStatsView struct {
	Date           string         `json:"date"`
	TotalPosts     int            `json:"total_posts"`
	MoodBreakdown  map[string]int `json:"mood_breakdown"`
	ActiveUsers    int            `json:"active_users"`
	ChallengePosts int            `json:"challenge_posts"`
	TopMood        string         `json:"top_mood"`
}

// RecentStatsResponse lists the days that have data.
type RecentStatsResponse struct {
	Days  int              `json:"days"`
	Stats []DailyStatsView `json:"stats"`
}

// UsageResponse is today's usage with its classification.
type UsageResponse struct {
	Usage  *domain.UsageStats    `json:"usage"`
	Report *services.UsageReport `json:"report"`
}

func dailyView(d *domain.DailyStats) DailyStatsView {
	return DailyStatsView{
		Date:           d.Date,
		TotalPosts:     d.TotalPosts,
		MoodBreakdown:  d.Breakdown(),
		ActiveUsers:    d.ActiveUsers,
		ChallengePosts: d.ChallengePosts,
		TopMood:        d.TopMood,
	}
}

// DailyStats godoc
// @ID          dailyStats
// @Summary     Mood stats for one day
// @Tags        Stats
// @Produce     json
// @Param       date  path  string  true  "Day (YYYY-MM-DD)"  example(2024-03-10)
// @Success     200  {object}  handlers.DailyStatsView
// @Failure     400  {object}  handlers.ErrorResponse "Bad date"
// @Failure     404  {object}  handlers.ErrorResponse "No data for that day"
// @Router      /stats/daily/{date} [get]
func (h *Handlers) DailyStats(c *gin.Context) {
	d, err := h.stats.GetDailyStats(c.Request.Context(), c.Param("date"))
	if err != nil {
		failService(c, err, ErrCodeInternal, "Failed to load stats. Please try again.")
		return
	}
	ok(c, http.StatusOK, dailyView(d))
}

// RecentStats godoc
// @ID          recentStats
// @Summary     Mood stats for recent days
// @Description Days without posts are omitted.
// @Tags        Stats
// @Produce     json
// @Param       days  query  int  false  "Window in days, today included"  minimum(1) maximum(90) default(7)
// @Success     200  {object}  handlers.RecentStatsResponse
// @Router      /stats/recent [get]
func (h *Handlers) RecentStats(c *gin.Context) {
	days := clampDays(utils.AtoiDefault(c.Query("days"), 7))
	rows, err := h.stats.GetRecentStats(c.Request.Context(), days)
	if err != nil {
		failService(c, err, ErrCodeInternal, "Failed to load stats. Please try again.")
		return
	}
	out := RecentStatsResponse{Days: days, Stats: make([]DailyStatsView, 0, len(rows))}
	for i := range rows {
		out.Stats = append(out.Stats, dailyView(&rows[i]))
	}
	ok(c, http.StatusOK, out)
}

// StatsSummary godoc
// @ID          statsSummary
// @Summary     Aggregated mood stats
// @Tags        Stats
// @Produce     json
// @Param       days  query  int  false  "Window in days, today included"  minimum(1) maximum(90) default(30)
// @Success     200  {object}  services.StatsSummary
// @Router      /stats/summary [get]
func (h *Handlers) StatsSummary(c *gin.Context) {
	days := clampDays(utils.AtoiDefault(c.Query("days"), services.DefaultSummaryDays))
	sum, err := h.stats.Summary(c.Request.Context(), days)
	if err != nil {
		failService(c, err, ErrCodeInternal, "Failed to load stats. Please try again.")
		return
	}
	ok(c, http.StatusOK, sum)
}

// Usage godoc
// @ID          usage
// @Summary     Today's store usage
// @Tags        Stats
// @Produce     json
// @Success     200  {object}  handlers.UsageResponse
// @Success     204  "Nothing recorded today"
// @Router      /usage [get]
func (h *Handlers) Usage(c *gin.Context) {
	row, err := h.usage.GetCurrentUsage(c.Request.Context())
	if err != nil {
		failService(c, err, ErrCodeInternal, "Failed to load usage.")
		return
	}
	if row == nil {
		noContent(c)
		return
	}
	ok(c, http.StatusOK, UsageResponse{Usage: row, Report: h.usage.Report(row)})
}

func clampDays(n int) int { return utils.ClampRange(n, 1, services.MaxStatsDays) }
