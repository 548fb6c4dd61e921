// Session and profile HTTP handlers.
//
//   - POST   /session   (sign in with the bearer identity)
//   - DELETE /session   (sign out; persists queued reactions)
//   - GET    /me        (profile with today's counters)
//   - GET    /limits    (can the caller post today?)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/campus-mood-backend/internal/http/middleware"
)

// SignIn godoc
// @ID          signIn
// @Summary     Sign in
// @Description Admits the bearer identity when its email is verified and belongs to an allowed college domain.
// @Description Creates the user on first sign-in and refreshes the profile afterwards.
// @Tags        Session
// @Produce     json
// @Param       Authorization  header  string  true  "Bearer token"
// @Success     200  {object}  services.Profile
// @Failure     400  {object}  handlers.ErrorResponse "Email not verified"
// @Failure     401  {object}  handlers.ErrorResponse "Sign in required"
// @Failure     403  {object}  handlers.ErrorResponse "Email domain not allowed"
// @Router      /session [post]
func (h *Handlers) SignIn(c *gin.Context) {
	id, found := middleware.IdentityFrom(c)
	if !found {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "sign in required")
		return
	}
	prof, err := h.sessions.SignIn(c.Request.Context(), id)
	if err != nil {
		failService(c, err, ErrCodeInternal, "Sign-in failed. Please try again.")
		return
	}
	ok(c, http.StatusOK, prof)
}

// SignOut godoc
// @ID          signOut
// @Summary     Sign out
// @Description Persists queued reactions. Tokens are stateless; the client discards its own.
// @Tags        Session
// @Param       Authorization  header  string  true  "Bearer token"
// @Success     204  "Signed out"
// @Router      /session [delete]
func (h *Handlers) SignOut(c *gin.Context) {
	if err := h.sessions.SignOut(c.Request.Context()); err != nil {
		// The queue retries on its own; sign-out still succeeds.
		middleware.LoggerFrom(c).Warn().Err(err).Msg("reaction flush on sign-out failed")
	}
	noContent(c)
}

// Me godoc
// @ID          me
// @Summary     Current profile
// @Tags        Session
// @Produce     json
// @Param       Authorization  header  string  true  "Bearer token"
// @Success     200  {object}  services.Profile
// @Failure     401  {object}  handlers.ErrorResponse "Sign in required"
// @Router      /me [get]
func (h *Handlers) Me(c *gin.Context) {
	prof, err := h.sessions.Profile(c.Request.Context(), userID(c))
	if err != nil {
		failService(c, err, ErrCodeInternal, "Failed to load profile. Please try again.")
		return
	}
	ok(c, http.StatusOK, prof)
}

// Limits godoc
// @ID          limits
// @Summary     Daily post allowance
// @Tags        Session
// @Produce     json
// @Param       Authorization  header  string  true  "Bearer token"
// @Success     200  {object}  services.Allowance
// @Failure     401  {object}  handlers.ErrorResponse "Sign in required"
// @Router      /limits [get]
func (h *Handlers) Limits(c *gin.Context) {
	allow, err := h.quota.CheckDailyLimit(c.Request.Context(), userID(c))
	if err != nil {
		failService(c, err, ErrCodeInternal, "Failed to check your limit. Please try again.")
		return
	}
	ok(c, http.StatusOK, allow)
}
