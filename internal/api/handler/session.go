package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/alertboard/internal/api/request"
	"github.com/edvin/alertboard/internal/api/response"
	"github.com/edvin/alertboard/internal/view"
)

// SessionCookie names the cookie that carries the view session ID.
const SessionCookie = "alertboard_session"

// dashboardFor resolves the {team} dashboard of the caller's session,
// starting a session when needed. The cookie is written on every request so
// its expiry slides with the server-side idle timeout. It writes an error
// response and returns nil when the team is invalid.
func dashboardFor(w http.ResponseWriter, r *http.Request, sessions *view.Sessions, idle time.Duration) *view.Dashboard {
	team, err := request.RequireTeam(chi.URLParam(r, "team"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return nil
	}

	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	d, id := sessions.Dashboard(id, team)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(idle.Seconds()),
	})
	return d
}
