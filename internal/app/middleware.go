package app

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {

	// Global fallback handler: nothing that escapes a handler may kill the
	// process. The failure is written to the crash log and surfaced as a 500.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					deps.CrashLog.Write(req.Method+" "+req.URL.Path, rec)
					http.Error(w, "internal error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, req)
		})
	})

	// PIN gate: everything except PIN verification requires a session token
	// issued by a successful verification.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.HasPrefix(req.URL.Path, "/api/auth/") {
				next.ServeHTTP(w, req)
				return
			}

			token := req.Header.Get("X-Session-Token")
			if token == "" || !deps.PINService.IsAuthorized(token) {
				log.Debugf("rejected unauthenticated request to %s", req.URL.Path)
				http.Error(w, "PIN verification required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
}
