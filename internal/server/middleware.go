package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coursetube/internal/models"
	"github.com/desertthunder/coursetube/internal/shared"
)

// UserHeader carries the caller's user ID.
const UserHeader = "X-User-ID"

type contextKey int

const userKey contextKey = iota

// UserLookup resolves the authenticated user.
type UserLookup interface {
	Get(id string) (*models.User, error)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start).Round(time.Microsecond),
			)
		})
	}
}

// Recoverer turns a panicking handler into a 500 response.
func Recoverer(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					logger.Error("handler panicked", "path", r.URL.Path, "panic", v, "stack", string(debug.Stack()))
					writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate resolves [UserHeader] against users and stores the user in the request context.
//
// Requests without a known, active user are rejected with 401.
func Authenticate(users UserLookup) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(UserHeader))
			if id == "" {
				writeError(w, fmt.Errorf("%w: missing %s header", shared.ErrNotAuthenticated, UserHeader))
				return
			}

			user, err := users.Get(id)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					err = fmt.Errorf("%w: unknown user", shared.ErrNotAuthenticated)
				}
				writeError(w, err)
				return
			}
			if user.IsDeleted() {
				writeError(w, fmt.Errorf("%w: unknown user", shared.ErrNotAuthenticated))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user stored by [Authenticate].
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}
