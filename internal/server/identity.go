package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
)

type contextKey int

const (
	userIDKey contextKey = iota
	userInfoKey
)

// UserInfo is the identity of the caller as shown by /api/v1/me.
type UserInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

var devUser = UserInfo{Login: "local", DisplayName: "Local Dev User"}

// IdentifyFunc resolves the peer behind remoteAddr. With tsnet it wraps the
// local client's WhoIs.
type IdentifyFunc func(ctx context.Context, remoteAddr string) (UserInfo, error)

// UserResolver maps a login to a stable user ID, creating the user on first sight.
type UserResolver interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

// DevIdentity attributes every request to the dev user with ID userID. Used
// when Tailscale is off.
func DevIdentity(userID int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, userInfoKey, devUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TailscaleIdentity identifies callers by their tailnet login. Resolved user
// IDs are cached for the life of the process.
func TailscaleIdentity(identify IdentifyFunc, users UserResolver, log *slog.Logger) func(http.Handler) http.Handler {
	var ids sync.Map // login -> int

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, err := identify(r.Context(), r.RemoteAddr)
			if err != nil {
				log.Warn("whois failed", "remote", r.RemoteAddr, "error", err)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown tailnet peer"})
				return
			}

			uid, ok := ids.Load(info.Login)
			if !ok {
				id, err := users.GetOrCreateUser(r.Context(), info.Login, info.DisplayName)
				if err != nil {
					log.Error("resolving user", "login", info.Login, "error", err)
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "user lookup failed"})
					return
				}
				ids.Store(info.Login, id)
				uid = id
			}

			ctx := context.WithValue(r.Context(), userIDKey, uid.(int))
			ctx = context.WithValue(ctx, userInfoKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userIDFromContext returns the caller's user ID, falling back to 1.
func userIDFromContext(r *http.Request) int {
	if id, ok := r.Context().Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

func userInfoFromContext(r *http.Request) UserInfo {
	if info, ok := r.Context().Value(userInfoKey).(UserInfo); ok {
		return info
	}
	return devUser
}

// mustUserID returns the identified caller or writes 401.
func mustUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := r.Context().Value(userIDKey).(int)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unidentified caller"})
		return 0, false
	}
	return id, true
}
