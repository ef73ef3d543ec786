package httpx

import (
	"context"
	"net"
	"net/http"
	"time"
)

type contextKey string

const (
	userIDKey      contextKey = "userID"
	roleKey        contextKey = "role"
	requestIDKey   contextKey = "requestID"
	tokenIDKey     contextKey = "tokenID"
	tokenExpiryKey contextKey = "tokenExpiry"
	userSlotKey    contextKey = "userSlot"
)

// UserIDFrom retrieves the user ID from the request context.
func UserIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// RoleFrom retrieves the user role from the request context.
func RoleFrom(r *http.Request) string {
	if v, ok := r.Context().Value(roleKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithUser returns a new context with the user ID and role.
func ContextWithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

func withUserSlot(ctx context.Context, slot *string) context.Context {
	return context.WithValue(ctx, userSlotKey, slot)
}

func fillUserSlot(ctx context.Context, userID string) {
	if slot, ok := ctx.Value(userSlotKey).(*string); ok && slot != nil {
		*slot = userID
	}
}

// ContextWithToken stores the jti and expiry of the access token that authenticated the request.
func ContextWithToken(ctx context.Context, jti string, expiresAt time.Time) context.Context {
	ctx = context.WithValue(ctx, tokenIDKey, jti)
	return context.WithValue(ctx, tokenExpiryKey, expiresAt)
}

func TokenIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(tokenIDKey).(string); ok {
		return v
	}
	return ""
}

func TokenExpiryFrom(r *http.Request) time.Time {
	if v, ok := r.Context().Value(tokenExpiryKey).(time.Time); ok {
		return v
	}
	return time.Time{}
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ClientIP returns the host of the remote address. Behind a trusted proxy,
// RealIPMiddleware has already replaced it with the forwarded client address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
