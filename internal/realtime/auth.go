package realtime

import (
	"context"
	"strings"

	"devlink/server/internal/apperr"
	"devlink/server/internal/models"
	"devlink/server/internal/store"
	"devlink/server/internal/utils"
)

// HandshakeRequest is the slice of the upgrade request the authenticator
// needs. *fiber.Ctx satisfies it; tests can pass a stub.
type HandshakeRequest interface {
	Get(key string, defaultValue ...string) string
	Query(key string, defaultValue ...string) string
	Cookies(key string, defaultValue ...string) string
}

// TokenExtractor attempts to pull an identity token from one location of
// the handshake request.
type TokenExtractor func(req HandshakeRequest) (string, bool)

// FromAuthHeader reads a bearer token from the Authorization header.
// Other schemes (Basic, bare values) are ignored so only bearer
// credentials reach the verify path.
func FromAuthHeader(req HandshakeRequest) (string, bool) {
	header := req.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// FromQuery reads the token query parameter.
func FromQuery(req HandshakeRequest) (string, bool) {
	token := req.Query("token")
	return token, token != ""
}

// FromCookie reads the jwt session cookie.
func FromCookie(req HandshakeRequest) (string, bool) {
	token := req.Cookies("jwt")
	return token, token != ""
}

// DefaultExtractors is the handshake token precedence: explicit credential
// header, then query parameter, then session cookie.
var DefaultExtractors = []TokenExtractor{FromAuthHeader, FromQuery, FromCookie}

// ExtractToken runs the extractors in order and returns the first hit.
func ExtractToken(req HandshakeRequest, extractors ...TokenExtractor) (string, bool) {
	if len(extractors) == 0 {
		extractors = DefaultExtractors
	}
	for _, extract := range extractors {
		if token, ok := extract(req); ok {
			return token, true
		}
	}
	return "", false
}

// Authenticate resolves the handshake to an existing user or fails closed
// with an authentication error. No registry entry exists until this has
// succeeded.
func Authenticate(ctx context.Context, req HandshakeRequest, users store.UserStore) (*models.User, error) {
	token, ok := ExtractToken(req)
	if !ok {
		return nil, apperr.New(apperr.KindAuthentication, "Authentication error: No token provided")
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		return nil, apperr.New(apperr.KindAuthentication, "Authentication error: Invalid token")
	}

	user, err := users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.KindAuthentication, "Authentication error: User not found")
	}
	return user, nil
}
