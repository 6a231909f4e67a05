// internal/httpserver/token.go
//
// Per-game bearer tokens.
// Responsibilities:
//   - Sign an HS256 JWT naming one game (claim "gid") when the game is created.
//   - Parse and verify tokens from the Authorization header.
//   - requireGameToken middleware: rejects requests without a valid token and
//     stores the game ID on the request context.
//
// Notes:
//   - A token is a capability for exactly one game; there are no accounts.
//   - Expiry is enforced by the jwt library against the "exp" claim, using
//     the same clock that signed the token.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

type ctxGameKey struct{}

// tokens signs and verifies game tokens.
type tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// sign issues a token for gameID, returning it with its expiry.
func (t tokens) sign(gameID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gid": gameID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := token.SignedString(t.secret)
	return ss, exp, err
}

// parse verifies tokenStr and returns the game ID it names.
func (t tokens) parse(tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}
	gid, _ := claims["gid"].(string)
	if gid == "" {
		return "", errInvalidToken
	}
	return gid, nil
}

// bearer extracts the token from "Authorization: Bearer <token>".
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// requireGameToken rejects requests without a valid game token.
func (s *Server) requireGameToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearer(r)
		if tokenStr == "" {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		gid, err := s.tokens.parse(tokenStr)
		if err != nil {
			http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxGameKey{}, gid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenGameID returns the game ID placed on ctx by requireGameToken.
func tokenGameID(ctx context.Context) string {
	gid, _ := ctx.Value(ctxGameKey{}).(string)
	return gid
}
