package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"
)

var (
	errEmptyLoginResponse = errors.New("empty response from server")
	errCorruptToken       = errors.New("token is malformed")
)

// extractToken reads a bearer token from a login response body. Accepted
// shapes, first match wins: a raw string, {"token": t}, {"data": t} and
// {"data": {"token": t}}.
func extractToken(body []byte) (string, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", errEmptyLoginResponse
	}
	if !gjson.Valid(trimmed) {
		return trimmed, nil
	}

	parsed := gjson.Parse(trimmed)
	candidates := []gjson.Result{
		parsed,
		parsed.Get("token"),
		parsed.Get("data"),
		parsed.Get("data.token"),
	}
	for _, candidate := range candidates {
		if candidate.Type == gjson.String && strings.TrimSpace(candidate.Str) != "" {
			return strings.TrimSpace(candidate.Str), nil
		}
	}

	return "", domain.ErrTokenNotFound
}

type tokenInfo struct {
	JWT       bool
	Subject   string
	ExpiresAt time.Time
}

func (i tokenInfo) expired(now time.Time) bool {
	return i.JWT && !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// inspectToken reads JWT claims without verifying the signature; the server
// remains the authority. Opaque tokens are accepted as they are.
func inspectToken(token string) (tokenInfo, error) {
	if token == "" || strings.ContainsAny(token, " \t\r\n") {
		return tokenInfo{}, errCorruptToken
	}
	if strings.Count(token, ".") != 2 {
		return tokenInfo{}, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return tokenInfo{}, fmt.Errorf("%w: %v", errCorruptToken, err)
	}

	info := tokenInfo{JWT: true}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	info.Subject = subject(claims["sub"])
	return info, nil
}

// subject accepts both string and numeric "sub" claims; the backend issues
// numeric user ids.
func subject(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// TokenSubject returns the user id carried by a JWT, or "" for opaque tokens.
func TokenSubject(token string) domain.ID {
	info, err := inspectToken(token)
	if err != nil {
		return ""
	}
	return domain.ID(info.Subject)
}
