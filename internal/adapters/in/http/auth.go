package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"parcelhub/internal/core/domain/model/actor"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "parcelhub.actor"

// Claims is the bearer token payload. The subject is the actor id; the
// station claims may be empty for accounts that only read.
type Claims struct {
	StationID   string `json:"station_id,omitempty"`
	StationName string `json:"station_name,omitempty"`
	Role        string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ActorMiddleware resolves the HS256 bearer token into an actor.Context and
// stores it on the request.
func ActorMiddleware(secret []byte) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			var claims Claims
			if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
				return secret, nil
			}); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token: "+err.Error())
			}

			act, err := actor.NewContext(claims.Subject, claims.StationID, claims.StationName, actor.Role(claims.Role))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims: "+err.Error())
			}

			c.Set(actorContextKey, act)
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// actorFrom returns the actor stored by ActorMiddleware.
func actorFrom(c echo.Context) (actor.Context, error) {
	act, ok := c.Get(actorContextKey).(actor.Context)
	if !ok {
		return actor.Context{}, echo.NewHTTPError(http.StatusUnauthorized, "no actor on request")
	}
	return act, nil
}

// IssueToken signs a token for act valid for ttl. Operators use it to mint
// station tokens; tests use it to call the API.
func IssueToken(secret []byte, act actor.Context, ttl time.Duration, at time.Time) (string, error) {
	if err := act.Validate(); err != nil {
		return "", err
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}

	claims := Claims{
		StationID:   act.Station().ID(),
		StationName: act.Station().Name(),
		Role:        string(act.Role()),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   act.ID(),
			IssuedAt:  jwt.NewNumericDate(at),
			ExpiresAt: jwt.NewNumericDate(at.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
