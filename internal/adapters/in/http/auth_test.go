package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parcelhub/internal/core/domain/model/actor"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorMiddleware(t *testing.T) {
	secret := []byte("s3cret")
	act, err := actor.NewContext("rider-7", "S9", "North hub", actor.RoleRider)
	require.NoError(t, err)

	handler := ActorMiddleware(secret)(func(c echo.Context) error {
		got, err := actorFrom(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, got.ID()+"@"+got.Station().ID()+"/"+string(got.Role()))
	})

	call := func(authorization string) (int, string) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authorization != "" {
			req.Header.Set(echo.HeaderAuthorization, authorization)
		}
		rec := httptest.NewRecorder()
		err := handler(e.NewContext(req, rec))
		if he, ok := err.(*echo.HTTPError); ok {
			return he.Code, ""
		}
		require.NoError(t, err)
		return rec.Code, rec.Body.String()
	}

	t.Run("valid token", func(t *testing.T) {
		token, err := IssueToken(secret, act, time.Minute, time.Now())
		require.NoError(t, err)

		code, body := call("Bearer " + token)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "rider-7@S9/rider", body)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := IssueToken(secret, act, time.Minute, time.Now().Add(-time.Hour))
		require.NoError(t, err)

		code, _ := call("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("token without expiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			StationID:        "S9",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "rider-7"},
		}).SignedString(secret)
		require.NoError(t, err)

		code, _ := call("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("other signing method", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "rider-7",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		}).SignedString(secret)
		require.NoError(t, err)

		code, _ := call("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("missing header", func(t *testing.T) {
		code, _ := call("")
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("basic scheme", func(t *testing.T) {
		code, _ := call("Basic abc")
		assert.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestIssueTokenRejectsNonPositiveTTL(t *testing.T) {
	act, err := actor.NewContext("clerk-1", "S1", "", actor.RoleClerk)
	require.NoError(t, err)

	_, err = IssueToken([]byte("k"), act, 0, time.Now())
	assert.Error(t, err)
}
