package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	customErrors "github.com/Miraines/MoonyAndStarry/rfi-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{customErrors.ErrInvalidCredentials, http.StatusUnauthorized, "incorrect username or password"},
		{customErrors.ErrInvalidToken, http.StatusUnauthorized, "could not validate credentials"},
		{customErrors.ErrInactiveUser, http.StatusForbidden, "Inactive user"},
		{customErrors.NewForbidden("Cannot change superuser status"), http.StatusForbidden, "Cannot change superuser status"},
		{customErrors.ErrForbidden, http.StatusForbidden, "not enough permissions"},
		{customErrors.ErrDuplicateUsername, http.StatusBadRequest, "username already registered"},
		{customErrors.NewAlreadyExists("project code"), http.StatusBadRequest, "project code already exists"},
		{customErrors.NewInvalidArgument("Cannot delete yourself"), http.StatusBadRequest, "Cannot delete yourself"},
		{customErrors.ErrPasswordTooLong, http.StatusBadRequest, "password exceeds 72 bytes"},
		{customErrors.NewNotFound("user"), http.StatusNotFound, "user not found"},
		{customErrors.WrapInternal(errors.New("dial tcp: refused"), "db"), http.StatusInternalServerError, "internal server error"},
		{errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		code, msg := Status(tc.err)
		require.Equal(t, tc.code, code, tc.err.Error())
		require.Equal(t, tc.msg, msg)
	}
}

func TestWrite_UnauthorizedSetsChallenge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Write(c, customErrors.ErrInvalidToken)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	require.True(t, c.IsAborted())

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "could not validate credentials", body["error"])
	require.Len(t, c.Errors, 1)
}

func TestWrite_InternalHidesDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Write(c, customErrors.WrapInternal(errors.New("pq: password authentication failed"), "GetUserByID"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "pq:")
	require.Empty(t, w.Header().Get("WWW-Authenticate"))
}
