package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jeevanrakshak/donor-api/pkg/errors"
)

func record(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondWithError(c, err)
	return w
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.NewNotFound("request", nil), http.StatusNotFound},
		{"bad request", apperrors.NewBadRequest("invalid input", nil), http.StatusBadRequest},
		{"unauthorized", apperrors.Unauthorized(nil), http.StatusUnauthorized},
		{"forbidden", apperrors.Forbidden("admin access required", nil), http.StatusForbidden},
		{"precondition failed", apperrors.NewPreconditionFailed("request is no longer open", nil), http.StatusConflict},
		{"external service", apperrors.NewExternalService("push gateway", nil), http.StatusBadGateway},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := record(t, tc.err)
			assert.Equal(t, tc.status, w.Code)

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.status, body.Error.Code)
		})
	}
}

func TestWrappedErrorKeepsItsStatus(t *testing.T) {
	err := fmt.Errorf("failed to accept request: %w",
		apperrors.NewPreconditionFailed("request is no longer open", nil))

	w := record(t, err)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInternalErrorHidesDetails(t *testing.T) {
	w := record(t, fmt.Errorf("pq: connection refused"))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body.Error.Message)
}
