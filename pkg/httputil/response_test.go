package httputil

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-booking/pkg/errors"
)

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{errors.NewNotFound("doctor", nil), http.StatusNotFound, "NOT_FOUND"},
		{errors.NewBadRequest("bad date", nil), http.StatusBadRequest, "INVALID_INPUT"},
		{errors.Unauthorized(nil), http.StatusUnauthorized, "UNAUTHORIZED"},
		{errors.SlotConflict(nil), http.StatusConflict, "CONFLICT"},
		{stderrors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondWithError(c, tc.err)

		var body Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, "error", body.Status)
		assert.Equal(t, tc.code, body.Code)
		assert.NotContains(t, body.Message, "pq:")
	}
}
