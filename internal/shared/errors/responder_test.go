package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing")

func respond(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/session", nil)
	fn(c)
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec, problem
}

func TestRespondSetsProblemContentType(t *testing.T) {
	rec, problem := respond(t, func(c *gin.Context) {
		NewResponder("https://portal.example.com").Respond(c, ErrSessionUnavailable.WithExtension("reason", "transport_failure"))
	})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	require.Equal(t, "https://portal.example.com"+TypeSessionUnavailable, problem.Type)
	require.Equal(t, "/api/session", problem.Instance)
	require.Equal(t, "transport_failure", problem.Extensions["reason"])
	require.Nil(t, ErrSessionUnavailable.Extensions, "templates are not mutated")
}

func TestChainedResponderMapsErrors(t *testing.T) {
	responder := NewChainedResponder("", func(err error) (ProblemDetail, bool) {
		if errors.Is(err, errMissing) {
			return ErrNotFound.WithDetail("provider not found").WithExtension("resourceType", "provider"), true
		}
		return ProblemDetail{}, false
	})

	rec, problem := respond(t, func(c *gin.Context) { responder.RespondError(c, fmt.Errorf("wrap: %w", errMissing)) })
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "provider", problem.Extensions["resourceType"])

	rec, _ = respond(t, func(c *gin.Context) { responder.RespondError(c, errors.New("boom")) })
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHTTPStatusFromError(t *testing.T) {
	require.Equal(t, http.StatusBadGateway, HTTPStatusFromError(fmt.Errorf("x: %w", ErrSessionContract)))
	require.Equal(t, http.StatusInternalServerError, HTTPStatusFromError(errors.New("x")))
}
