package navigation

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssignRedirectsWithSeeOther(t *testing.T) {
	rec := httptest.NewRecorder()
	nav := NewHTTPNavigator(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	require.NoError(t, nav.Assign("http://127.0.0.1:9000/auth/github/login"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "http://127.0.0.1:9000/auth/github/login", rec.Header().Get("Location"))

	target, ok := nav.Target()
	require.True(t, ok)
	require.Equal(t, "http://127.0.0.1:9000/auth/github/login", target)
}

func TestAssignUsesHXRedirectForHTMX(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("HX-Request", "true")
	nav := NewHTTPNavigator(rec, req)

	require.NoError(t, nav.Assign("/"))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "/", rec.Header().Get("HX-Redirect"))
	require.Empty(t, rec.Header().Get("Location"))
}

func TestReplace(t *testing.T) {
	rec := httptest.NewRecorder()
	nav := NewHTTPNavigator(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, nav.Replace("/dashboard"))
	require.Equal(t, http.StatusFound, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	nav = NewHTTPNavigator(rec, req)
	require.NoError(t, nav.Replace("/dashboard"))
	require.Equal(t, "/dashboard", rec.Header().Get("HX-Location"))
}

func TestReplaceRejectsOtherOrigins(t *testing.T) {
	for _, target := range []string{"https://evil.example.com", "//evil.example.com/x", "/\\evil.example.com", "dashboard", ""} {
		rec := httptest.NewRecorder()
		nav := NewHTTPNavigator(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.ErrorIs(t, nav.Replace(target), ErrNotSameOrigin, target)
		_, ok := nav.Target()
		require.False(t, ok)
	}
}

func TestSingleNavigationPerResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	nav := NewHTTPNavigator(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.NoError(t, nav.Assign("/"))
	require.ErrorIs(t, nav.Assign("/other"), ErrAlreadyNavigated)
	require.ErrorIs(t, nav.Replace("/other"), ErrAlreadyNavigated)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.Assign("http://127.0.0.1:9000/auth/google/login"))
	require.NoError(t, r.Replace("/dashboard"))
	require.ErrorIs(t, r.Replace("http://elsewhere"), ErrNotSameOrigin)

	require.Equal(t, []Call{
		{External: true, Target: "http://127.0.0.1:9000/auth/google/login"},
		{Target: "/dashboard"},
	}, r.Calls())
}

func TestDetachedNavigatorLeavesResponseAlone(t *testing.T) {
	rec := httptest.NewRecorder()
	nav := NewHTTPNavigator(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	nav.Detach()
	require.ErrorIs(t, nav.Assign("/"), ErrDetached)
	require.ErrorIs(t, nav.Replace("/"), ErrDetached)
	require.Empty(t, rec.Header().Get("Location"))
	_, ok := nav.Target()
	require.False(t, ok)
}
