package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seastrike/internal/clock"
	"seastrike/internal/coordinator"
	"seastrike/internal/presence"
	"seastrike/internal/rng"
	"seastrike/internal/session"
	"seastrike/internal/ws"
)

func newTestRouter(t *testing.T) (http.Handler, *session.Directory) {
	t.Helper()
	clk := clock.New()
	pres := presence.NewRegistry(clk, time.Minute)
	dir := session.NewDirectory(clk, rng.NewFake(0), time.Hour)
	coord := coordinator.New(pres, dir, clk)
	return newRouter(coord, ws.NewServer(coord, 30*time.Second, 8)), dir
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPlayersEmpty(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/players", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"players":[]}`, rec.Body.String())
}

func TestSessionByID(t *testing.T) {
	r, dir := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	s, err := dir.CreateWaiting("alice")
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+s.ID(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		ID           string   `json:"id"`
		Participants []string `json:"participants"`
		Phase        string   `json:"phase"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, s.ID(), view.ID)
	assert.Equal(t, []string{"alice"}, view.Participants)
	assert.Equal(t, "waiting", view.Phase)
}
