package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/adapters/presenter"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/config"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
)

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
}

func testConfig(t *testing.T) config.Application {
	c := config.Defaults()
	c.Store.Driver = config.DriverSQLite
	c.Store.Path = filepath.Join(t.TempDir(), "kanso.db")
	c.JWT.Secret = "e2e-secret"
	c.App.Timezone = "UTC"
	return c
}

func call(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/api/v1"+path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEndToEnd_TrackerLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCfg := testConfig(t)
	st, closeStores, err := openStores(testCfg)
	require.NoError(t, err)
	defer closeStores()

	a := newApp(testCfg, st, time.UTC, time.Now())

	ctx, stopWorker := context.WithCancel(context.Background())
	a.Persist.Start(ctx)

	today := domain.Today(time.Now(), time.UTC)
	var token, userID string

	t.Run("1. Register and login", func(t *testing.T) {
		w := call(t, a.Router, http.MethodPost, "/auth/register", "",
			`{"email":"e2e@kanso.app","password":"StrongPassword123!","timezone":"UTC"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = call(t, a.Router, http.MethodPost, "/auth/login", "",
			`{"email":"E2E@kanso.app","password":"StrongPassword123!"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp loginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		token, userID = resp.Token, resp.User.ID
		require.NotEmpty(t, token)
	})

	t.Run("2. Track the day", func(t *testing.T) {
		w := call(t, a.Router, http.MethodPut, "/tracker/goals/physical", token, `{"goal":60}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = call(t, a.Router, http.MethodPost, "/tracker/progress/physical", token, `{"amount":45}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("3. Write-back reaches SQLite", func(t *testing.T) {
		assert.Eventually(t, func() bool {
			h, err := st.History.Read(context.Background(), userID)
			if err != nil {
				return false
			}
			rec := h.Materialized(today)
			return rec.Physical.Progress == 45 && rec.Physical.Goal == 60
		}, 3*time.Second, 20*time.Millisecond)
	})

	t.Run("4. Reload after logout comes from the store", func(t *testing.T) {
		w := call(t, a.Router, http.MethodPost, "/auth/logout", token, "")
		require.Equal(t, http.StatusNoContent, w.Code)

		w = call(t, a.Router, http.MethodGet, "/tracker/today", token, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"progress":45`)
	})

	t.Run("5. Analysis over the lifetime", func(t *testing.T) {
		w := call(t, a.Router, http.MethodGet, "/analysis?period=all", token, "")
		require.Equal(t, http.StatusOK, w.Code)

		var view presenter.ChartView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		assert.Equal(t, 25, view.Summary.CurrentAvg)
		assert.Equal(t, 25, view.Summary.Delta)
	})

	stopWorker()
	a.Persist.Wait()

	t.Run("6. Report command reads the same store", func(t *testing.T) {
		cfg = testCfg

		var out bytes.Buffer
		cmd := newReportCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--user", "e2e@kanso.app", "--period", "all", "--today", string(today), "--json"})
		require.NoError(t, cmd.Execute())

		var view presenter.ChartView
		require.NoError(t, json.Unmarshal(out.Bytes(), &view))
		assert.Equal(t, today, view.Today)
		assert.Equal(t, 25, view.Summary.CurrentAvg)
		require.Len(t, view.Categories, 3)
		assert.Equal(t, 75, view.Categories[1].Current)
	})

	t.Run("7. Report rejects an unknown period", func(t *testing.T) {
		cmd := newReportCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"--user", userID, "--period", "decade"})
		assert.ErrorIs(t, cmd.Execute(), domain.ErrInvalidPeriod)
	})
}
