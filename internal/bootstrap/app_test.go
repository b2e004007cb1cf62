package bootstrap

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_management_sample/console/internal/apitest"
	"github.com/locvowork/employee_management_sample/console/internal/config"
	"github.com/locvowork/employee_management_sample/console/internal/domain"
	"github.com/locvowork/employee_management_sample/console/internal/session"
)

func TestConfigFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("API_BASE_URL", "http://api.test:4000")
	t.Setenv("PAGE_SIZE", "10")
	t.Setenv("SEED_WORKERS", "8")

	require.NoError(t, config.LoadEnvConfig())
	cfg := ConfigFromEnv()
	assert.Equal(t, "http://api.test:4000", cfg.APIBaseURL)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 8, cfg.SeedWorkers)
	assert.Equal(t, 500*time.Millisecond, cfg.SearchDebounce)
}

func TestBuild_SavedRecordRefreshesList(t *testing.T) {
	api := apitest.NewServer(domain.Employee{
		Name: "Nguyen An", Department: domain.DepartmentEngineering, Role: "Backend Engineer",
		JoiningDate: "2020-01-01", Status: domain.StatusActive, PerformanceScore: 80,
	})
	srv := api.Start()
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	app := NewApp(&out)
	require.NoError(t, app.Build(context.Background(), Config{
		APIBaseURL:    srv.URL,
		APITimeout:    2 * time.Second,
		PrefsInMemory: true,
	}))
	t.Cleanup(func() { assert.NoError(t, app.Close()) })

	ctx := context.Background()
	require.NoError(t, app.Controller.Refresh(ctx))
	require.Len(t, app.Controller.Records(), 1)

	joined := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	score := 66
	require.NoError(t, app.Session.Open(nil))
	require.NoError(t, app.Session.SetForm(session.FormValues{
		Name: "Tran Binh", Department: "HR", Role: "Recruiter",
		JoiningDate: &joined, Status: "Active", PerformanceScore: &score,
	}))
	_, err := app.Session.Submit(ctx, false)
	require.NoError(t, err)

	assert.Len(t, app.Controller.Records(), 2, "save triggers a list refresh")
	assert.Equal(t, 2, api.Calls(http.MethodGet))
	assert.Contains(t, out.String(), "Employee Added")
}

func TestBuild_RequiresPrefsLocation(t *testing.T) {
	app := NewApp(&bytes.Buffer{})
	err := app.Build(context.Background(), Config{APIBaseURL: "http://localhost:3000"})
	assert.Error(t, err)
	assert.NoError(t, app.Close())
}

func TestNewSeeder(t *testing.T) {
	api := apitest.NewServer()
	srv := api.Start()
	t.Cleanup(srv.Close)

	app := NewApp(&bytes.Buffer{})
	require.NoError(t, app.Build(context.Background(), Config{
		APIBaseURL:    srv.URL,
		APITimeout:    2 * time.Second,
		PrefsInMemory: true,
		SeedWorkers:   2,
	}))
	t.Cleanup(func() { app.Close() })

	n, err := app.NewSeeder().SeedData(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, api.Records(), 3)
}
