package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/locvowork/employee_management_sample/console/internal/apitest"
	"github.com/locvowork/employee_management_sample/console/internal/bootstrap"
	"github.com/locvowork/employee_management_sample/console/internal/domain"
	"github.com/locvowork/employee_management_sample/console/internal/session"
)

type harness struct {
	api      *apitest.Server
	baseURL  string
	prefsDir string
}

func seedRecords() []domain.Employee {
	mk := func(name string, dept domain.Department, role, joined string, status domain.Status, score int) domain.Employee {
		return domain.Employee{Name: name, Department: dept, Role: role, JoiningDate: joined, Status: status, PerformanceScore: score}
	}
	return []domain.Employee{
		mk("Nguyen An", domain.DepartmentEngineering, "Backend Engineer", "2019-03-01", domain.StatusActive, 88),
		mk("Tran Binh", domain.DepartmentHR, "Recruiter", "2020-07-15", domain.StatusActive, 64),
		mk("Le Chi", domain.DepartmentFinance, "Accountant", "2021-01-10", domain.StatusOnLeave, 45),
		mk("Pham Dung", domain.DepartmentEngineering, "QA Engineer", "2018-11-20", domain.StatusArchived, 70),
		mk("Hoang Giang", domain.DepartmentEngineering, "DevOps Engineer", "2022-05-05", domain.StatusActive, 92),
		mk("Vo Hoa", domain.DepartmentHR, "Payroll Specialist", "2017-09-30", domain.StatusResigned, 30),
		mk("Dang Khanh", domain.DepartmentFinance, "Auditor", "2023-02-14", domain.StatusActive, 77),
		mk("Bui Lan", domain.DepartmentEngineering, "Frontend Engineer", "2020-12-01", domain.StatusActive, 81),
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := apitest.NewServer(seedRecords()...)
	srv := api.Start()
	t.Cleanup(srv.Close)
	return &harness{api: api, baseURL: srv.URL, prefsDir: t.TempDir()}
}

func (h *harness) factory(ctx context.Context, out io.Writer) (*bootstrap.App, error) {
	app := bootstrap.NewApp(out)
	err := app.Build(ctx, bootstrap.Config{
		APIBaseURL: h.baseURL,
		APITimeout: 2 * time.Second,
		PrefsDir:   h.prefsDir,
		PageSize:   domain.DefaultPageSize,
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (h *harness) run(args ...string) (string, string, error) {
	cmd := NewRootCmd(h.factory)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestList(t *testing.T) {
	t.Run("first page of active employees", func(t *testing.T) {
		h := newHarness(t)
		out, _, err := h.run("list")
		require.NoError(t, err)

		assert.Contains(t, out, "Nguyen An")
		assert.Contains(t, out, "Joining Date")
		assert.NotContains(t, out, "Pham Dung", "archived records are hidden")
		assert.Contains(t, out, "1-5 of 7 items")
	})

	t.Run("page beyond the end is clamped", func(t *testing.T) {
		h := newHarness(t)
		out, _, err := h.run("list", "--page", "9")
		require.NoError(t, err)
		assert.Contains(t, out, "6-7 of 7 items · page 2")
		assert.Contains(t, out, "Bui Lan")
	})

	t.Run("filters and card view", func(t *testing.T) {
		h := newHarness(t)
		out, _, err := h.run("list", "--department", "hr", "--view", "card")
		require.NoError(t, err)
		assert.Contains(t, out, "Tran Binh")
		assert.Contains(t, out, "Vo Hoa")
		assert.NotContains(t, out, "Nguyen An")
		assert.Contains(t, out, "1-2 of 2 items")
	})

	t.Run("search and date range", func(t *testing.T) {
		h := newHarness(t)
		out, _, err := h.run("list", "-s", "engineer", "--from", "2020-01-01", "--to", "2022-12-31")
		require.NoError(t, err)
		assert.Contains(t, out, "Hoang Giang")
		assert.Contains(t, out, "Bui Lan")
		assert.NotContains(t, out, "Nguyen An")
	})

	t.Run("archived view", func(t *testing.T) {
		h := newHarness(t)
		out, _, err := h.run("list", "--archived")
		require.NoError(t, err)
		assert.Contains(t, out, "Pham Dung")
		assert.Contains(t, out, "1-1 of 1 items")
	})

	t.Run("empty result", func(t *testing.T) {
		h := newHarness(t)
		out, _, err := h.run("list", "-s", "nobody")
		require.NoError(t, err)
		assert.Contains(t, out, "No employees found")
		assert.Contains(t, out, "0-0 of 0 items")
	})
}

func TestList_SortIsRemembered(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("list", "--sort", "performanceScore:descend", "--page-size", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Score ▼")
	assert.Less(t, bytes.Index([]byte(out), []byte("Hoang Giang")), bytes.Index([]byte(out), []byte("Vo Hoa")))

	out, _, err = h.run("list", "--page-size", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Score ▼", "sort survives a new process")

	out, _, err = h.run("list", "--sort", "none")
	require.NoError(t, err)
	assert.NotContains(t, out, "▼")
}

func TestList_UsageErrors(t *testing.T) {
	h := newHarness(t)
	cases := map[string][]string{
		"unknown view":       {"list", "--view", "grid"},
		"bad page size":      {"list", "--page-size", "7"},
		"half a date range":  {"list", "--from", "2020-01-01"},
		"unknown department": {"list", "--department", "Sales"},
		"unsortable column":  {"list", "--sort", "id"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := h.run(args...)
			require.Error(t, err)
			assert.Equal(t, exitUsage, ExitCode(err))
		})
	}
}

func TestList_GatewayFailure(t *testing.T) {
	h := newHarness(t)
	h.api.FailNext(http.MethodGet, http.StatusInternalServerError, "database unavailable")

	out, _, err := h.run("list")
	require.Error(t, err)
	assert.Equal(t, exitGateway, ExitCode(err))
	assert.Contains(t, out, "Failed to Load Employees")
}

func TestAdd(t *testing.T) {
	t.Run("creates the employee", func(t *testing.T) {
		h := newHarness(t)
		out, _, err := h.run("add", "--name", "Do Minh", "--department", "Finance", "--role", "Controller",
			"--joining-date", "2024-01-02", "--score", "73")
		require.NoError(t, err)
		assert.Contains(t, out, "Employee Added")
		assert.Contains(t, out, "Do Minh has been successfully added.")

		var found bool
		for _, e := range h.api.Records() {
			if e.Name == "Do Minh" {
				found = true
				assert.Equal(t, domain.StatusActive, e.Status)
				assert.Equal(t, 73, e.PerformanceScore)
				assert.Equal(t, "2024-01-02", e.JoiningDate)
			}
		}
		assert.True(t, found)
	})

	t.Run("keep open prints the saved record", func(t *testing.T) {
		h := newHarness(t)
		out, _, err := h.run("add", "--name", "Ho Ngoc", "--department", "HR", "--role", "Talent Lead",
			"--joining-date", "2023-06-01", "--keep-open")
		require.NoError(t, err)
		assert.Contains(t, out, "Editing #9 (editing)")
		assert.Contains(t, out, "Ho Ngoc")

		for _, e := range h.api.Records() {
			if e.Name == "Ho Ngoc" {
				assert.Equal(t, session.DefaultPerformanceScore, e.PerformanceScore)
			}
		}
	})

	t.Run("invalid form is rejected locally", func(t *testing.T) {
		h := newHarness(t)
		_, stderr, err := h.run("add", "--name", "X", "--department", "Sales")
		require.Error(t, err)
		assert.Equal(t, exitValidation, ExitCode(err))
		assert.Contains(t, stderr, "name:")
		assert.Contains(t, stderr, "role:")
		assert.Equal(t, 0, h.api.Calls(http.MethodPost))
	})
}

func TestEdit(t *testing.T) {
	t.Run("changes only the given fields", func(t *testing.T) {
		h := newHarness(t)
		out, _, err := h.run("edit", "2", "--score", "95", "--status", "On Leave")
		require.NoError(t, err)
		assert.Contains(t, out, "Employee Updated")

		for _, e := range h.api.Records() {
			if e.IDValue() == 2 {
				assert.Equal(t, 95, e.PerformanceScore)
				assert.Equal(t, domain.StatusOnLeave, e.Status)
				assert.Equal(t, "Recruiter", e.Role)
				assert.Equal(t, "2020-07-15", e.JoiningDate)
			}
		}
	})

	t.Run("archived employees are read only", func(t *testing.T) {
		h := newHarness(t)
		_, _, err := h.run("edit", "4", "--score", "10")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrArchivedReadOnly))
		assert.Equal(t, 0, h.api.Calls(http.MethodPut))
	})

	t.Run("unknown id", func(t *testing.T) {
		h := newHarness(t)
		_, _, err := h.run("edit", "99")
		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, 99, nf.ID)
	})

	t.Run("server failure", func(t *testing.T) {
		h := newHarness(t)
		h.api.FailNext(http.MethodPut, http.StatusInternalServerError, "database unavailable")
		out, _, err := h.run("edit", "1", "--role", "Staff Engineer")
		require.Error(t, err)
		assert.Equal(t, exitGateway, ExitCode(err))
		assert.Contains(t, out, "Operation Failed")
	})
}

func TestArchive(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("archive", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Employee Archived")
	for _, e := range h.api.Records() {
		if e.IDValue() == 1 {
			assert.Equal(t, domain.StatusArchived, e.Status)
		}
	}

	out, _, err = h.run("archive", "99")
	require.Error(t, err)
	assert.Contains(t, out, "Archive Failed")

	_, _, err = h.run("archive", "abc")
	assert.Equal(t, exitUsage, ExitCode(err))
}

func TestExport(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		h := newHarness(t)
		path := filepath.Join(t.TempDir(), "engineering.csv")

		out, _, err := h.run("export", "-o", path, "--department", "Engineering", "--sort", "name")
		require.NoError(t, err)
		assert.Contains(t, out, "Exported 3 employees")

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		content := string(raw)
		assert.Contains(t, content, "Employee Directory")
		assert.Contains(t, content, "Bui Lan")
		assert.NotContains(t, content, "Tran Binh")
		assert.Less(t, bytes.Index(raw, []byte("Bui Lan")), bytes.Index(raw, []byte("Nguyen An")))
	})

	t.Run("xlsx", func(t *testing.T) {
		h := newHarness(t)
		path := filepath.Join(t.TempDir(), "all.xlsx")

		_, _, err := h.run("export", "--output", path)
		require.NoError(t, err)

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Employees")
		require.NoError(t, err)
		// title, header and seven active employees
		assert.Len(t, rows, 9)
		assert.Contains(t, f.GetSheetList(), "Summary")
	})

	t.Run("streamed xlsx", func(t *testing.T) {
		h := newHarness(t)
		path := filepath.Join(t.TempDir(), "archived.xlsx")

		_, _, err := h.run("export", "-o", path, "--archived", "--stream")
		require.NoError(t, err)

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Employees")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Pham Dung", rows[2][1])
	})

	t.Run("unsupported format", func(t *testing.T) {
		h := newHarness(t)
		_, _, err := h.run("export", "-o", filepath.Join(t.TempDir(), "out.pdf"))
		assert.Equal(t, exitUsage, ExitCode(err))
	})
}
