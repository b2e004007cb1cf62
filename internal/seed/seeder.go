// Package seed fills (or empties) the remote employee resource with
// generated records through the CRUD gateway.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/locvowork/employee_management_sample/console/internal/domain"
	"github.com/locvowork/employee_management_sample/console/internal/logger"
	"github.com/locvowork/employee_management_sample/console/pkg/dataflow"
)

type Options struct {
	Workers int
	Retries int
	Backoff time.Duration
	// Rand and Now make generation reproducible; both default to the
	// wall clock.
	Rand *rand.Rand
	Now  time.Time
}

type DataSeeder struct {
	gw   domain.EmployeeGateway
	opts Options
}

func NewDataSeeder(gw domain.EmployeeGateway, opts Options) *DataSeeder {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(opts.Now.UnixNano()))
	}
	return &DataSeeder{gw: gw, opts: opts}
}

var (
	firstNames = []string{"An", "Binh", "Chi", "Dung", "Giang", "Hoa", "Khanh", "Lan", "Minh", "Ngoc", "Phuong", "Quan", "Son", "Trang", "Vinh"}
	lastNames  = []string{"Nguyen", "Tran", "Le", "Pham", "Hoang", "Vo", "Dang", "Bui", "Do", "Ho"}
	roles      = map[domain.Department][]string{
		domain.DepartmentEngineering: {"Backend Engineer", "Frontend Engineer", "QA Engineer", "DevOps Engineer", "Engineering Manager"},
		domain.DepartmentHR:          {"Recruiter", "HR Business Partner", "Payroll Specialist", "Talent Lead"},
		domain.DepartmentFinance:     {"Accountant", "Financial Analyst", "Controller", "Auditor"},
	}
	// weighted so most generated staff are active
	seedStatuses = []domain.Status{
		domain.StatusActive, domain.StatusActive, domain.StatusActive, domain.StatusActive,
		domain.StatusOnLeave, domain.StatusResigned, domain.StatusArchived,
	}
)

// Generate builds count employees without ids. Joining dates fall within
// the ten years before Now.
func (ds *DataSeeder) Generate(count int) []domain.Employee {
	r := ds.opts.Rand
	out := make([]domain.Employee, 0, count)
	for i := 0; i < count; i++ {
		dept := domain.Departments[r.Intn(len(domain.Departments))]
		deptRoles := roles[dept]
		joined := ds.opts.Now.AddDate(0, 0, -r.Intn(3650))
		out = append(out, domain.Employee{
			Name:             fmt.Sprintf("%s %s", lastNames[r.Intn(len(lastNames))], firstNames[r.Intn(len(firstNames))]),
			Department:       dept,
			Role:             deptRoles[r.Intn(len(deptRoles))],
			JoiningDate:      domain.FormatDate(joined),
			Status:           seedStatuses[r.Intn(len(seedStatuses))],
			PerformanceScore: r.Intn(100) + 1,
		})
	}
	return out
}

func (ds *DataSeeder) stageOptions(failed *int64) []dataflow.Option {
	return []dataflow.Option{
		dataflow.WithWorkers(ds.opts.Workers),
		dataflow.WithRetry(ds.opts.Retries, dataflow.LinearBackoff(ds.opts.Backoff)),
		dataflow.WithBufferSize(ds.opts.Workers),
		dataflow.WithErrorHandler(func(err error) bool {
			atomic.AddInt64(failed, 1)
			logger.WarnLog(context.Background(), "Seeder request failed after retries: %v", err)
			return true
		}),
	}
}

// SeedData creates count generated employees concurrently and returns how
// many were created. Records that still fail after retries are skipped.
func (ds *DataSeeder) SeedData(ctx context.Context, count int) (int, error) {
	start := time.Now()
	fmt.Printf("🚀 Seeding %d employees with %d workers...\n", count, ds.opts.Workers)

	var failed int64
	created := dataflow.Map(ctx, dataflow.From(ctx, ds.Generate(count)...),
		func(e domain.Employee) (*domain.Employee, error) {
			return ds.gw.Create(ctx, e)
		}, ds.stageOptions(&failed)...)

	var n int64
	err := dataflow.ForEach(ctx, created, func(e *domain.Employee) error {
		if done := atomic.AddInt64(&n, 1); done%50 == 0 {
			fmt.Printf("   ... %d created\n", done)
		}
		return nil
	})
	if err != nil {
		return int(n), fmt.Errorf("seeding interrupted: %w", err)
	}

	fmt.Printf("✅ Created %d employees in %s\n", n, time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		fmt.Printf("⚠️  %d employees could not be created\n", failed)
	}
	return int(n), nil
}

// ClearData hard-deletes every employee, or only archived ones, and returns
// how many were deleted.
func (ds *DataSeeder) ClearData(ctx context.Context, archivedOnly bool) (int, error) {
	fmt.Println("🗑️  Clearing employees...")

	records, err := ds.gw.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list employees: %w", err)
	}

	stream := dataflow.From(ctx, records...)
	if archivedOnly {
		stream = dataflow.Filter(ctx, stream, func(e domain.Employee) bool { return e.IsArchived() })
	}

	var failed, n int64
	err = dataflow.ForEach(ctx, stream, func(e domain.Employee) error {
		if !e.HasID() {
			return nil
		}
		if err := ds.gw.Delete(ctx, e.IDValue()); err != nil {
			return err
		}
		atomic.AddInt64(&n, 1)
		return nil
	}, ds.stageOptions(&failed)...)
	if err != nil {
		return int(n), fmt.Errorf("clearing interrupted: %w", err)
	}

	fmt.Printf("✅ Deleted %d employees\n", n)
	if failed > 0 {
		fmt.Printf("⚠️  %d employees could not be deleted\n", failed)
	}
	return int(n), nil
}

// Presets
type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetLarge  SeedPreset = "large"
	PresetXLarge SeedPreset = "xlarge"
)

// GetPresetConfig returns the number of employees for a preset
func GetPresetConfig(preset SeedPreset) int {
	switch preset {
	case PresetSmall:
		return 12
	case PresetMedium:
		return 50
	case PresetLarge:
		return 200
	case PresetXLarge:
		return 1000
	default:
		return 50
	}
}
