// Package report renders an employee view into a spreadsheet using a YAML
// layout template.
package report

import (
	_ "embed"
	"fmt"
	"io"
	"sort"

	"github.com/locvowork/employee_management_sample/console/internal/domain"
	"github.com/locvowork/employee_management_sample/console/pkg/simpleexcel"
)

// DefaultTemplate is the built-in layout with an "employees" and a
// "departments" section.
//
//go:embed employees.yaml
var DefaultTemplate string

const (
	EmployeesSection   = "employees"
	DepartmentsSection = "departments"
)

// DepartmentSummary is one row of the summary sheet.
type DepartmentSummary struct {
	Department   domain.Department
	Headcount    int
	AverageScore float64
}

// Summarize groups employees by department, ordered by department name.
func Summarize(employees []domain.Employee) []DepartmentSummary {
	totals := make(map[domain.Department]*DepartmentSummary)
	for _, e := range employees {
		s, ok := totals[e.Department]
		if !ok {
			s = &DepartmentSummary{Department: e.Department}
			totals[e.Department] = s
		}
		s.Headcount++
		s.AverageScore += float64(e.PerformanceScore)
	}

	out := make([]DepartmentSummary, 0, len(totals))
	for _, s := range totals {
		s.AverageScore /= float64(s.Headcount)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

// StreamBatchSize is the number of employees handed to the stream writer
// at a time.
const StreamBatchSize = 500

func newExporter(template string) (*simpleexcel.DataExporter, error) {
	if template == "" {
		template = DefaultTemplate
	}
	exporter, err := simpleexcel.NewDataExporterFromYamlConfig(template)
	if err != nil {
		return nil, fmt.Errorf("load report template: %w", err)
	}

	exporter.
		RegisterFormatter("score_band", func(v interface{}) interface{} {
			if score, ok := v.(int); ok {
				return domain.ScoreBand(score)
			}
			return v
		}).
		RegisterFormatter("one_decimal", func(v interface{}) interface{} {
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("%.1f", f)
			}
			return v
		})
	return exporter, nil
}

// Build binds employees to the template. An empty template selects
// DefaultTemplate.
func Build(employees []domain.Employee, template string) (*simpleexcel.DataExporter, error) {
	exporter, err := newExporter(template)
	if err != nil {
		return nil, err
	}
	exporter.
		BindSectionData(EmployeesSection, employees).
		BindSectionData(DepartmentsSection, Summarize(employees))
	return exporter, nil
}

// Stream writes the workbook to w, handing the employees section to the
// stream writer in batches.
func Stream(w io.Writer, employees []domain.Employee, template string) error {
	exporter, err := newExporter(template)
	if err != nil {
		return err
	}
	exporter.BindSectionData(DepartmentsSection, Summarize(employees))

	s, err := exporter.StartStream(w)
	if err != nil {
		return err
	}
	for start := 0; start < len(employees); start += StreamBatchSize {
		end := start + StreamBatchSize
		if end > len(employees) {
			end = len(employees)
		}
		if err := s.Write(EmployeesSection, employees[start:end]); err != nil {
			s.Close()
			return fmt.Errorf("stream employees: %w", err)
		}
	}
	return s.Close()
}
