package simpleexcel

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

type product struct {
	Name  string
	Price float64
	SKU   *string
}

func strPtr(s string) *string { return &s }

func TestDataExporter_ProgrammaticSheet(t *testing.T) {
	exporter := NewDataExporter()
	exporter.AddSheet("Products").
		AddSection(&SectionConfig{
			Title:      "Catalog",
			ShowHeader: true,
			HasFilter:  true,
			Data: []product{
				{Name: "Laptop", Price: 1200.5, SKU: strPtr("LP-1")},
				{Name: "Mouse", Price: 20},
			},
			Columns: []ColumnConfig{
				{FieldName: "Name", Header: "Product", Width: 30},
				{FieldName: "Price", Header: "Price"},
				{FieldName: "SKU", Header: "SKU"},
				{FieldName: "Missing", Header: "Missing"},
			},
		})

	f, err := exporter.BuildExcel()
	if err != nil {
		t.Fatalf("Failed to build excel: %v", err)
	}
	defer f.Close()

	// Row 1: title, Row 2: header, Row 3-4: data
	expect := map[string]string{
		"A1": "Catalog",
		"A2": "Product",
		"B2": "Price",
		"A3": "Laptop",
		"B3": "1200.5",
		"C3": "LP-1",
		"C4": "",
		"D4": "",
	}
	for cell, want := range expect {
		got, _ := f.GetCellValue("Products", cell)
		if got != want {
			t.Errorf("%s: expected %q, got %q", cell, want, got)
		}
	}

	width, _ := f.GetColWidth("Products", "A")
	if width != 30 {
		t.Errorf("expected column width 30, got %v", width)
	}
}

func TestDataExporter_YamlConfigWithFormatter(t *testing.T) {
	yamlConfig := `
sheets:
  - name: "Report"
    sections:
      - id: "items"
        title: "Items"
        show_header: true
        columns:
          - field_name: "Name"
            header: "Name"
          - field_name: "Price"
            header: "Price"
            formatter: "currency"
      - id: "notes"
        title: "Generated by test"
        type: "title"
`
	exporter, err := NewDataExporterFromYamlConfig(yamlConfig)
	if err != nil {
		t.Fatalf("Failed to create exporter: %v", err)
	}
	exporter.RegisterFormatter("currency", func(v interface{}) interface{} {
		if price, ok := v.(float64); ok {
			return fmt.Sprintf("$%.2f", price)
		}
		return v
	})
	exporter.BindSectionData("items", []product{{Name: "Desk", Price: 99.9}})

	if exporter.GetSheet("Report") == nil {
		t.Fatalf("expected sheet 'Report' from yaml")
	}
	if exporter.GetSheet("Report").Section("items") == nil {
		t.Fatalf("expected section 'items'")
	}

	f, err := exporter.BuildExcel()
	if err != nil {
		t.Fatalf("Failed to build excel: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("Report", "B3"); got != "$99.90" {
		t.Errorf("expected formatted price, got %q", got)
	}
	if got, _ := f.GetCellValue("Report", "A4"); got != "Generated by test" {
		t.Errorf("expected title-only section at A4, got %q", got)
	}
}

func TestDataExporter_HiddenAndLockedSections(t *testing.T) {
	exporter := NewDataExporter()
	exporter.AddSheet("Meta").
		AddSection(&SectionConfig{
			Title:      "Visible",
			ShowHeader: true,
			Locked:     true,
			Data:       []map[string]interface{}{{"key": "a"}},
			Columns:    []ColumnConfig{{FieldName: "key", Header: "Key"}},
		}).
		AddSection(&SectionConfig{
			Type:    SectionTypeHidden,
			Data:    []map[string]interface{}{{"key": "secret"}},
			Columns: []ColumnConfig{{FieldName: "key", Header: "Key"}},
		})

	f, err := exporter.BuildExcel()
	if err != nil {
		t.Fatalf("Failed to build excel: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("Meta", "A3"); got != "a" {
		t.Errorf("expected map value, got %q", got)
	}
	if got, _ := f.GetCellValue("Meta", "A4"); got != "secret" {
		t.Errorf("expected hidden data at A4, got %q", got)
	}
	visible, _ := f.GetRowVisible("Meta", 4)
	if visible {
		t.Errorf("row 4 should be hidden")
	}
	styleID, _ := f.GetCellStyle("Meta", "A3")
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatalf("get style: %v", err)
	}
	if style.Protection == nil || !style.Protection.Locked {
		t.Errorf("expected locked data cell")
	}
}

func TestDataExporter_RoundTripBytes(t *testing.T) {
	exporter := NewDataExporter()
	exporter.AddSheet("One").AddSection(&SectionConfig{
		ShowHeader: true,
		Data:       []product{{Name: "Chair", Price: 45}},
		Columns:    []ColumnConfig{{FieldName: "Name", Header: "Name"}},
	})
	exporter.AddSheet("Two")

	data, err := exporter.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "One" || sheets[1] != "Two" {
		t.Errorf("unexpected sheets %v", sheets)
	}
	if got, _ := f.GetCellValue("One", "A2"); got != "Chair" {
		t.Errorf("expected Chair, got %q", got)
	}
}

func TestDataExporter_ToCSV(t *testing.T) {
	exporter := NewDataExporter()
	exporter.AddSheet("Products").
		AddSection(&SectionConfig{
			Title:      "Catalog",
			ShowHeader: true,
			Data:       []*product{{Name: "Lamp", Price: 12.5}, nil},
			Columns: []ColumnConfig{
				{FieldName: "Name", Header: "Product"},
				{FieldName: "Price", Header: "Price", Formatter: func(v interface{}) interface{} {
					if p, ok := v.(float64); ok {
						return fmt.Sprintf("%.1f", p)
					}
					return v
				}},
			},
		}).
		AddSection(&SectionConfig{Type: SectionTypeHidden, Title: "skip me"})

	var buf bytes.Buffer
	if err := exporter.ToCSV(&buf); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	want := "Catalog\nProduct,Price\nLamp,12.5\n,\n"
	if buf.String() != want {
		t.Errorf("unexpected csv:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "skip me") {
		t.Errorf("hidden section exported")
	}
}

func TestDataExporter_Errors(t *testing.T) {
	if _, err := NewDataExporterFromYamlConfig("  "); err == nil {
		t.Errorf("expected error for empty yaml")
	}
	if _, err := NewDataExporterFromYamlConfig("sheets: [unclosed"); err == nil {
		t.Errorf("expected decode error")
	}
	if _, err := NewDataExporter().BuildExcel(); err == nil {
		t.Errorf("expected error without sheets")
	}
}
