package simpleexcel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Constants & Types
// =============================================================================

const (
	SectionDirectionHorizontal = "horizontal"
	SectionDirectionVertical   = "vertical"
	SectionTypeFull            = "full"   // title, header and data
	SectionTypeTitleOnly       = "title"  // title only
	SectionTypeHidden          = "hidden" // rendered but hidden rows
	DefaultLockedColor         = "E0E0E0"
	hiddenFillColor            = "FFFF00"
)

// Formatter converts an extracted cell value before it is written.
type Formatter func(interface{}) interface{}

// DataExporter is the main entry point for exporting data.
type DataExporter struct {
	// data holds data bound to specific section IDs (for YAML flow)
	data map[string]interface{}
	// sheets holds both YAML-initialised and programmatically added sheets
	sheets     []*SheetBuilder
	formatters map[string]Formatter
}

// ReportTemplate represents the YAML structure.
type ReportTemplate struct {
	Sheets []SheetTemplate `yaml:"sheets"`
}

// SheetTemplate represents a sheet in the YAML.
type SheetTemplate struct {
	Name     string          `yaml:"name"`
	Sections []SectionConfig `yaml:"sections"`
}

// SectionConfig defines a section of data in a sheet.
type SectionConfig struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Type        string         `yaml:"type"` // "full", "title", "hidden"
	Data        interface{}    `yaml:"-"`    // bound at runtime
	Locked      bool           `yaml:"locked"`
	ShowHeader  bool           `yaml:"show_header"`
	HasFilter   bool           `yaml:"has_filter"`
	Direction   string         `yaml:"direction"` // "horizontal" or "vertical"
	Position    string         `yaml:"position"`  // e.g. "A1"
	TitleStyle  *StyleTemplate `yaml:"title_style"`
	HeaderStyle *StyleTemplate `yaml:"header_style"`
	DataStyle   *StyleTemplate `yaml:"data_style"`
	Columns     []ColumnConfig `yaml:"columns"`
}

func (s *SectionConfig) sectionType() string {
	if s.Type == "" {
		return SectionTypeFull
	}
	return s.Type
}

// ColumnConfig defines a column in a section.
type ColumnConfig struct {
	FieldName     string    `yaml:"field_name"` // struct field name or map key
	Header        string    `yaml:"header"`
	Width         float64   `yaml:"width"`
	Locked        *bool     `yaml:"locked"`    // overrides the section lock
	FormatterName string    `yaml:"formatter"` // registered formatter (YAML)
	Formatter     Formatter `yaml:"-"`         // inline formatter (programmatic)
}

// IsLocked returns the column lock, falling back to the section default.
func (c *ColumnConfig) IsLocked(sectionLocked bool) bool {
	if c.Locked != nil {
		return *c.Locked
	}
	return sectionLocked
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Font      *FontTemplate      `yaml:"font"`
	Fill      *FillTemplate      `yaml:"fill"`
	Alignment *AlignmentTemplate `yaml:"alignment"`
	Locked    *bool              `yaml:"locked"`
}

type FontTemplate struct {
	Bold  bool   `yaml:"bold"`
	Color string `yaml:"color"` // Hex color
}

type FillTemplate struct {
	Color string `yaml:"color"` // Hex color
}

type AlignmentTemplate struct {
	Horizontal string `yaml:"horizontal"`
	Vertical   string `yaml:"vertical"`
}

// =============================================================================
// Constructors
// =============================================================================

func NewDataExporter() *DataExporter {
	return &DataExporter{
		data:       make(map[string]interface{}),
		formatters: make(map[string]Formatter),
	}
}

// NewDataExporterFromYamlConfig creates an exporter whose sheets and sections
// are described by a YAML document.
func NewDataExporterFromYamlConfig(yamlConfig string) (*DataExporter, error) {
	if strings.TrimSpace(yamlConfig) == "" {
		return nil, fmt.Errorf("yaml config is empty")
	}
	var tmpl ReportTemplate
	if err := yaml.Unmarshal([]byte(yamlConfig), &tmpl); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return newFromTemplate(&tmpl), nil
}

func NewDataExporterFromYamlFile(path string) (*DataExporter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open yaml file: %w", err)
	}
	defer f.Close()

	var tmpl ReportTemplate
	if err := yaml.NewDecoder(f).Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return newFromTemplate(&tmpl), nil
}

func newFromTemplate(tmpl *ReportTemplate) *DataExporter {
	e := NewDataExporter()
	for i := range tmpl.Sheets {
		sheetTmpl := &tmpl.Sheets[i]
		sb := e.AddSheet(sheetTmpl.Name)
		for j := range sheetTmpl.Sections {
			sb.AddSection(&sheetTmpl.Sections[j])
		}
	}
	return e
}

// =============================================================================
// Fluent API
// =============================================================================

// AddSheet starts a new sheet builder.
func (e *DataExporter) AddSheet(name string) *SheetBuilder {
	sb := &SheetBuilder{
		exporter: e,
		name:     name,
		sections: []*SectionConfig{},
	}
	e.sheets = append(e.sheets, sb)
	return sb
}

// GetSheet returns a SheetBuilder by name, or nil if not found.
func (e *DataExporter) GetSheet(name string) *SheetBuilder {
	for _, sheet := range e.sheets {
		if sheet.name == name {
			return sheet
		}
	}
	return nil
}

// BindSectionData binds data to a section ID (for YAML-based export).
func (e *DataExporter) BindSectionData(id string, data interface{}) *DataExporter {
	e.data[id] = data
	return e
}

// RegisterFormatter makes a formatter referable by name from YAML.
func (e *DataExporter) RegisterFormatter(name string, f Formatter) *DataExporter {
	e.formatters[name] = f
	return e
}

// bind performs late binding of data to sections with a matching ID.
func (e *DataExporter) bind(sections []*SectionConfig) {
	for _, sec := range sections {
		if sec.ID == "" {
			continue
		}
		if data, ok := e.data[sec.ID]; ok {
			sec.Data = data
		}
	}
}

func (e *DataExporter) cellValue(item reflect.Value, col ColumnConfig) interface{} {
	val := extractValue(item, col.FieldName)
	if col.Formatter != nil {
		return col.Formatter(val)
	}
	if col.FormatterName != "" {
		if fn, ok := e.formatters[col.FormatterName]; ok {
			return fn(val)
		}
	}
	return val
}

// BuildExcel renders every sheet into a new workbook.
func (e *DataExporter) BuildExcel() (*excelize.File, error) {
	if len(e.sheets) == 0 {
		return nil, fmt.Errorf("no sheets to export")
	}

	f := excelize.NewFile()
	for i, sb := range e.sheets {
		sheetName := sb.name
		if i == 0 {
			f.SetSheetName("Sheet1", sheetName)
		} else if idx, _ := f.GetSheetIndex(sheetName); idx == -1 {
			f.NewSheet(sheetName)
		}

		e.bind(sb.sections)
		if err := e.renderSections(f, sheetName, sb.sections); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// ExportToExcel generates the Excel file on disk.
func (e *DataExporter) ExportToExcel(ctx context.Context, path string) error {
	f, err := e.BuildExcel()
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// ToBytes exports the Excel file to an in-memory byte slice.
func (e *DataExporter) ToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := e.ToWriter(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToWriter writes the Excel file to w.
func (e *DataExporter) ToWriter(w io.Writer) error {
	f, err := e.BuildExcel()
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// ToCSV writes the sections of the first sheet as CSV. Hidden sections are
// skipped; sections are separated by an empty record.
func (e *DataExporter) ToCSV(w io.Writer) error {
	if len(e.sheets) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	csvWriter := csv.NewWriter(w)
	sheet := e.sheets[0]
	e.bind(sheet.sections)

	for i, sec := range sheet.sections {
		if sec.sectionType() == SectionTypeHidden {
			continue
		}
		if i > 0 {
			if err := csvWriter.Write([]string{""}); err != nil {
				return err
			}
		}
		if sec.Title != "" {
			if err := csvWriter.Write([]string{sec.Title}); err != nil {
				return err
			}
		}
		if sec.sectionType() == SectionTypeTitleOnly {
			continue
		}

		if sec.ShowHeader && len(sec.Columns) > 0 {
			headers := make([]string, len(sec.Columns))
			for j, col := range sec.Columns {
				headers[j] = col.Header
			}
			if err := csvWriter.Write(headers); err != nil {
				return err
			}
		}

		rows := sliceValue(sec.Data)
		for r := 0; r < rows.Len(); r++ {
			item := rows.Index(r)
			record := make([]string, len(sec.Columns))
			for j, col := range sec.Columns {
				record[j] = fmt.Sprintf("%v", e.cellValue(item, col))
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("error writing CSV row %d: %w", r+1, err)
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// =============================================================================
// SheetBuilder
// =============================================================================

type SheetBuilder struct {
	exporter *DataExporter
	name     string
	sections []*SectionConfig
}

func (sb *SheetBuilder) AddSection(config *SectionConfig) *SheetBuilder {
	sb.sections = append(sb.sections, config)
	return sb
}

// Section returns the section with the given ID, or nil.
func (sb *SheetBuilder) Section(id string) *SectionConfig {
	for _, sec := range sb.sections {
		if sec.ID == id {
			return sec
		}
	}
	return nil
}

func (sb *SheetBuilder) Build() *DataExporter {
	return sb.exporter
}

// =============================================================================
// Rendering Logic
// =============================================================================

// calculatePosition returns the start column and row for a section.
func calculatePosition(sec *SectionConfig, nextColHorizontal, maxRow int) (int, int) {
	if sec.Position != "" {
		if c, r, err := excelize.CellNameToCoordinates(sec.Position); err == nil {
			return c, r
		}
	}
	if sec.Direction == SectionDirectionHorizontal {
		return nextColHorizontal, 1
	}
	return 1, maxRow
}

func hasLockedCells(sections []*SectionConfig) bool {
	for _, sec := range sections {
		if sec.Locked {
			return true
		}
		for _, col := range sec.Columns {
			if col.Locked != nil && *col.Locked {
				return true
			}
		}
	}
	return false
}

func (e *DataExporter) renderSections(f *excelize.File, sheet string, sections []*SectionConfig) error {
	maxRow := 1            // next free row for vertical sections
	nextColHorizontal := 1 // next free column for horizontal sections
	var hiddenRows []int

	locking := hasLockedCells(sections)
	if locking {
		// cells are locked by default once a sheet is protected
		unlocked := false
		styleID, err := createStyle(f, &StyleTemplate{Locked: &unlocked})
		if err != nil {
			return err
		}
		if err := f.SetColStyle(sheet, "A:XFD", styleID); err != nil {
			return fmt.Errorf("unlock sheet %q: %w", sheet, err)
		}
	}

	defaultTitle := &StyleTemplate{
		Font:      &FontTemplate{Bold: true},
		Alignment: &AlignmentTemplate{Horizontal: "center", Vertical: "top"},
	}

	for _, sec := range sections {
		sCol, sRow := calculatePosition(sec, nextColHorizontal, maxRow)
		currentRow := sRow
		width := len(sec.Columns)
		if width < 1 {
			width = 1
		}

		if sec.Title != "" {
			cell, _ := excelize.CoordinatesToCellName(sCol, currentRow)
			if err := f.SetCellValue(sheet, cell, sec.Title); err != nil {
				return err
			}
			styleID, err := createStyle(f, resolveStyle(sec.TitleStyle, defaultTitle, sec.Locked))
			if err != nil {
				return err
			}
			endCell := cell
			if width > 1 {
				endCell, _ = excelize.CoordinatesToCellName(sCol+width-1, currentRow)
				if err := f.MergeCell(sheet, cell, endCell); err != nil {
					return err
				}
			}
			if err := f.SetCellStyle(sheet, cell, endCell, styleID); err != nil {
				return err
			}
			currentRow++
		}

		if sec.sectionType() == SectionTypeTitleOnly {
			if currentRow > maxRow {
				maxRow = currentRow
			}
			nextColHorizontal = sCol + width
			continue
		}

		headerRow := currentRow
		if sec.ShowHeader {
			for i, col := range sec.Columns {
				cell, _ := excelize.CoordinatesToCellName(sCol+i, currentRow)
				if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
					return err
				}
				styleID, err := createStyle(f, resolveStyle(sec.HeaderStyle, defaultTitle, col.IsLocked(sec.Locked)))
				if err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
					return err
				}
				if col.Width > 0 {
					colName, _ := excelize.ColumnNumberToName(sCol + i)
					if err := f.SetColWidth(sheet, colName, colName, col.Width); err != nil {
						return err
					}
				}
			}
			currentRow++
		}

		var defaultData *StyleTemplate
		if sec.sectionType() == SectionTypeHidden {
			defaultData = &StyleTemplate{Fill: &FillTemplate{Color: hiddenFillColor}}
		}
		colStyles := make([]int, len(sec.Columns))
		for i, col := range sec.Columns {
			styleID, err := createStyle(f, resolveStyle(sec.DataStyle, defaultData, col.IsLocked(sec.Locked)))
			if err != nil {
				return err
			}
			colStyles[i] = styleID
		}

		rows := sliceValue(sec.Data)
		for r := 0; r < rows.Len(); r++ {
			item := rows.Index(r)
			for j, col := range sec.Columns {
				cell, _ := excelize.CoordinatesToCellName(sCol+j, currentRow)
				if err := f.SetCellValue(sheet, cell, e.cellValue(item, col)); err != nil {
					return fmt.Errorf("error writing row %d: %w", r+1, err)
				}
				if err := f.SetCellStyle(sheet, cell, cell, colStyles[j]); err != nil {
					return err
				}
			}
			currentRow++
		}

		if sec.HasFilter && sec.ShowHeader && len(sec.Columns) > 0 {
			first, _ := excelize.CoordinatesToCellName(sCol, headerRow)
			last, _ := excelize.CoordinatesToCellName(sCol+len(sec.Columns)-1, currentRow-1)
			if err := f.AutoFilter(sheet, first+":"+last, nil); err != nil {
				return fmt.Errorf("apply filter: %w", err)
			}
		}

		if sec.sectionType() == SectionTypeHidden {
			for r := sRow; r < currentRow; r++ {
				hiddenRows = append(hiddenRows, r)
			}
		}

		if currentRow > maxRow {
			maxRow = currentRow
		}
		nextColHorizontal = sCol + width
	}

	for _, r := range hiddenRows {
		if err := f.SetRowVisible(sheet, r, false); err != nil {
			return err
		}
	}

	if locking {
		return f.ProtectSheet(sheet, &excelize.SheetProtectionOptions{
			FormatColumns:       true,
			FormatRows:          true,
			AutoFilter:          true,
			SelectLockedCells:   true,
			SelectUnlockedCells: true,
		})
	}
	return nil
}

// resolveStyle merges base over the default and applies the lock. Locked
// cells without an explicit fill are greyed.
func resolveStyle(base, defaultStyle *StyleTemplate, locked bool) *StyleTemplate {
	s := &StyleTemplate{}
	if defaultStyle != nil {
		*s = *defaultStyle
	}
	if base != nil {
		if base.Font != nil {
			s.Font = base.Font
		}
		if base.Fill != nil {
			s.Fill = base.Fill
		}
		if base.Alignment != nil {
			s.Alignment = base.Alignment
		}
	}

	s.Locked = &locked
	if locked && s.Fill == nil {
		s.Fill = &FillTemplate{Color: DefaultLockedColor}
	}
	return s
}

// sliceValue returns data as a slice value; anything else yields an empty one.
func sliceValue(data interface{}) reflect.Value {
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return reflect.ValueOf([]interface{}{})
	}
	return v
}

// extractValue reads a struct field or map key. Pointers are dereferenced;
// nil pointers and unknown fields yield "".
func extractValue(item reflect.Value, fieldName string) interface{} {
	for item.Kind() == reflect.Ptr || item.Kind() == reflect.Interface {
		if item.IsNil() {
			return ""
		}
		item = item.Elem()
	}

	var v reflect.Value
	switch item.Kind() {
	case reflect.Struct:
		v = item.FieldByName(fieldName)
	case reflect.Map:
		v = item.MapIndex(reflect.ValueOf(fieldName))
	}
	if !v.IsValid() {
		return ""
	}
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if !v.CanInterface() {
		return ""
	}
	return v.Interface()
}

func createStyle(f *excelize.File, tmpl *StyleTemplate) (int, error) {
	if tmpl == nil {
		return 0, nil
	}

	style := &excelize.Style{}
	if tmpl.Font != nil {
		style.Font = &excelize.Font{
			Bold:  tmpl.Font.Bold,
			Color: strings.TrimPrefix(tmpl.Font.Color, "#"),
		}
	}
	if tmpl.Fill != nil {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(tmpl.Fill.Color, "#")},
			Pattern: 1,
		}
	}
	if tmpl.Alignment != nil {
		style.Alignment = &excelize.Alignment{
			Horizontal: tmpl.Alignment.Horizontal,
			Vertical:   tmpl.Alignment.Vertical,
		}
	}
	if tmpl.Locked != nil {
		style.Protection = &excelize.Protection{
			Locked: *tmpl.Locked,
		}
	}
	return f.NewStyle(style)
}
