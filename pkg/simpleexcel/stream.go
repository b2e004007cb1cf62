package simpleexcel

import (
	"fmt"
	"io"
	"reflect"

	"github.com/xuri/excelize/v2"
)

// Streamer writes a workbook through excelize stream writers so large
// sections never sit in the cell map. Sections are stacked vertically in
// the order they are defined. A section with bound data is rendered when the
// stream reaches it; any other section with an ID receives its rows through
// Write. Positions, horizontal layout, sheet protection and autofilters are
// not applied in streaming mode.
type Streamer struct {
	exporter *DataExporter
	file     *excelize.File
	out      io.Writer
	sw       *excelize.StreamWriter

	sheetIdx   int
	sectionIdx int
	row        int
	// started is set once the current section's title and header are out
	started bool
}

// StartStream opens a streaming export to w. Rows for unbound sections are
// supplied with Write; Close renders the rest and writes the workbook.
func (e *DataExporter) StartStream(w io.Writer) (*Streamer, error) {
	if len(e.sheets) == 0 {
		return nil, fmt.Errorf("no sheets to export")
	}

	f := excelize.NewFile()
	for i, sb := range e.sheets {
		e.bind(sb.sections)
		if i == 0 {
			f.SetSheetName("Sheet1", sb.name)
		} else if idx, _ := f.GetSheetIndex(sb.name); idx == -1 {
			f.NewSheet(sb.name)
		}
	}

	s := &Streamer{exporter: e, file: f, out: w}
	if err := s.openSheet(0); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *Streamer) sheet() *SheetBuilder {
	if s.sheetIdx >= len(s.exporter.sheets) {
		return nil
	}
	return s.exporter.sheets[s.sheetIdx]
}

// openSheet starts the stream writer for sheet i. Column widths must be set
// before the first row, so the widest configured width per column wins.
func (s *Streamer) openSheet(i int) error {
	s.sheetIdx, s.sectionIdx, s.row, s.started = i, 0, 1, false
	sb := s.sheet()
	if sb == nil {
		return nil
	}

	sw, err := s.file.NewStreamWriter(sb.name)
	if err != nil {
		return fmt.Errorf("open stream for sheet %q: %w", sb.name, err)
	}
	s.sw = sw

	var widths []float64
	for _, sec := range sb.sections {
		for j, col := range sec.Columns {
			if j >= len(widths) {
				widths = append(widths, 0)
			}
			if col.Width > widths[j] {
				widths[j] = col.Width
			}
		}
	}
	for j, w := range widths {
		if w > 0 {
			if err := sw.SetColWidth(j+1, j+1, w); err != nil {
				return err
			}
		}
	}
	return nil
}

// closeSheet renders what is left of the current sheet and flushes it.
func (s *Streamer) closeSheet() error {
	sb := s.sheet()
	if sb == nil {
		return nil
	}
	for ; s.sectionIdx < len(sb.sections); s.sectionIdx++ {
		if s.started {
			s.started = false
			continue
		}
		if err := s.renderBound(sb.sections[s.sectionIdx]); err != nil {
			return err
		}
	}
	if err := s.sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet %q: %w", sb.name, err)
	}
	return s.openSheet(s.sheetIdx + 1)
}

func indexOf(sections []*SectionConfig, from int, id string) int {
	for i := from; i < len(sections); i++ {
		if sections[i].ID == id {
			return i
		}
	}
	return -1
}

// Write appends data (a slice) to the section with the given ID. Sections
// must be written in definition order; sections skipped on the way are
// rendered from their bound data.
func (s *Streamer) Write(sectionID string, data interface{}) error {
	if s.file == nil {
		return fmt.Errorf("stream is closed")
	}

	for {
		sb := s.sheet()
		if sb == nil {
			return fmt.Errorf("section %q not found in the remaining sections", sectionID)
		}
		target := indexOf(sb.sections, s.sectionIdx, sectionID)
		if target == -1 {
			if err := s.closeSheet(); err != nil {
				return err
			}
			continue
		}

		for ; s.sectionIdx < target; s.sectionIdx++ {
			if s.started {
				s.started = false
				continue
			}
			if err := s.renderBound(sb.sections[s.sectionIdx]); err != nil {
				return err
			}
		}
		break
	}

	sec := s.sheet().sections[s.sectionIdx]
	if !s.started {
		if err := s.writeHead(sec); err != nil {
			return err
		}
		s.started = true
	}
	return s.writeRows(sec, data)
}

// Close renders the remaining sections, writes the workbook and releases it.
func (s *Streamer) Close() error {
	if s.file == nil {
		return nil
	}
	defer func() {
		s.file.Close()
		s.file = nil
	}()

	for s.sheet() != nil {
		if err := s.closeSheet(); err != nil {
			return err
		}
	}
	if _, err := s.file.WriteTo(s.out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (s *Streamer) renderBound(sec *SectionConfig) error {
	if err := s.writeHead(sec); err != nil {
		return err
	}
	if sec.sectionType() == SectionTypeTitleOnly || sec.Data == nil {
		return nil
	}
	return s.writeRows(sec, sec.Data)
}

func (s *Streamer) rowOpts(sec *SectionConfig) []excelize.RowOpts {
	if sec.sectionType() == SectionTypeHidden {
		return []excelize.RowOpts{{Hidden: true}}
	}
	return nil
}

func (s *Streamer) writeHead(sec *SectionConfig) error {
	defaultTitle := &StyleTemplate{
		Font:      &FontTemplate{Bold: true},
		Alignment: &AlignmentTemplate{Horizontal: "center", Vertical: "top"},
	}

	if sec.Title != "" {
		styleID, err := createStyle(s.file, resolveStyle(sec.TitleStyle, defaultTitle, sec.Locked))
		if err != nil {
			return err
		}
		cell, _ := excelize.CoordinatesToCellName(1, s.row)
		if err := s.sw.SetRow(cell, []interface{}{excelize.Cell{Value: sec.Title, StyleID: styleID}}, s.rowOpts(sec)...); err != nil {
			return err
		}
		if len(sec.Columns) > 1 {
			end, _ := excelize.CoordinatesToCellName(len(sec.Columns), s.row)
			if err := s.sw.MergeCell(cell, end); err != nil {
				return err
			}
		}
		s.row++
	}

	if sec.sectionType() == SectionTypeTitleOnly || !sec.ShowHeader || len(sec.Columns) == 0 {
		return nil
	}
	headers := make([]interface{}, len(sec.Columns))
	for i, col := range sec.Columns {
		styleID, err := createStyle(s.file, resolveStyle(sec.HeaderStyle, defaultTitle, col.IsLocked(sec.Locked)))
		if err != nil {
			return err
		}
		headers[i] = excelize.Cell{Value: col.Header, StyleID: styleID}
	}
	cell, _ := excelize.CoordinatesToCellName(1, s.row)
	if err := s.sw.SetRow(cell, headers, s.rowOpts(sec)...); err != nil {
		return err
	}
	s.row++
	return nil
}

func (s *Streamer) writeRows(sec *SectionConfig, data interface{}) error {
	var defaultData *StyleTemplate
	if sec.sectionType() == SectionTypeHidden {
		defaultData = &StyleTemplate{Fill: &FillTemplate{Color: hiddenFillColor}}
	}
	colStyles := make([]int, len(sec.Columns))
	for i, col := range sec.Columns {
		styleID, err := createStyle(s.file, resolveStyle(sec.DataStyle, defaultData, col.IsLocked(sec.Locked)))
		if err != nil {
			return err
		}
		colStyles[i] = styleID
	}

	rows := sliceValue(data)
	for r := 0; r < rows.Len(); r++ {
		item := rows.Index(r)
		values := make([]interface{}, len(sec.Columns))
		for j, col := range sec.Columns {
			values[j] = excelize.Cell{Value: streamValue(s.exporter.cellValue(item, col)), StyleID: colStyles[j]}
		}
		cell, _ := excelize.CoordinatesToCellName(1, s.row)
		if err := s.sw.SetRow(cell, values, s.rowOpts(sec)...); err != nil {
			return fmt.Errorf("error writing row %d: %w", r+1, err)
		}
		s.row++
	}
	return nil
}

// streamValue unwraps named string types, which the stream writer would
// otherwise render through fmt.
func streamValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String && rv.Type() != reflect.TypeOf("") {
		return rv.String()
	}
	return v
}
