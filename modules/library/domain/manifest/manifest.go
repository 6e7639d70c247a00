package manifest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lingora/lingora/modules/library/domain/entities/staging"
)

// Manifest column names. Header matching is case-insensitive.
const (
	ColumnAudioFilename = "audio_filename"
	ColumnText          = "text"
	ColumnLevel         = "level"
	ColumnSpeechType    = "speech_type"
	ColumnTags          = "tags"
)

const tagDelimiter = ","

// Options carries the domain vocabularies rows are validated against.
type Options struct {
	Levels            []string
	SpeechTypes       []string
	DefaultSpeechType string
}

// Row is one validated data line of a manifest. RowNumber is 1-based and
// counts the header, so the first data row is 2 — matching what the
// operator sees in a spreadsheet.
type Row struct {
	RowNumber     int
	AudioFilename string
	Text          string
	Level         string
	SpeechType    string
	TagNames      []string
}

// RowError accumulates every violated rule for one row.
type RowError struct {
	Row     int
	Reasons []string
}

// Report is the aggregate outcome of validating one submission. Valid and
// Errors both preserve manifest row order.
type Report struct {
	TotalRows int
	Valid     []Row
	Errors    []RowError
}

func (r *Report) ValidCount() int {
	return len(r.Valid)
}

func (r *Report) ErrorCount() int {
	return len(r.Errors)
}

// StructuralError means the whole submission is malformed (unparsable
// table, missing required columns) as opposed to individual rows being
// bad.
type StructuralError struct {
	msg string
}

func (e *StructuralError) Error() string {
	return e.msg
}

func structuralErrorf(format string, args ...interface{}) *StructuralError {
	return &StructuralError{msg: fmt.Sprintf(format, args...)}
}

// Validate parses the manifest and classifies every data row. It performs
// no persistence and no tag resolution; calling it twice on the same
// input yields the same report.
func Validate(session *staging.Session, filename string, raw []byte, opts Options) (*Report, error) {
	records, err := parse(filename, raw)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, structuralErrorf("manifest is empty")
	}

	columns, err := indexColumns(records[0])
	if err != nil {
		return nil, err
	}

	report := &Report{TotalRows: len(records) - 1}
	seenAudio := map[string]int{}

	for i, record := range records[1:] {
		rowNumber := i + 2
		var reasons []string

		audio := strings.TrimSpace(cell(record, columns[ColumnAudioFilename]))
		if audio == "" {
			reasons = append(reasons, "audio filename is empty")
		} else {
			if _, ok := session.FindByOriginalName(audio); !ok {
				reasons = append(reasons, fmt.Sprintf("audio file %q is not registered in the upload session", audio))
			}
			if firstRow, dup := seenAudio[audio]; dup {
				reasons = append(reasons, fmt.Sprintf("audio file %q is already referenced by row %d", audio, firstRow))
			} else {
				seenAudio[audio] = rowNumber
			}
		}

		text := strings.TrimSpace(cell(record, columns[ColumnText]))
		if text == "" {
			reasons = append(reasons, "text is empty")
		}

		level, ok := matchVocabulary(cell(record, columns[ColumnLevel]), opts.Levels)
		if !ok {
			reasons = append(reasons, fmt.Sprintf(
				"level %q is not one of %s",
				strings.TrimSpace(cell(record, columns[ColumnLevel])), strings.Join(opts.Levels, ", "),
			))
		}

		// A blank cell in a present optional column falls back to the
		// default, same as an absent column.
		speechType := opts.DefaultSpeechType
		if idx, present := columns[ColumnSpeechType]; present {
			if rawType := strings.TrimSpace(cell(record, idx)); rawType != "" {
				speechType, ok = matchVocabulary(rawType, opts.SpeechTypes)
				if !ok {
					reasons = append(reasons, fmt.Sprintf(
						"speech type %q is not one of %s",
						rawType, strings.Join(opts.SpeechTypes, ", "),
					))
				}
			}
		}

		var tagNames []string
		if idx, present := columns[ColumnTags]; present {
			tagNames = splitTags(cell(record, idx))
		}

		if len(reasons) > 0 {
			report.Errors = append(report.Errors, RowError{Row: rowNumber, Reasons: reasons})
			continue
		}
		report.Valid = append(report.Valid, Row{
			RowNumber:     rowNumber,
			AudioFilename: audio,
			Text:          text,
			Level:         level,
			SpeechType:    speechType,
			TagNames:      tagNames,
		})
	}

	return report, nil
}

type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	columns := columnIndex{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, required := range []string{ColumnAudioFilename, ColumnText, ColumnLevel} {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, structuralErrorf("manifest is missing required columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

// cell tolerates short records; XLSX rows drop trailing empty cells.
func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func matchVocabulary(raw string, vocabulary []string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, canonical := range vocabulary {
		if strings.EqualFold(raw, canonical) {
			return canonical, true
		}
	}
	return "", false
}

// splitTags trims each segment, drops empties, and de-duplicates
// case-sensitively while preserving order.
func splitTags(raw string) []string {
	var names []string
	seen := map[string]struct{}{}
	for _, part := range strings.Split(raw, tagDelimiter) {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func parse(filename string, raw []byte) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return parseXLSX(raw)
	}
	return parseCSV(raw)
}

func parseCSV(raw []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, structuralErrorf("manifest is not valid CSV: %v", err)
	}
	return records, nil
}

func parseXLSX(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, structuralErrorf("manifest is not a valid XLSX workbook: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, structuralErrorf("manifest workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, structuralErrorf("failed to read manifest sheet %q: %v", sheets[0], err)
	}
	return rows, nil
}
