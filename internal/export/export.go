package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/justsurfingit/placement-tracker/internal/models"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Header is the fixed column order of every export.
var Header = []string{"Full Name", "Registration Number", "Roll Number", "College Email", "Phone", "Department", "GPA"}

// Record is the flat projection of a student written to exports.
type Record struct {
	FullName           string
	RegistrationNumber string
	RollNumber         string
	CollegeEmail       string
	Phone              string
	Department         string
	GPA                float64
}

func FromStudents(students []models.Student) []Record {
	records := make([]Record, 0, len(students))
	for _, s := range students {
		records = append(records, Record{
			FullName:           s.FullName,
			RegistrationNumber: s.RegistrationNumber,
			RollNumber:         s.RollNumber,
			CollegeEmail:       s.CollegeEmail,
			Phone:              s.Phone,
			Department:         s.Department,
			GPA:                s.UGGpa,
		})
	}
	return records
}

func (r Record) fields() []string {
	return []string{
		r.FullName,
		r.RegistrationNumber,
		r.RollNumber,
		r.CollegeEmail,
		r.Phone,
		r.Department,
		strconv.FormatFloat(r.GPA, 'f', -1, 64),
	}
}

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

var whitespace = regexp.MustCompile(`\s+`)

// FileName builds "eligible-students-<title>.<ext>" with every whitespace run
// in the title replaced by a single hyphen.
func FileName(title string, format Format) string {
	return fmt.Sprintf("eligible-students-%s.%s", whitespace.ReplaceAllString(title, "-"), format)
}

func Render(title string, format Format, records []Record) (*File, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatXLSX:
		data, err = XLSX(records)
	default:
		format = FormatCSV
		data, err = CSV(records)
	}
	if err != nil {
		return nil, err
	}
	return &File{Name: FileName(title, format), ContentType: format.ContentType(), Data: data}, nil
}

func CSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(r.fields()); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

const sheetName = "Eligible Students"

var columnWidths = []struct {
	from, to string
	width    float64
}{
	{"A", "A", 28},
	{"B", "C", 20},
	{"D", "D", 32},
	{"E", "G", 14},
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to name cell (%d,%d): %w", col, row, err)
	}
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		return fmt.Errorf("failed to write cell %s: %w", cell, err)
	}
	return nil
}

func XLSX(records []Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range Header {
		if err := setCell(f, i+1, 1, h); err != nil {
			return nil, err
		}
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to name header cell: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	for _, w := range columnWidths {
		if err := f.SetColWidth(sheetName, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("failed to set width of columns %s-%s: %w", w.from, w.to, err)
		}
	}

	for i, r := range records {
		row := i + 2
		values := []interface{}{r.FullName, r.RegistrationNumber, r.RollNumber, r.CollegeEmail, r.Phone, r.Department, r.GPA}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
