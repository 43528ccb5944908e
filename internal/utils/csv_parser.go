package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"admissions-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
	ErrInvalidRowData = errors.New("invalid row data")
)

// CatalogDateLayout is the format of deadline columns.
const CatalogDateLayout = "2006-01-02"

// RequiredColumns defines the columns that must be present in a catalog CSV.
var RequiredColumns = []string{
	"id",
	"name_en",
}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	"university_id":   "id",
	"slug":            "id",
	"name":            "name_en",
	"university":      "name_en",
	"university_name": "name_en",

	"gpa_min":     "min_gpa",
	"gpa_avg":     "avg_gpa",
	"average_gpa": "avg_gpa",
	"sat_min":     "min_sat",
	"sat_25":      "avg_sat_25",
	"sat_75":      "avg_sat_75",
	"act_min":     "min_act",
	"ielts":       "min_ielts",
	"ielts_min":   "min_ielts",
	"toefl":       "min_toefl",
	"toefl_min":   "min_toefl",

	"tuition":            "tuition_intl",
	"tuition_int":        "tuition_intl",
	"cost_of_attendance": "total_cost",
	"coa":                "total_cost",

	"merit":           "has_merit_scholarships",
	"need_based":      "has_need_based",
	"full_ride":       "has_full_ride",
	"aid_percentage":  "fin_aid_percentage",
	"common_app":      "accepts_common_app",
	"coalition":       "accepts_coalition",
	"own_system":      "has_own_system",
	"portal_url":      "own_system_link",
	"recommendations": "recommendation_count",
	"css_profile":     "requires_css_profile",
	"essays":          "supplemental_essays",

	"ea_deadline":      "early_action_date",
	"early_action":     "early_action_date",
	"early_decision":   "ed_deadline",
	"rd_deadline":      "regular_deadline",
	"regular_decision": "regular_deadline",
}

// CSVParser handles parsing of university catalog CSV files.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{columnMapping: make(map[string]int)}
}

// ParseUniversities parses catalog CSV content. Rows that fail to parse are
// reported with their line number and skipped; the rest are returned.
func (p *CSVParser) ParseUniversities(content string) ([]*models.University, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var universities []*models.University
	var parseErrors []error
	lineNum := 1 // header

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		u, err := p.parseRow(record)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		universities = append(universities, u)
	}

	if len(universities) == 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return universities, parseErrors
}

// normalizeColumn lower-cases a header and applies any alias.
func normalizeColumn(col string) string {
	normalized := strings.ToLower(strings.TrimSpace(col))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if alias, ok := ColumnAliases[normalized]; ok {
		return alias
	}
	return normalized
}

func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)
	for i, col := range header {
		p.columnMapping[normalizeColumn(col)] = i
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// rowReader pulls typed values out of one record and remembers the first error.
type rowReader struct {
	mapping map[string]int
	record  []string
	err     error
}

func (r *rowReader) raw(column string) string {
	idx, ok := r.mapping[column]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r *rowReader) fail(column string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: invalid %s: %v", ErrInvalidRowData, column, err)
	}
}

func (r *rowReader) floatValue(column string) *float64 {
	s := r.raw(column)
	if s == "" {
		return nil
	}
	v, err := parseFloat(s)
	if err != nil {
		r.fail(column, err)
		return nil
	}
	return &v
}

func (r *rowReader) intValue(column string) *int {
	s := r.raw(column)
	if s == "" {
		return nil
	}
	v, err := parseInt(s)
	if err != nil {
		r.fail(column, err)
		return nil
	}
	return &v
}

func (r *rowReader) boolValue(column string) bool {
	switch strings.ToLower(r.raw(column)) {
	case "", "false", "no", "n", "0":
		return false
	case "true", "yes", "y", "1":
		return true
	default:
		r.fail(column, fmt.Errorf("%q is not a boolean", r.raw(column)))
		return false
	}
}

func (r *rowReader) dateValue(column string) *time.Time {
	s := r.raw(column)
	if s == "" {
		return nil
	}
	t, err := time.Parse(CatalogDateLayout, s)
	if err != nil {
		r.fail(column, err)
		return nil
	}
	return &t
}

func (p *CSVParser) parseRow(record []string) (*models.University, error) {
	r := &rowReader{mapping: p.columnMapping, record: record}

	u := &models.University{
		ID:      r.raw("id"),
		NameEn:  r.raw("name_en"),
		Country: r.raw("country"),
		City:    r.raw("city"),
		Website: r.raw("website"),

		MinGPA:   r.floatValue("min_gpa"),
		AvgGPA:   r.floatValue("avg_gpa"),
		MinSAT:   r.intValue("min_sat"),
		AvgSAT25: r.intValue("avg_sat_25"),
		AvgSAT75: r.intValue("avg_sat_75"),
		MinACT:   r.intValue("min_act"),
		MinIELTS: r.floatValue("min_ielts"),
		MinTOEFL: r.intValue("min_toefl"),

		TuitionIntl: r.floatValue("tuition_intl"),
		TotalCost:   r.floatValue("total_cost"),

		HasMeritScholarships: r.boolValue("has_merit_scholarships"),
		HasNeedBased:         r.boolValue("has_need_based"),
		HasFullRide:          r.boolValue("has_full_ride"),
		FinAidPercentage:     r.floatValue("fin_aid_percentage"),

		AcceptsCommonApp: r.boolValue("accepts_common_app"),
		AcceptsCoalition: r.boolValue("accepts_coalition"),
		HasOwnSystem:     r.boolValue("has_own_system"),
		OwnSystemLink:    r.raw("own_system_link"),

		RequiresPortfolio:  r.boolValue("requires_portfolio"),
		RequiresStatement:  r.boolValue("requires_statement"),
		RequiresInterview:  r.boolValue("requires_interview"),
		RequiresCSSProfile: r.boolValue("requires_css_profile"),

		EarlyActionDate: r.dateValue("early_action_date"),
		EDDeadline:      r.dateValue("ed_deadline"),
		RegularDeadline: r.dateValue("regular_deadline"),
	}

	if count := r.intValue("recommendation_count"); count != nil {
		u.RecommendationCount = *count
	}

	u.SupplementalEssays = ParseEssayPrompts(r.raw("supplemental_essays"))

	if r.err != nil {
		return nil, r.err
	}
	if u.ID == "" || u.NameEn == "" {
		return nil, fmt.Errorf("%w: id and name_en are required", ErrInvalidRowData)
	}

	return u, nil
}

// ParseEssayPrompts reads the catalog's essay column: prompts separated by
// "|", each an optional topic and an optional ":<word count>" suffix, e.g.
// "Why us:250|Community|:150". A suffix that is not a number stays part of the topic.
func ParseEssayPrompts(s string) []models.EssayPrompt {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var prompts []models.EssayPrompt
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		prompt := models.EssayPrompt{Topic: part}
		if i := strings.LastIndex(part, ":"); i >= 0 {
			if words, err := strconv.Atoi(strings.TrimSpace(part[i+1:])); err == nil {
				prompt.Topic = strings.TrimSpace(part[:i])
				prompt.WordCount = words
			}
		}
		prompts = append(prompts, prompt)
	}
	return prompts
}

// parseFloat parses a string to float64, handling common formats.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	// Remove thousands separators, currency and percent signs
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)

	return strconv.ParseFloat(s, 64)
}

// parseInt parses a string to int, handling common formats.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	// "1500.0"
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}

	return strconv.Atoi(s)
}

// ValidateCSVStructure performs a quick validation of CSV structure without full parsing.
func ValidateCSVStructure(content string) *CSVValidationResult {
	result := &CSVValidationResult{
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result
	}

	present := make(map[string]bool)
	for _, col := range header {
		present[normalizeColumn(col)] = true
		result.Columns = append(result.Columns, col)
	}

	for _, required := range RequiredColumns {
		if !present[required] {
			result.MissingColumns = append(result.MissingColumns, required)
		}
	}

	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		result.RowCount++
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0

	return result
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}
