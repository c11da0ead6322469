// Package importer handles vehicle inventory CSV import
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/findosh/showroom/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownFormat = errors.New("CSV header not recognised")
	ErrEmptyFile     = errors.New("CSV file is empty")
	ErrNoData        = errors.New("no valid vehicles found")
)

// VehicleWriter persists imported vehicles in one transaction
type VehicleWriter interface {
	CreateBatch(ctx context.Context, vehicles []*models.Vehicle) error
}

// RowError reports a skipped data row. Line is 1-based in the file.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParseResult contains the result of parsing a CSV file
type ParseResult struct {
	Vehicles []*models.Vehicle `json:"-"`
	Imported int               `json:"imported"`
	Errors   []RowError        `json:"errors"`
}

// Service handles CSV import operations
type Service struct {
	store      VehicleWriter
	normalizer *Normalizer
}

// NewService creates a new import service
func NewService(store VehicleWriter) *Service {
	return &Service{
		store:      store,
		normalizer: NewNormalizer(),
	}
}

// Import parses the CSV and stores every valid row
func (s *Service) Import(ctx context.Context, reader io.Reader) (*ParseResult, error) {
	result, err := s.ParseCSV(reader)
	if err != nil {
		return result, err
	}

	if err := s.store.CreateBatch(ctx, result.Vehicles); err != nil {
		return nil, fmt.Errorf("failed to store vehicles: %w", err)
	}
	result.Imported = len(result.Vehicles)
	return result, nil
}

// ParseCSV detects the header row and delimiter and parses vehicles
func (s *Service) ParseCSV(reader io.Reader) (*ParseResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	csvReader := csv.NewReader(bytes.NewReader(data))
	csvReader.Comma = detectDelimiter(data)
	csvReader.FieldsPerRecord = -1 // Allow variable fields
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}

	headerIdx, header := findHeader(records)
	if headerIdx < 0 {
		return nil, ErrUnknownFormat
	}

	cols := mapColumns(header)
	for _, required := range []string{colBrand, colModel, colYear, colPrice} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing %s column", ErrUnknownFormat, required)
		}
	}

	result := &ParseResult{Errors: []RowError{}}
	for i := headerIdx + 1; i < len(records); i++ {
		row := records[i]
		if isSkipRow(row) {
			continue
		}

		v, err := s.parseRow(cols, row)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Line: i + 1, Message: err.Error()})
			continue
		}
		result.Vehicles = append(result.Vehicles, v)
	}

	if len(result.Vehicles) == 0 {
		return result, ErrNoData
	}
	return result, nil
}

func (s *Service) parseRow(cols columnMap, row []string) (*models.Vehicle, error) {
	get := func(name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	brand, model := get(colBrand), get(colModel)
	if brand == "" || model == "" {
		return nil, errors.New("brand and model are required")
	}

	year, ok := parseInt(get(colYear))
	if !ok || year <= 0 {
		return nil, fmt.Errorf("invalid year %q", get(colYear))
	}

	price, ok := ParsePrice(get(colPrice))
	if !ok || !price.IsPositive() {
		return nil, fmt.Errorf("invalid price %q", get(colPrice))
	}

	v := models.NewVehicle(cleanName(brand), cleanName(model), year, price)
	v.Version = optional(get(colVersion))
	v.BodyType = optional(s.normalizer.BodyType(get(colBodyType)))
	v.Color = optional(get(colColor))
	v.Plate = optional(strings.ToUpper(get(colPlate)))
	v.Description = optional(get(colDescription))
	v.Fuel = s.normalizer.Fuel(get(colFuel))
	v.Transmission = s.normalizer.Transmission(get(colTransmission))
	v.Condition = s.normalizer.Condition(get(colCondition))
	v.Featured = parseBool(get(colFeatured))

	if km, ok := parseInt(get(colMileage)); ok {
		v.Mileage = km
	}
	if ym, ok := parseInt(get(colYearModel)); ok {
		v.YearModel = &ym
	}
	if doors, ok := parseInt(get(colDoors)); ok {
		v.Doors = &doors
	}
	if opts := get(colOptionals); opts != "" {
		v.SetOptionals(strings.FieldsFunc(opts, func(r rune) bool { return r == '|' || r == ';' }))
	}

	return v, nil
}

func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func findHeader(records [][]string) (int, []string) {
	for i, row := range records {
		if len(row) < 3 {
			continue
		}
		// A header names at least two of the known columns
		if len(mapColumns(row)) >= 2 {
			return i, row
		}
	}
	return -1, nil
}

func isSkipRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return strings.HasPrefix(strings.TrimSpace(row[0]), "#")
		}
	}
	return true
}

// Helper functions for parsing values

var (
	thousandsDot   = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	thousandsComma = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
)

// ParsePrice reads prices written as "R$ 45.900,00", "45900.00" or
// "45,900.00"
func ParsePrice(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' || r == '$' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, false
	}

	lastDot, lastComma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// 45.900,00
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 45,900.00
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if thousandsComma.MatchString(s) {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if thousandsDot.MatchString(s) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseInt(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "km")
	s = strings.NewReplacer(".", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "sim", "s", "x":
		return true
	}
	return false
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func cleanName(s string) string {
	s = strings.TrimSpace(s)
	// Truncate very long names
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
