package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"deals_api/internal/common"
	"deals_api/internal/domain/model"
)

// LoadOptions controls CSV coercion.
type LoadOptions struct {
	// Normalize strips currency and percent symbols, spaces and thousands separators
	// from price, discount and rating cells before numeric parsing.
	Normalize bool
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// ParseDate accepts the date layouts used by the CSV loader and the JSON endpoints and
// truncates the result to a calendar date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// Today is the calendar date used when a request omits one.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

const (
	colTitle    = "title"
	colPrice    = "price"
	colRating   = "total_rating"
	colImg      = "img"
	colDiscount = "discount"
	colURL      = "url"
	colDate     = "date"
)

var columnAliases = map[string]string{
	"rating": colRating,
	"image":  colImg,
}

// ParseProductsCSV reads a header row followed by product rows and tags each row with
// categoryID. The first malformed row aborts the whole parse.
func ParseProductsCSV(r io.Reader, categoryID uint, opts LoadOptions) ([]model.ProductDeal, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, common.NewError(common.ErrValidation, "CSV file is empty")
		}
		return nil, common.NewError(common.ErrValidation, "Invalid CSV header: "+err.Error())
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := columnAliases[name]; ok {
			name = canonical
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, required := range []string{colTitle, colDate} {
		if _, ok := index[required]; !ok {
			return nil, common.NewError(common.ErrValidation, fmt.Sprintf("CSV is missing required column %q", required))
		}
	}

	var products []model.ProductDeal
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, common.NewError(common.ErrValidation, "Invalid CSV: "+err.Error())
		}
		line, _ := reader.FieldPos(0)

		p, err := parseProductRow(record, index, opts)
		if err != nil {
			return nil, common.NewError(common.ErrValidation, fmt.Sprintf("CSV line %d: %v", line, err))
		}
		p.CategoryID = categoryID
		p.Active = true
		products = append(products, p)
	}

	if len(products) == 0 {
		return nil, common.NewError(common.ErrValidation, "CSV file has no data rows")
	}
	return products, nil
}

func parseProductRow(record []string, index map[string]int, opts LoadOptions) (model.ProductDeal, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var p model.ProductDeal
	p.Title = cell(colTitle)
	if p.Title == "" {
		return p, errors.New("title is empty")
	}

	date, err := ParseDate(cell(colDate))
	if err != nil {
		return p, fmt.Errorf("column %s: %w", colDate, err)
	}
	p.Date = date

	if p.Price, err = parseOptionalFloat(cell(colPrice), opts.Normalize); err != nil {
		return p, fmt.Errorf("column %s: %w", colPrice, err)
	}
	if p.TotalRating, err = parseOptionalInt(cell(colRating), opts.Normalize); err != nil {
		return p, fmt.Errorf("column %s: %w", colRating, err)
	}
	if p.Discount, err = parseOptionalInt(cell(colDiscount), opts.Normalize); err != nil {
		return p, fmt.Errorf("column %s: %w", colDiscount, err)
	}
	p.Img = optionalString(cell(colImg))
	p.URL = optionalString(cell(colURL))
	return p, nil
}

// NormalizeNumber drops everything but digits, the decimal point and a leading minus,
// so "$1,299.00" becomes "1299.00" and "-15 %" becomes "-15".
func NormalizeNumber(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		switch {
		case unicode.IsDigit(r), r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func prepareNumber(value string, normalize bool) (string, bool, error) {
	if value == "" {
		return "", false, nil
	}
	if !normalize {
		return value, true, nil
	}
	cleaned := NormalizeNumber(value)
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return "", false, fmt.Errorf("%q is not a number", value)
	}
	return cleaned, true, nil
}

func parseOptionalFloat(value string, normalize bool) (*float64, error) {
	v, ok, err := prepareNumber(value, normalize)
	if !ok {
		return nil, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", value)
	}
	return &f, nil
}

// parseOptionalInt accepts integral values and rounds fractional ones ("4.6" -> 5).
func parseOptionalInt(value string, normalize bool) (*int, error) {
	v, ok, err := prepareNumber(value, normalize)
	if !ok {
		return nil, err
	}
	if n, err := strconv.Atoi(v); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not an integer", value)
	}
	n := int(math.Round(f))
	return &n, nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
