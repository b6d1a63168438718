// Package importer handles CSV bulk onboarding and export of employees.
package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMissingHeader = errors.New("csv header row is missing required columns")

// expected CSV columns, in export order
var columns = []string{
	"email",
	"first_name",
	"last_name",
	"employee_code",
	"department",
	"designation",
	"phone",
	"joining_date",
	"role",
	"manager_code",
	"earned_entitlement",
	"sick_entitlement",
	"casual_entitlement",
}

var requiredColumns = []string{"email", "first_name", "employee_code", "joining_date"}

// RowError ties a failure to its 1-based data row number.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Report summarizes an import run.
type Report struct {
	Total    int        `json:"total"`
	Imported int        `json:"imported"`
	Failed   int        `json:"failed"`
	Errors   []RowError `json:"errors,omitempty"`
}

// record is one parsed CSV data row keyed by header name.
type record map[string]string

func (r record) get(key string) string {
	return strings.TrimSpace(r[key])
}

func (r record) getFloat(key string) (*float64, error) {
	raw := r.get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &v, nil
}

// headerIndex maps recognized column names to their position. Unknown
// columns are ignored so exports with extra fields re-import cleanly.
func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeader, required)
		}
	}
	return idx, nil
}

func toRecord(idx map[string]int, row []string) record {
	rec := make(record, len(idx))
	for name, i := range idx {
		if i < len(row) {
			rec[name] = row[i]
		}
	}
	return rec
}
