// Package util provides shared utilities: name casing, measurement
// formatting, and error aggregation.
package util

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ─── Names ────────────────────────────────────────────────────────────────────

// Title title-cases a catalog name ("grass" → "Grass").
// A Caser is stateful, so one is built per call.
func Title(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}

// ─── Measurements ─────────────────────────────────────────────────────────────

// FormatTenths formats a value reported in tenths of a unit, e.g.
// FormatTenths(69, "KG") → "6.9 KG". A nil value renders as zero.
func FormatTenths(v *int, unit string) string {
	if v == nil {
		return "0.0 " + unit
	}
	return fmt.Sprintf("%.1f %s", float64(*v)/10.0, unit)
}

// PadID formats an identifier with at least three digits, e.g. "#025".
func PadID(id int) string {
	return fmt.Sprintf("#%03d", id)
}

// ─── Error Helpers ────────────────────────────────────────────────────────────

// MultiError collects multiple errors and presents them as one.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

func (m *MultiError) Error() string {
	msgs := make([]string, len(m.Errors))
	for i, e := range m.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the collected errors to errors.Is / errors.As.
func (m *MultiError) Unwrap() []error {
	return m.Errors
}
