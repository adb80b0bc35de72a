//go:generate stringer -type=Level
package status

import "fmt"

// Level is the severity of a test outcome
type Level int

const (
	OK    Level = 0
	Warn  Level = 1
	Error Level = 2
)

// Record is the structured outcome of one test procedure. A test fills it
// through Summary or by setting the fields directly.
type Record struct {
	Name    string `json:"name"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// NewRecord returns a record with the failure defaults: a test that never
// touches its record is reported as an error, not a silent pass.
func NewRecord(name string) Record {
	return Record{
		Name:    name,
		Level:   Error,
		Message: "No message was set",
	}
}

// Summary sets level and message in one call
func (r *Record) Summary(level Level, message string) {
	r.Level = level
	r.Message = message
}

// Summaryf sets level and a formatted message
func (r *Record) Summaryf(level Level, format string, args ...interface{}) {
	r.Summary(level, fmt.Sprintf(format, args...))
}
