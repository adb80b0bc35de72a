package status

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "OK", OK.String())
	assert.Equal(t, "Warn", Warn.String())
	assert.Equal(t, "Error", Error.String())
	assert.Equal(t, "Level(5)", Level(5).String())
}

func TestNewRecord(t *testing.T) {
	r := NewRecord("plop")
	assert.Equal(t, "plop", r.Name)
	assert.Equal(t, Error, r.Level)
	assert.Equal(t, "No message was set", r.Message)
}

func TestSummary(t *testing.T) {
	r := NewRecord("disk")
	r.Summaryf(Warn, "%d%% full", 93)
	assert.Equal(t, Warn, r.Level)
	assert.Equal(t, "93% full", r.Message)
}

func TestRecordJSON(t *testing.T) {
	r := NewRecord("clock")
	r.Summary(OK, "in sync")
	j, err := json.Marshal(r)
	assert.NoError(t, err)
	// level stays numeric on the wire
	assert.Equal(t, `{"name":"clock","level":0,"message":"in sync"}`, string(j))
}
