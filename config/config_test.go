package config

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	f, err := ioutil.TempFile(os.TempDir(), "selftest-")
	assert.NoError(t, err)
	defer os.Remove(f.Name())
	_, err = f.WriteString(`
listen: ":9000"
auth_key: plop
wait_timeout: 5s
schedule: "@hourly"
`)
	assert.NoError(t, err)
	f.Close()

	cfg, err := Load(f.Name())
	assert.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "plop", cfg.AuthKey)
	assert.Equal(t, 5*time.Second, time.Duration(cfg.WaitTimeout))
	assert.Equal(t, "@hourly", cfg.Schedule)
	// defaults survive a partial file
	assert.Equal(t, time.Second, time.Duration(cfg.Tick))
}

func TestLoadEmpty(t *testing.T) {
	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, "localhost:8042", cfg.Listen)
}

func TestLoadBadDuration(t *testing.T) {
	f, err := ioutil.TempFile(os.TempDir(), "selftest-")
	assert.NoError(t, err)
	defer os.Remove(f.Name())
	_, err = f.WriteString("wait_timeout: plop\n")
	assert.NoError(t, err)
	f.Close()

	_, err = Load(f.Name())
	assert.Error(t, err)
}
