package config

import (
	"io/ioutil"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with the "5s" yaml syntax
type Duration time.Duration

// UnmarshalYAML parses a go duration string
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	err := value.Decode(&raw)
	if err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the go duration string
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the serve configuration, read from a yaml file with env
// fallbacks for the common knobs
type Config struct {
	Listen      string   `yaml:"listen"`
	AuthKey     string   `yaml:"auth_key"`
	WaitTimeout Duration `yaml:"wait_timeout"`
	Tick        Duration `yaml:"tick"`
	Schedule    string   `yaml:"schedule"`
}

// Defaults returns a config with sane defaults
func Defaults() *Config {
	return &Config{
		Listen: "localhost:8042",
		Tick:   Duration(time.Second),
	}
}

// Load reads a yaml config file, an empty path means defaults + env
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		raw, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, err
		}
		err = yaml.Unmarshal(raw, cfg)
		if err != nil {
			return nil, err
		}
	}
	cfg.fromEnv()
	return cfg, nil
}

func (c *Config) fromEnv() {
	if listen := os.Getenv("LISTEN"); listen != "" {
		c.Listen = listen
	}
	if key := os.Getenv("AUTH_KEY"); key != "" {
		c.AuthKey = key
	}
	if schedule := os.Getenv("SELF_TEST_SCHEDULE"); schedule != "" {
		c.Schedule = schedule
	}
}
