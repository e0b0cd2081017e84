package cmd

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/trainlog/trainlog/dashboard"
)

// Config mirrors the optional YAML config file. Flags override any value
// set here.
type Config struct {
	DataDir          string   `yaml:"data_dir"`
	OutputDir        string   `yaml:"output_dir"`
	ListenAddr       string   `yaml:"listen_addr"`
	LogExtensions    []string `yaml:"log_extensions"`
	ConfigExtensions []string `yaml:"config_extensions"`
	BucketWidth      int64    `yaml:"bucket_width"`
	SuccessReward    float64  `yaml:"success_reward"`
}

func defaultConfig() Config {
	return Config{
		DataDir:       "data",
		OutputDir:     "output",
		ListenAddr:    ":8050",
		BucketWidth:   dashboard.DefaultBucketWidth,
		SuccessReward: dashboard.DefaultSuccessReward,
	}
}

// parseConfig decodes YAML over the defaults with strict field checking,
// so a typoed key is an error rather than silently ignored.
func parseConfig(data []byte) (Config, error) {
	cfg := defaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadConfig reads the --config file, or returns the defaults when no file
// was given.
func loadConfig(path string) Config {
	if path == "" {
		return defaultConfig()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Fatalf("Failed to read config file: %v", err)
	}
	cfg, err := parseConfig(data)
	if err != nil {
		logrus.Fatalf("Failed to parse config YAML: %v", err)
	}
	return cfg
}
