package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/jsphweid/pianodiff/constants"
	"gopkg.in/yaml.v3"
)

type MidiConfig struct {
	HandSplit int `yaml:"hand_split"`
}

type AnalysisConfig struct {
	// "hmm" or "dtw"
	Method  string `yaml:"method"`
	Workers int    `yaml:"workers"`
}

type StoreConfig struct {
	// "sqlite" or "dynamodb"
	Kind           string `yaml:"kind"`
	DynamoTable    string `yaml:"dynamo_table"`
	DynamoRegion   string `yaml:"dynamo_region"`
	DynamoEndpoint string `yaml:"dynamo_endpoint"`
}

// Config is the user-level configuration kept in config.yaml.
type Config struct {
	Midi      MidiConfig     `yaml:"midi"`
	Analysis  AnalysisConfig `yaml:"analysis"`
	Store     StoreConfig    `yaml:"store"`
	Tolerance Tolerance      `yaml:"tolerance"`
}

func Default() Config {
	return Config{
		Midi:     MidiConfig{HandSplit: constants.DefaultSplitPitch},
		Analysis: AnalysisConfig{Method: "hmm", Workers: 4},
		Store: StoreConfig{
			Kind:         "sqlite",
			DynamoTable:  "pianodiff-reports",
			DynamoRegion: "us-east-1",
		},
		Tolerance: DefaultTolerance(),
	}
}

func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create config dir: %w", err)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not encode config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}

// Load reads path over the defaults. A missing file is created, and a file
// missing some keys is rewritten with the merged result.
func Load(path string) (Config, error) {
	cfg := Default()
	dat, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, Save(cfg, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("could not read config: %w", err)
	}

	if err := yaml.Unmarshal(dat, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	if err := cfg.Tolerance.Validate(); err != nil {
		return cfg, err
	}

	var loaded map[string]any
	_ = yaml.Unmarshal(dat, &loaded)
	merged, err := toMap(cfg)
	if err != nil {
		return cfg, err
	}
	if !reflect.DeepEqual(loaded, merged) {
		if err := Save(cfg, path); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func LoadDefault() (Config, error) {
	return Load(constants.GetConfigPath())
}

func toMap(cfg Config) (map[string]any, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(out, &m); err != nil {
		return nil, err
	}
	return m, nil
}
