package config

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath          = "."
	defaultMinSampleSize = 5
	defaultProfilesDir   = "user-profiles"
	defaultExtractedDir  = "extracted-profiles"
	defaultScenarioLog   = "structured-logs/application-logs.txt"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	// Profiling configuration for the behavioral classifier
	Profiling *ProfilingConfig `json:"profiling" yaml:"profiling"`

	// LogParse configuration for the offline log parser
	LogParse *LogParseConfig `json:"logParse" yaml:"logParse"`

	// Export configuration for profile serialization
	Export *ExportConfig `json:"export" yaml:"export"`

	// Scenario configuration for the simulation runner
	Scenario *ScenarioConfig `json:"scenario" yaml:"scenario"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// ProfilingConfig defines thresholds for the behavioral classifier.
// Percentages are over the full operation history of a user.
type ProfilingConfig struct {
	// Minimum operations before any profile migration is considered
	MinSampleSize int `json:"minSampleSize" yaml:"minSampleSize"`
}

// LogParseConfig defines input files for offline profile extraction
type LogParseConfig struct {
	// Log files parsed by the batch extractor, in order
	Files []string `json:"files" yaml:"files"`
}

// ExportConfig defines output directories for serialized profiles
type ExportConfig struct {
	// Directory for profiles exported from the live classifier
	ProfilesDir string `json:"profilesDir" yaml:"profilesDir"`

	// Directory for profiles rebuilt by the offline extractor
	ExtractedDir string `json:"extractedDir" yaml:"extractedDir"`
}

// ScenarioConfig defines the simulation runner used to generate
// operation traffic and structured logs
type ScenarioConfig struct {
	Enabled bool  `json:"enabled" yaml:"enabled"`
	Seed    int64 `json:"seed" yaml:"seed"`

	// Structured operation log written during the scenario run
	LogFile string `json:"logFile" yaml:"logFile"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: PROFILING_MINSAMPLESIZE -> profiling.minSampleSize
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Profiling == nil {
		cfg.Profiling = &ProfilingConfig{}
	}
	if cfg.Profiling.MinSampleSize <= 0 {
		cfg.Profiling.MinSampleSize = defaultMinSampleSize
	}

	if cfg.Export == nil {
		cfg.Export = &ExportConfig{}
	}
	if strings.TrimSpace(cfg.Export.ProfilesDir) == "" {
		cfg.Export.ProfilesDir = defaultProfilesDir
	}
	if strings.TrimSpace(cfg.Export.ExtractedDir) == "" {
		cfg.Export.ExtractedDir = defaultExtractedDir
	}

	if cfg.Scenario == nil {
		cfg.Scenario = &ScenarioConfig{}
	}
	if strings.TrimSpace(cfg.Scenario.LogFile) == "" {
		cfg.Scenario.LogFile = defaultScenarioLog
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
