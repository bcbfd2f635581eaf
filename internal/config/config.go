// Package config provides configuration management functionality for the codegen application.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Model types accepted under model.type
const (
	ModelTypeHTTP  = "http"
	ModelTypeLocal = "local"
)

// Generation defaults registered with viper
const (
	DefaultMaxInputLength      = 1024
	DefaultMaxDecodingTokens   = 256
	DefaultSamplingTemperature = 0.1
	DefaultMode                = "standard"
)

// SetDefaults registers default values for every generation and history key
func SetDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("model.type", ModelTypeHTTP)
	viper.SetDefault("model.engine", "openai")
	viper.SetDefault("generation.max_input_length", DefaultMaxInputLength)
	viper.SetDefault("generation.max_decoding_tokens", DefaultMaxDecodingTokens)
	viper.SetDefault("generation.sampling_temperature", DefaultSamplingTemperature)
	viper.SetDefault("generation.mode", DefaultMode)
	viper.SetDefault("history.enabled", true)
}

// GetValue retrieves a configuration value by key
func GetValue(key string) (string, error) {
	if !viper.IsSet(key) {
		return "", fmt.Errorf("key '%s' not found in configuration", key)
	}
	if isListKey(key) {
		return strings.Join(viper.GetStringSlice(key), ","), nil
	}
	return viper.GetString(key), nil
}

// SetValue sets a configuration value by key and persists it to the config file.
// List keys take a comma separated value.
func SetValue(key string, value string) error {
	if isListKey(key) {
		viper.Set(key, splitList(value))
	} else {
		viper.Set(key, value)
	}
	return viper.WriteConfig()
}

func isListKey(key string) bool {
	switch key {
	case "model.args", "model.additional_stop_words":
		return true
	}
	return false
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ModelConfig describes how to reach the engine. It is either a
// *LocalModelConfig or a *HTTPModelConfig.
type ModelConfig interface {
	// Type returns ModelTypeLocal or ModelTypeHTTP
	Type() string
	// StopWords returns the additional stop words configured for the model
	StopWords() []string

	isModelConfig()
}

// LocalModelConfig runs the engine as a local subprocess
type LocalModelConfig struct {
	Command             string
	Args                []string
	AdditionalStopWords []string
}

func (c *LocalModelConfig) Type() string { return ModelTypeLocal }

func (c *LocalModelConfig) StopWords() []string {
	if c == nil {
		return nil
	}
	return c.AdditionalStopWords
}

func (*LocalModelConfig) isModelConfig() {}

// HTTPModelConfig reaches the engine over an HTTP API
type HTTPModelConfig struct {
	Engine              string
	APIEndpoint         string
	APIKey              string
	ModelName           string
	AdditionalStopWords []string
}

func (c *HTTPModelConfig) Type() string { return ModelTypeHTTP }

func (c *HTTPModelConfig) StopWords() []string {
	if c == nil {
		return nil
	}
	return c.AdditionalStopWords
}

func (*HTTPModelConfig) isModelConfig() {}

// ResolveModelConfig builds the ModelConfig from the model.* keys
func ResolveModelConfig() (ModelConfig, error) {
	stopWords := viper.GetStringSlice("model.additional_stop_words")

	switch t := strings.ToLower(viper.GetString("model.type")); t {
	case ModelTypeLocal:
		cfg := &LocalModelConfig{
			Command:             viper.GetString("model.command"),
			Args:                viper.GetStringSlice("model.args"),
			AdditionalStopWords: stopWords,
		}
		if cfg.Command == "" {
			return nil, fmt.Errorf("model.command is required for a local model")
		}
		return cfg, nil
	case ModelTypeHTTP, "":
		return &HTTPModelConfig{
			Engine:              viper.GetString("model.engine"),
			APIEndpoint:         viper.GetString("model.api_endpoint"),
			APIKey:              viper.GetString("model.api_key"),
			ModelName:           viper.GetString("model.model_name"),
			AdditionalStopWords: stopWords,
		}, nil
	default:
		return nil, fmt.Errorf("unknown model type %q (want %q or %q)", t, ModelTypeHTTP, ModelTypeLocal)
	}
}

// ApplyFlags applies flag overrides to config (called from command layer).
// An engine flag selects an HTTP engine; a local config is replaced by an
// HTTP one that keeps its stop words.
func ApplyFlags(cfg ModelConfig, engineFlag, modelFlag string) ModelConfig {
	if engineFlag == "" && modelFlag == "" {
		return cfg
	}

	switch c := cfg.(type) {
	case *HTTPModelConfig:
		out := *c
		if engineFlag != "" {
			out.Engine = engineFlag
		}
		if modelFlag != "" {
			out.ModelName = modelFlag
		}
		return &out
	case *LocalModelConfig:
		if engineFlag == "" {
			return cfg
		}
		return &HTTPModelConfig{
			Engine:              engineFlag,
			ModelName:           modelFlag,
			AdditionalStopWords: c.StopWords(),
		}
	}

	return &HTTPModelConfig{Engine: engineFlag, ModelName: modelFlag}
}

// GenerationDefaults holds the configured defaults for generation options
type GenerationDefaults struct {
	MaxInputLength      int
	MaxDecodingTokens   int
	SamplingTemperature float32
	Mode                string
}

// ResolveGenerationDefaults reads the generation.* keys
func ResolveGenerationDefaults() GenerationDefaults {
	return GenerationDefaults{
		MaxInputLength:      viper.GetInt("generation.max_input_length"),
		MaxDecodingTokens:   viper.GetInt("generation.max_decoding_tokens"),
		SamplingTemperature: float32(viper.GetFloat64("generation.sampling_temperature")),
		Mode:                viper.GetString("generation.mode"),
	}
}

// HistoryConfig controls the completion history store
type HistoryConfig struct {
	Enabled bool
	Path    string
}

// ResolveHistoryConfig reads the history.* keys
func ResolveHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Enabled: viper.GetBool("history.enabled"),
		Path:    viper.GetString("history.path"),
	}
}
