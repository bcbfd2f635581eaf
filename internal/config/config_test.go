package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func loadConfig(t *testing.T, content string) {
	t.Helper()

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name       string
		initial    ModelConfig
		engineFlag string
		modelFlag  string
		want       ModelConfig
	}{
		{
			name:       "both flags override config",
			initial:    &HTTPModelConfig{Engine: "openai", ModelName: "davinci"},
			engineFlag: "gemini",
			modelFlag:  "gemini-2.5-flash",
			want:       &HTTPModelConfig{Engine: "gemini", ModelName: "gemini-2.5-flash"},
		},
		{
			name:       "only engine flag overrides",
			initial:    &HTTPModelConfig{Engine: "openai", ModelName: "davinci"},
			engineFlag: "anthropic",
			want:       &HTTPModelConfig{Engine: "anthropic", ModelName: "davinci"},
		},
		{
			name:      "only model flag overrides",
			initial:   &HTTPModelConfig{Engine: "openai", ModelName: "davinci"},
			modelFlag: "babbage",
			want:      &HTTPModelConfig{Engine: "openai", ModelName: "babbage"},
		},
		{
			name:    "empty flags don't override",
			initial: &LocalModelConfig{Command: "cat"},
			want:    &LocalModelConfig{Command: "cat"},
		},
		{
			name:       "engine flag replaces local config",
			initial:    &LocalModelConfig{Command: "cat", AdditionalStopWords: []string{"END"}},
			engineFlag: "mock",
			want:       &HTTPModelConfig{Engine: "mock", AdditionalStopWords: []string{"END"}},
		},
		{
			name:      "model flag alone leaves local config",
			initial:   &LocalModelConfig{Command: "cat"},
			modelFlag: "ignored",
			want:      &LocalModelConfig{Command: "cat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFlags(tt.initial, tt.engineFlag, tt.modelFlag)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestApplyFlagsDoesNotMutate(t *testing.T) {
	initial := &HTTPModelConfig{Engine: "openai"}
	ApplyFlags(initial, "gemini", "")
	if initial.Engine != "openai" {
		t.Errorf("ApplyFlags mutated its input: engine = %q", initial.Engine)
	}
}

func TestResolveModelConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    ModelConfig
		wantErr string
	}{
		{
			name: "http model",
			content: `
model:
  type: http
  engine: gemini
  api_key: secret
  model_name: gemini-2.5-flash-lite
  additional_stop_words: ["\n\n", "<EOT>"]
`,
			want: &HTTPModelConfig{
				Engine:              "gemini",
				APIKey:              "secret",
				ModelName:           "gemini-2.5-flash-lite",
				AdditionalStopWords: []string{"\n\n", "<EOT>"},
			},
		},
		{
			name: "local model",
			content: `
model:
  type: local
  command: llama-cli
  args: ["-n", "{max_tokens}"]
`,
			want: &LocalModelConfig{
				Command: "llama-cli",
				Args:    []string{"-n", "{max_tokens}"},
			},
		},
		{
			name:    "type defaults to http",
			content: "log_level: debug\n",
			want:    &HTTPModelConfig{Engine: "openai"},
		},
		{
			name: "local model without command",
			content: `
model:
  type: local
`,
			wantErr: "model.command is required",
		},
		{
			name: "unknown type",
			content: `
model:
  type: grpc
`,
			wantErr: "unknown model type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loadConfig(t, tt.content)

			got, err := ResolveModelConfig()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.Type() != tt.want.Type() {
				t.Errorf("type: got %q, want %q", got.Type(), tt.want.Type())
			}
			if len(got.StopWords()) != len(tt.want.StopWords()) {
				t.Errorf("stop words: got %q, want %q", got.StopWords(), tt.want.StopWords())
			}
			if !reflect.DeepEqual(normalizeEmpty(got), normalizeEmpty(tt.want)) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

// normalizeEmpty maps empty slices to nil so configs read from viper compare
// equal to literals.
func normalizeEmpty(cfg ModelConfig) ModelConfig {
	switch c := cfg.(type) {
	case *HTTPModelConfig:
		out := *c
		if len(out.AdditionalStopWords) == 0 {
			out.AdditionalStopWords = nil
		}
		return &out
	case *LocalModelConfig:
		out := *c
		if len(out.Args) == 0 {
			out.Args = nil
		}
		if len(out.AdditionalStopWords) == 0 {
			out.AdditionalStopWords = nil
		}
		return &out
	}
	return cfg
}

func TestStopWordsNilSafe(t *testing.T) {
	var local *LocalModelConfig
	var remote *HTTPModelConfig
	if local.StopWords() != nil || remote.StopWords() != nil {
		t.Error("nil configs should have no stop words")
	}
}

func TestResolveGenerationDefaults(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		loadConfig(t, "log_level: info\n")

		got := ResolveGenerationDefaults()
		want := GenerationDefaults{
			MaxInputLength:      1024,
			MaxDecodingTokens:   256,
			SamplingTemperature: 0.1,
			Mode:                "standard",
		}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("configured", func(t *testing.T) {
		loadConfig(t, `
generation:
  max_input_length: 0
  max_decoding_tokens: 64
  sampling_temperature: 0.7
  mode: next_edit_suggestion
`)

		got := ResolveGenerationDefaults()
		want := GenerationDefaults{
			MaxInputLength:      0,
			MaxDecodingTokens:   64,
			SamplingTemperature: 0.7,
			Mode:                "next_edit_suggestion",
		}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})
}

func TestResolveHistoryConfig(t *testing.T) {
	loadConfig(t, `
history:
  path: /tmp/h.db
`)

	got := ResolveHistoryConfig()
	if !got.Enabled {
		t.Error("history should be enabled by default")
	}
	if got.Path != "/tmp/h.db" {
		t.Errorf("path: got %q", got.Path)
	}
}

func TestTemplateIsValidConfig(t *testing.T) {
	loadConfig(t, configTemplate)

	cfg, err := ResolveModelConfig()
	if err != nil {
		t.Fatalf("template does not resolve: %v", err)
	}
	if cfg.Type() != ModelTypeHTTP {
		t.Errorf("template model type = %q", cfg.Type())
	}
	if got := ResolveGenerationDefaults().MaxInputLength; got != 1024 {
		t.Errorf("template max_input_length = %d", got)
	}
}

func TestGetSetValue(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	if _, err := EnsureConfigExists(configFile); err != nil {
		t.Fatal(err)
	}
	loadConfig(t, configTemplate)
	viper.SetConfigFile(configFile)

	if err := SetValue("model.additional_stop_words", "END, <EOT>"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	got, err := GetValue("model.additional_stop_words")
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if got != "END,<EOT>" {
		t.Errorf("got %q", got)
	}

	if _, err := GetValue("no.such.key"); err == nil {
		t.Error("expected error for missing key")
	}
}
