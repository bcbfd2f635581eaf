package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connorhough/codegen/internal/llm"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"standard", ModeStandard},
		{"next_edit_suggestion", ModeNextEditSuggestion},
		{"NEXT_EDIT_SUGGESTION", ModeStandard},
		{" next_edit_suggestion ", ModeStandard},
		{"Next_Edit_Suggestion", ModeStandard},
		{"", ModeStandard},
		{"fill_in_middle", ModeStandard},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMode(tt.in))
		})
	}

	assert.Equal(t, "standard", ModeStandard.String())
	assert.Equal(t, "next_edit_suggestion", ModeNextEditSuggestion.String())
	assert.Equal(t, ModeNextEditSuggestion, ParseMode(ModeNextEditSuggestion.String()))
}

func TestNewOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts := NewOptions()
		assert.Equal(t, 1024, opts.MaxInputLength)
		assert.Equal(t, 256, opts.MaxDecodingTokens)
		assert.Equal(t, float32(0.1), opts.SamplingTemperature)
		assert.NotZero(t, opts.Seed)
		assert.Nil(t, opts.Language)
		assert.Equal(t, ModeStandard, opts.Mode)
	})

	t.Run("overrides", func(t *testing.T) {
		opts := NewOptions(
			WithMaxInputLength(0),
			WithMaxDecodingTokens(32),
			WithSamplingTemperature(0.8),
			WithSeed(42),
			WithLanguage("python"),
			WithMode(ModeNextEditSuggestion),
		)
		assert.Equal(t, 0, opts.MaxInputLength)
		assert.Equal(t, 32, opts.MaxDecodingTokens)
		assert.Equal(t, float32(0.8), opts.SamplingTemperature)
		assert.Equal(t, uint64(42), opts.Seed)
		require.NotNil(t, opts.Language)
		assert.Equal(t, "python", opts.Language.Name)
		assert.Equal(t, ModeNextEditSuggestion, opts.Mode)
	})

	t.Run("unknown language", func(t *testing.T) {
		assert.Nil(t, NewOptions(WithLanguage("cobol")).Language)
	})
}

func TestCompletionOptions(t *testing.T) {
	opts := NewOptions(WithMaxDecodingTokens(16), WithSamplingTemperature(0.5), WithSeed(7))
	assert.Equal(t, llm.CompletionOptions{
		MaxDecodingTokens:   16,
		SamplingTemperature: 0.5,
		Seed:                7,
	}, opts.completionOptions())
}
