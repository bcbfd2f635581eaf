package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/connorhough/codegen/internal/config"
	"github.com/connorhough/codegen/internal/engines"
	"github.com/connorhough/codegen/internal/generation"
	"github.com/connorhough/codegen/internal/history"
	"github.com/connorhough/codegen/internal/languages"
	"github.com/connorhough/codegen/internal/llm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type completeOptions struct {
	engine         string
	model          string
	mode           string
	language       string
	maxInputLength int
	maxTokens      int
	temperature    float32
	seed           uint64
	noHistory      bool
}

func newCompleteCmd(streams *llm.IOStreams) *cobra.Command {
	opts := &completeOptions{}

	completeCmd := &cobra.Command{
		Use:   "complete [prompt]",
		Short: "Generate a completion for a prompt",
		Long: `Generate a completion for a prompt given as an argument or piped on stdin.

In standard mode the completion is streamed from the engine and cut just
before the first stop word. Stop words come from model.additional_stop_words
and, with --language, from the language's top-level keywords and line comment.

In next_edit_suggestion mode the engine output is returned unmodified.`,
		Example: `  codegen complete "def fib(n):"
  cat main.py | codegen complete --language python
  codegen complete --engine gemini --mode next_edit_suggestion < edit.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			return runComplete(cmd, streams, opts, arg)
		},
	}

	opts.addFlags(completeCmd.Flags())

	return completeCmd
}

func (o *completeOptions) addFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.engine, "engine", "", "HTTP engine to use (openai, gemini, anthropic, mock)")
	flags.StringVar(&o.model, "model", "", "model name for the engine")
	flags.StringVar(&o.mode, "mode", "", "generation mode (standard, next_edit_suggestion)")
	flags.StringVarP(&o.language, "language", "l", "", "language id whose stop words apply")
	flags.IntVar(&o.maxInputLength, "max-input-length", 0, "characters kept from the end of the prompt, 0 for all")
	flags.IntVar(&o.maxTokens, "max-tokens", 0, "maximum number of tokens to generate")
	flags.Float32Var(&o.temperature, "temperature", 0, "sampling temperature")
	flags.Uint64Var(&o.seed, "seed", 0, "sampling seed (default derived from the current time)")
	flags.BoolVar(&o.noHistory, "no-history", false, "do not record the completion in history")
}

func runComplete(cmd *cobra.Command, streams *llm.IOStreams, opts *completeOptions, arg string) error {
	prompt, err := streams.ReadPrompt(arg)
	if err != nil {
		return err
	}
	if opts.language != "" && languages.Get(opts.language) == nil {
		return fmt.Errorf("unknown language %q (see 'codegen languages')", opts.language)
	}

	// Resolve configuration
	modelCfg, err := config.ResolveModelConfig()
	if err != nil {
		return err
	}
	modelCfg = config.ApplyFlags(modelCfg, opts.engine, opts.model)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	engine, err := engines.GetEngine(ctx, modelCfg)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	genOpts := generationOptions(cmd, opts)
	slog.Debug("resolved completion options",
		"engine", engine.Name(),
		"mode", genOpts.Mode,
		"max_input_length", genOpts.MaxInputLength,
		"max_decoding_tokens", genOpts.MaxDecodingTokens,
		"seed", genOpts.Seed)

	start := time.Now()
	completion, err := generation.New(engine, modelCfg).Generate(ctx, prompt, genOpts)
	if err != nil {
		return err
	}

	fmt.Fprint(streams.Out, completion)

	if !opts.noHistory {
		recordHistory(ctx, history.Entry{
			Engine:     engine.Name(),
			Mode:       genOpts.Mode.String(),
			Language:   opts.language,
			Prompt:     prompt,
			Completion: completion,
			Duration:   time.Since(start),
		})
	}

	return nil
}

// generationOptions layers explicitly set flags over configured defaults
func generationOptions(cmd *cobra.Command, opts *completeOptions) generation.Options {
	defaults := config.ResolveGenerationDefaults()

	options := []generation.Option{
		generation.WithMaxInputLength(defaults.MaxInputLength),
		generation.WithMaxDecodingTokens(defaults.MaxDecodingTokens),
		generation.WithSamplingTemperature(defaults.SamplingTemperature),
		generation.WithMode(generation.ParseMode(defaults.Mode)),
	}

	flags := cmd.Flags()
	if flags.Changed("max-input-length") {
		options = append(options, generation.WithMaxInputLength(opts.maxInputLength))
	}
	if flags.Changed("max-tokens") {
		options = append(options, generation.WithMaxDecodingTokens(opts.maxTokens))
	}
	if flags.Changed("temperature") {
		options = append(options, generation.WithSamplingTemperature(opts.temperature))
	}
	if flags.Changed("seed") {
		options = append(options, generation.WithSeed(opts.seed))
	}
	if flags.Changed("mode") {
		options = append(options, generation.WithMode(generation.ParseMode(opts.mode)))
	}
	if opts.language != "" {
		options = append(options, generation.WithLanguage(opts.language))
	}

	return generation.NewOptions(options...)
}

// recordHistory stores the completion; failures are logged and otherwise ignored
func recordHistory(ctx context.Context, entry history.Entry) {
	histCfg := config.ResolveHistoryConfig()
	if !histCfg.Enabled {
		return
	}

	store, err := openHistory(histCfg)
	if err != nil {
		slog.Warn("history unavailable", "error", err)
		return
	}
	defer store.Close()

	if _, err := store.Append(ctx, entry); err != nil {
		slog.Warn("failed to record completion", "error", err)
	}
}

func openHistory(cfg config.HistoryConfig) (*history.Store, error) {
	path := cfg.Path
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return history.Open(path)
}
