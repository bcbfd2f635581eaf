package config

const configTemplate = `# codegen configuration file
# Model settings control which engine produces completions

model:
  # http or local
  type: http

  # HTTP engine: openai, gemini, anthropic or mock
  engine: openai
  # Base URL of an OpenAI-compatible server (optional)
  # api_endpoint: http://localhost:8080/v1
  # API key (prefer OPENAI_API_KEY, GEMINI_API_KEY or ANTHROPIC_API_KEY)
  # api_key: ${OPENAI_API_KEY}
  # model_name: gpt-3.5-turbo-instruct

  # Local engine: the prompt is written to stdin, stdout is the completion.
  # {max_tokens}, {temperature} and {seed} in args are substituted.
  # command: llama-cli
  # args: ["-n", "{max_tokens}", "--temp", "{temperature}", "--seed", "{seed}"]

  # Extra stop words applied to every completion
  additional_stop_words: []

generation:
  max_input_length: 1024  # characters kept from the end of the prompt, 0 for all
  max_decoding_tokens: 256
  sampling_temperature: 0.1
  mode: standard  # standard or next_edit_suggestion

history:
  enabled: true
  # path: ~/.local/share/codegen/history.db

# Observability settings
log_level: info  # debug, info, warn, error
`
