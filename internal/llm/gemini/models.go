package gemini

// ModelFlashLite is the default model. Gemini requires full model names.
const ModelFlashLite = "gemini-2.5-flash-lite"

// DefaultModel returns the default Gemini model
func DefaultModel() string {
	return ModelFlashLite
}
