package generation

import "unicode/utf8"

// ClipPrompt keeps the last maxInputLength characters of prompt. A
// non-positive maxInputLength returns prompt unchanged.
func ClipPrompt(prompt string, maxInputLength int) string {
	// A string never has more characters than bytes.
	if maxInputLength <= 0 || len(prompt) <= maxInputLength {
		return prompt
	}

	n := utf8.RuneCountInString(prompt)
	if n <= maxInputLength {
		return prompt
	}

	skip := n - maxInputLength
	for i := range prompt {
		if skip == 0 {
			return prompt[i:]
		}
		skip--
	}
	return ""
}

// dropLastRunes removes the last n characters of text.
func dropLastRunes(text []byte, n int) string {
	keep := max(utf8.RuneCount(text)-n, 0)
	end := 0
	for ; keep > 0; keep-- {
		_, size := utf8.DecodeRune(text[end:])
		end += size
	}
	return string(text[:end])
}
