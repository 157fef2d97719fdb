package differ

// Tokenize splits raw document text into an ordered sequence of line units.
// Each unit keeps its terminator, so concatenating the units reproduces the
// input byte-for-byte. Empty input yields no units; a trailing newline does
// not fabricate an empty final unit.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var units []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			units = append(units, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		units = append(units, text[start:])
	}
	return units
}
