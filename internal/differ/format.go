package differ

import (
	"strings"

	"github.com/aleister1102/docdiff/internal/models"
)

// FormatChangeDescription renders a chunk list as a git-style change
// description: every line of an Added chunk is prefixed "+ ", every line of
// a Removed chunk "- ", and unchanged lines two spaces. This is the text
// handed to the summarization collaborator.
func FormatChangeDescription(chunks []models.Chunk) string {
	var sb strings.Builder
	for _, chunk := range chunks {
		prefix := "  "
		switch chunk.Kind {
		case models.ChunkAdded:
			prefix = "+ "
		case models.ChunkRemoved:
			prefix = "- "
		}

		for _, line := range strings.Split(strings.TrimSuffix(chunk.Text, "\n"), "\n") {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
