package differ

import (
	"math"
	"strings"

	"github.com/aleister1102/docdiff/internal/models"
)

// Stats holds line-level counts derived from a chunk list. Unlike the
// chunk-count additions/deletions on ComparisonResult, these count the lines
// each chunk contributes.
type Stats struct {
	AddedLines     int `json:"added_lines"`
	RemovedLines   int `json:"removed_lines"`
	UnchangedLines int `json:"unchanged_lines"`
	TotalLines     int `json:"total_lines"`
	ChangedPercent int `json:"changed_percent"`
}

// ComputeStats derives aggregate line counts from a chunk list. It is a pure
// function of its input and can be re-run on a stored result without
// invoking the diff engine.
func ComputeStats(chunks []models.Chunk) Stats {
	var stats Stats
	for _, chunk := range chunks {
		lines := countLines(chunk.Text)
		switch chunk.Kind {
		case models.ChunkAdded:
			stats.AddedLines += lines
		case models.ChunkRemoved:
			stats.RemovedLines += lines
		default:
			stats.UnchangedLines += lines
		}
	}

	stats.TotalLines = stats.AddedLines + stats.RemovedLines + stats.UnchangedLines
	if stats.TotalLines > 0 {
		changed := stats.AddedLines + stats.RemovedLines
		stats.ChangedPercent = int(math.Round(100 * float64(changed) / float64(stats.TotalLines)))
	}
	return stats
}

// countLines counts the newline-delimited, non-empty segments of a chunk's
// text. Text without an internal newline counts as one line when non-empty.
func countLines(text string) int {
	count := 0
	for _, segment := range strings.Split(text, "\n") {
		if len(segment) > 0 {
			count++
		}
	}
	return count
}
