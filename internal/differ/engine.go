package differ

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/aleister1102/docdiff/internal/models"
)

// Engine computes line-level edit scripts between two documents.
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewEngine creates a new diff engine.
func NewEngine() *Engine {
	return &Engine{
		dmp: diffmatchpatch.New(),
	}
}

// DiffLines computes a minimal edit script between two line sequences and
// returns it as an ordered chunk stream. Lines are compared as opaque tokens
// with exact string equality. At a replacement point the Removed chunk
// precedes the Added chunk; chunks of the same kind are always maximal runs.
func (e *Engine) DiffLines(a, b []string) []models.Chunk {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}

	textA := strings.Join(a, "")
	textB := strings.Join(b, "")

	// Line-mode diff: each distinct line collapses to one rune so the edit
	// script is computed over lines, then mapped back to their text.
	runesA, runesB, lineArray := e.dmp.DiffLinesToRunes(textA, textB)
	diffs := e.dmp.DiffMainRunes(runesA, runesB, false)
	diffs = e.dmp.DiffCharsToLines(diffs, lineArray)

	chunks := make([]models.Chunk, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Text: d.Text,
			Kind: chunkKindForOperation(d.Type),
		})
	}
	return chunks
}

// Compare tokenizes both documents, diffs them, and returns the result with
// chunk-count additions and deletions.
func (e *Engine) Compare(textA, textB string) models.ComparisonResult {
	chunks := e.DiffLines(Tokenize(textA), Tokenize(textB))

	result := models.ComparisonResult{Chunks: chunks}
	for _, chunk := range chunks {
		switch chunk.Kind {
		case models.ChunkAdded:
			result.Additions++
		case models.ChunkRemoved:
			result.Deletions++
		}
	}
	return result
}

func chunkKindForOperation(op diffmatchpatch.Operation) models.ChunkKind {
	switch op {
	case diffmatchpatch.DiffInsert:
		return models.ChunkAdded
	case diffmatchpatch.DiffDelete:
		return models.ChunkRemoved
	default:
		return models.ChunkUnchanged
	}
}
