package models

import "time"

// ChunkKind classifies a run of lines in a comparison result.
type ChunkKind int

const (
	// ChunkUnchanged indicates lines present in both documents.
	ChunkUnchanged ChunkKind = 0
	// ChunkAdded indicates lines present only in the modified document.
	ChunkAdded ChunkKind = 1
	// ChunkRemoved indicates lines present only in the original document.
	ChunkRemoved ChunkKind = -1
)

// String returns a human-readable name for the chunk kind.
func (k ChunkKind) String() string {
	switch k {
	case ChunkAdded:
		return "added"
	case ChunkRemoved:
		return "removed"
	default:
		return "unchanged"
	}
}

// Chunk is a maximal contiguous run of lines sharing one edit classification.
// Text is the concatenation of the run's lines, terminators included.
type Chunk struct {
	Text string    `json:"text"`
	Kind ChunkKind `json:"kind"`
}

// ComparisonResult holds the structured output of a document comparison.
// Additions and Deletions count chunks, not lines; line-level counts are
// recomputed from Chunks by differ.ComputeStats.
type ComparisonResult struct {
	Chunks    []Chunk `json:"chunks"`
	Additions int     `json:"additions"`
	Deletions int     `json:"deletions"`
}

// HistoryEntry is a durable record of a completed comparison. It is never
// mutated after creation; the store deletes it on explicit user action only.
type HistoryEntry struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	CreatedAt time.Time        `json:"created_at"`
	DocumentA string           `json:"document_a"`
	DocumentB string           `json:"document_b"`
	LabelA    string           `json:"label_a,omitempty"`
	LabelB    string           `json:"label_b,omitempty"`
	Summary   string           `json:"summary,omitempty"`
	Result    ComparisonResult `json:"result"`
}
