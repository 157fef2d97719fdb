package differ

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/docdiff/internal/models"
)

// originalSide concatenates the text reconstructing document A.
func originalSide(chunks []models.Chunk) string {
	var sb strings.Builder
	for _, c := range chunks {
		if c.Kind != models.ChunkAdded {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

// modifiedSide concatenates the text reconstructing document B.
func modifiedSide(chunks []models.Chunk) string {
	var sb strings.Builder
	for _, c := range chunks {
		if c.Kind != models.ChunkRemoved {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

func TestEngine_SingleLineReplacement(t *testing.T) {
	engine := NewEngine()

	a := "line1\nline2\nline3\n"
	b := "line1\nchanged\nline3\n"

	result := engine.Compare(a, b)

	expected := []models.Chunk{
		{Text: "line1\n", Kind: models.ChunkUnchanged},
		{Text: "line2\n", Kind: models.ChunkRemoved},
		{Text: "changed\n", Kind: models.ChunkAdded},
		{Text: "line3\n", Kind: models.ChunkUnchanged},
	}
	assert.Equal(t, expected, result.Chunks)
	assert.Equal(t, 1, result.Additions)
	assert.Equal(t, 1, result.Deletions)
}

func TestEngine_EmptyOriginal(t *testing.T) {
	engine := NewEngine()

	result := engine.Compare("", "hello\n")

	require.Len(t, result.Chunks, 1)
	assert.Equal(t, models.Chunk{Text: "hello\n", Kind: models.ChunkAdded}, result.Chunks[0])
	assert.Equal(t, 1, result.Additions)
	assert.Equal(t, 0, result.Deletions)
}

func TestEngine_IdenticalInputs(t *testing.T) {
	engine := NewEngine()

	text := "alpha\nbeta\ngamma\n"
	result := engine.Compare(text, text)

	require.Len(t, result.Chunks, 1)
	assert.Equal(t, models.ChunkUnchanged, result.Chunks[0].Kind)
	assert.Equal(t, text, result.Chunks[0].Text)
	assert.Equal(t, 0, result.Additions)
	assert.Equal(t, 0, result.Deletions)
}

func TestEngine_BothEmpty(t *testing.T) {
	engine := NewEngine()

	result := engine.Compare("", "")
	assert.Empty(t, result.Chunks)
	assert.Equal(t, 0, result.Additions)
	assert.Equal(t, 0, result.Deletions)
}

func TestEngine_DisjointInputs(t *testing.T) {
	engine := NewEngine()

	a := "aaa\nbbb\n"
	b := "xxx\nyyy\n"
	chunks := engine.DiffLines(Tokenize(a), Tokenize(b))

	require.Len(t, chunks, 2)
	assert.Equal(t, models.Chunk{Text: a, Kind: models.ChunkRemoved}, chunks[0])
	assert.Equal(t, models.Chunk{Text: b, Kind: models.ChunkAdded}, chunks[1])
}

func TestEngine_ReorderedLinesKeepCommonAnchor(t *testing.T) {
	engine := NewEngine()

	result := engine.Compare("foo\nbar\n", "bar\nfoo\n")

	// A reorder must not degenerate into removing and re-adding everything:
	// one of the common lines stays anchored as an Unchanged chunk.
	unchanged := 0
	for _, c := range result.Chunks {
		if c.Kind == models.ChunkUnchanged {
			unchanged++
		}
	}
	assert.Equal(t, 1, unchanged)
	assert.Equal(t, 1, result.Additions)
	assert.Equal(t, 1, result.Deletions)

	assert.Equal(t, "foo\nbar\n", originalSide(result.Chunks))
	assert.Equal(t, "bar\nfoo\n", modifiedSide(result.Chunks))
}

func TestEngine_RemovedPrecedesAddedAtReplacement(t *testing.T) {
	engine := NewEngine()

	chunks := engine.DiffLines(
		Tokenize("keep\nold\nkeep2\n"),
		Tokenize("keep\nnew\nkeep2\n"),
	)

	require.Len(t, chunks, 4)
	assert.Equal(t, models.ChunkRemoved, chunks[1].Kind)
	assert.Equal(t, models.ChunkAdded, chunks[2].Kind)
}

func TestEngine_Reconstruction(t *testing.T) {
	engine := NewEngine()

	cases := []struct {
		name string
		a    string
		b    string
	}{
		{"trailing newline on one side", "one\ntwo\nthree", "one\ntwo\nthree\n"},
		{"crlf terminators", "a\r\nb\r\n", "a\r\nc\r\n"},
		{"unicode content", "héllo\nwörld\n", "héllo\nmonde\n"},
		{"appended lines", "x\n", "x\ny\nz\n"},
		{"deleted everything", "gone\nentirely\n", ""},
		{"interleaved edits", "1\n2\n3\n4\n5\n", "1\ntwo\n3\nfour\n5\n"},
		{"no terminators at all", "single", "other"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunks := engine.DiffLines(Tokenize(tc.a), Tokenize(tc.b))
			assert.Equal(t, tc.a, originalSide(chunks), "original side must reconstruct A")
			assert.Equal(t, tc.b, modifiedSide(chunks), "modified side must reconstruct B")
		})
	}
}

func TestEngine_CountSymmetry(t *testing.T) {
	engine := NewEngine()

	a := "alpha\nbeta\ngamma\n"
	b := "alpha\nchanged\ngamma\nextra\n"

	forward := engine.Compare(a, b)
	backward := engine.Compare(b, a)

	assert.Equal(t, forward.Additions, backward.Deletions)
	assert.Equal(t, forward.Deletions, backward.Additions)
}

func TestEngine_TrailingNewlineDoesNotFabricateChunk(t *testing.T) {
	engine := NewEngine()

	chunks := engine.DiffLines(Tokenize("same\n"), Tokenize("same\n"))
	require.Len(t, chunks, 1)
	assert.Equal(t, models.ChunkUnchanged, chunks[0].Kind)

	for _, c := range engine.DiffLines(Tokenize("a\nb"), Tokenize("a\nb\n")) {
		assert.NotEqual(t, "", c.Text)
	}
}
