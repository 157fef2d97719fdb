package datastore

import "strings"

const titleSnippetLength = 15

// DeriveTitle builds a history entry title from the source labels, falling
// back to short snippets of the document bodies when no labels exist.
func DeriveTitle(labelA, labelB, docA, docB string) string {
	switch {
	case labelA != "" && labelB != "":
		return labelA + " vs " + labelB
	case labelA != "":
		return labelA + " vs Text"
	case labelB != "":
		return "Text vs " + labelB
	}

	return snippet(docA) + "... vs " + snippet(docB) + "..."
}

func snippet(doc string) string {
	if doc == "" {
		return "Empty"
	}
	runes := []rune(doc)
	if len(runes) > titleSnippetLength {
		runes = runes[:titleSnippetLength]
	}
	return strings.ReplaceAll(string(runes), "\n", " ")
}
