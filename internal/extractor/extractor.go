package extractor

import (
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/aleister1102/docdiff/internal/common/errorwrapper"
)

// Media types accepted for extraction.
const (
	MediaTypeText = "text/plain"
	MediaTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypePDF  = "application/pdf"
)

// Extractor converts uploaded document bytes into plain text. Format-specific
// parsing is contained here; callers only see bytes and a media type.
type Extractor struct {
	logger zerolog.Logger
}

// NewExtractor creates a new document text extractor.
func NewExtractor(logger zerolog.Logger) *Extractor {
	return &Extractor{
		logger: logger.With().Str("module", "Extractor").Logger(),
	}
}

// Extract returns the plain text of a document given its raw bytes and
// declared media type. Unsupported formats and parse failures surface as
// ErrExtractionFailure; one document's failure never affects the other.
func (e *Extractor) Extract(data []byte, mediaType string) (string, error) {
	normalized := normalizeMediaType(mediaType)

	switch normalized {
	case MediaTypeText, "":
		if !utf8.Valid(data) {
			return "", errorwrapper.WrapError(errorwrapper.ErrExtractionFailure, "plain text content is not valid UTF-8")
		}
		return string(data), nil
	case MediaTypeDocx:
		text, err := extractDocx(data)
		if err != nil {
			e.logger.Error().Err(err).Msg("Failed to extract docx text")
			return "", errorwrapper.WrapError(errorwrapper.ErrExtractionFailure, err.Error())
		}
		return text, nil
	case MediaTypePDF:
		text, err := extractPDF(data)
		if err != nil {
			e.logger.Error().Err(err).Msg("Failed to extract PDF text")
			return "", errorwrapper.WrapError(errorwrapper.ErrExtractionFailure, err.Error())
		}
		return text, nil
	default:
		e.logger.Warn().Str("media_type", mediaType).Msg("Unsupported media type for extraction")
		return "", errorwrapper.WrapError(errorwrapper.ErrExtractionFailure, "unsupported media type: "+mediaType)
	}
}

// MediaTypeForFilename maps a file extension to a supported media type.
// Browsers often upload docx and pdf as application/octet-stream, so the
// filename is the more reliable signal.
func MediaTypeForFilename(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx":
		return MediaTypeDocx
	case ".pdf":
		return MediaTypePDF
	case ".txt", ".md", ".text":
		return MediaTypeText
	default:
		return ""
	}
}

// normalizeMediaType strips parameters like charset and lowercases the type.
func normalizeMediaType(mediaType string) string {
	parsed, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mediaType))
	}
	return parsed
}
