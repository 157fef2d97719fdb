package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/docdiff/internal/common/errorwrapper"
	"github.com/aleister1102/docdiff/internal/config"
)

// IdenticalDocumentsSummary is the fixed summary used when a comparison has
// no additions and no deletions; no network call is made in that case.
const IdenticalDocumentsSummary = "Documents are identical."

// SummarizeRequest carries the change description and the chunk-count
// additions/deletions for one comparison.
type SummarizeRequest struct {
	ChangeDescription string
	Additions         int
	Deletions         int
}

// Client requests natural-language change summaries from the Gemini API.
type Client struct {
	config     config.SummarizerConfig
	logger     zerolog.Logger
	httpClient *http.Client
}

// NewClient creates a new summarization client.
func NewClient(cfg config.SummarizerConfig, logger zerolog.Logger, httpClient *http.Client) *Client {
	moduleLogger := logger.With().Str("module", "Summarizer").Logger()

	if httpClient == nil {
		timeout := time.Duration(cfg.TimeoutSecs) * time.Second
		if timeout <= 0 {
			timeout = time.Duration(config.DefaultSummarizerTimeoutSecs) * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		config:     cfg,
		logger:     moduleLogger,
		httpClient: httpClient,
	}
}

// Summarize sends the change description to the model and returns its
// summary text. The description is truncated to the configured character
// budget before sending; truncation is this client's responsibility.
func (c *Client) Summarize(ctx context.Context, req SummarizeRequest) (string, error) {
	if c.config.APIKey == "" {
		return "", errorwrapper.WrapError(errorwrapper.ErrSummarizationFailure, "API key is not configured")
	}
	if req.ChangeDescription == "" {
		return "", errorwrapper.WrapError(errorwrapper.ErrSummarizationFailure, "change description is empty")
	}

	prompt := c.buildPrompt(req)

	payload := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errorwrapper.WrapError(err, "failed to marshal summarization payload")
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimSuffix(c.config.BaseURL, "/"), c.config.Model, c.config.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errorwrapper.WrapError(err, "failed to create summarization request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Msg("Summarization request failed")
		return "", errorwrapper.WrapError(errorwrapper.ErrSummarizationFailure, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errorwrapper.WrapError(errorwrapper.ErrSummarizationFailure, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error().Int("status", resp.StatusCode).Msg("Summarization service returned non-success status")
		return "", errorwrapper.WrapError(errorwrapper.ErrSummarizationFailure,
			fmt.Sprintf("service returned status %d", resp.StatusCode))
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errorwrapper.WrapError(errorwrapper.ErrSummarizationFailure, "malformed response body")
	}

	summary := parsed.text()
	if summary == "" {
		return "", errorwrapper.WrapError(errorwrapper.ErrSummarizationFailure, "response contained no summary text")
	}

	c.logger.Info().
		Dur("duration", time.Since(start)).
		Int("summary_length", len(summary)).
		Msg("Received change summary")
	return summary, nil
}

// buildPrompt renders the analyst prompt around the truncated diff text.
func (c *Client) buildPrompt(req SummarizeRequest) string {
	description := req.ChangeDescription
	maxChars := c.config.MaxDiffChars
	if maxChars <= 0 {
		maxChars = config.DefaultSummarizerMaxChars
	}
	if len(description) > maxChars {
		description = description[:maxChars]
	}

	var sb strings.Builder
	sb.WriteString("You are an expert document analyst. Compare the two document versions based on the Git-style diff below.\n\n")
	sb.WriteString("CONTEXT:\n")
	sb.WriteString("- Lines starting with `+` are Added.\n")
	sb.WriteString("- Lines starting with `-` are Removed.\n")
	sb.WriteString("- Lines starting with spaces are Unchanged.\n")
	fmt.Fprintf(&sb, "- The comparison produced %d added and %d removed segments.\n\n", req.Additions, req.Deletions)
	sb.WriteString("DIFF CONTENT:\n\"\"\"\n")
	sb.WriteString(description)
	sb.WriteString("\n\"\"\"\n\n")
	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString("1. If the documents look completely different (massive removal of one text and addition of another with little shared context), state that they appear to be two completely different documents, then briefly summarize each.\n")
	sb.WriteString("2. Otherwise analyze the changes: distinguish replacements from insertions and deletions, and only name a location when it is clear from context.\n")
	sb.WriteString("3. Answer in concise bullet points, bold important terms, no intro or outro.\n")
	return sb.String()
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (r *generateContentResponse) text() string {
	var sb strings.Builder
	for _, candidate := range r.Candidates {
		for _, p := range candidate.Content.Parts {
			sb.WriteString(p.Text)
		}
		break
	}
	return strings.TrimSpace(sb.String())
}
