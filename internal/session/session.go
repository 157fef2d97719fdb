package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aleister1102/docdiff/internal/common/errorwrapper"
	"github.com/aleister1102/docdiff/internal/datastore"
	"github.com/aleister1102/docdiff/internal/differ"
	"github.com/aleister1102/docdiff/internal/models"
	"github.com/aleister1102/docdiff/internal/summarizer"
)

// State identifies where a comparison session is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateComparing
	StateSummarizing
	StateComplete
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateComparing:
		return "comparing"
	case StateSummarizing:
		return "summarizing"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ErrSessionSuperseded is returned when a comparison finishes after the
// session it belonged to was replaced; its result is discarded.
var ErrSessionSuperseded = errors.New("session superseded")

// Summarizer is the AI collaborator contract the session depends on.
type Summarizer interface {
	Summarize(ctx context.Context, req summarizer.SummarizeRequest) (string, error)
}

// Snapshot is a copy of the current session state, safe to serialize.
type Snapshot struct {
	State     string                   `json:"state"`
	DocumentA string                   `json:"document_a"`
	DocumentB string                   `json:"document_b"`
	LabelA    string                   `json:"label_a,omitempty"`
	LabelB    string                   `json:"label_b,omitempty"`
	Result    *models.ComparisonResult `json:"result,omitempty"`
	Stats     *differ.Stats            `json:"stats,omitempty"`
	Summary   string                   `json:"summary,omitempty"`
	Duration  float64                  `json:"duration_seconds,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// Manager owns the single active comparison session and the history store.
// Diffing and statistics run synchronously; the summarization call is the
// only suspension point. A generation token guards against a late
// summarization response landing in a newer session's state.
type Manager struct {
	mu         sync.Mutex
	logger     zerolog.Logger
	engine     *differ.Engine
	summarizer Summarizer
	store      *datastore.HistoryStore

	generation uint64
	state      State
	docA       string
	docB       string
	labelA     string
	labelB     string
	result     *models.ComparisonResult
	stats      differ.Stats
	summary    string
	duration   time.Duration
	lastError  string
}

// NewManager creates a session manager bound to a summarizer and a store.
func NewManager(logger zerolog.Logger, sum Summarizer, store *datastore.HistoryStore) *Manager {
	return &Manager{
		logger:     logger.With().Str("module", "SessionManager").Logger(),
		engine:     differ.NewEngine(),
		summarizer: sum,
		store:      store,
		state:      StateIdle,
	}
}

// NewSession clears the session back to Idle and invalidates any in-flight
// summarization: its eventual result no longer matches the generation token
// and is discarded on arrival.
func (m *Manager) NewSession() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.resetLocked()
	return m.snapshotLocked()
}

// LoadExample loads the built-in example pair without running a comparison.
func (m *Manager) LoadExample() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.resetLocked()
	m.docA = ExampleDocumentA
	m.docB = ExampleDocumentB
	m.labelA = ExampleLabelA
	m.labelB = ExampleLabelB
	return m.snapshotLocked()
}

// RunComparison executes the full session lifecycle for one document pair:
// Idle -> Comparing -> Summarizing -> Complete, or -> Failed on error. On
// success the session is recorded in history unless the inputs are the
// built-in example pair.
func (m *Manager) RunComparison(ctx context.Context, docA, docB, labelA, labelB string) (Snapshot, error) {
	if strings.TrimSpace(docA) == "" || strings.TrimSpace(docB) == "" {
		return Snapshot{}, errorwrapper.WrapError(errorwrapper.ErrInputMissing, "both documents are required")
	}

	start := time.Now()

	m.mu.Lock()
	m.generation++
	token := m.generation
	m.resetLocked()
	m.state = StateComparing
	m.docA, m.docB = docA, docB
	m.labelA, m.labelB = labelA, labelB

	// Tokenizer, diff engine and statistics are pure and synchronous.
	result := m.engine.Compare(docA, docB)
	m.result = &result
	m.stats = differ.ComputeStats(result.Chunks)
	m.state = StateSummarizing
	m.mu.Unlock()

	description := differ.FormatChangeDescription(result.Chunks)
	summary, sumErr := m.obtainSummary(ctx, description, result)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != token {
		// The session was reset or replaced while summarization was in
		// flight; the response belongs to an abandoned session.
		m.logger.Debug().Uint64("token", token).Uint64("generation", m.generation).Msg("Discarding stale summarization result")
		return Snapshot{}, ErrSessionSuperseded
	}

	if sumErr != nil {
		m.state = StateFailed
		m.lastError = sumErr.Error()
		m.logger.Error().Err(sumErr).Msg("Comparison session failed during summarization")
		return m.snapshotLocked(), sumErr
	}

	m.summary = summary
	m.duration = time.Since(start)
	m.state = StateComplete

	m.recordHistoryLocked()

	m.logger.Info().
		Int("additions", result.Additions).
		Int("deletions", result.Deletions).
		Dur("duration", m.duration).
		Msg("Comparison session complete")
	return m.snapshotLocked(), nil
}

// obtainSummary performs the single asynchronous step of a session. When the
// diff has no additions and no deletions the network call is skipped
// entirely and the fixed identical-documents message is used.
func (m *Manager) obtainSummary(ctx context.Context, description string, result models.ComparisonResult) (string, error) {
	if result.Additions == 0 && result.Deletions == 0 {
		return summarizer.IdenticalDocumentsSummary, nil
	}

	return m.summarizer.Summarize(ctx, summarizer.SummarizeRequest{
		ChangeDescription: description,
		Additions:         result.Additions,
		Deletions:         result.Deletions,
	})
}

// recordHistoryLocked writes the completed session to the history store.
// The example pair is never recorded; a persistence error degrades the
// session to history-less but does not fail it.
func (m *Manager) recordHistoryLocked() {
	if isExamplePair(m.docA, m.docB) {
		m.logger.Debug().Msg("Example comparison, not recording history entry")
		return
	}

	entry := models.HistoryEntry{
		ID:        uuid.NewString(),
		Title:     datastore.DeriveTitle(m.labelA, m.labelB, m.docA, m.docB),
		CreatedAt: time.Now().UTC(),
		DocumentA: m.docA,
		DocumentB: m.docB,
		LabelA:    m.labelA,
		LabelB:    m.labelB,
		Summary:   m.summary,
		Result:    *m.result,
	}

	if err := m.store.Record(entry); err != nil {
		m.logger.Error().Err(err).Msg("Failed to record history entry, session result kept in memory only")
	}
}

// LoadHistoryEntry replays a stored comparison into the active session
// without re-running the diff engine; statistics are re-derived from the
// stored chunks.
func (m *Manager) LoadHistoryEntry(id string) (Snapshot, error) {
	entry, err := m.store.Load(id)
	if err != nil {
		return Snapshot{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.resetLocked()
	m.docA, m.docB = entry.DocumentA, entry.DocumentB
	m.labelA, m.labelB = entry.LabelA, entry.LabelB
	result := entry.Result
	m.result = &result
	m.stats = differ.ComputeStats(result.Chunks)
	m.summary = entry.Summary
	m.state = StateComplete
	return m.snapshotLocked(), nil
}

// DeleteHistoryEntry removes a stored comparison; unknown ids are a no-op.
func (m *Manager) DeleteHistoryEntry(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Remove(id)
}

// History returns the stored entries, most recent first.
func (m *Manager) History() []models.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.List()
}

// ClearHistory removes every stored entry.
func (m *Manager) ClearHistory() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Clear()
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) resetLocked() {
	m.state = StateIdle
	m.docA, m.docB = "", ""
	m.labelA, m.labelB = "", ""
	m.result = nil
	m.stats = differ.Stats{}
	m.summary = ""
	m.duration = 0
	m.lastError = ""
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:     m.state.String(),
		DocumentA: m.docA,
		DocumentB: m.docB,
		LabelA:    m.labelA,
		LabelB:    m.labelB,
		Summary:   m.summary,
		Duration:  m.duration.Seconds(),
		Error:     m.lastError,
	}
	if m.result != nil {
		result := *m.result
		snap.Result = &result
		stats := m.stats
		snap.Stats = &stats
	}
	return snap
}
