package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/docdiff/internal/common/errorwrapper"
	"github.com/aleister1102/docdiff/internal/config"
	"github.com/aleister1102/docdiff/internal/datastore"
	"github.com/aleister1102/docdiff/internal/differ"
	"github.com/aleister1102/docdiff/internal/summarizer"
)

type fakeSummarizer struct {
	fn    func(ctx context.Context, req summarizer.SummarizeRequest) (string, error)
	calls int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, req summarizer.SummarizeRequest) (string, error) {
	f.calls++
	if f.fn == nil {
		return "summary of changes", nil
	}
	return f.fn(ctx, req)
}

func newTestManager(t *testing.T, sum Summarizer) *Manager {
	t.Helper()

	store, err := datastore.NewHistoryStore(
		&config.StorageConfig{SQLiteDBPath: filepath.Join(t.TempDir(), "history.db")},
		zerolog.Nop(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewManager(zerolog.Nop(), sum, store)
}

func TestRunComparison_Complete(t *testing.T) {
	fake := &fakeSummarizer{}
	m := newTestManager(t, fake)

	snap, err := m.RunComparison(context.Background(), "a\nb\n", "a\nc\n", "left.txt", "right.txt")
	require.NoError(t, err)

	assert.Equal(t, "complete", snap.State)
	assert.Equal(t, "summary of changes", snap.Summary)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 1, snap.Result.Additions)
	assert.Equal(t, 1, snap.Result.Deletions)
	require.NotNil(t, snap.Stats)
	assert.Equal(t, 1, snap.Stats.AddedLines)
	assert.Equal(t, 1, fake.calls)

	history := m.History()
	require.Len(t, history, 1)
	assert.Equal(t, "left.txt vs right.txt", history[0].Title)
	assert.Equal(t, "summary of changes", history[0].Summary)
}

func TestRunComparison_SummarizerReceivesChangeDescription(t *testing.T) {
	var received summarizer.SummarizeRequest
	fake := &fakeSummarizer{fn: func(_ context.Context, req summarizer.SummarizeRequest) (string, error) {
		received = req
		return "ok", nil
	}}
	m := newTestManager(t, fake)

	_, err := m.RunComparison(context.Background(), "same\nold\n", "same\nnew\n", "", "")
	require.NoError(t, err)

	assert.Equal(t, "  same\n- old\n+ new\n", received.ChangeDescription)
	assert.Equal(t, 1, received.Additions)
	assert.Equal(t, 1, received.Deletions)
}

func TestRunComparison_InputMissing(t *testing.T) {
	fake := &fakeSummarizer{}
	m := newTestManager(t, fake)

	_, err := m.RunComparison(context.Background(), "", "content", "", "")
	assert.True(t, errors.Is(err, errorwrapper.ErrInputMissing))

	// The failed guard creates no partial session.
	assert.Equal(t, "idle", m.Snapshot().State)
	assert.Empty(t, m.History())
	assert.Equal(t, 0, fake.calls)
}

func TestRunComparison_IdenticalSkipsSummarizer(t *testing.T) {
	fake := &fakeSummarizer{fn: func(context.Context, summarizer.SummarizeRequest) (string, error) {
		t.Fatal("summarizer must not be called for identical documents")
		return "", nil
	}}
	m := newTestManager(t, fake)

	text := "same content\non every line\n"
	snap, err := m.RunComparison(context.Background(), text, text, "", "")
	require.NoError(t, err)

	assert.Equal(t, "complete", snap.State)
	assert.Equal(t, summarizer.IdenticalDocumentsSummary, snap.Summary)
	assert.Equal(t, 0, fake.calls)
}

func TestRunComparison_ExamplePairNotRecorded(t *testing.T) {
	m := newTestManager(t, &fakeSummarizer{})

	snap, err := m.RunComparison(context.Background(), ExampleDocumentA, ExampleDocumentB, ExampleLabelA, ExampleLabelB)
	require.NoError(t, err)
	assert.Equal(t, "complete", snap.State)
	assert.Empty(t, m.History())
}

func TestRunComparison_SummarizationFailureKeepsDiff(t *testing.T) {
	fake := &fakeSummarizer{fn: func(context.Context, summarizer.SummarizeRequest) (string, error) {
		return "", errorwrapper.WrapError(errorwrapper.ErrSummarizationFailure, "service down")
	}}
	m := newTestManager(t, fake)

	snap, err := m.RunComparison(context.Background(), "a\n", "b\n", "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorwrapper.ErrSummarizationFailure))

	// Diff and statistics stay displayable even though no summary exists.
	assert.Equal(t, "failed", snap.State)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 1, snap.Result.Additions)
	require.NotNil(t, snap.Stats)
	assert.Empty(t, snap.Summary)
	assert.Empty(t, m.History())
}

func TestRunComparison_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	fake := &fakeSummarizer{fn: func(context.Context, summarizer.SummarizeRequest) (string, error) {
		<-release
		return "late summary", nil
	}}
	m := newTestManager(t, fake)

	done := make(chan error, 1)
	go func() {
		_, err := m.RunComparison(context.Background(), "a\n", "b\n", "", "")
		done <- err
	}()

	// Wait for the session to reach the suspension point, then abandon it.
	require.Eventually(t, func() bool {
		return m.Snapshot().State == "summarizing"
	}, 2*time.Second, 10*time.Millisecond)
	m.NewSession()
	close(release)

	err := <-done
	assert.True(t, errors.Is(err, ErrSessionSuperseded))

	// The late response did not touch the newer session's state.
	snap := m.Snapshot()
	assert.Equal(t, "idle", snap.State)
	assert.Empty(t, snap.Summary)
	assert.Empty(t, m.History())
}

func TestLoadHistoryEntry_ReplaysWithoutDiffEngine(t *testing.T) {
	m := newTestManager(t, &fakeSummarizer{})

	first, err := m.RunComparison(context.Background(), "x\ny\n", "x\nz\n", "old.txt", "new.txt")
	require.NoError(t, err)

	history := m.History()
	require.Len(t, history, 1)

	m.NewSession()
	assert.Equal(t, "idle", m.Snapshot().State)

	replayed, err := m.LoadHistoryEntry(history[0].ID)
	require.NoError(t, err)

	assert.Equal(t, "complete", replayed.State)
	assert.Equal(t, first.Result, replayed.Result)
	assert.Equal(t, first.Stats, replayed.Stats)
	assert.Equal(t, first.Summary, replayed.Summary)
	assert.Equal(t, "x\ny\n", replayed.DocumentA)
}

func TestLoadHistoryEntry_Unknown(t *testing.T) {
	m := newTestManager(t, &fakeSummarizer{})

	_, err := m.LoadHistoryEntry("missing")
	assert.True(t, errors.Is(err, errorwrapper.ErrNotFound))
}

func TestDeleteHistoryEntry_UnknownIsNoOp(t *testing.T) {
	m := newTestManager(t, &fakeSummarizer{})

	_, err := m.RunComparison(context.Background(), "1\n", "2\n", "", "")
	require.NoError(t, err)
	require.Len(t, m.History(), 1)

	require.NoError(t, m.DeleteHistoryEntry("missing"))
	assert.Len(t, m.History(), 1)
}

func TestLoadExample(t *testing.T) {
	m := newTestManager(t, &fakeSummarizer{})

	snap := m.LoadExample()
	assert.Equal(t, "idle", snap.State)
	assert.Equal(t, ExampleDocumentA, snap.DocumentA)
	assert.Equal(t, ExampleLabelB, snap.LabelB)
	assert.Nil(t, snap.Result)
}

func TestStatsMatchStoredResultOnReplay(t *testing.T) {
	m := newTestManager(t, &fakeSummarizer{})

	_, err := m.RunComparison(context.Background(), "a\nb\nc\n", "a\nB\nc\n", "", "")
	require.NoError(t, err)

	history := m.History()
	require.Len(t, history, 1)

	// Statistics are a pure function of the stored chunks.
	replayed, err := m.LoadHistoryEntry(history[0].ID)
	require.NoError(t, err)
	assert.Equal(t, differ.ComputeStats(history[0].Result.Chunks), *replayed.Stats)
}
