package datastore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/aleister1102/docdiff/internal/common/errorwrapper"
	"github.com/aleister1102/docdiff/internal/config"
	"github.com/aleister1102/docdiff/internal/models"
)

const (
	historyKey    = "history"
	schemaVersion = 1
)

// historyEnvelope is the versioned on-disk shape of the whole history list.
type historyEnvelope struct {
	Version int                   `json:"version"`
	Entries []models.HistoryEntry `json:"entries"`
}

// HistoryStore keeps the ordered, most-recent-first list of past comparison
// sessions. The full list is serialized as one JSON blob under a well-known
// key and rewritten on every mutation (last-writer-wins, no partial-write
// recovery). The list is unbounded; growth is an accepted capacity risk.
type HistoryStore struct {
	db      *sql.DB
	logger  zerolog.Logger
	entries []models.HistoryEntry
}

// NewHistoryStore opens (or creates) the backing database, ensures the
// schema, and loads the persisted history once. A malformed stored blob is
// discarded with a warning; it never prevents the store from starting.
func NewHistoryStore(cfg *config.StorageConfig, logger zerolog.Logger) (*HistoryStore, error) {
	moduleLogger := logger.With().Str("module", "HistoryStore").Logger()

	dbDir := filepath.Dir(cfg.SQLiteDBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create history database directory "+dbDir)
	}

	db, err := sql.Open("sqlite", cfg.SQLiteDBPath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to open history database "+cfg.SQLiteDBPath)
	}

	store := &HistoryStore{
		db:     db,
		logger: moduleLogger,
	}

	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, errorwrapper.WrapError(err, "failed to initialize history schema")
	}

	store.loadPersisted()
	moduleLogger.Info().
		Str("db_path", cfg.SQLiteDBPath).
		Int("entries", len(store.entries)).
		Msg("History store initialized")
	return store, nil
}

// Close closes the database connection.
func (hs *HistoryStore) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

func (hs *HistoryStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS history_blob (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);
	`
	_, err := hs.db.Exec(query)
	return err
}

// loadPersisted reads the stored blob once at startup. Unreadable or
// unversioned history is dropped, leaving an empty store.
func (hs *HistoryStore) loadPersisted() {
	var value []byte
	err := hs.db.QueryRow(`SELECT value FROM history_blob WHERE key = ?`, historyKey).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			hs.logger.Warn().Err(err).Msg("Failed to read persisted history, starting empty")
		}
		return
	}

	var envelope historyEnvelope
	if err := json.Unmarshal(value, &envelope); err != nil {
		hs.logger.Warn().Err(err).Msg("Persisted history is malformed, discarding it")
		return
	}
	if envelope.Version != schemaVersion {
		hs.logger.Warn().
			Int("stored_version", envelope.Version).
			Int("expected_version", schemaVersion).
			Msg("Persisted history has an unsupported schema version, discarding it")
		return
	}

	hs.entries = envelope.Entries
}

// persist rewrites the whole list as one blob.
func (hs *HistoryStore) persist() error {
	envelope := historyEnvelope{
		Version: schemaVersion,
		Entries: hs.entries,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return errorwrapper.WrapError(errorwrapper.ErrPersistenceFailure, err.Error())
	}

	query := `INSERT INTO history_blob (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := hs.db.Exec(query, historyKey, value); err != nil {
		return errorwrapper.WrapError(errorwrapper.ErrPersistenceFailure, err.Error())
	}
	return nil
}

// Record prepends an entry (most-recent-first) and persists the list.
func (hs *HistoryStore) Record(entry models.HistoryEntry) error {
	hs.entries = append([]models.HistoryEntry{entry}, hs.entries...)
	if err := hs.persist(); err != nil {
		hs.logger.Error().Err(err).Str("entry_id", entry.ID).Msg("Failed to persist history after record")
		return err
	}

	hs.logger.Info().Str("entry_id", entry.ID).Str("title", entry.Title).Msg("Recorded comparison in history")
	return nil
}

// Remove deletes the entry with the given id. Removing an unknown id is a
// no-op and does not rewrite the stored list.
func (hs *HistoryStore) Remove(id string) error {
	index := hs.indexOf(id)
	if index < 0 {
		return nil
	}

	hs.entries = append(hs.entries[:index], hs.entries[index+1:]...)
	if err := hs.persist(); err != nil {
		hs.logger.Error().Err(err).Str("entry_id", id).Msg("Failed to persist history after remove")
		return err
	}
	return nil
}

// Load fetches an entry for replay into a new session.
func (hs *HistoryStore) Load(id string) (models.HistoryEntry, error) {
	index := hs.indexOf(id)
	if index < 0 {
		return models.HistoryEntry{}, errorwrapper.WrapError(errorwrapper.ErrNotFound, "history entry "+id)
	}
	return hs.entries[index], nil
}

// List returns a most-recent-first snapshot of all entries.
func (hs *HistoryStore) List() []models.HistoryEntry {
	snapshot := make([]models.HistoryEntry, len(hs.entries))
	copy(snapshot, hs.entries)
	return snapshot
}

// Clear removes all entries and persists the empty list.
func (hs *HistoryStore) Clear() error {
	hs.entries = nil
	return hs.persist()
}

func (hs *HistoryStore) indexOf(id string) int {
	for i, entry := range hs.entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}
