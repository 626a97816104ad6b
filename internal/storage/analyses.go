package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	rerrors "repolens/internal/errors"
)

// timeLayout sorts lexicographically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// CachedAnalysis is one stored analysis.
type CachedAnalysis struct {
	Fingerprint   string
	EngineVersion string
	SnapshotID    string
	Payload       []byte
	RawSize       int
	CreatedAt     time.Time
}

// AnalysisStore reads and writes compressed analysis payloads.
type AnalysisStore struct {
	db  *DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewAnalysisStore creates a store over db.
func NewAnalysisStore(db *DB) (*AnalysisStore, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, rerrors.New(rerrors.CacheFailure, "failed to create zstd encoder", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, rerrors.New(rerrors.CacheFailure, "failed to create zstd decoder", err)
	}
	return &AnalysisStore{db: db, enc: enc, dec: dec}, nil
}

// Close releases the codec resources. It does not close the database.
func (s *AnalysisStore) Close() error {
	s.dec.Close()
	return s.enc.Close()
}

// Get returns the decompressed payload stored for fingerprint under
// engineVersion. A miss is not an error.
func (s *AnalysisStore) Get(fingerprint, engineVersion string) ([]byte, bool, error) {
	var compressed []byte
	err := s.db.conn.QueryRow(`
		SELECT payload FROM analyses
		WHERE fingerprint = ? AND engine_version = ?
	`, fingerprint, engineVersion).Scan(&compressed)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, rerrors.New(rerrors.CacheFailure, "analysis cache lookup failed", err)
	}

	payload, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, rerrors.New(rerrors.CacheFailure,
			fmt.Sprintf("corrupt cache entry for %s", fingerprint), err)
	}
	return payload, true, nil
}

// Put stores payload, replacing any previous entry with the same key.
func (s *AnalysisStore) Put(fingerprint, engineVersion, snapshotID string, payload []byte) error {
	compressed := s.enc.EncodeAll(payload, make([]byte, 0, len(payload)/2))
	_, err := s.db.conn.Exec(`
		INSERT OR REPLACE INTO analyses (fingerprint, engine_version, snapshot_id, payload, raw_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, fingerprint, engineVersion, snapshotID, compressed, len(payload), time.Now().UTC().Format(timeLayout))
	if err != nil {
		return rerrors.New(rerrors.CacheFailure, "failed to store analysis", err)
	}
	return nil
}

// Delete removes every entry for fingerprint.
func (s *AnalysisStore) Delete(fingerprint string) error {
	if _, err := s.db.conn.Exec(`DELETE FROM analyses WHERE fingerprint = ?`, fingerprint); err != nil {
		return rerrors.New(rerrors.CacheFailure, "failed to delete analysis", err)
	}
	return nil
}

// Prune keeps the newest keep entries and deletes the rest. It returns the
// number of entries removed.
func (s *AnalysisStore) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	var removed int64
	err := s.db.WithTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			DELETE FROM analyses WHERE rowid NOT IN (
				SELECT rowid FROM analyses ORDER BY created_at DESC, rowid DESC LIMIT ?
			)
		`, keep)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, rerrors.New(rerrors.CacheFailure, "failed to prune analyses", err)
	}
	return int(removed), nil
}

// Count returns the number of stored entries.
func (s *AnalysisStore) Count() (int, error) {
	var n int
	if err := s.db.conn.QueryRow(`SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, rerrors.New(rerrors.CacheFailure, "failed to count analyses", err)
	}
	return n, nil
}

// List returns entry metadata, newest first. Payloads are left compressed.
func (s *AnalysisStore) List() ([]CachedAnalysis, error) {
	rows, err := s.db.conn.Query(`
		SELECT fingerprint, engine_version, snapshot_id, payload, raw_size, created_at
		FROM analyses ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, rerrors.New(rerrors.CacheFailure, "failed to list analyses", err)
	}
	defer rows.Close()

	var out []CachedAnalysis
	for rows.Next() {
		var (
			ca      CachedAnalysis
			created string
		)
		if err := rows.Scan(&ca.Fingerprint, &ca.EngineVersion, &ca.SnapshotID, &ca.Payload, &ca.RawSize, &created); err != nil {
			return nil, rerrors.New(rerrors.CacheFailure, "failed to scan analysis row", err)
		}
		ca.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, rerrors.New(rerrors.CacheFailure, "failed to list analyses", err)
	}
	return out, nil
}
