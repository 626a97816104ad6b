package scanner

import (
	"encoding/hex"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// snapshotNamespace scopes name-based snapshot IDs.
var snapshotNamespace = uuid.MustParse("6f1c2a53-5b0e-4d39-9a57-0c2f3f1e8b21")

// FileRecord is one file of a snapshot. Binary records carry no content.
type FileRecord struct {
	Path       string    `json:"path"`
	Content    string    `json:"-"`
	SizeBytes  int64     `json:"sizeBytes"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Extension  string    `json:"extension"`
	Binary     bool      `json:"binary,omitempty"`
}

// SkippedFile is a file left out of the snapshot, with the reason.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Snapshot is the ordered, immutable view of a repository that every
// analysis stage reads.
type Snapshot struct {
	Root        string        `json:"root"`
	Files       []FileRecord  `json:"files"`
	Skipped     []SkippedFile `json:"skipped,omitempty"`
	Fingerprint string        `json:"fingerprint"`
	ID          string        `json:"id"`

	byPath map[string]int
}

// NewSnapshot builds a snapshot from in-memory records, keeping their order.
// Paths are normalized to forward slashes and extensions are derived when empty.
func NewSnapshot(root string, files []FileRecord) *Snapshot {
	recs := make([]FileRecord, len(files))
	copy(recs, files)

	byPath := make(map[string]int, len(recs))
	for i := range recs {
		recs[i].Path = strings.TrimPrefix(strings.ReplaceAll(recs[i].Path, "\\", "/"), "./")
		if recs[i].Extension == "" {
			recs[i].Extension = strings.ToLower(path.Ext(recs[i].Path))
		}
		if recs[i].SizeBytes == 0 && recs[i].Content != "" {
			recs[i].SizeBytes = int64(len(recs[i].Content))
		}
		byPath[recs[i].Path] = i
	}

	fp := fingerprint(recs)
	return &Snapshot{
		Root:        root,
		Files:       recs,
		Fingerprint: fp,
		ID:          uuid.NewSHA1(snapshotNamespace, []byte(fp)).String(),
		byPath:      byPath,
	}
}

// fingerprint hashes paths and contents in snapshot order. Modification
// times are left out so identical trees hash identically.
func fingerprint(files []FileRecord) string {
	h, _ := blake2b.New256(nil)
	for _, f := range files {
		h.Write([]byte(f.Path))
		h.Write([]byte{0})
		if f.Binary {
			h.Write([]byte("binary:" + strconv.FormatInt(f.SizeBytes, 10)))
		} else {
			h.Write([]byte(f.Content))
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the record at path p.
func (s *Snapshot) Lookup(p string) (FileRecord, bool) {
	i, ok := s.byPath[p]
	if !ok {
		return FileRecord{}, false
	}
	return s.Files[i], true
}

// Has reports whether the snapshot contains p.
func (s *Snapshot) Has(p string) bool {
	_, ok := s.byPath[p]
	return ok
}

// IsEmpty reports whether the snapshot has no files.
func (s *Snapshot) IsEmpty() bool {
	return len(s.Files) == 0
}

// Sources returns the source-code records in snapshot order.
func (s *Snapshot) Sources() []FileRecord {
	return s.filter(FileRecord.IsSource)
}

// Documents returns the prose documents in snapshot order.
func (s *Snapshot) Documents() []FileRecord {
	return s.filter(FileRecord.IsDocument)
}

// HasCode reports whether any source file exists.
func (s *Snapshot) HasCode() bool {
	for _, f := range s.Files {
		if f.IsSource() {
			return true
		}
	}
	return false
}

// HasDocs reports whether any document file exists.
func (s *Snapshot) HasDocs() bool {
	for _, f := range s.Files {
		if f.IsDocument() {
			return true
		}
	}
	return false
}

// Newest returns the latest modification time across all files.
func (s *Snapshot) Newest() time.Time {
	var newest time.Time
	for _, f := range s.Files {
		if f.ModifiedAt.After(newest) {
			newest = f.ModifiedAt
		}
	}
	return newest
}

func (s *Snapshot) filter(keep func(FileRecord) bool) []FileRecord {
	var out []FileRecord
	for _, f := range s.Files {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
