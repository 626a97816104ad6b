package compression

import "strconv"

// TruncationReason indicates why a selection dropped or cut content
type TruncationReason string

const (
	// TruncMaxTokens indicates files were skipped because they did not fit the token budget
	TruncMaxTokens TruncationReason = "max-tokens"

	// TruncMaxFiles indicates the file ceiling was reached
	TruncMaxFiles TruncationReason = "max-files"

	// TruncFileContent indicates a single file was cut to fit
	TruncFileContent TruncationReason = "file-content"

	// TruncNone indicates no truncation occurred
	TruncNone TruncationReason = ""
)

// TruncationInfo tracks information about content left out of a selection
type TruncationInfo struct {
	// Reason is the first limit that was hit
	Reason TruncationReason `json:"reason"`

	// OriginalCount is the number of eligible candidates
	OriginalCount int `json:"originalCount"`

	// ReturnedCount is the number of files actually returned
	ReturnedCount int `json:"returnedCount"`

	// DroppedCount is the number of candidates that were left out
	DroppedCount int `json:"droppedCount"`

	// ContentTruncated reports whether a returned file was cut
	ContentTruncated bool `json:"contentTruncated,omitempty"`
}

// NewTruncationInfo creates a new TruncationInfo with calculated dropped count
func NewTruncationInfo(reason TruncationReason, original, returned int) *TruncationInfo {
	dropped := original - returned
	if dropped < 0 {
		dropped = 0
	}
	return &TruncationInfo{
		Reason:        reason,
		OriginalCount: original,
		ReturnedCount: returned,
		DroppedCount:  dropped,
	}
}

// WasTruncated returns true if any candidate was dropped or cut
func (t *TruncationInfo) WasTruncated() bool {
	return t != nil && (t.DroppedCount > 0 || t.ContentTruncated)
}

// String returns a human-readable description of the truncation
func (t *TruncationInfo) String() string {
	if !t.WasTruncated() {
		return "no truncation"
	}
	s := string(t.Reason) + ": dropped " + strconv.Itoa(t.DroppedCount) + " of " + strconv.Itoa(t.OriginalCount) + " candidates"
	if t.ContentTruncated {
		s += " (content truncated)"
	}
	return s
}
