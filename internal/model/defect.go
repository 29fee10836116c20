package model

// DefectType categorizes a structural defect found during tracing.
type DefectType string

const (
	// DefectUncovered marks an item lacking required coverage.
	DefectUncovered DefectType = "uncovered"
	// DefectOrphaned marks an item covering a non-existing item.
	DefectOrphaned DefectType = "orphaned"
	// DefectDuplicate marks items sharing one ID.
	DefectDuplicate DefectType = "duplicate"
	// DefectWrongRevision marks coverage of a stale, premature, or
	// ambiguous revision.
	DefectWrongRevision DefectType = "wrong-revision"
)

// String returns the string representation of the defect type.
func (t DefectType) String() string {
	return string(t)
}

// Defect is one reportable finding. Defects are results, never errors: a
// run with defects still completes and produces its full report.
type Defect struct {
	Type        DefectType `json:"defect_type"`
	Description string     `json:"description"`
	ItemID      *ItemID    `json:"item_id,omitempty"`
}

// CoverageSummary aggregates coverage for one artifact type.
type CoverageSummary struct {
	Total      int            `json:"total"`
	Covered    int            `json:"covered"`
	Percentage float64        `json:"percentage"`
	Status     CoverageStatus `json:"status"`
}
