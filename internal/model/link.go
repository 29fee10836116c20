package model

// LinkStatus classifies one directed coverage edge between items.
type LinkStatus string

const (
	// LinkCovers is a valid edge: the target exists and requests coverage.
	LinkCovers LinkStatus = "covers"
	// LinkPredated points at a newer revision than any that exists.
	LinkPredated LinkStatus = "predated"
	// LinkOutdated points at an older revision than the one that exists.
	LinkOutdated LinkStatus = "outdated"
	// LinkAmbiguous matches several items once the revision is ignored.
	LinkAmbiguous LinkStatus = "ambiguous"
	// LinkUnwanted covers a terminating item that requests no coverage.
	LinkUnwanted LinkStatus = "unwanted"
	// LinkOrphaned points at an item that does not exist at all.
	LinkOrphaned LinkStatus = "orphaned"
	// LinkDuplicate marks an item whose ID occurs more than once.
	LinkDuplicate LinkStatus = "duplicate"

	// Incoming-edge statuses. Only LinkCoveredShallow is produced today;
	// the revision-aware variants are reserved for classifyIncoming.
	LinkCoveredShallow  LinkStatus = "covered shallow"
	LinkCoveredUnwanted LinkStatus = "covered unwanted"
	LinkCoveredPredated LinkStatus = "covered predated"
	LinkCoveredOutdated LinkStatus = "covered outdated"
)

// String returns the string representation of the link status.
func (s LinkStatus) String() string {
	return string(s)
}

// IsBroken reports whether an outgoing edge with this status marks its
// owner as defective.
func (s LinkStatus) IsBroken() bool {
	switch s {
	case LinkOrphaned, LinkAmbiguous, LinkOutdated, LinkPredated, LinkDuplicate:
		return true
	}
	return false
}

// CoverageStatus summarizes how well an item's needed artifact types are
// satisfied by valid incoming coverage.
type CoverageStatus string

const (
	CoverageCovered   CoverageStatus = "covered"
	CoverageUncovered CoverageStatus = "uncovered"
	CoveragePartial   CoverageStatus = "partial"
)

// String returns the string representation of the coverage status.
func (s CoverageStatus) String() string {
	return string(s)
}

// Link is one directed coverage edge. Source is nil for edges whose origin
// is implicit (never the case for edges produced by the linker).
type Link struct {
	Source *ItemID    `json:"source_id,omitempty"`
	Target ItemID     `json:"target_id"`
	Status LinkStatus `json:"status"`
}

// LinkedItem is an item enriched with resolved edges and coverage analysis.
// Only the linker produces LinkedItems.
type LinkedItem struct {
	Item     Item           `json:"item"`
	Outgoing []Link         `json:"outgoing_links,omitempty"`
	Incoming []Link         `json:"incoming_links,omitempty"`
	Coverage CoverageStatus `json:"coverage_status"`
	IsDefect bool           `json:"is_defect"`
}

// NewLinkedItem wraps an item with no links and uncovered status.
func NewLinkedItem(item Item) *LinkedItem {
	return &LinkedItem{Item: item, Coverage: CoverageUncovered}
}

// ID returns the wrapped item's identifier.
func (li *LinkedItem) ID() ItemID {
	return li.Item.ID
}

// Title returns the wrapped item's title with fallback.
func (li *LinkedItem) Title() string {
	return li.Item.TitleOrFallback()
}

// IsCovered reports whether the item is fully covered.
func (li *LinkedItem) IsCovered() bool {
	return li.Coverage == CoverageCovered
}

// AddOutgoing records an edge from this item to target.
func (li *LinkedItem) AddOutgoing(target ItemID, status LinkStatus) {
	source := li.Item.ID
	li.Outgoing = append(li.Outgoing, Link{Source: &source, Target: target, Status: status})
}

// AddIncoming records an edge from source to this item.
func (li *LinkedItem) AddIncoming(source ItemID, status LinkStatus) {
	li.Incoming = append(li.Incoming, Link{Source: &source, Target: li.Item.ID, Status: status})
}
