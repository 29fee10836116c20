// Package linker merges imported specification items into a coverage graph:
// it resolves every covers reference into a classified edge, discovers
// incoming coverage, and derives per-item coverage status and defect flags.
package linker

import "github.com/reqtrace/reqtrace/internal/model"

// Linker resolves relationships across a complete item set. It must only
// run once all imports have finished; classification depends on the entire
// merged set.
type Linker struct{}

// New constructs a Linker.
func New() *Linker {
	return &Linker{}
}

// Link produces one LinkedItem per input item, preserving input order.
// Findings (duplicates, broken references, missing coverage) are recorded
// on the items, never returned as errors.
func (l *Linker) Link(items []model.Item) []model.LinkedItem {
	byID := make(map[model.ItemID]model.Item, len(items))
	counts := make(map[model.ItemID]int, len(items))
	// First-occurrence order keeps revision searches deterministic.
	var order []model.ItemID
	for _, item := range items {
		counts[item.ID]++
		if counts[item.ID] == 1 {
			byID[item.ID] = item
			order = append(order, item.ID)
		}
	}

	linked := make([]model.LinkedItem, 0, len(items))
	for _, item := range items {
		li := model.NewLinkedItem(item)
		if counts[item.ID] > 1 {
			// Every item sharing the ID gets a self-referential
			// duplicate edge and the defect flag.
			li.IsDefect = true
			li.AddOutgoing(item.ID, model.LinkDuplicate)
		}
		linked = append(linked, *li)
	}

	l.resolveOutgoing(linked, byID, order)
	l.resolveIncoming(linked, items)
	l.analyzeCoverage(linked)
	return linked
}

// resolveOutgoing classifies one edge per covers entry.
func (l *Linker) resolveOutgoing(linked []model.LinkedItem, byID map[model.ItemID]model.Item, order []model.ItemID) {
	for i := range linked {
		for _, target := range linked[i].Item.Covers {
			linked[i].AddOutgoing(target, classify(target, byID, order))
		}
	}
}

// classify determines the status of an edge pointing at target.
func classify(target model.ItemID, byID map[model.ItemID]model.Item, order []model.ItemID) model.LinkStatus {
	if covered, ok := byID[target]; ok {
		if covered.IsTerminating() {
			return model.LinkUnwanted
		}
		return model.LinkCovers
	}

	// No exact match: look for items sharing artifact type and name with
	// a different revision.
	var matches []model.ItemID
	for _, id := range order {
		if id.SameArtifact(target) {
			matches = append(matches, id)
		}
	}
	switch {
	case len(matches) == 0:
		return model.LinkOrphaned
	case len(matches) > 1:
		return model.LinkAmbiguous
	case matches[0].Revision > target.Revision:
		return model.LinkOutdated
	default:
		return model.LinkPredated
	}
}

// resolveIncoming records an incoming edge on every item named in another
// item's covers list.
func (l *Linker) resolveIncoming(linked []model.LinkedItem, items []model.Item) {
	for i := range linked {
		id := linked[i].Item.ID
		for _, other := range items {
			for _, target := range other.Covers {
				if target == id {
					linked[i].AddIncoming(other.ID, classifyIncoming(id, other.ID))
					break
				}
			}
		}
	}
}

// classifyIncoming is the extension point for revision-aware incoming
// classification. The current policy grades every incoming edge uniformly.
func classifyIncoming(_, _ model.ItemID) model.LinkStatus {
	return model.LinkCoveredShallow
}

// analyzeCoverage computes each item's coverage status and defect flag.
// Coverage is a pure function of the item's needs versus the needs
// actually satisfied by valid incoming coverage.
func (l *Linker) analyzeCoverage(linked []model.LinkedItem) {
	for i := range linked {
		li := &linked[i]
		if li.Item.IsTerminating() {
			// Terminating items are always covered; broken outgoing
			// links can still flag them below.
			li.Coverage = model.CoverageCovered
		} else {
			satisfied := 0
			for _, needed := range li.Item.Needs {
				if typeSatisfied(li.Item.ID, needed, linked) {
					satisfied++
				}
			}
			switch satisfied {
			case len(li.Item.Needs):
				li.Coverage = model.CoverageCovered
			case 0:
				li.Coverage = model.CoverageUncovered
			default:
				li.Coverage = model.CoveragePartial
			}
		}

		if !li.IsCovered() || hasBrokenLink(li.Outgoing) {
			li.IsDefect = true
		}
	}
}

// TypeSatisfied reports whether some item of the needed artifact type
// covers id through a resolved Covers edge. Exported for the analyzer,
// which uses the same rule to narrate unmet needs.
func TypeSatisfied(id model.ItemID, artifactType string, linked []model.LinkedItem) bool {
	return typeSatisfied(id, artifactType, linked)
}

func typeSatisfied(id model.ItemID, artifactType string, linked []model.LinkedItem) bool {
	for i := range linked {
		other := &linked[i]
		if other.Item.ID.Type != artifactType {
			continue
		}
		for _, link := range other.Outgoing {
			if link.Target == id && link.Status == model.LinkCovers {
				return true
			}
		}
	}
	return false
}

func hasBrokenLink(links []model.Link) bool {
	for _, link := range links {
		if link.Status.IsBroken() {
			return true
		}
	}
	return false
}
