package trace

import (
	"fmt"
	"strings"

	"github.com/reqtrace/reqtrace/internal/linker"
	"github.com/reqtrace/reqtrace/internal/model"
)

// analyze derives per-artifact-type summaries and defect narratives from
// the linked item set.
func analyze(linked []model.LinkedItem) *Result {
	summary := make(map[string]model.CoverageSummary)
	for _, group := range groupByType(linked) {
		total := len(group)
		covered := 0
		for _, li := range group {
			if li.IsCovered() {
				covered++
			}
		}
		percentage := 100.0
		if total > 0 {
			percentage = float64(covered) / float64(total) * 100.0
		}
		status := model.CoverageUncovered
		switch {
		case covered == total:
			status = model.CoverageCovered
		case covered > 0:
			status = model.CoveragePartial
		}
		summary[group[0].Item.ID.Type] = model.CoverageSummary{
			Total:      total,
			Covered:    covered,
			Percentage: percentage,
			Status:     status,
		}
	}

	var defects []model.Defect
	for i := range linked {
		li := &linked[i]
		if !li.IsDefect {
			continue
		}
		id := li.Item.ID
		defects = append(defects, model.Defect{
			Type:        classifyDefect(li),
			Description: describeDefect(li, linked),
			ItemID:      &id,
		})
	}

	return &Result{
		Items:           linked,
		TotalItems:      len(linked),
		DefectCount:     len(defects),
		Defects:         defects,
		CoverageSummary: summary,
		Success:         len(defects) == 0,
	}
}

// groupByType partitions items by artifact type, preserving item order
// within each group and first-seen order across groups.
func groupByType(linked []model.LinkedItem) [][]*model.LinkedItem {
	index := make(map[string]int)
	var groups [][]*model.LinkedItem
	for i := range linked {
		t := linked[i].Item.ID.Type
		gi, ok := index[t]
		if !ok {
			gi = len(groups)
			index[t] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], &linked[i])
	}
	return groups
}

// classifyDefect picks the dominant defect class for statistics: duplicate
// identity first, then dangling references, then revision mismatches, and
// missing coverage otherwise.
func classifyDefect(li *model.LinkedItem) model.DefectType {
	var orphaned, wrongRev bool
	for _, link := range li.Outgoing {
		switch link.Status {
		case model.LinkDuplicate:
			return model.DefectDuplicate
		case model.LinkOrphaned:
			orphaned = true
		case model.LinkOutdated, model.LinkPredated, model.LinkAmbiguous:
			wrongRev = true
		}
	}
	switch {
	case orphaned:
		return model.DefectOrphaned
	case wrongRev:
		return model.DefectWrongRevision
	default:
		return model.DefectUncovered
	}
}

// describeDefect builds the narrative for one defective item: orphaned
// references first, then duplicate identity, then revision issues (one
// message per offending link, preserving link order), then a single
// clause naming unmet needed types in declaration order.
func describeDefect(li *model.LinkedItem, all []model.LinkedItem) string {
	var issues []string

	for _, link := range li.Outgoing {
		if link.Status == model.LinkOrphaned {
			issues = append(issues, fmt.Sprintf("covers non-existing item %s", link.Target))
		}
	}
	for _, link := range li.Outgoing {
		if link.Status == model.LinkDuplicate {
			issues = append(issues, fmt.Sprintf("has duplicate ID %s", li.Item.ID))
		}
	}
	for _, link := range li.Outgoing {
		switch link.Status {
		case model.LinkOutdated:
			issues = append(issues, fmt.Sprintf("covers outdated revision of %s", link.Target))
		case model.LinkPredated:
			issues = append(issues, fmt.Sprintf("covers newer revision of %s", link.Target))
		case model.LinkAmbiguous:
			issues = append(issues, fmt.Sprintf("has ambiguous reference to %s", link.Target))
		}
	}

	if !li.IsCovered() {
		if missing := missingCoverage(li, all); len(missing) > 0 {
			issues = append(issues, fmt.Sprintf("needs coverage by %s", strings.Join(missing, ", ")))
		}
	}

	switch len(issues) {
	case 0:
		return fmt.Sprintf("Item %s has unspecified defects", li.Item.ID)
	case 1:
		return fmt.Sprintf("Item %s %s", li.Item.ID, issues[0])
	default:
		return fmt.Sprintf("Item %s has multiple issues: %s", li.Item.ID, strings.Join(issues, "; "))
	}
}

// missingCoverage lists the needed artifact types not satisfied by a
// resolved Covers edge, in declaration order. Terminating items never
// miss coverage.
func missingCoverage(li *model.LinkedItem, all []model.LinkedItem) []string {
	var missing []string
	for _, needed := range li.Item.Needs {
		if !linker.TypeSatisfied(li.Item.ID, needed, all) {
			missing = append(missing, needed)
		}
	}
	return missing
}
