package trace

import (
	"fmt"
	"sort"

	"github.com/reqtrace/reqtrace/internal/model"
)

// Result is the complete output contract of a tracing run; report
// renderers depend on nothing else.
type Result struct {
	// Items holds every linked item, in import order.
	Items []model.LinkedItem `json:"items"`
	// TotalItems is the number of items processed.
	TotalItems int `json:"total_items"`
	// DefectCount is the number of defective items.
	DefectCount int `json:"defect_count"`
	// Defects lists one finding per defective item, in item order.
	Defects []model.Defect `json:"defects"`
	// CoverageSummary aggregates needs-based coverage per artifact type.
	CoverageSummary map[string]model.CoverageSummary `json:"coverage_summary"`
	// Success is true when no defects were found.
	Success bool `json:"is_success"`
}

// CoveragePercentage is the overall defect-based coverage measure:
// (total − defects) / total. It is deliberately independent of the
// per-artifact-type, needs-based percentages in CoverageSummary.
func (r *Result) CoveragePercentage() float64 {
	if r.TotalItems == 0 {
		return 100.0
	}
	return float64(r.TotalItems-r.DefectCount) / float64(r.TotalItems) * 100.0
}

// ItemsByType groups the linked items by artifact type.
func (r *Result) ItemsByType() map[string][]*model.LinkedItem {
	groups := make(map[string][]*model.LinkedItem)
	for i := range r.Items {
		item := &r.Items[i]
		groups[item.Item.ID.Type] = append(groups[item.Item.ID.Type], item)
	}
	return groups
}

// ArtifactTypes returns the artifact types present in the summary, sorted
// for stable presentation.
func (r *Result) ArtifactTypes() []string {
	types := make([]string, 0, len(r.CoverageSummary))
	for t := range r.CoverageSummary {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefectStatistics counts defects by type.
func (r *Result) DefectStatistics() map[model.DefectType]int {
	stats := make(map[model.DefectType]int)
	for _, d := range r.Defects {
		stats[d.Type]++
	}
	return stats
}

// DefectMessages renders a human-readable breakdown: how many items miss
// coverage of which type, plus counts of the structural defect classes.
// Computed from the linked items, not by re-parsing narratives.
func (r *Result) DefectMessages() []string {
	missingByType := make(map[string]int)
	for i := range r.Items {
		for _, needed := range missingCoverage(&r.Items[i], r.Items) {
			missingByType[needed]++
		}
	}

	var messages []string
	types := make([]string, 0, len(missingByType))
	for t := range missingByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		messages = append(messages, fmt.Sprintf("%d item(s) need coverage by %s", missingByType[t], t))
	}

	stats := r.DefectStatistics()
	if n := stats[model.DefectOrphaned]; n > 0 {
		messages = append(messages, fmt.Sprintf("%d item(s) have orphaned coverage", n))
	}
	if n := stats[model.DefectDuplicate]; n > 0 {
		messages = append(messages, fmt.Sprintf("%d duplicate item(s) found", n))
	}
	if n := stats[model.DefectWrongRevision]; n > 0 {
		messages = append(messages, fmt.Sprintf("%d item(s) cover wrong revision", n))
	}
	return messages
}

// DefectDescriptions returns every defect narrative, in item order.
func (r *Result) DefectDescriptions() []string {
	out := make([]string, len(r.Defects))
	for i, d := range r.Defects {
		out[i] = d.Description
	}
	return out
}

// String summarizes the result in one line.
func (r *Result) String() string {
	return fmt.Sprintf("%d items, %d defects, %.1f%% coverage",
		r.TotalItems, r.DefectCount, r.CoveragePercentage())
}
