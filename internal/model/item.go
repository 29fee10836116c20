package model

import "strings"

// Status represents the review state of a specification item.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusProposed Status = "proposed"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusProposed, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ParseStatus maps text to a Status. Unrecognized values fall back to
// approved, matching the default for items that declare no status at all.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusDraft:
		return StatusDraft
	case StatusProposed:
		return StatusProposed
	case StatusRejected:
		return StatusRejected
	default:
		return StatusApproved
	}
}

// Item is a specification item: a requirement, design, implementation, or
// test declaration. Items are assembled through Builder and treated as
// immutable once built.
type Item struct {
	ID          ItemID    `json:"id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Rationale   string    `json:"rationale,omitempty"`
	Comment     string    `json:"comment,omitempty"`
	Status      Status    `json:"status"`
	Tags        []string  `json:"tags,omitempty"`
	Needs       []string  `json:"needs,omitempty"`
	Covers      []ItemID  `json:"covers,omitempty"`
	Depends     []ItemID  `json:"depends,omitempty"`
	Location    *Location `json:"location,omitempty"`
}

// TitleOrFallback returns the title, or a readable form of the item name
// when no title was declared.
func (it Item) TitleOrFallback() string {
	if it.Title != "" {
		return it.Title
	}
	r := strings.NewReplacer("-", " ", "_", " ")
	return r.Replace(it.ID.Name)
}

// IsTerminating reports whether the item declares no needed coverage.
// Terminating items are always considered covered.
func (it Item) IsTerminating() bool {
	return len(it.Needs) == 0
}

// Builder accumulates item attributes. Build finalizes the item; no
// half-built item is observable outside the builder.
type Builder struct {
	item Item
}

// NewItem starts a builder for the given ID with status approved.
func NewItem(id ItemID) *Builder {
	return &Builder{item: Item{ID: id, Status: StatusApproved}}
}

func (b *Builder) Title(title string) *Builder {
	b.item.Title = title
	return b
}

func (b *Builder) Description(description string) *Builder {
	b.item.Description = description
	return b
}

func (b *Builder) Rationale(rationale string) *Builder {
	b.item.Rationale = rationale
	return b
}

func (b *Builder) Comment(comment string) *Builder {
	b.item.Comment = comment
	return b
}

func (b *Builder) Status(status Status) *Builder {
	b.item.Status = status
	return b
}

func (b *Builder) Tag(tags ...string) *Builder {
	b.item.Tags = append(b.item.Tags, tags...)
	return b
}

func (b *Builder) Needs(artifactTypes ...string) *Builder {
	b.item.Needs = append(b.item.Needs, artifactTypes...)
	return b
}

func (b *Builder) Covers(ids ...ItemID) *Builder {
	b.item.Covers = append(b.item.Covers, ids...)
	return b
}

func (b *Builder) Depends(ids ...ItemID) *Builder {
	b.item.Depends = append(b.item.Depends, ids...)
	return b
}

func (b *Builder) Location(loc Location) *Builder {
	b.item.Location = &loc
	return b
}

// Build returns the finished item. The builder must not be reused.
func (b *Builder) Build() Item {
	return b.item
}
