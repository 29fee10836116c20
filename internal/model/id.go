package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ItemID identifies a specification item by artifact type, name, and revision.
// The canonical text form is "type~name~revision", e.g. "req~user-login~1".
type ItemID struct {
	Type     string `json:"artifact_type" toml:"artifact_type"`
	Name     string `json:"name" toml:"name"`
	Revision int    `json:"revision" toml:"revision"`
}

// NewItemID constructs an ItemID from its three components.
func NewItemID(artifactType, name string, revision int) ItemID {
	return ItemID{Type: artifactType, Name: name, Revision: revision}
}

// ParseID parses the canonical "type~name~revision" form. It fails with an
// *InvalidIDError unless the input splits into exactly three "~"-separated
// segments with a non-negative integer revision.
func ParseID(s string) (ItemID, error) {
	parts := strings.Split(s, "~")
	if len(parts) != 3 {
		return ItemID{}, &InvalidIDError{
			ID:     s,
			Reason: "expected format 'type~name~revision'",
		}
	}
	revision, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return ItemID{}, &InvalidIDError{
			ID:     s,
			Reason: fmt.Sprintf("invalid revision number %q", parts[2]),
		}
	}
	return ItemID{Type: parts[0], Name: parts[1], Revision: int(revision)}, nil
}

// String returns the canonical "type~name~revision" form.
// ParseID(id.String()) round-trips exactly.
func (id ItemID) String() string {
	return id.Type + "~" + id.Name + "~" + strconv.Itoa(id.Revision)
}

// SameArtifact reports whether two IDs share artifact type and name,
// ignoring the revision.
func (id ItemID) SameArtifact(other ItemID) bool {
	return id.Type == other.Type && id.Name == other.Name
}

// Location is the source position where an item was declared.
type Location struct {
	Path string `json:"path"`
	Line int    `json:"line"`
}

// NewLocation constructs a Location from a file path and 1-based line number.
func NewLocation(path string, line int) Location {
	return Location{Path: path, Line: line}
}

// String returns the "path:line" form.
func (l Location) String() string {
	return l.Path + ":" + strconv.Itoa(l.Line)
}
