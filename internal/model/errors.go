package model

import "fmt"

// InvalidIDError reports a string that does not satisfy the item ID grammar.
type InvalidIDError struct {
	ID     string
	Reason string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid item ID %q: %s", e.ID, e.Reason)
}

// ParseError reports malformed input encountered while importing a file,
// carrying the "path:line" location of the offending text.
type ParseError struct {
	Message  string
	Location string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s at %s", e.Message, e.Location)
}
