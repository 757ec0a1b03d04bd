package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// AnalysisID identifies one analysis unit (one factor/metric pipeline).
	AnalysisID ID
	// RunID identifies a full batch run across all analysis units.
	RunID ID
	// GroupName names one sample group (a parameter configuration or a factor level).
	GroupName ID
)

// String conversions for domain IDs
func (id AnalysisID) String() string { return ID(id).String() }
func (id RunID) String() string      { return ID(id).String() }
func (g GroupName) String() string   { return ID(g).String() }

// ParseAnalysisID parses a string into AnalysisID
func ParseAnalysisID(s string) (AnalysisID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("analysis ID cannot be empty")
	}
	return AnalysisID(s), nil
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseGroupName parses a string into GroupName
func ParseGroupName(s string) (GroupName, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("group name cannot be empty")
	}
	return GroupName(s), nil
}
