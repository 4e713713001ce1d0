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
	// Falls back to v4 if v7 generation fails
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
	StartupID ID
	ClientID  ID
)

// String conversions for domain IDs
func (id StartupID) String() string { return ID(id).String() }
func (id ClientID) String() string  { return ID(id).String() }

// IsEmpty reports whether no client was identified
func (id ClientID) IsEmpty() bool { return strings.TrimSpace(string(id)) == "" }

// ParseStartupID parses a string into StartupID
func ParseStartupID(s string) (StartupID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("startup ID cannot be empty")
	}
	return StartupID(s), nil
}

// ParseClientID parses a string into ClientID
func ParseClientID(s string) (ClientID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("client ID cannot be empty")
	}
	return ClientID(strings.TrimSpace(s)), nil
}
