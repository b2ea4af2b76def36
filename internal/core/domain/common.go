package domain

import "time"

// Timestamps holds the standard creation/modification times for persisted entities.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences s, treating nil as the empty string.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
