package domain

import (
	"regexp"
	"strings"
)

// ClientStatus is the lifecycle state of a tenant.
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// IsValid reports whether s is a known client status.
func (s ClientStatus) IsValid() bool {
	return s == ClientStatusActive || s == ClientStatusInactive
}

// Client is a tenant: a reporting customer with its own BigQuery dataset and
// its own relational comments table.
type Client struct {
	ClientID          int64
	ClientName        string // Unique, looked up case-insensitively
	BigQueryDataset   string // Dataset holding the P&L view and the comment replica
	CommentsTableName string // Fixed at creation, see CommentsTableNameFor
	Status            ClientStatus
	Timestamps
}

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	nonIdentChars   = regexp.MustCompile(`[^a-z0-9_]`)
	commentsSuffix  = "_comments"
	maxPgIdentBytes = 63
)

// CommentsTableNameFor derives the relational comments table name for a client
// name: lower-cased, whitespace runs collapsed to "_", anything outside
// [a-z0-9_] dropped, suffixed with "_comments". The result is always a valid
// unquoted Postgres identifier.
func CommentsTableNameFor(clientName string) string {
	base := strings.ToLower(strings.TrimSpace(clientName))
	base = whitespaceRun.ReplaceAllString(base, "_")
	base = nonIdentChars.ReplaceAllString(base, "")
	if base == "" || (base[0] >= '0' && base[0] <= '9') {
		base = "client_" + base
	}
	if len(base)+len(commentsSuffix) > maxPgIdentBytes {
		base = base[:maxPgIdentBytes-len(commentsSuffix)]
	}
	return base + commentsSuffix
}

// CommentsTableNameWithSuffix inserts suffix before "_comments" in a derived
// table name, trimming the stem so the result stays within 63 bytes. Used when
// two client names normalize to the same table.
func CommentsTableNameWithSuffix(table, suffix string) string {
	stem := strings.TrimSuffix(table, commentsSuffix)
	tail := "_" + suffix + commentsSuffix
	if len(stem)+len(tail) > maxPgIdentBytes {
		stem = stem[:maxPgIdentBytes-len(tail)]
	}
	return stem + tail
}

// UserClientGrant links a user to a client they may read.
type UserClientGrant struct {
	UserID   string
	ClientID int64
}

// ClientUpdate carries the mutable fields of a client. Nil means "leave unchanged".
// The comments table name cannot be changed.
type ClientUpdate struct {
	ClientName      *string
	BigQueryDataset *string
	Status          *ClientStatus
}
