package types

import "github.com/google/uuid"

// RecordID is the unique identifier of a board record (shape, stroke or
// highlight). Agent-generated shape IDs arrive over the wire as-is.
type RecordID string

// NewRecordID issues a new time-ordered record ID.
func NewRecordID() RecordID {
	return RecordID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of the record ID
func (id RecordID) String() string {
	return string(id)
}

// SessionID identifies one chat session and its history.
type SessionID string

// NewSessionID issues a new time-ordered session ID.
func NewSessionID() SessionID {
	return SessionID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of the session ID
func (id SessionID) String() string {
	return string(id)
}
