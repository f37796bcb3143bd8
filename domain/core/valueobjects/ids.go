package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// SessionID is a value object representing a unique session identifier
// Value objects are immutable and have no identity beyond their value
type SessionID struct {
	value string
}

// NewSessionID creates a new random SessionID
func NewSessionID() SessionID {
	return SessionID{value: uuid.New().String()}
}

// NewSessionIDFromString creates a SessionID from an existing string
func NewSessionIDFromString(id string) (SessionID, error) {
	if id == "" {
		return SessionID{}, errors.New("session ID cannot be empty")
	}
	if !isValidUUID(id) {
		return SessionID{}, errors.New("session ID must be a valid UUID")
	}
	return SessionID{value: id}, nil
}

// String returns the string representation of the SessionID
func (id SessionID) String() string {
	return id.value
}

// Equals checks if two SessionIDs are equal
func (id SessionID) Equals(other SessionID) bool {
	return id.value == other.value
}

// IsZero checks if the SessionID is the zero value
func (id SessionID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id SessionID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *SessionID) UnmarshalJSON(data []byte) error {
	v, err := unquoteID(data, "SessionID")
	if err != nil {
		return err
	}
	id.value = v
	return nil
}

// ParticipantID is a value object for a participant identifier, scoped to
// one session
type ParticipantID struct {
	value string
}

// NewParticipantID creates a new random ParticipantID
func NewParticipantID() ParticipantID {
	return ParticipantID{value: uuid.New().String()}
}

// NewParticipantIDFromString creates a ParticipantID from an existing string
func NewParticipantIDFromString(id string) (ParticipantID, error) {
	if id == "" {
		return ParticipantID{}, errors.New("participant ID cannot be empty")
	}
	if !isValidUUID(id) {
		return ParticipantID{}, errors.New("participant ID must be a valid UUID")
	}
	return ParticipantID{value: id}, nil
}

// String returns the string representation of the ParticipantID
func (id ParticipantID) String() string {
	return id.value
}

// Equals checks if two ParticipantIDs are equal
func (id ParticipantID) Equals(other ParticipantID) bool {
	return id.value == other.value
}

// IsZero checks if the ParticipantID is the zero value
func (id ParticipantID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id ParticipantID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ParticipantID) UnmarshalJSON(data []byte) error {
	v, err := unquoteID(data, "ParticipantID")
	if err != nil {
		return err
	}
	id.value = v
	return nil
}

// NoteID is a value object for a note identifier, unique within a session
type NoteID struct {
	value string
}

// NewNoteID creates a new random NoteID
func NewNoteID() NoteID {
	return NoteID{value: uuid.New().String()}
}

// NewNoteIDFromString creates a NoteID from an existing string
func NewNoteIDFromString(id string) (NoteID, error) {
	if id == "" {
		return NoteID{}, errors.New("note ID cannot be empty")
	}
	if !isValidUUID(id) {
		return NoteID{}, errors.New("note ID must be a valid UUID")
	}
	return NoteID{value: id}, nil
}

// String returns the string representation of the NoteID
func (id NoteID) String() string {
	return id.value
}

// Equals checks if two NoteIDs are equal
func (id NoteID) Equals(other NoteID) bool {
	return id.value == other.value
}

// IsZero checks if the NoteID is the zero value
func (id NoteID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id NoteID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NoteID) UnmarshalJSON(data []byte) error {
	v, err := unquoteID(data, "NoteID")
	if err != nil {
		return err
	}
	id.value = v
	return nil
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func unquoteID(data []byte, kind string) (string, error) {
	if string(data) == "null" {
		return "", nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", errors.New(kind + " must be a string")
	}
	return string(data[1 : len(data)-1]), nil
}
