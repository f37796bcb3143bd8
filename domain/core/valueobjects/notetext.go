package valueobjects

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"retro-backend/domain/config"
	pkgerrors "retro-backend/pkg/errors"
)

// NoteText is a value object for a note's body text. It is always trimmed
// and never empty.
type NoteText struct {
	value string
}

// NewNoteText creates note text with validation using default configuration
func NewNoteText(s string) (NoteText, error) {
	return NewNoteTextWithConfig(s, config.DefaultDomainConfig())
}

// NewNoteTextWithConfig creates note text with validation and configuration
func NewNoteTextWithConfig(s string, cfg *config.DomainConfig) (NoteText, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return NoteText{}, pkgerrors.NewValidationError("note text cannot be empty")
	}
	if utf8.RuneCountInString(s) > cfg.MaxNoteTextLength {
		return NoteText{}, pkgerrors.NewValidationError(
			fmt.Sprintf("note text exceeds maximum length of %d characters", cfg.MaxNoteTextLength))
	}
	return NoteText{value: s}, nil
}

// String returns the text value
func (t NoteText) String() string {
	return t.value
}

// Equals checks if two note texts are equal
func (t NoteText) Equals(other NoteText) bool {
	return t.value == other.value
}

// MarshalJSON implements json.Marshaler
func (t NoteText) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (t *NoteText) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &t.value)
}
