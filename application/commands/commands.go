package commands

import (
	"retro-backend/pkg/utils"
)

// Commands carry pre-generated IDs where the caller needs them back; the
// HTTP layer generates the ID, sends the command, and returns the ID it
// already knows. SessionKey routes the command to its session's serialized
// queue.

// CreateSessionCommand opens a new session with its moderator
type CreateSessionCommand struct {
	SessionID            string `json:"session_id" validate:"required,uuid"`
	ModeratorID          string `json:"moderator_id" validate:"required,uuid"`
	ModeratorDisplayName string `json:"moderator_display_name" validate:"required,min=1,max=64"`
}

// Validate validates the command
func (c CreateSessionCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SessionKey returns the serialization key
func (c CreateSessionCommand) SessionKey() string {
	return c.SessionID
}

// JoinSessionCommand attaches a participant to an existing session. The
// session ID is resolved from the join code before the command is enqueued;
// the handler re-reads the session inside the queue.
type JoinSessionCommand struct {
	SessionID     string `json:"session_id" validate:"required,uuid"`
	JoinCode      string `json:"join_code" validate:"required"`
	ParticipantID string `json:"participant_id" validate:"required,uuid"`
	DisplayName   string `json:"display_name" validate:"required,min=1,max=64"`
}

// Validate validates the command
func (c JoinSessionCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SessionKey returns the serialization key
func (c JoinSessionCommand) SessionKey() string {
	return c.SessionID
}

// CreateNoteCommand creates a note owned by the acting participant
type CreateNoteCommand struct {
	SessionID string  `json:"session_id" validate:"required,uuid"`
	NoteID    string  `json:"note_id" validate:"required,uuid"`
	ActorID   string  `json:"actor_id" validate:"required,uuid"`
	Category  string  `json:"category" validate:"required,oneof=keep improve ideas stop"`
	Text      string  `json:"text" validate:"required"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	GroupID   string  `json:"group_id,omitempty" validate:"omitempty,max=64"`
}

// Validate validates the command
func (c CreateNoteCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SessionKey returns the serialization key
func (c CreateNoteCommand) SessionKey() string {
	return c.SessionID
}

// UpdateNoteCommand mutates any subset of a note's text, category,
// position, and group. Nil fields are left unchanged; a non-nil empty
// GroupID clears the group.
type UpdateNoteCommand struct {
	SessionID string   `json:"session_id" validate:"required,uuid"`
	NoteID    string   `json:"note_id" validate:"required,uuid"`
	ActorID   string   `json:"actor_id" validate:"required,uuid"`
	Text      *string  `json:"text,omitempty"`
	Category  *string  `json:"category,omitempty" validate:"omitempty,oneof=keep improve ideas stop"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	GroupID   *string  `json:"group_id,omitempty" validate:"omitempty,max=64"`
}

// Validate validates the command
func (c UpdateNoteCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SessionKey returns the serialization key
func (c UpdateNoteCommand) SessionKey() string {
	return c.SessionID
}

// DeleteNoteCommand removes a note from the board
type DeleteNoteCommand struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	NoteID    string `json:"note_id" validate:"required,uuid"`
	ActorID   string `json:"actor_id" validate:"required,uuid"`
}

// Validate validates the command
func (c DeleteNoteCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SessionKey returns the serialization key
func (c DeleteNoteCommand) SessionKey() string {
	return c.SessionID
}

// SetCompletedCommand toggles the acting participant's completion flag
type SetCompletedCommand struct {
	SessionID     string `json:"session_id" validate:"required,uuid"`
	ParticipantID string `json:"participant_id" validate:"required,uuid"`
	ActorID       string `json:"actor_id" validate:"required,uuid"`
	Completed     bool   `json:"completed"`
}

// Validate validates the command
func (c SetCompletedCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SessionKey returns the serialization key
func (c SetCompletedCommand) SessionKey() string {
	return c.SessionID
}

// AdvancePhaseCommand moves the session to the next lifecycle phase
type AdvancePhaseCommand struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	ActorID   string `json:"actor_id" validate:"required,uuid"`
}

// Validate validates the command
func (c AdvancePhaseCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SessionKey returns the serialization key
func (c AdvancePhaseCommand) SessionKey() string {
	return c.SessionID
}
