// Package queries defines the read side of the application. Queries read
// committed state directly from the repositories and filter the result
// through the access control engine for the requesting actor.
package queries

import (
	"retro-backend/pkg/utils"
)

// GetSessionQuery fetches session metadata and the participant roster.
type GetSessionQuery struct {
	SessionID string `validate:"required,uuid"`
	ActorID   string `validate:"required,uuid"`
}

// Validate validates the query
func (q GetSessionQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ListNotesQuery fetches the notes of a session visible to the actor.
type ListNotesQuery struct {
	SessionID string `validate:"required,uuid"`
	ActorID   string `validate:"required,uuid"`
}

// Validate validates the query
func (q ListNotesQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetNoteQuery fetches a single note if it is visible to the actor.
type GetNoteQuery struct {
	SessionID string `validate:"required,uuid"`
	NoteID    string `validate:"required,uuid"`
	ActorID   string `validate:"required,uuid"`
}

// Validate validates the query
func (q GetNoteQuery) Validate() error {
	return utils.ValidateStruct(q)
}
