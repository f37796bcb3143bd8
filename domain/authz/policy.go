// Package authz is the access control engine for the retro board.
//
// Visibility depends on the dynamic session phase, not on static ownership
// alone, so the rules live in pure decision functions evaluated on every
// read and write. The same functions filter persisted reads and the live
// event stream; results are never cached across a phase transition.
package authz

import (
	"retro-backend/domain/core/entities"
	"retro-backend/domain/core/valueobjects"
)

// Actor identifies an already-authenticated participant making a request.
// Identity is established externally; this package only authorizes.
type Actor struct {
	ParticipantID valueobjects.ParticipantID
	SessionID     valueobjects.SessionID
	IsModerator   bool
}

// CanReadSession reports whether the actor may read session metadata and
// the participant roster. Cross-session reads are always denied.
func CanReadSession(sessionID valueobjects.SessionID, actor Actor) bool {
	return actor.SessionID.Equals(sessionID)
}

// CanReadNote decides, per read, whether a note is visible to the actor.
// Until the board opens up (collaborative or finished phase) a note is
// visible only to its owner, the moderator included.
func CanReadNote(phase valueobjects.Phase, note *entities.Note, actor Actor) bool {
	if !actor.SessionID.Equals(note.SessionID()) {
		return false
	}
	if phase.NotesVisibleToAll() {
		return true
	}
	return note.OwnerID().Equals(actor.ParticipantID)
}

// CanReadNotePayload is CanReadNote for the denormalized note state carried
// on events, so the broadcaster can filter without loading entities.
func CanReadNotePayload(phase valueobjects.Phase, noteSession valueobjects.SessionID, noteOwner valueobjects.ParticipantID, actor Actor) bool {
	if !actor.SessionID.Equals(noteSession) {
		return false
	}
	if phase.NotesVisibleToAll() {
		return true
	}
	return noteOwner.Equals(actor.ParticipantID)
}

// CanCreateNote reports whether the actor may create a note owned by
// ownerID. A participant cannot create a note on another participant's
// behalf.
func CanCreateNote(ownerID valueobjects.ParticipantID, actor Actor) bool {
	return actor.ParticipantID.Equals(ownerID)
}

// CanWriteNote reports whether the actor may update or delete the note:
// its owner, or the session moderator acting on any note in the session.
func CanWriteNote(note *entities.Note, actor Actor) bool {
	if !actor.SessionID.Equals(note.SessionID()) {
		return false
	}
	if note.OwnerID().Equals(actor.ParticipantID) {
		return true
	}
	return actor.IsModerator
}

// CanAdvancePhase reports whether the actor may transition the session
// phase. Only the moderator may.
func CanAdvancePhase(session *entities.Session, actor Actor) bool {
	if !actor.SessionID.Equals(session.ID()) {
		return false
	}
	return session.ModeratorID().Equals(actor.ParticipantID)
}

// CanSetCompleted reports whether the actor may toggle the completion flag
// of participantID. Participants only toggle their own flag.
func CanSetCompleted(participantID valueobjects.ParticipantID, actor Actor) bool {
	return actor.ParticipantID.Equals(participantID)
}
