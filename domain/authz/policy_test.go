package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"retro-backend/domain/core/entities"
	"retro-backend/domain/core/valueobjects"
)

type fixture struct {
	sessionID valueobjects.SessionID
	session   *entities.Session
	moderator Actor
	owner     Actor
	other     Actor
	outsider  Actor
	note      *entities.Note
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	sessionID := valueobjects.NewSessionID()
	moderatorID := valueobjects.NewParticipantID()
	ownerID := valueobjects.NewParticipantID()
	otherID := valueobjects.NewParticipantID()

	code, err := valueobjects.ParseJoinCode("ABCDEF")
	assert.NoError(t, err)
	session, err := entities.NewSession(sessionID, code, moderatorID)
	assert.NoError(t, err)

	text, err := valueobjects.NewNoteText("note body")
	assert.NoError(t, err)
	pos, err := valueobjects.NewPosition(0, 0)
	assert.NoError(t, err)
	note, err := entities.NewNote(valueobjects.NewNoteID(), sessionID, ownerID, "Owner", valueobjects.CategoryKeep, text, pos, "")
	assert.NoError(t, err)

	return fixture{
		sessionID: sessionID,
		session:   session,
		moderator: Actor{ParticipantID: moderatorID, SessionID: sessionID, IsModerator: true},
		owner:     Actor{ParticipantID: ownerID, SessionID: sessionID},
		other:     Actor{ParticipantID: otherID, SessionID: sessionID},
		outsider:  Actor{ParticipantID: otherID, SessionID: valueobjects.NewSessionID()},
		note:      note,
	}
}

func TestCanReadSession(t *testing.T) {
	f := newFixture(t)

	assert.True(t, CanReadSession(f.sessionID, f.moderator))
	assert.True(t, CanReadSession(f.sessionID, f.other))
	assert.False(t, CanReadSession(f.sessionID, f.outsider))
}

func TestCanReadNote_HiddenPhases(t *testing.T) {
	f := newFixture(t)

	for _, phase := range []valueobjects.Phase{valueobjects.PhaseWaiting, valueobjects.PhasePrivate} {
		assert.True(t, CanReadNote(phase, f.note, f.owner), "owner reads own note in %s", phase)
		assert.False(t, CanReadNote(phase, f.note, f.other), "peer cannot read in %s", phase)
		// Moderator status grants no read access before the board opens.
		assert.False(t, CanReadNote(phase, f.note, f.moderator), "moderator cannot read in %s", phase)
		assert.False(t, CanReadNote(phase, f.note, f.outsider))
	}
}

func TestCanReadNote_OpenPhases(t *testing.T) {
	f := newFixture(t)

	for _, phase := range []valueobjects.Phase{valueobjects.PhaseCollaborative, valueobjects.PhaseFinished} {
		assert.True(t, CanReadNote(phase, f.note, f.owner))
		assert.True(t, CanReadNote(phase, f.note, f.other))
		assert.True(t, CanReadNote(phase, f.note, f.moderator))
		assert.False(t, CanReadNote(phase, f.note, f.outsider), "cross-session reads stay denied in %s", phase)
	}
}

func TestCanReadNotePayload_MatchesCanReadNote(t *testing.T) {
	f := newFixture(t)

	for _, phase := range []valueobjects.Phase{
		valueobjects.PhaseWaiting,
		valueobjects.PhasePrivate,
		valueobjects.PhaseCollaborative,
		valueobjects.PhaseFinished,
	} {
		for _, actor := range []Actor{f.moderator, f.owner, f.other, f.outsider} {
			want := CanReadNote(phase, f.note, actor)
			got := CanReadNotePayload(phase, f.note.SessionID(), f.note.OwnerID(), actor)
			assert.Equal(t, want, got, "phase %s", phase)
		}
	}
}

func TestCanCreateNote(t *testing.T) {
	f := newFixture(t)

	assert.True(t, CanCreateNote(f.owner.ParticipantID, f.owner))
	assert.False(t, CanCreateNote(f.owner.ParticipantID, f.other))
	assert.False(t, CanCreateNote(f.owner.ParticipantID, f.moderator))
}

func TestCanWriteNote(t *testing.T) {
	f := newFixture(t)

	assert.True(t, CanWriteNote(f.note, f.owner))
	assert.True(t, CanWriteNote(f.note, f.moderator), "moderator may modify any note in the session")
	assert.False(t, CanWriteNote(f.note, f.other))

	crossModerator := Actor{ParticipantID: f.moderator.ParticipantID, SessionID: valueobjects.NewSessionID(), IsModerator: true}
	assert.False(t, CanWriteNote(f.note, crossModerator))
}

func TestCanAdvancePhase(t *testing.T) {
	f := newFixture(t)

	assert.True(t, CanAdvancePhase(f.session, f.moderator))
	assert.False(t, CanAdvancePhase(f.session, f.owner))
	assert.False(t, CanAdvancePhase(f.session, f.outsider))
}

func TestCanSetCompleted(t *testing.T) {
	f := newFixture(t)

	assert.True(t, CanSetCompleted(f.other.ParticipantID, f.other))
	assert.False(t, CanSetCompleted(f.other.ParticipantID, f.owner))
	assert.False(t, CanSetCompleted(f.other.ParticipantID, f.moderator), "moderator cannot complete on behalf of others")
}
