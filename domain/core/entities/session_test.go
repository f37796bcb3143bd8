package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"retro-backend/domain/core/valueobjects"
	"retro-backend/domain/events"
	pkgerrors "retro-backend/pkg/errors"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	code, err := valueobjects.ParseJoinCode("ABCDEF")
	assert.NoError(t, err)
	session, err := NewSession(valueobjects.NewSessionID(), code, valueobjects.NewParticipantID())
	assert.NoError(t, err)
	return session
}

func TestNewSession_StartsWaiting(t *testing.T) {
	session := newTestSession(t)

	assert.Equal(t, valueobjects.PhaseWaiting, session.Phase())
	assert.Equal(t, 1, session.Version())
	assert.Equal(t, session.CreatedAt(), session.PhaseChangedAt())

	evts := session.DomainEvents()
	assert.Len(t, evts, 1)
	assert.Equal(t, events.TypeSessionCreated, evts[0].GetEventType())
}

func TestNewSession_RejectsZeroValues(t *testing.T) {
	code, _ := valueobjects.ParseJoinCode("ABCDEF")

	_, err := NewSession(valueobjects.SessionID{}, code, valueobjects.NewParticipantID())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeValidation))

	_, err = NewSession(valueobjects.NewSessionID(), valueobjects.JoinCode{}, valueobjects.NewParticipantID())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeValidation))

	_, err = NewSession(valueobjects.NewSessionID(), code, valueobjects.ParticipantID{})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeValidation))
}

func TestSession_AdvancePhase_WalksFullLifecycle(t *testing.T) {
	session := newTestSession(t)
	session.ClearEvents()
	moderator := session.ModeratorID()

	expected := []valueobjects.Phase{
		valueobjects.PhasePrivate,
		valueobjects.PhaseCollaborative,
		valueobjects.PhaseFinished,
	}
	for i, want := range expected {
		phase, err := session.AdvancePhase(moderator)
		assert.NoError(t, err)
		assert.Equal(t, want, phase)
		assert.Equal(t, want, session.Phase())
		assert.Equal(t, 2+i, session.Version())
	}

	_, err := session.AdvancePhase(moderator)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInvalidTransition))
	assert.Equal(t, valueobjects.PhaseFinished, session.Phase())
}

func TestSession_AdvancePhase_RecordsEvent(t *testing.T) {
	session := newTestSession(t)
	session.ClearEvents()

	_, err := session.AdvancePhase(session.ModeratorID())
	assert.NoError(t, err)

	evts := session.DomainEvents()
	assert.Len(t, evts, 1)
	pc, ok := evts[0].(events.PhaseChanged)
	assert.True(t, ok)
	assert.Equal(t, valueobjects.PhaseWaiting, pc.OldPhase)
	assert.Equal(t, valueobjects.PhasePrivate, pc.NewPhase)
	assert.True(t, pc.ChangedBy.Equals(session.ModeratorID()))
}
