package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"retro-backend/domain/authz"
	"retro-backend/domain/core/entities"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/domain/events"
	"retro-backend/infrastructure/persistence/memory"
	pkgerrors "retro-backend/pkg/errors"
)

type testWorld struct {
	sessions     *memory.SessionRepository
	participants *memory.ParticipantRepository
	notes        *memory.NoteRepository
	broadcaster  *Broadcaster
	session      *entities.Session
	moderator    authz.Actor
	robin        authz.Actor
}

func newTestWorld(t *testing.T, phase valueobjects.Phase, bufferSize int) *testWorld {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	w := &testWorld{
		sessions:     memory.NewSessionRepository(store),
		participants: memory.NewParticipantRepository(store),
		notes:        memory.NewNoteRepository(store),
	}
	w.broadcaster = NewBroadcaster(w.sessions, w.participants, w.notes, zap.NewNop(), nil, bufferSize)

	code, err := valueobjects.ParseJoinCode("ABCDEF")
	assert.NoError(t, err)
	session, err := entities.NewSession(valueobjects.NewSessionID(), code, valueobjects.NewParticipantID())
	assert.NoError(t, err)
	for session.Phase() != phase {
		_, err := session.AdvancePhase(session.ModeratorID())
		assert.NoError(t, err)
	}
	session.ClearEvents()
	assert.NoError(t, w.sessions.Save(ctx, session))
	w.session = session

	moderator, err := entities.NewParticipant(session.ModeratorID(), session.ID(), "Moderator", true)
	assert.NoError(t, err)
	assert.NoError(t, w.participants.Save(ctx, moderator))

	robin, err := entities.NewParticipant(valueobjects.NewParticipantID(), session.ID(), "Robin", false)
	assert.NoError(t, err)
	assert.NoError(t, w.participants.Save(ctx, robin))

	w.moderator = authz.Actor{ParticipantID: moderator.ID(), SessionID: session.ID(), IsModerator: true}
	w.robin = authz.Actor{ParticipantID: robin.ID(), SessionID: session.ID()}
	return w
}

func (w *testWorld) addNote(t *testing.T, owner authz.Actor, body string) *entities.Note {
	t.Helper()
	text, err := valueobjects.NewNoteText(body)
	assert.NoError(t, err)
	pos, err := valueobjects.NewPosition(0, 0)
	assert.NoError(t, err)
	note, err := entities.NewNote(valueobjects.NewNoteID(), w.session.ID(), owner.ParticipantID, "Owner", valueobjects.CategoryKeep, text, pos, "")
	assert.NoError(t, err)
	note.ClearEvents()
	assert.NoError(t, w.notes.Save(context.Background(), note))
	return note
}

func drain(sub *Subscription) []events.DomainEvent {
	var out []events.DomainEvent
	for {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestBroadcaster_Subscribe_SnapshotFiltersNotes(t *testing.T) {
	// Arrange
	ctx := context.Background()
	w := newTestWorld(t, valueobjects.PhasePrivate, 0)
	w.addNote(t, w.moderator, "moderator note")
	w.addNote(t, w.robin, "robin note")

	// Act
	snapshot, sub, err := w.broadcaster.Subscribe(ctx, w.robin)

	// Assert
	assert.NoError(t, err)
	defer w.broadcaster.Unsubscribe(w.session.ID(), sub)

	assert.Equal(t, valueobjects.PhasePrivate, snapshot.Phase)
	assert.Len(t, snapshot.Participants, 2, "roster is never filtered")
	assert.Len(t, snapshot.Notes, 1, "only own notes before the board opens")
	assert.Equal(t, "robin note", snapshot.Notes[0].Text.String())
}

func TestBroadcaster_Subscribe_OpenPhaseShowsEverything(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t, valueobjects.PhaseCollaborative, 0)
	w.addNote(t, w.moderator, "moderator note")
	w.addNote(t, w.robin, "robin note")

	snapshot, sub, err := w.broadcaster.Subscribe(ctx, w.robin)
	assert.NoError(t, err)
	defer w.broadcaster.Unsubscribe(w.session.ID(), sub)

	assert.Len(t, snapshot.Notes, 2)
}

func TestBroadcaster_Subscribe_DeniesOutsider(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t, valueobjects.PhasePrivate, 0)

	outsider := authz.Actor{ParticipantID: valueobjects.NewParticipantID(), SessionID: valueobjects.NewSessionID()}
	_, _, err := w.broadcaster.Subscribe(ctx, outsider)

	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}

func TestBroadcaster_Publish_FiltersNoteEventsByOwnership(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t, valueobjects.PhasePrivate, 0)

	_, modSub, err := w.broadcaster.Subscribe(ctx, w.moderator)
	assert.NoError(t, err)
	_, robinSub, err := w.broadcaster.Subscribe(ctx, w.robin)
	assert.NoError(t, err)

	note := w.addNote(t, w.robin, "private thought")
	assert.NoError(t, w.broadcaster.Publish(ctx, events.NewNoteCreated(note.Payload(), 1)))

	robinEvents := drain(robinSub)
	assert.Len(t, robinEvents, 1)
	assert.Equal(t, events.TypeNoteCreated, robinEvents[0].GetEventType())

	assert.Empty(t, drain(modSub), "another participant's private note is invisible")
}

func TestBroadcaster_Publish_RosterEventsReachEveryone(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t, valueobjects.PhasePrivate, 0)

	_, modSub, err := w.broadcaster.Subscribe(ctx, w.moderator)
	assert.NoError(t, err)
	_, robinSub, err := w.broadcaster.Subscribe(ctx, w.robin)
	assert.NoError(t, err)

	event := events.NewParticipantCompletionChanged(w.session.ID(), w.robin.ParticipantID, true, w.session.CreatedAt(), 2)
	assert.NoError(t, w.broadcaster.Publish(ctx, event))

	assert.Len(t, drain(modSub), 1)
	assert.Len(t, drain(robinSub), 1)
}

func TestBroadcaster_Publish_RevealOnPhaseOpen(t *testing.T) {
	// Arrange: private phase, Robin subscribed, moderator owns a hidden note.
	ctx := context.Background()
	w := newTestWorld(t, valueobjects.PhasePrivate, 0)
	hidden := w.addNote(t, w.moderator, "hidden until reveal")
	own := w.addNote(t, w.robin, "robins own")

	_, robinSub, err := w.broadcaster.Subscribe(ctx, w.robin)
	assert.NoError(t, err)

	// Act: the session moves to collaborative.
	session, err := w.sessions.GetByID(ctx, w.session.ID())
	assert.NoError(t, err)
	_, err = session.AdvancePhase(session.ModeratorID())
	assert.NoError(t, err)
	assert.NoError(t, w.sessions.Save(ctx, session))
	assert.NoError(t, w.broadcaster.PublishBatch(ctx, session.DomainEvents()))

	// Assert: phase change first, then a reveal for the note Robin could
	// not see. Robin's own note is not re-announced.
	received := drain(robinSub)
	assert.Len(t, received, 2)
	assert.Equal(t, events.TypePhaseChanged, received[0].GetEventType())

	revealed, ok := received[1].(events.NoteRevealed)
	assert.True(t, ok)
	assert.True(t, revealed.Note.ID.Equals(hidden.ID()))
	assert.False(t, revealed.Note.ID.Equals(own.ID()))
}

func TestBroadcaster_Publish_NoRevealOnCollaborativeToFinished(t *testing.T) {
	// Notes are already visible to all; finishing must not replay them.
	ctx := context.Background()
	w := newTestWorld(t, valueobjects.PhaseCollaborative, 0)
	w.addNote(t, w.moderator, "already visible")

	_, robinSub, err := w.broadcaster.Subscribe(ctx, w.robin)
	assert.NoError(t, err)

	session, err := w.sessions.GetByID(ctx, w.session.ID())
	assert.NoError(t, err)
	_, err = session.AdvancePhase(session.ModeratorID())
	assert.NoError(t, err)
	assert.NoError(t, w.sessions.Save(ctx, session))
	assert.NoError(t, w.broadcaster.PublishBatch(ctx, session.DomainEvents()))

	received := drain(robinSub)
	assert.Len(t, received, 1)
	assert.Equal(t, events.TypePhaseChanged, received[0].GetEventType())
}

func TestBroadcaster_Resubscribe_ReplacesPreviousStream(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t, valueobjects.PhasePrivate, 0)

	_, first, err := w.broadcaster.Subscribe(ctx, w.robin)
	assert.NoError(t, err)
	_, second, err := w.broadcaster.Subscribe(ctx, w.robin)
	assert.NoError(t, err)

	_, open := <-first.Events()
	assert.False(t, open, "first stream is closed on resubscribe")

	note := w.addNote(t, w.robin, "after resubscribe")
	assert.NoError(t, w.broadcaster.Publish(ctx, events.NewNoteCreated(note.Payload(), 1)))
	assert.Len(t, drain(second), 1)
}

func TestBroadcaster_SlowSubscriberIsEvicted(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t, valueobjects.PhasePrivate, 1)

	_, sub, err := w.broadcaster.Subscribe(ctx, w.robin)
	assert.NoError(t, err)

	note := w.addNote(t, w.robin, "note")
	// First fills the buffer, second forces the eviction.
	assert.NoError(t, w.broadcaster.Publish(ctx, events.NewNoteCreated(note.Payload(), 1)))
	assert.NoError(t, w.broadcaster.Publish(ctx, events.NewNoteUpdated(note.Payload(), 2)))

	received := drain(sub)
	assert.Len(t, received, 1, "buffered event is still readable, then the channel closes")
	_, open := <-sub.Events()
	assert.False(t, open)
}

func TestBroadcaster_Unsubscribe_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(t, valueobjects.PhasePrivate, 0)

	_, sub, err := w.broadcaster.Subscribe(ctx, w.robin)
	assert.NoError(t, err)

	w.broadcaster.Unsubscribe(w.session.ID(), sub)
	w.broadcaster.Unsubscribe(w.session.ID(), sub)
}
