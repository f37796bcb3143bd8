package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"retro-backend/domain/core/entities"
	"retro-backend/domain/core/valueobjects"
	pkgerrors "retro-backend/pkg/errors"
)

func mustSession(t *testing.T, code string) *entities.Session {
	t.Helper()
	joinCode, err := valueobjects.ParseJoinCode(code)
	assert.NoError(t, err)
	session, err := entities.NewSession(valueobjects.NewSessionID(), joinCode, valueobjects.NewParticipantID())
	assert.NoError(t, err)
	return session
}

func TestSessionRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(NewStore())
	session := mustSession(t, "ABCDEF")

	assert.NoError(t, repo.Save(ctx, session))

	loaded, err := repo.GetByID(ctx, session.ID())
	assert.NoError(t, err)
	assert.True(t, loaded.ID().Equals(session.ID()))
	assert.Equal(t, session.Phase(), loaded.Phase())

	_, err = repo.GetByID(ctx, valueobjects.NewSessionID())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}

func TestSessionRepository_GetByJoinCode_SkipsFinished(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(NewStore())
	session := mustSession(t, "ABCDEF")
	assert.NoError(t, repo.Save(ctx, session))

	loaded, err := repo.GetByJoinCode(ctx, session.JoinCode())
	assert.NoError(t, err)
	assert.True(t, loaded.ID().Equals(session.ID()))

	// Walk the session to finished; its code must stop resolving.
	for !session.Phase().IsTerminal() {
		_, err := session.AdvancePhase(session.ModeratorID())
		assert.NoError(t, err)
	}
	assert.NoError(t, repo.Save(ctx, session))

	_, err = repo.GetByJoinCode(ctx, session.JoinCode())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}

func TestSessionRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(NewStore())
	session := mustSession(t, "ABCDEF")
	assert.NoError(t, repo.Save(ctx, session))

	loaded, err := repo.GetByID(ctx, session.ID())
	assert.NoError(t, err)
	_, err = loaded.AdvancePhase(loaded.ModeratorID())
	assert.NoError(t, err)

	// The mutation was never saved, so the store is unchanged.
	again, err := repo.GetByID(ctx, session.ID())
	assert.NoError(t, err)
	assert.Equal(t, valueobjects.PhaseWaiting, again.Phase())
}

func TestParticipantRepository_ListSortedByJoinTime(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewParticipantRepository(store)
	sessionID := valueobjects.NewSessionID()

	var ids []valueobjects.ParticipantID
	for _, name := range []string{"First", "Second", "Third"} {
		p, err := entities.NewParticipant(valueobjects.NewParticipantID(), sessionID, name, false)
		assert.NoError(t, err)
		assert.NoError(t, repo.Save(ctx, p))
		ids = append(ids, p.ID())
		time.Sleep(time.Millisecond)
	}

	roster, err := repo.ListBySession(ctx, sessionID)
	assert.NoError(t, err)
	assert.Len(t, roster, 3)
	for i, p := range roster {
		assert.True(t, p.ID().Equals(ids[i]), "roster is ordered by join time")
	}
}

func TestParticipantRepository_GetByID_ScopedToSession(t *testing.T) {
	ctx := context.Background()
	repo := NewParticipantRepository(NewStore())
	sessionID := valueobjects.NewSessionID()

	p, err := entities.NewParticipant(valueobjects.NewParticipantID(), sessionID, "Dana", false)
	assert.NoError(t, err)
	assert.NoError(t, repo.Save(ctx, p))

	_, err = repo.GetByID(ctx, sessionID, p.ID())
	assert.NoError(t, err)

	_, err = repo.GetByID(ctx, valueobjects.NewSessionID(), p.ID())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}

func TestNoteRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(NewStore())
	sessionID := valueobjects.NewSessionID()
	ownerID := valueobjects.NewParticipantID()

	text, err := valueobjects.NewNoteText("body")
	assert.NoError(t, err)
	pos, err := valueobjects.NewPosition(1, 2)
	assert.NoError(t, err)
	note, err := entities.NewNote(valueobjects.NewNoteID(), sessionID, ownerID, "Dana", valueobjects.CategoryKeep, text, pos, "")
	assert.NoError(t, err)

	assert.NoError(t, repo.Save(ctx, note))

	loaded, err := repo.GetByID(ctx, sessionID, note.ID())
	assert.NoError(t, err)
	assert.Equal(t, "body", loaded.Text().String())

	notes, err := repo.ListBySession(ctx, sessionID)
	assert.NoError(t, err)
	assert.Len(t, notes, 1)

	assert.NoError(t, repo.Delete(ctx, sessionID, note.ID()))

	_, err = repo.GetByID(ctx, sessionID, note.ID())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))

	err = repo.Delete(ctx, sessionID, note.ID())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}

func TestStore_Ping(t *testing.T) {
	store := NewStore()
	assert.NoError(t, store.Ping(context.Background()))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, store.Ping(cancelled))
}
