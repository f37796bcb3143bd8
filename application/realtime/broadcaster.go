// Package realtime fans committed domain events out to per-participant
// subscriptions, filtered through the access control engine so no
// subscriber ever observes a note it cannot read.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"retro-backend/application/ports"
	"retro-backend/domain/authz"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/domain/events"
	"retro-backend/pkg/errors"
	"retro-backend/pkg/observability"
)

const defaultSubscriberBuffer = 32

// Serializer runs fn on the session's serialized queue. The coordinator
// implements it; the broadcaster uses it so a snapshot and the subscription
// registration happen atomically with respect to in-flight commands.
type Serializer interface {
	Do(ctx context.Context, sessionKey string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error)
}

// ParticipantView is the roster entry carried on snapshots.
type ParticipantView struct {
	ID          valueobjects.ParticipantID `json:"id"`
	DisplayName string                     `json:"display_name"`
	IsModerator bool                       `json:"is_moderator"`
	IsCompleted bool                       `json:"is_completed"`
	JoinedAt    time.Time                  `json:"joined_at"`
}

// Snapshot is the consistent point-in-time view a subscriber receives
// before its event stream starts. Notes are already filtered for the
// subscriber.
type Snapshot struct {
	SessionID    valueobjects.SessionID `json:"session_id"`
	JoinCode     valueobjects.JoinCode  `json:"join_code"`
	Phase        valueobjects.Phase     `json:"phase"`
	Participants []ParticipantView      `json:"participants"`
	Notes        []events.NotePayload   `json:"notes"`
}

// Subscription is one participant's live event stream. The channel is
// closed when the subscriber is evicted or replaced; the consumer is
// expected to resubscribe and start from a fresh snapshot.
type Subscription struct {
	id    string
	actor authz.Actor
	ch    chan events.DomainEvent
}

// Events returns the receive side of the stream.
func (s *Subscription) Events() <-chan events.DomainEvent { return s.ch }

// Actor returns the subscriber's identity.
func (s *Subscription) Actor() authz.Actor { return s.actor }

type sessionHub struct {
	phase valueobjects.Phase
	subs  map[string]*Subscription // keyed by participant ID
}

// Broadcaster implements ports.EventBus for in-process delivery.
type Broadcaster struct {
	sessionRepo     ports.SessionRepository
	participantRepo ports.ParticipantRepository
	noteRepo        ports.NoteRepository
	logger          *zap.Logger
	metrics         *observability.Collector
	bufferSize      int

	serializer Serializer

	mu   sync.Mutex
	hubs map[string]*sessionHub
}

// NewBroadcaster creates a broadcaster. bufferSize bounds each
// subscription channel; zero selects the default. The metrics collector
// may be nil.
func NewBroadcaster(
	sessionRepo ports.SessionRepository,
	participantRepo ports.ParticipantRepository,
	noteRepo ports.NoteRepository,
	logger *zap.Logger,
	metrics *observability.Collector,
	bufferSize int,
) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = defaultSubscriberBuffer
	}
	return &Broadcaster{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		noteRepo:        noteRepo,
		logger:          logger,
		metrics:         metrics,
		bufferSize:      bufferSize,
		hubs:            make(map[string]*sessionHub),
	}
}

// Bind attaches the serializer after construction. The coordinator depends
// on the event bus, so the cycle is broken here during wiring.
func (b *Broadcaster) Bind(s Serializer) { b.serializer = s }

// Subscribe registers the actor for the session's event stream and returns
// the snapshot the stream continues from. A participant holds at most one
// subscription per session; subscribing again closes the previous one.
func (b *Broadcaster) Subscribe(ctx context.Context, actor authz.Actor) (*Snapshot, *Subscription, error) {
	fn := func(ctx context.Context) (interface{}, error) {
		return b.subscribeLocked(ctx, actor)
	}

	var result interface{}
	var err error
	if b.serializer != nil {
		result, err = b.serializer.Do(ctx, actor.SessionID.String(), fn)
	} else {
		result, err = fn(ctx)
	}
	if err != nil {
		return nil, nil, err
	}

	sr := result.(*subscribeResult)
	return sr.snapshot, sr.subscription, nil
}

type subscribeResult struct {
	snapshot     *Snapshot
	subscription *Subscription
}

func (b *Broadcaster) subscribeLocked(ctx context.Context, actor authz.Actor) (*subscribeResult, error) {
	session, err := b.sessionRepo.GetByID(ctx, actor.SessionID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadSession(session.ID(), actor) {
		return nil, errors.NewUnauthorizedError("participant does not belong to this session")
	}

	participants, err := b.participantRepo.ListBySession(ctx, session.ID())
	if err != nil {
		return nil, err
	}
	notes, err := b.noteRepo.ListBySession(ctx, session.ID())
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		SessionID:    session.ID(),
		JoinCode:     session.JoinCode(),
		Phase:        session.Phase(),
		Participants: make([]ParticipantView, 0, len(participants)),
		Notes:        make([]events.NotePayload, 0, len(notes)),
	}
	for _, p := range participants {
		snapshot.Participants = append(snapshot.Participants, ParticipantView{
			ID:          p.ID(),
			DisplayName: p.DisplayName(),
			IsModerator: p.IsModerator(),
			IsCompleted: p.IsCompleted(),
			JoinedAt:    p.JoinedAt(),
		})
	}
	for _, n := range notes {
		if authz.CanReadNote(session.Phase(), n, actor) {
			snapshot.Notes = append(snapshot.Notes, n.Payload())
		}
	}

	sub := &Subscription{
		id:    uuid.New().String(),
		actor: actor,
		ch:    make(chan events.DomainEvent, b.bufferSize),
	}

	b.mu.Lock()
	hub, ok := b.hubs[session.ID().String()]
	if !ok {
		hub = &sessionHub{subs: make(map[string]*Subscription)}
		b.hubs[session.ID().String()] = hub
	}
	hub.phase = session.Phase()
	if prev, ok := hub.subs[actor.ParticipantID.String()]; ok {
		close(prev.ch)
		if b.metrics != nil {
			b.metrics.SubscribersActive.Dec()
		}
	}
	hub.subs[actor.ParticipantID.String()] = sub
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.SubscribersActive.Inc()
	}
	return &subscribeResult{snapshot: snapshot, subscription: sub}, nil
}

// Unsubscribe removes the subscription and closes its channel. Calling it
// for an already replaced or evicted subscription is a no-op.
func (b *Broadcaster) Unsubscribe(sessionID valueobjects.SessionID, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	hub, ok := b.hubs[sessionID.String()]
	if !ok {
		return
	}
	current, ok := hub.subs[sub.actor.ParticipantID.String()]
	if !ok || current.id != sub.id {
		return
	}
	delete(hub.subs, sub.actor.ParticipantID.String())
	close(sub.ch)
	if len(hub.subs) == 0 {
		delete(b.hubs, sessionID.String())
	}
	if b.metrics != nil {
		b.metrics.SubscribersActive.Dec()
	}
}

// Publish fans one committed event out to the session's subscribers,
// applying per-subscriber visibility. It is called from the session's
// serialized queue, so events arrive here in commit order.
func (b *Broadcaster) Publish(ctx context.Context, event events.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	hub, ok := b.hubs[event.GetSessionID()]
	if !ok {
		return nil
	}

	pc, isPhaseChange := event.(events.PhaseChanged)

	var revealed []events.NotePayload
	if isPhaseChange && !pc.OldPhase.NotesVisibleToAll() && pc.NewPhase.NotesVisibleToAll() {
		sessionID, err := valueobjects.NewSessionIDFromString(event.GetSessionID())
		if err == nil {
			notes, err := b.noteRepo.ListBySession(ctx, sessionID)
			if err != nil {
				b.logger.Warn("could not load notes for reveal",
					zap.String("session_id", event.GetSessionID()),
					zap.Error(err))
			} else {
				revealed = make([]events.NotePayload, 0, len(notes))
				for _, n := range notes {
					revealed = append(revealed, n.Payload())
				}
			}
		}
	}

	for participantID, sub := range hub.subs {
		if !b.visibleTo(hub.phase, event, sub.actor) {
			continue
		}
		if !b.deliver(hub, participantID, sub, event) {
			continue
		}
		// A reveal means notes hidden from this subscriber under the old
		// phase are now visible. Each arrives as its own event, after the
		// phase change itself.
		for _, payload := range revealed {
			if authz.CanReadNotePayload(pc.OldPhase, payload.SessionID, payload.OwnerID, sub.actor) {
				continue
			}
			if !b.deliver(hub, participantID, sub, events.NewNoteRevealed(payload, pc.GetTimestamp())) {
				break
			}
		}
	}

	if isPhaseChange {
		hub.phase = pc.NewPhase
	}
	return nil
}

// PublishBatch publishes events in order.
func (b *Broadcaster) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	for _, event := range evts {
		if err := b.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// visibleTo filters an event against the subscriber under the phase in
// effect when the event was committed.
func (b *Broadcaster) visibleTo(phase valueobjects.Phase, event events.DomainEvent, actor authz.Actor) bool {
	switch e := event.(type) {
	case events.NoteCreated:
		return authz.CanReadNotePayload(phase, e.Note.SessionID, e.Note.OwnerID, actor)
	case events.NoteUpdated:
		return authz.CanReadNotePayload(phase, e.Note.SessionID, e.Note.OwnerID, actor)
	case events.NoteDeleted:
		noteSession, err := valueobjects.NewSessionIDFromString(e.GetSessionID())
		if err != nil {
			return false
		}
		return authz.CanReadNotePayload(phase, noteSession, e.OwnerID, actor)
	default:
		// Session and roster events are visible to every member.
		return true
	}
}

// deliver sends without blocking. A subscriber whose buffer is full is
// evicted: its channel is closed and the consumer must resubscribe, which
// yields a fresh snapshot instead of a gapped stream.
func (b *Broadcaster) deliver(hub *sessionHub, participantID string, sub *Subscription, event events.DomainEvent) bool {
	select {
	case sub.ch <- event:
		if b.metrics != nil {
			b.metrics.EventsBroadcast.Inc()
		}
		return true
	default:
		delete(hub.subs, participantID)
		close(sub.ch)
		b.logger.Warn("subscriber evicted, buffer full",
			zap.String("session_id", event.GetSessionID()),
			zap.String("participant_id", participantID))
		if b.metrics != nil {
			b.metrics.SubscribersActive.Dec()
			b.metrics.SubscribersEvicted.Inc()
		}
		return false
	}
}
