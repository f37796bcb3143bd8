package valueobjects

import "fmt"

// Phase represents the session-wide visibility and workflow stage.
//
// The lifecycle is strictly forward: waiting -> private -> collaborative ->
// finished. No phase is revisited once left and no phase is skipped.
type Phase string

const (
	PhaseWaiting       Phase = "waiting"
	PhasePrivate       Phase = "private"
	PhaseCollaborative Phase = "collaborative"
	PhaseFinished      Phase = "finished"
)

// ParsePhase validates and returns a Phase from its string form
func ParsePhase(s string) (Phase, error) {
	switch Phase(s) {
	case PhaseWaiting, PhasePrivate, PhaseCollaborative, PhaseFinished:
		return Phase(s), nil
	}
	return "", fmt.Errorf("invalid phase: %q", s)
}

// Next returns the phase following p in the lifecycle. The second return
// value is false when p is terminal.
func (p Phase) Next() (Phase, bool) {
	switch p {
	case PhaseWaiting:
		return PhasePrivate, true
	case PhasePrivate:
		return PhaseCollaborative, true
	case PhaseCollaborative:
		return PhaseFinished, true
	}
	return "", false
}

// IsTerminal reports whether p is the final lifecycle phase
func (p Phase) IsTerminal() bool {
	return p == PhaseFinished
}

// AllowsNoteCreation reports whether notes may be created while the session
// is in phase p
func (p Phase) AllowsNoteCreation() bool {
	return p == PhasePrivate || p == PhaseCollaborative
}

// NotesVisibleToAll reports whether every participant may read every note
// of the session in phase p. Outside these phases a note is visible only to
// its owner.
func (p Phase) NotesVisibleToAll() bool {
	return p == PhaseCollaborative || p == PhaseFinished
}

// String returns the string form of the phase
func (p Phase) String() string {
	return string(p)
}
