package ir

// ID identifies a stored Note or Event.
// IDs are UUID v4 strings assigned by the store; callers never choose them.
type ID string

// String returns the textual form of the identifier.
func (id ID) String() string {
	return string(id)
}

// Ticks is a position or length on the timeline in sequencer ticks.
type Ticks uint32

// Velocity is the strike strength of a note.
type Velocity uint8

// NoteNumber is the pitch-like payload of a note.
type NoteNumber uint8

// Ptr returns a pointer to v. Used to set fields on an updater:
//
//	ir.NoteUpdater{Duration: ir.Ptr(ir.Ticks(8))}
func Ptr[T any](v T) *T {
	return &v
}

// pick returns *patch when set, otherwise current.
func pick[T any](patch *T, current T) T {
	if patch != nil {
		return *patch
	}
	return current
}
