package ir

import "math"

// Note is a timed musical element.
type Note struct {
	ID         ID         `json:"id"`
	Ticks      Ticks      `json:"ticks"`
	Duration   Ticks      `json:"duration"`
	Velocity   Velocity   `json:"velocity"`
	NoteNumber NoteNumber `json:"note_number"`
	TrackID    ID         `json:"track_id,omitempty"`
}

// EntityID returns the note's identifier.
func (n Note) EntityID() ID {
	return n.ID
}

// TrackOf returns the track the note belongs to, empty if none.
func (n Note) TrackOf() ID {
	return n.TrackID
}

// WithID returns a copy of the note carrying id.
func (n Note) WithID(id ID) Note {
	n.ID = id
	return n
}

// End returns the tick at which the note stops sounding, saturating at the
// largest representable tick.
func (n Note) End() Ticks {
	end := uint64(n.Ticks) + uint64(n.Duration)
	if end > math.MaxUint32 {
		return math.MaxUint32
	}
	return Ticks(end)
}

// ToMap returns the note as a map keyed by JSON field names.
// Used for canonical trace output.
func (n Note) ToMap() map[string]any {
	m := map[string]any{
		"id":          string(n.ID),
		"ticks":       int64(n.Ticks),
		"duration":    int64(n.Duration),
		"velocity":    int64(n.Velocity),
		"note_number": int64(n.NoteNumber),
	}
	if n.TrackID != "" {
		m["track_id"] = string(n.TrackID)
	}
	return m
}

// NoteInput is the caller-supplied payload for a new Note.
type NoteInput struct {
	Ticks      Ticks      `json:"ticks" yaml:"ticks"`
	Duration   Ticks      `json:"duration" yaml:"duration"`
	Velocity   Velocity   `json:"velocity" yaml:"velocity"`
	NoteNumber NoteNumber `json:"note_number" yaml:"note_number"`
	TrackID    ID         `json:"track_id,omitempty" yaml:"track_id,omitempty"`
}

// Build combines the input with an identifier into a full Note.
func (in NoteInput) Build(id ID) Note {
	return Note{
		ID:         id,
		Ticks:      in.Ticks,
		Duration:   in.Duration,
		Velocity:   in.Velocity,
		NoteNumber: in.NoteNumber,
		TrackID:    in.TrackID,
	}
}

// NoteUpdater is a partial Note. Nil fields leave the stored value unchanged.
type NoteUpdater struct {
	Ticks      *Ticks      `json:"ticks,omitempty" yaml:"ticks,omitempty"`
	Duration   *Ticks      `json:"duration,omitempty" yaml:"duration,omitempty"`
	Velocity   *Velocity   `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	NoteNumber *NoteNumber `json:"note_number,omitempty" yaml:"note_number,omitempty"`
	TrackID    *ID         `json:"track_id,omitempty" yaml:"track_id,omitempty"`
}

// Apply merges the updater onto n field by field and returns the result.
// The identifier is never touched.
func (u NoteUpdater) Apply(n Note) Note {
	return Note{
		ID:         n.ID,
		Ticks:      pick(u.Ticks, n.Ticks),
		Duration:   pick(u.Duration, n.Duration),
		Velocity:   pick(u.Velocity, n.Velocity),
		NoteNumber: pick(u.NoteNumber, n.NoteNumber),
		TrackID:    pick(u.TrackID, n.TrackID),
	}
}

// IsEmpty reports whether no field is set.
func (u NoteUpdater) IsEmpty() bool {
	return u.Ticks == nil && u.Duration == nil && u.Velocity == nil &&
		u.NoteNumber == nil && u.TrackID == nil
}
