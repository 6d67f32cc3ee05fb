package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/notestore/internal/ident"
	"github.com/roach88/notestore/internal/ir"
)

func ids[T interface{ EntityID() ir.ID }](items []T) []ir.ID {
	out := make([]ir.ID, len(items))
	for i, it := range items {
		out[i] = it.EntityID()
	}
	return out
}

// Five notes at 480, 240, 0, 960, 720 ticks, each 480 long.
func rangeFixture() *Store {
	s := New(WithGenerator(ident.NewFixedGenerator("n480", "n240", "n0", "n960", "n720")))
	for _, tick := range []ir.Ticks{480, 240, 0, 960, 720} {
		s.AddNote(ir.NoteInput{Ticks: tick, Duration: 480, Velocity: 100, NoteNumber: 60})
	}
	return s
}

func TestNotesInRange(t *testing.T) {
	tests := []struct {
		name           string
		start, end     ir.Ticks
		withinDuration bool
		want           []ir.ID
	}{
		{"start inclusive end exclusive", 480, 960, false, []ir.ID{"n480", "n720"}},
		{"with sounding notes", 480, 960, true, []ir.ID{"n240", "n480", "n720"}},
		{"everything", 0, 2000, false, []ir.ID{"n0", "n240", "n480", "n720", "n960"}},
		{"note ending exactly at start is excluded", 480, 481, true, []ir.ID{"n240", "n480"}},
		{"empty range", 500, 500, false, []ir.ID{}},
		{"empty range still reports sounding notes", 500, 500, true, []ir.ID{"n240", "n480"}},
	}

	s := rangeFixture()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.NotesInRange(tt.start, tt.end, tt.withinDuration)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestNotesInRange_LongNoteDoesNotWrap(t *testing.T) {
	s := New(WithGenerator(ident.NewFixedGenerator("long")))
	s.AddNote(ir.NoteInput{Ticks: 10, Duration: math.MaxUint32})

	got := s.NotesInRange(20, 30, true)

	assert.Equal(t, []ir.ID{"long"}, ids(got))
	assert.Empty(t, s.NotesInRange(20, 30, false))
}

func TestNotesInRange_DoesNotReorderList(t *testing.T) {
	s := rangeFixture()

	s.NotesInRange(0, 2000, true)

	assert.Equal(t, []ir.ID{"n480", "n240", "n0", "n960", "n720"}, ids(s.ListNotes()))
}

func TestNotesInRange_TiesKeepInsertionOrder(t *testing.T) {
	s := New(WithGenerator(ident.NewFixedGenerator("late", "first", "second")))
	s.AddNote(ir.NoteInput{Ticks: 10})
	s.AddNote(ir.NoteInput{Ticks: 5})
	s.AddNote(ir.NoteInput{Ticks: 5})

	got := s.NotesInRange(0, 100, false)

	assert.Equal(t, []ir.ID{"first", "second", "late"}, ids(got))
}

func TestEventsInRange(t *testing.T) {
	s := New(WithGenerator(ident.NewFixedGenerator("e96", "e0", "e48", "e0b")))
	s.AddEvent(ir.EventInput{Ticks: 96, Kind: "cc"})
	s.AddEvent(ir.EventInput{Ticks: 0, Kind: "tempo"})
	s.AddEvent(ir.EventInput{Ticks: 48, Kind: "cc"})
	s.AddEvent(ir.EventInput{Ticks: 0, Kind: "cc"})

	assert.Equal(t, []ir.ID{"e0", "e0b", "e48"}, ids(s.EventsInRange(0, 96)))
	assert.Equal(t, []ir.ID{"e96"}, ids(s.EventsInRange(96, 97)))
	assert.Empty(t, s.EventsInRange(200, 300))
}

func TestTrackRangeQueries(t *testing.T) {
	s := New(WithGenerator(ident.NewFixedGenerator("bass", "lead", "loose", "cc-bass", "cc-lead")))
	s.AddNote(ir.NoteInput{Ticks: 0, Duration: 960, TrackID: "t-bass"})
	s.AddNote(ir.NoteInput{Ticks: 480, Duration: 240, TrackID: "t-lead"})
	s.AddNote(ir.NoteInput{Ticks: 480, Duration: 240})
	s.AddEvent(ir.EventInput{Ticks: 480, Kind: "cc", TrackID: "t-bass"})
	s.AddEvent(ir.EventInput{Ticks: 480, Kind: "cc", TrackID: "t-lead"})

	assert.Equal(t, []ir.ID{"bass"}, ids(s.TrackNotesInRange("t-bass", 480, 960, true)))
	assert.Empty(t, s.TrackNotesInRange("t-bass", 480, 960, false))
	assert.Equal(t, []ir.ID{"lead"}, ids(s.TrackNotesInRange("t-lead", 0, 960, false)))
	assert.Equal(t, []ir.ID{"loose"}, ids(s.TrackNotesInRange("", 0, 960, false)))
	assert.Empty(t, s.TrackNotesInRange("t-none", 0, 960, true))

	assert.Equal(t, []ir.ID{"cc-lead"}, ids(s.TrackEventsInRange("t-lead", 0, 960)))
	assert.Len(t, s.EventsInRange(0, 960), 2)
}
