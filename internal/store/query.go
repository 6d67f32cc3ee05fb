package store

import (
	"cmp"
	"slices"

	"github.com/roach88/notestore/internal/ir"
)

// NotesInRange returns notes starting in [start, end), ordered by start tick.
//
// With withinDuration set, notes that started before start but are still
// sounding at start (Ticks+Duration > start) are included as well. Notes
// with equal start ticks keep insertion order. An empty or inverted range
// returns only the still-sounding notes, if requested.
func (s *Store) NotesInRange(start, end ir.Ticks, withinDuration bool) []ir.Note {
	return notesInRange(s.notes.List(), start, end, withinDuration)
}

// TrackNotesInRange is NotesInRange restricted to notes whose TrackID is track.
func (s *Store) TrackNotesInRange(track ir.ID, start, end ir.Ticks, withinDuration bool) []ir.Note {
	return notesInRange(onTrack(s.notes.List(), track), start, end, withinDuration)
}

// EventsInRange returns events at ticks in [start, end), ordered by tick.
// Events with equal ticks keep insertion order.
func (s *Store) EventsInRange(start, end ir.Ticks) []ir.Event {
	return eventsInRange(s.events.List(), start, end)
}

// TrackEventsInRange is EventsInRange restricted to events whose TrackID is track.
func (s *Store) TrackEventsInRange(track ir.ID, start, end ir.Ticks) []ir.Event {
	return eventsInRange(onTrack(s.events.List(), track), start, end)
}

func notesInRange(notes []ir.Note, start, end ir.Ticks, withinDuration bool) []ir.Note {
	out := make([]ir.Note, 0)
	for _, n := range notes {
		switch {
		case n.Ticks >= start && n.Ticks < end:
			out = append(out, n)
		case withinDuration && n.Ticks < start && n.End() > start:
			out = append(out, n)
		}
	}
	slices.SortStableFunc(out, func(a, b ir.Note) int {
		return cmp.Compare(a.Ticks, b.Ticks)
	})
	return out
}

func eventsInRange(events []ir.Event, start, end ir.Ticks) []ir.Event {
	out := make([]ir.Event, 0)
	for _, e := range events {
		if e.Ticks >= start && e.Ticks < end {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b ir.Event) int {
		return cmp.Compare(a.Ticks, b.Ticks)
	})
	return out
}

func onTrack[E interface{ TrackOf() ir.ID }](items []E, track ir.ID) []E {
	out := make([]E, 0, len(items))
	for _, it := range items {
		if it.TrackOf() == track {
			out = append(out, it)
		}
	}
	return out
}
