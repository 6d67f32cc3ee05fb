package ir

// Event is a timed non-note element such as controller or automation data.
// Kind is carried verbatim; the store does not interpret it.
type Event struct {
	ID         ID     `json:"id"`
	Ticks      Ticks  `json:"ticks"`
	Kind       string `json:"kind"`
	Channel    uint8  `json:"channel"`
	Controller uint8  `json:"controller"`
	Value      int32  `json:"value"`
	TrackID    ID     `json:"track_id,omitempty"`
}

// EntityID returns the event's identifier.
func (e Event) EntityID() ID {
	return e.ID
}

// TrackOf returns the track the event belongs to, empty if none.
func (e Event) TrackOf() ID {
	return e.TrackID
}

// WithID returns a copy of the event carrying id.
func (e Event) WithID(id ID) Event {
	e.ID = id
	return e
}

// ToMap returns the event as a map keyed by JSON field names.
func (e Event) ToMap() map[string]any {
	m := map[string]any{
		"id":         string(e.ID),
		"ticks":      int64(e.Ticks),
		"kind":       e.Kind,
		"channel":    int64(e.Channel),
		"controller": int64(e.Controller),
		"value":      int64(e.Value),
	}
	if e.TrackID != "" {
		m["track_id"] = string(e.TrackID)
	}
	return m
}

// EventInput is the caller-supplied payload for a new Event.
type EventInput struct {
	Ticks      Ticks  `json:"ticks" yaml:"ticks"`
	Kind       string `json:"kind" yaml:"kind"`
	Channel    uint8  `json:"channel" yaml:"channel"`
	Controller uint8  `json:"controller" yaml:"controller"`
	Value      int32  `json:"value" yaml:"value"`
	TrackID    ID     `json:"track_id,omitempty" yaml:"track_id,omitempty"`
}

// Build combines the input with an identifier into a full Event.
func (in EventInput) Build(id ID) Event {
	return Event{
		ID:         id,
		Ticks:      in.Ticks,
		Kind:       in.Kind,
		Channel:    in.Channel,
		Controller: in.Controller,
		Value:      in.Value,
		TrackID:    in.TrackID,
	}
}

// EventUpdater is a partial Event. Nil fields leave the stored value unchanged.
type EventUpdater struct {
	Ticks      *Ticks  `json:"ticks,omitempty" yaml:"ticks,omitempty"`
	Kind       *string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Channel    *uint8  `json:"channel,omitempty" yaml:"channel,omitempty"`
	Controller *uint8  `json:"controller,omitempty" yaml:"controller,omitempty"`
	Value      *int32  `json:"value,omitempty" yaml:"value,omitempty"`
	TrackID    *ID     `json:"track_id,omitempty" yaml:"track_id,omitempty"`
}

// Apply merges the updater onto e field by field and returns the result.
func (u EventUpdater) Apply(e Event) Event {
	return Event{
		ID:         e.ID,
		Ticks:      pick(u.Ticks, e.Ticks),
		Kind:       pick(u.Kind, e.Kind),
		Channel:    pick(u.Channel, e.Channel),
		Controller: pick(u.Controller, e.Controller),
		Value:      pick(u.Value, e.Value),
		TrackID:    pick(u.TrackID, e.TrackID),
	}
}

// IsEmpty reports whether no field is set.
func (u EventUpdater) IsEmpty() bool {
	return u.Ticks == nil && u.Kind == nil && u.Channel == nil &&
		u.Controller == nil && u.Value == nil && u.TrackID == nil
}
