package storage

import (
	"sort"

	"github.com/google/uuid"

	"github.com/eventlife/eventlife/internal/model"
	"github.com/eventlife/eventlife/internal/timeutil"
)

// EventRepo provides operations for Event entities.
type EventRepo struct {
	db *DB
}

// NewEventRepo creates a new event repository.
func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

// Create stores a new event, generating an ID when absent.
func (r *EventRepo) Create(ev *model.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.Key == "" {
		ev.Key = model.GenerateEventKey(ev.ID)
	}
	return r.db.Set(ev)
}

// Get retrieves an event by its ID.
func (r *EventRepo) Get(id string) (*model.Event, error) {
	ev := &model.Event{}
	if err := r.db.Get(model.GenerateEventKey(id), ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// List returns all events ordered by time label, unparseable labels last.
func (r *EventRepo) List() ([]*model.Event, error) {
	var events []*model.Event
	err := r.db.ForEach(model.PrefixEvent+":",
		func() model.Model { return &model.Event{} },
		func(m model.Model) error {
			events = append(events, m.(*model.Event))
			return nil
		})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		return labelMinutes(events[i].TimeLabel) < labelMinutes(events[j].TimeLabel)
	})
	return events, nil
}

// labelMinutes orders events by their time of day; events without a
// parseable label sort last.
func labelMinutes(label string) int {
	hour, minute, ok := timeutil.ParseTimeOfDay(label)
	if !ok {
		return 24 * 60
	}
	return hour*60 + minute
}

// Delete removes an event by ID. Absent IDs are not an error.
func (r *EventRepo) Delete(id string) error {
	return r.db.Delete(model.GenerateEventKey(id))
}

// Sections groups events by category into feed sections, preserving the
// event order within each section.
func (r *EventRepo) Sections() ([]model.EventSection, error) {
	events, err := r.List()
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]model.Event)
	var order []string
	for _, ev := range events {
		cat := ev.Category
		if cat == "" {
			cat = "General"
		}
		if _, seen := byCategory[cat]; !seen {
			order = append(order, cat)
		}
		byCategory[cat] = append(byCategory[cat], *ev)
	}

	sections := make([]model.EventSection, 0, len(order))
	for _, cat := range order {
		sections = append(sections, model.EventSection{Title: cat, Events: byCategory[cat]})
	}
	return sections, nil
}
