package normalize

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mindsync/internal/model"
)

// fromGeneric maps one item of the generic schema (an "events" list or a
// bare list of event objects) onto the canonical event. This is also the
// schema Export writes, so Parse(Export(events)) round-trips.
func (n *Normalizer) fromGeneric(item map[string]any) (model.Event, error) {
	startRaw, ok := item["start"]
	if !ok {
		return model.Event{}, errors.New("missing start")
	}
	endRaw, ok := item["end"]
	if !ok {
		return model.Event{}, errors.New("missing end")
	}

	start, startAllDay, err := n.parseWhen(startRaw)
	if err != nil {
		return model.Event{}, fmt.Errorf("start: %w", err)
	}
	end, _, err := n.parseWhen(endRaw)
	if err != nil {
		return model.Event{}, fmt.Errorf("end: %w", err)
	}

	attendees, participants := genericAttendees(item)

	title := stringOr(item["title"], stringOr(item["summary"], stringOr(item["subject"], "Untitled Event")))

	ev := model.Event{
		ID:            stringOr(item["id"], uuid.NewString()),
		Title:         title,
		Description:   stringOr(item["description"], ""),
		Location:      stringOr(item["location"], ""),
		Start:         start,
		End:           end,
		Participants:  participants,
		Attendees:     attendees,
		Organizer:     stringOr(item["organizer"], ""),
		AllDay:        boolOr(item["is_all_day"], startAllDay),
		OnlineMeeting: boolOr(item["is_online_meeting"], false),
		Recurring:     boolOr(item["recurring"], false),
		Importance:    parseImportance(stringOr(item["importance"], "normal")),
		Status:        parseStatus(stringOr(item["status"], "confirmed")),
	}

	if typ := stringOr(item["type"], stringOr(item["event_type"], "")); typ != "" {
		ev.Type = parseEventType(typ)
	} else {
		ev.Type = n.InferType(ev.Title, ev.Description)
	}
	return ev, nil
}

// genericAttendees accepts attendees as a list of names/emails, attendees as
// a bare count, or a separate participants count, in that precedence.
func genericAttendees(item map[string]any) ([]string, int) {
	switch v := item["attendees"].(type) {
	case []any:
		names := make([]string, 0, len(v))
		for _, a := range v {
			names = append(names, stringOr(a, ""))
		}
		return names, len(v)
	case float64:
		return nil, int(v)
	}
	if p, ok := item["participants"].(float64); ok {
		return nil, int(p)
	}
	return nil, 0
}

func parseEventType(s string) model.EventType {
	switch model.EventType(s) {
	case model.TypeMeeting, model.TypeFocusTime, model.TypeBreak,
		model.TypeInterview, model.TypeTraining, model.TypeTravel:
		return model.EventType(s)
	default:
		return model.TypeOther
	}
}
