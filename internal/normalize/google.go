package normalize

import (
	"errors"
	"fmt"

	"mindsync/internal/model"
)

// fromGoogle maps one item of a Google Calendar API export ("items" schema)
// onto the canonical event.
func (n *Normalizer) fromGoogle(item map[string]any) (model.Event, error) {
	startRaw, ok := item["start"].(map[string]any)
	if !ok {
		return model.Event{}, errors.New("missing start")
	}
	endRaw, ok := item["end"].(map[string]any)
	if !ok {
		return model.Event{}, errors.New("missing end")
	}

	start, allDay, err := n.parseTimeObject(startRaw)
	if err != nil {
		return model.Event{}, fmt.Errorf("start: %w", err)
	}
	end, _, err := n.parseTimeObject(endRaw)
	if err != nil {
		return model.Event{}, fmt.Errorf("end: %w", err)
	}

	attendees, participants := attendeeEmails(item["attendees"], "email")

	title := stringOr(item["summary"], "Untitled Event")

	ev := model.Event{
		ID:            stringOr(item["id"], ""),
		Title:         title,
		Description:   stringOr(item["description"], ""),
		Location:      stringOr(item["location"], ""),
		Start:         start,
		End:           end,
		Participants:  participants,
		Attendees:     attendees,
		AllDay:        allDay,
		OnlineMeeting: item["conferenceData"] != nil,
		Recurring:     stringOr(item["recurringEventId"], "") != "",
		Importance:    model.ImportanceNormal,
		Status:        parseStatus(stringOr(item["status"], "confirmed")),
	}
	if org, ok := item["organizer"].(map[string]any); ok {
		ev.Organizer = stringOr(org["email"], "")
	}
	ev.Type = n.InferType(ev.Title, ev.Description)
	return ev, nil
}

// attendeeEmails extracts addresses from a provider attendee list where each
// entry is an object holding the address under emailKey.
func attendeeEmails(raw any, emailKey string) ([]string, int) {
	list, ok := raw.([]any)
	if !ok {
		return nil, 0
	}
	emails := make([]string, 0, len(list))
	for _, a := range list {
		obj, ok := a.(map[string]any)
		if !ok {
			continue
		}
		emails = append(emails, stringOr(obj[emailKey], ""))
	}
	return emails, len(list)
}

func parseStatus(s string) model.Status {
	switch model.Status(s) {
	case model.StatusTentative:
		return model.StatusTentative
	case model.StatusCancelled:
		return model.StatusCancelled
	default:
		return model.StatusConfirmed
	}
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
