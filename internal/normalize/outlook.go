package normalize

import (
	"errors"
	"fmt"

	"mindsync/internal/model"
)

// fromOutlook maps one item of a Microsoft Graph export ("value" schema)
// onto the canonical event.
func (n *Normalizer) fromOutlook(item map[string]any) (model.Event, error) {
	startRaw, ok := item["start"].(map[string]any)
	if !ok {
		return model.Event{}, errors.New("missing start")
	}
	endRaw, ok := item["end"].(map[string]any)
	if !ok {
		return model.Event{}, errors.New("missing end")
	}

	start, _, err := n.parseTimeObject(startRaw)
	if err != nil {
		return model.Event{}, fmt.Errorf("start: %w", err)
	}
	end, _, err := n.parseTimeObject(endRaw)
	if err != nil {
		return model.Event{}, fmt.Errorf("end: %w", err)
	}

	attendees, participants := outlookAttendees(item["attendees"])

	ev := model.Event{
		ID:            stringOr(item["id"], ""),
		Title:         stringOr(item["subject"], "Untitled Event"),
		Location:      "",
		Start:         start,
		End:           end,
		Participants:  participants,
		Attendees:     attendees,
		AllDay:        boolOr(item["isAllDay"], false),
		OnlineMeeting: boolOr(item["isOnlineMeeting"], false),
		Recurring:     item["recurrence"] != nil,
		Importance:    parseImportance(stringOr(item["importance"], "normal")),
		Status:        model.StatusConfirmed,
	}
	if boolOr(item["isCancelled"], false) {
		ev.Status = model.StatusCancelled
	}
	if body, ok := item["body"].(map[string]any); ok {
		ev.Description = stringOr(body["content"], "")
	}
	if loc, ok := item["location"].(map[string]any); ok {
		ev.Location = stringOr(loc["displayName"], "")
	}
	if org, ok := item["organizer"].(map[string]any); ok {
		if addr, ok := org["emailAddress"].(map[string]any); ok {
			ev.Organizer = stringOr(addr["address"], "")
		}
	}
	ev.Type = n.InferType(ev.Title, ev.Description)
	return ev, nil
}

// outlookAttendees extracts addresses from a Graph attendee list, where each
// entry nests the address under emailAddress.address.
func outlookAttendees(raw any) ([]string, int) {
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
		if addr, ok := obj["emailAddress"].(map[string]any); ok {
			emails = append(emails, stringOr(addr["address"], ""))
		}
	}
	return emails, len(list)
}

func parseImportance(s string) model.Importance {
	switch model.Importance(s) {
	case model.ImportanceLow:
		return model.ImportanceLow
	case model.ImportanceHigh:
		return model.ImportanceHigh
	default:
		return model.ImportanceNormal
	}
}

func boolOr(v any, fallback bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}
