package summon

import (
	"encoding/json"
	"fmt"
)

// ActionType tags the serialized action union.
type ActionType string

const (
	// ActionToggle flips a target element's visibility.
	ActionToggle ActionType = "toggle"
	// ActionNavigate performs client navigation to a URL.
	ActionNavigate ActionType = "nav"
)

// Action is a serialized client instruction embedded in markup as a JSON
// attribute. The client dispatcher parses it on interaction and applies the
// corresponding DOM effect:
//
//	{"type":"toggle","targetId":"menu"}
//	{"type":"nav","url":"/about"}
//
// An action is reusable: every dispatch of the same descriptor re-applies
// the effect, it is not consumed.
type Action struct {
	Type     ActionType `json:"type"`
	TargetID string     `json:"targetId,omitempty"`
	URL      string     `json:"url,omitempty"`
}

// ToggleAction builds a visibility-toggle descriptor for targetID.
func ToggleAction(targetID string) Action {
	return Action{Type: ActionToggle, TargetID: targetID}
}

// NavigateAction builds a navigation descriptor for url.
func NavigateAction(url string) Action {
	return Action{Type: ActionNavigate, URL: url}
}

// Encode serializes the action for embedding as an HTML attribute value.
func (a Action) Encode() string {
	data, _ := json.Marshal(a)
	return string(data)
}

// ParseAction decodes and validates a serialized action descriptor.
// Malformed payloads (bad JSON, unknown type, missing target) return an
// error wrapping ErrMalformedAction.
func ParseAction(data []byte) (Action, error) {
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return Action{}, fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}

	switch a.Type {
	case ActionToggle:
		if a.TargetID == "" {
			return Action{}, fmt.Errorf("%w: toggle requires targetId", ErrMalformedAction)
		}
	case ActionNavigate:
		if a.URL == "" {
			return Action{}, fmt.Errorf("%w: nav requires url", ErrMalformedAction)
		}
	default:
		return Action{}, fmt.Errorf("%w: unknown type %q", ErrMalformedAction, a.Type)
	}
	return a, nil
}
