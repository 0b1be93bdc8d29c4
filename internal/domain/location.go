package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// State is a row in the states table. Slug is the routing key.
type State struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// City is a row in the cities table, owned by a state.
type City struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	StateID int64  `json:"state_id"`
}

// TargetKind tags the decoded form of a product's target_locations payload.
type TargetKind int

const (
	// TargetUnset means the payload was absent, null or empty.
	TargetUnset TargetKind = iota
	// TargetStructured means the payload decoded to the expected record shape.
	TargetStructured
	// TargetLegacyText means the payload is an arbitrary legacy string.
	TargetLegacyText
)

// TargetLocations is the decoded form of the polymorphic target_locations
// column. Decoding happens exactly once, at read time; consumers switch on
// Kind instead of re-sniffing the raw payload.
//
// Invariant: PanIndia == true means the product matches any location query,
// overriding the explicit state/city lists.
type TargetLocations struct {
	Kind     TargetKind
	PanIndia bool
	StateIDs []int64
	CityIDs  []int64
	Raw      string // populated only for TargetLegacyText
}

// HasState reports whether the explicit state-id list contains id.
func (t TargetLocations) HasState(id int64) bool {
	for _, s := range t.StateIDs {
		if s == id {
			return true
		}
	}
	return false
}

// HasCity reports whether the explicit city-id list contains id.
func (t TargetLocations) HasCity(id int64) bool {
	for _, c := range t.CityIDs {
		if c == id {
			return true
		}
	}
	return false
}

// idRef tolerates the shapes the legacy writers produced for list entries:
// {"id": 12}, {"id": "12"}, a bare 12, or a bare "12".
type idRef struct {
	ID int64
}

func (r *idRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			ID json.Number `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			// Quoted numeric id inside the object.
			var objStr struct {
				ID string `json:"id"`
			}
			if err2 := json.Unmarshal(data, &objStr); err2 != nil {
				return err
			}
			obj.ID = json.Number(objStr.ID)
		}
		id, err := obj.ID.Int64()
		if err == nil {
			r.ID = id
		}
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		if id, err := num.Int64(); err == nil {
			r.ID = id
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		r.ID = id
	}
	return nil
}

type targetPayload struct {
	PanIndia bool    `json:"pan_india"`
	States   []idRef `json:"states"`
	Cities   []idRef `json:"cities"`
}

// DecodeTargetLocations decodes a raw target_locations payload into its
// tagged-union form. It is total: no input produces an error. Undecodable
// payloads degrade to TargetLegacyText so the location filter can fall back
// to textual and vendor-level matching.
func DecodeTargetLocations(raw []byte) TargetLocations {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return TargetLocations{Kind: TargetUnset}
	}

	if tl, ok := decodeStructured(trimmed); ok {
		return tl
	}

	// The column sometimes holds a JSON-encoded string which may itself wrap
	// the structured record (double encoding from a legacy writer).
	var inner string
	if err := json.Unmarshal(trimmed, &inner); err == nil {
		innerTrimmed := strings.TrimSpace(inner)
		if tl, ok := decodeStructured([]byte(innerTrimmed)); ok {
			return tl
		}
		return TargetLocations{Kind: TargetLegacyText, Raw: innerTrimmed}
	}

	return TargetLocations{Kind: TargetLegacyText, Raw: string(trimmed)}
}

func decodeStructured(data []byte) (TargetLocations, bool) {
	if len(data) == 0 || data[0] != '{' {
		return TargetLocations{}, false
	}
	var payload targetPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return TargetLocations{}, false
	}
	tl := TargetLocations{Kind: TargetStructured, PanIndia: payload.PanIndia}
	for _, ref := range payload.States {
		if ref.ID != 0 {
			tl.StateIDs = append(tl.StateIDs, ref.ID)
		}
	}
	for _, ref := range payload.Cities {
		if ref.ID != 0 {
			tl.CityIDs = append(tl.CityIDs, ref.ID)
		}
	}
	return tl, true
}
