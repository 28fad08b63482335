// Package schema defines the closed set of content block variants and the
// codec between a block's stored (stringified) payload and its typed form.
//
// A block row carries a type tag and an opaque payload string. Decode checks
// both together: the tag selects the payload shape and the payload has to
// parse into that shape.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Type is the block discriminant.
type Type string

const (
	TypeText     Type = "text"
	TypeCode     Type = "code"
	TypeTable    Type = "table"
	TypeImage    Type = "image"
	TypeAlert    Type = "alert"
	TypeHero     Type = "hero"
	TypeCardGrid Type = "card-grid"
	TypeRawHTML  Type = "raw-html"
)

// Types lists every known variant in editor menu order.
var Types = []Type{TypeText, TypeCode, TypeTable, TypeImage, TypeAlert, TypeHero, TypeCardGrid, TypeRawHTML}

var (
	ErrUnknownType      = errors.New("unknown block type")
	ErrMalformedPayload = errors.New("malformed block payload")
)

// Known reports whether t is one of the block variants.
func Known(t Type) bool {
	for _, k := range Types {
		if k == t {
			return true
		}
	}
	return false
}

// Payload is implemented by every block variant.
type Payload interface {
	Type() Type
}

// Text is rich-text HTML authored in the editor.
type Text struct {
	Content string `json:"content"`
	Align   string `json:"align"`
}

// Code is a display-only snippet.
type Code struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Table holds a header row and body rows. Rows are not forced to match
// the column count.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Image points at an uploaded file.
type Image struct {
	URL    string `json:"url"`
	Alt    string `json:"alt"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
}

// Alert is a coloured call-out box.
type Alert struct {
	Variant string `json:"variant"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

// Hero is a landing banner.
type Hero struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	BgColor  string `json:"bgColor"`
}

// Card is one navigational tile of a CardGrid.
type Card struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Color       string `json:"color,omitempty"`
}

// CardGrid is a set of tiles.
type CardGrid struct {
	Cards []Card `json:"cards"`
}

// RawHTML is stored verbatim, not as a JSON object.
type RawHTML string

func (Text) Type() Type     { return TypeText }
func (Code) Type() Type     { return TypeCode }
func (Table) Type() Type    { return TypeTable }
func (Image) Type() Type    { return TypeImage }
func (Alert) Type() Type    { return TypeAlert }
func (Hero) Type() Type     { return TypeHero }
func (CardGrid) Type() Type { return TypeCardGrid }
func (RawHTML) Type() Type  { return TypeRawHTML }

// UnmarshalJSON accepts "headers" as an alias of "columns".
func (t *Table) UnmarshalJSON(b []byte) error {
	var aux struct {
		Columns []string   `json:"columns"`
		Headers []string   `json:"headers"`
		Rows    [][]string `json:"rows"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	t.Columns = aux.Columns
	if len(t.Columns) == 0 {
		t.Columns = aux.Headers
	}
	t.Rows = aux.Rows
	return nil
}

// UnmarshalJSON accepts "message" as an alias of "body".
func (a *Alert) UnmarshalJSON(b []byte) error {
	var aux struct {
		Variant string `json:"variant"`
		Title   string `json:"title"`
		Body    string `json:"body"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	a.Variant, a.Title, a.Body = aux.Variant, aux.Title, aux.Body
	if a.Body == "" {
		a.Body = aux.Message
	}
	return nil
}

// UnmarshalJSON accepts a bare card object as a one-card grid.
func (g *CardGrid) UnmarshalJSON(b []byte) error {
	var aux struct {
		Cards *[]Card `json:"cards"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Cards != nil {
		g.Cards = *aux.Cards
		return nil
	}
	var single Card
	if err := json.Unmarshal(b, &single); err != nil {
		return err
	}
	g.Cards = nil
	if single != (Card{}) {
		g.Cards = []Card{single}
	}
	return nil
}

// Decode parses a stored payload according to its type tag.
func Decode(t Type, raw string) (Payload, error) {
	if t == TypeRawHTML {
		return decodeRawHTML(raw), nil
	}
	if !Known(t) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("%w: %s payload is not an object", ErrMalformedPayload, t)
	}

	var (
		p   Payload
		err error
	)
	switch t {
	case TypeText:
		var v Text
		err = json.Unmarshal([]byte(trimmed), &v)
		p = v
	case TypeCode:
		var v Code
		err = json.Unmarshal([]byte(trimmed), &v)
		p = v
	case TypeTable:
		var v Table
		err = json.Unmarshal([]byte(trimmed), &v)
		p = v
	case TypeImage:
		var v Image
		err = json.Unmarshal([]byte(trimmed), &v)
		p = v
	case TypeAlert:
		var v Alert
		err = json.Unmarshal([]byte(trimmed), &v)
		p = v
	case TypeHero:
		var v Hero
		err = json.Unmarshal([]byte(trimmed), &v)
		p = v
	case TypeCardGrid:
		var v CardGrid
		err = json.Unmarshal([]byte(trimmed), &v)
		p = v
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, t, err)
	}
	return p, nil
}

// raw-html is normally stored verbatim; a JSON string literal is unwrapped.
func decodeRawHTML(raw string) RawHTML {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
			return RawHTML(s)
		}
	}
	return RawHTML(raw)
}

// Encode produces the stored form of a payload.
func Encode(p Payload) (string, error) {
	if p == nil {
		return "", fmt.Errorf("%w: nil payload", ErrMalformedPayload)
	}
	if h, ok := p.(RawHTML); ok {
		return string(h), nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding %s payload: %w", p.Type(), err)
	}
	return string(b), nil
}

// FromJSON decodes API input where the payload may be given as an object
// or already stringified.
func FromJSON(t Type, data json.RawMessage) (Payload, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		if !Known(t) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
		}
		return Default(t), nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return Decode(t, s)
	}
	return Decode(t, trimmed)
}

var (
	alignments    = map[string]bool{"": true, "left": true, "center": true, "right": true}
	alertVariants = map[string]bool{"": true, "info": true, "success": true, "warning": true, "error": true}
)

// Validate checks enumerated fields of a payload.
func Validate(p Payload) error {
	switch v := p.(type) {
	case Text:
		if !alignments[v.Align] {
			return fmt.Errorf("text align must be left, center or right, got %q", v.Align)
		}
	case Alert:
		if !alertVariants[v.Variant] {
			return fmt.Errorf("alert variant must be info, success, warning or error, got %q", v.Variant)
		}
	case nil:
		return errors.New("payload is required")
	}
	return nil
}

// Default returns the payload a freshly added block starts with.
func Default(t Type) Payload {
	switch t {
	case TypeText:
		return Text{Content: "", Align: "left"}
	case TypeCode:
		return Code{Language: "json"}
	case TypeTable:
		return Table{Columns: []string{"Column 1", "Column 2"}, Rows: [][]string{{"", ""}}}
	case TypeImage:
		return Image{}
	case TypeAlert:
		return Alert{Variant: "info"}
	case TypeHero:
		return Hero{BgColor: "blue"}
	case TypeCardGrid:
		return CardGrid{Cards: []Card{}}
	case TypeRawHTML:
		return RawHTML("")
	}
	return nil
}
