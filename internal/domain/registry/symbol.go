// Package registry maintains the persistent index of source-code symbols:
// the symbol store, the per-file staleness tracker, and the facade that
// ingests parsed-file documents and writes state through to disk.
package registry

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind classifies a stored symbol.
type Kind string

const (
	KindFunction  Kind = "function"
	KindClass     Kind = "class"
	KindMethod    Kind = "method"
	KindProperty  Kind = "property"
	KindInterface Kind = "interface"
	KindTypeAlias Kind = "type-alias"
	KindRoute     Kind = "route"
	KindVariable  Kind = "variable"
)

// kindRanks orders kinds for search ranking. Lower sorts first.
var kindRanks = map[Kind]int{
	KindFunction:  1,
	KindClass:     2,
	KindRoute:     3,
	KindMethod:    4,
	KindInterface: 5,
	KindTypeAlias: 6,
	KindProperty:  7,
	KindVariable:  8,
}

// KindRank returns the ranking weight for a kind. Unknown kinds sort last.
func KindRank(k Kind) int {
	if r, ok := kindRanks[k]; ok {
		return r
	}
	return len(kindRanks) + 1
}

// Visibility of a class or interface member.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// Location pinpoints a symbol in its source file. Zero value means unknown.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column,omitempty"`
}

// IsZero reports whether the location was never set.
func (l Location) IsZero() bool { return l.Line == 0 && l.Column == 0 }

// Detail carries kind-specific symbol fields. Each kind with extra data has
// its own typed variant; there is no open-ended metadata bag.
type Detail interface {
	clone() Detail
}

// FunctionDetail holds function-specific extras.
type FunctionDetail struct {
	IsComponent bool `json:"is_component,omitempty"`
}

// RouteDetail holds the HTTP method and path of a route symbol.
type RouteDetail struct {
	HTTPMethod string `json:"http_method"`
	Path       string `json:"path"`
}

// MemberDetail holds visibility and staticness of methods and properties.
type MemberDetail struct {
	Visibility Visibility `json:"visibility,omitempty"`
	Static     bool       `json:"static,omitempty"`
}

func (d *FunctionDetail) clone() Detail { c := *d; return &c }
func (d *RouteDetail) clone() Detail    { c := *d; return &c }
func (d *MemberDetail) clone() Detail   { c := *d; return &c }

// Symbol is a named, typed code entity extracted from a source file.
// Parent is a non-owning back-reference: methods and properties record the
// name of their enclosing class/interface for lookup, nothing more.
type Symbol struct {
	Name        string
	Kind        Kind
	SourceFile  string
	Description string
	Signature   string
	Exported    bool
	Parent      string
	Location    Location
	Detail      Detail
}

// Identity is the dedup key of a symbol. No two stored symbols share one.
type Identity struct {
	Name       string
	Kind       Kind
	SourceFile string
	Parent     string
}

// Identity returns the logical identity tuple of the symbol.
func (s *Symbol) Identity() Identity {
	return Identity{Name: s.Name, Kind: s.Kind, SourceFile: s.SourceFile, Parent: s.Parent}
}

// IsPrivate reports whether the symbol is hidden from default searches:
// underscore/# name prefixes, or an explicit private member visibility.
func (s *Symbol) IsPrivate() bool {
	if strings.HasPrefix(s.Name, "_") || strings.HasPrefix(s.Name, "#") {
		return true
	}
	if m, ok := s.Detail.(*MemberDetail); ok && m.Visibility == VisibilityPrivate {
		return true
	}
	return false
}

// merge overlays incoming fields onto the receiver. Non-zero incoming fields
// win; Exported is always taken from the incoming symbol since a re-parse is
// authoritative about export status.
func (s *Symbol) merge(in Symbol) {
	if in.Description != "" {
		s.Description = in.Description
	}
	if in.Signature != "" {
		s.Signature = in.Signature
	}
	if !in.Location.IsZero() {
		s.Location = in.Location
	}
	if in.Detail != nil {
		s.Detail = in.Detail
	}
	s.Exported = in.Exported
}

// symbolJSON is the wire form of Symbol. Detail is a raw message decoded
// against the symbol's kind on the way back in.
type symbolJSON struct {
	Name        string          `json:"name"`
	Kind        Kind            `json:"kind"`
	SourceFile  string          `json:"source_file"`
	Description string          `json:"description,omitempty"`
	Signature   string          `json:"signature,omitempty"`
	Exported    bool            `json:"exported,omitempty"`
	Parent      string          `json:"parent,omitempty"`
	Location    *Location       `json:"location,omitempty"`
	Detail      json.RawMessage `json:"detail,omitempty"`
}

// MarshalJSON encodes the symbol with its kind-specific detail inlined.
func (s Symbol) MarshalJSON() ([]byte, error) {
	sj := symbolJSON{
		Name:        s.Name,
		Kind:        s.Kind,
		SourceFile:  s.SourceFile,
		Description: s.Description,
		Signature:   s.Signature,
		Exported:    s.Exported,
		Parent:      s.Parent,
	}
	if !s.Location.IsZero() {
		loc := s.Location
		sj.Location = &loc
	}
	if s.Detail != nil {
		raw, err := json.Marshal(s.Detail)
		if err != nil {
			return nil, fmt.Errorf("marshal %s detail: %w", s.Kind, err)
		}
		sj.Detail = raw
	}
	return json.Marshal(sj)
}

// UnmarshalJSON decodes the symbol, selecting the detail variant by kind.
func (s *Symbol) UnmarshalJSON(data []byte) error {
	var sj symbolJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return err
	}
	s.Name = sj.Name
	s.Kind = sj.Kind
	s.SourceFile = sj.SourceFile
	s.Description = sj.Description
	s.Signature = sj.Signature
	s.Exported = sj.Exported
	s.Parent = sj.Parent
	s.Location = Location{}
	if sj.Location != nil {
		s.Location = *sj.Location
	}
	s.Detail = nil
	if len(sj.Detail) == 0 {
		return nil
	}
	switch sj.Kind {
	case KindFunction:
		var d FunctionDetail
		if err := json.Unmarshal(sj.Detail, &d); err != nil {
			return fmt.Errorf("decode function detail: %w", err)
		}
		s.Detail = &d
	case KindRoute:
		var d RouteDetail
		if err := json.Unmarshal(sj.Detail, &d); err != nil {
			return fmt.Errorf("decode route detail: %w", err)
		}
		s.Detail = &d
	case KindMethod, KindProperty:
		var d MemberDetail
		if err := json.Unmarshal(sj.Detail, &d); err != nil {
			return fmt.Errorf("decode member detail: %w", err)
		}
		s.Detail = &d
	}
	return nil
}
