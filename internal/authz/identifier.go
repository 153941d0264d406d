package authz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoIDSource        = errors.New("route declares no resource identifier source")
	ErrMissingResourceID = errors.New("resource identifier missing from request")
	ErrMalformedBody     = errors.New("request body is not a JSON object")
)

type SourceKind uint8

const (
	SourceNone SourceKind = iota
	SourceHeader
	SourceParam
	SourceBody
)

// IDSource is the single place a route reads its resource identifier from.
type IDSource struct {
	Kind SourceKind
	Name string
}

// NoID declares that a route has no resource identifier.
var NoID = IDSource{}

func FromHeader(name string) IDSource { return IDSource{Kind: SourceHeader, Name: name} }

func FromParam(name string) IDSource { return IDSource{Kind: SourceParam, Name: name} }

func FromBody(field string) IDSource { return IDSource{Kind: SourceBody, Name: field} }

func (s IDSource) String() string {
	switch s.Kind {
	case SourceHeader:
		return "header:" + s.Name
	case SourceParam:
		return "param:" + s.Name
	case SourceBody:
		return "body:" + s.Name
	default:
		return "none"
	}
}

// Descriptor is the (resource, action) pair a route guards and where its
// resource identifier comes from. An empty Action is inferred from the method.
type Descriptor struct {
	Resource ResourceType
	Action   Action
	ID       IDSource
}

// ResolveID extracts the trimmed identifier declared by src.
func ResolveID(req Request, src IDSource) (string, error) {
	var raw string

	switch src.Kind {
	case SourceHeader:
		if req.Header != nil {
			raw = req.Header.Get(src.Name)
		}
	case SourceParam:
		raw = req.Params[src.Name]
	case SourceBody:
		v, err := bodyField(req.Body, src.Name)
		if err != nil {
			return "", err
		}
		raw = v
	default:
		return "", ErrNoIDSource
	}

	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingResourceID, src)
	}
	return id, nil
}

func bodyField(body []byte, field string) (string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	switch v := fields[field].(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", nil
	}
}
