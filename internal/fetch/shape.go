package fetch

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/draze/draze-cli/internal/common/httpclient"
)

var emptyList = []byte("[]")

// Shape declares where an endpoint puts its list in the response body. Every endpoint
// has exactly one shape; a body that does not match it is a DecodeError.
type Shape struct {
	path     string
	bare     bool
	tolerant bool
}

var (
	// ShapeItems reads {"items": [...]}.
	ShapeItems = Shape{path: "items"}
	// ShapeData reads {"data": [...]}.
	ShapeData = Shape{path: "data"}
	// ShapeBare reads a body that is the array itself.
	ShapeBare = Shape{bare: true}
	// Tolerant accepts items, data or a bare array, in that order, and yields an empty
	// list when none is present. Only for endpoints whose shape is not settled.
	Tolerant = Shape{tolerant: true}
)

// ShapeKey reads the array at a gjson path such as "tenants" or "data.tenants".
func ShapeKey(path string) Shape {
	return Shape{path: path}
}

func (s Shape) String() string {
	switch {
	case s.tolerant:
		return "tolerant"
	case s.bare:
		return "bare"
	default:
		return s.path
	}
}

// DecodeError reports a response body that does not have the declared shape.
type DecodeError struct {
	Shape  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unexpected response shape (%s): %s", e.Shape, e.Reason)
}

// Extract validates body against the shape and returns the raw JSON array. A declared
// path that holds null is an empty list.
func (s Shape) Extract(body []byte) ([]byte, error) {
	if !gjson.ValidBytes(body) {
		return nil, &DecodeError{Shape: s.String(), Reason: "body is not valid JSON"}
	}
	if err := checkSuccess(body); err != nil {
		return nil, err
	}
	root := gjson.ParseBytes(body)

	if s.tolerant {
		for _, p := range []string{"items", "data"} {
			if r := root.Get(p); r.IsArray() {
				return []byte(r.Raw), nil
			}
		}
		if root.IsArray() {
			return []byte(root.Raw), nil
		}
		return emptyList, nil
	}

	if s.bare {
		if !root.IsArray() {
			return nil, &DecodeError{Shape: s.String(), Reason: "body is not an array"}
		}
		return []byte(root.Raw), nil
	}

	r := root.Get(s.path)
	switch {
	case !r.Exists():
		return nil, &DecodeError{Shape: s.String(), Reason: "field is missing"}
	case r.Type == gjson.Null:
		return emptyList, nil
	case !r.IsArray():
		return nil, &DecodeError{Shape: s.String(), Reason: "field is not an array"}
	}
	return []byte(r.Raw), nil
}

// ExtractObject returns the raw JSON object at path ("" for the whole body).
func ExtractObject(body []byte, path string) ([]byte, error) {
	shape := path
	if shape == "" {
		shape = "object"
	}
	if !gjson.ValidBytes(body) {
		return nil, &DecodeError{Shape: shape, Reason: "body is not valid JSON"}
	}
	if err := checkSuccess(body); err != nil {
		return nil, err
	}
	r := gjson.ParseBytes(body)
	if path != "" {
		r = r.Get(path)
	}
	if !r.IsObject() {
		return nil, &DecodeError{Shape: shape, Reason: "not an object"}
	}
	return []byte(r.Raw), nil
}

// checkSuccess turns a 2xx body carrying "success": false into an error with the
// server's message.
func checkSuccess(body []byte) error {
	r := gjson.GetBytes(body, "success")
	if r.Exists() && r.Type == gjson.False {
		msg := httpclient.ServerMessage(body)
		if msg == "" {
			return ErrRequestFailed
		}
		return ErrRequestFailed.Msg(msg)
	}
	return nil
}
