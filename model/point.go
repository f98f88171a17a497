package model

import "errors"

// Point is one measurement row destined for a table.
//
// Tags and fields are opaque to the routing layer; they are carried
// through to the transport untouched.
type Point struct {
	Table     string
	Tags      map[string]string
	Fields    map[string]interface{}
	Timestamp int64
}

// Validate checks that the point can be written.
func (p Point) Validate() error {
	if p.Table == "" {
		return errors.New("point has no table")
	}
	if len(p.Fields) == 0 {
		return errors.New("point has no fields")
	}
	return nil
}
