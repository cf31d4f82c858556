// Copyright (c) 2022 Exograd SAS.
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that the above
// copyright notice and this permission notice appear in all copies.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
// WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY
// SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
// WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
// ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR
// IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.

package influx

import (
	"strconv"
	"time"

	"github.com/exograd/go-influx/check"
)

// Point is a single measurement sample. Tag and field sets are rendered in
// lexicographic key order on the wire. A point with a nil timestamp is
// stamped by the server on reception.
type Point struct {
	Measurement string
	Tags        Tags
	Fields      Fields
	Timestamp   *time.Time
}

type Points []*Point

type Tags map[string]string

// Fields maps field names to their values. Valid field values are signed and
// unsigned integers, floats, strings and booleans. Null values only exist in
// query results; they cannot be written.
type Fields map[string]interface{}

func NewPoint(measurement string, tags Tags, fields Fields) *Point {
	return &Point{
		Measurement: measurement,
		Tags:        tags,
		Fields:      fields,
	}
}

func NewPointWithTimestamp(measurement string, tags Tags, fields Fields, t time.Time) *Point {
	return &Point{
		Measurement: measurement,
		Tags:        tags,
		Fields:      fields,
		Timestamp:   &t,
	}
}

func (p *Point) Check(c *check.Checker) {
	c.CheckStringNotEmpty("measurement", p.Measurement)

	c.WithChild("tags", func() {
		for name := range p.Tags {
			c.Check(name, name != "", "tag name must not be empty")
		}
	})

	c.Check("fields", len(p.Fields) > 0, "point must have at least one field")

	c.WithChild("fields", func() {
		for name, value := range p.Fields {
			c.Check(name, name != "", "field name must not be empty")

			if !IsValidFieldValue(value) {
				c.AddError(name, "invalid field value %#v (%T)", value, value)
			}
		}
	})
}

// Validate checks all points, reporting each invalid one by its index.
func (ps Points) Validate() error {
	c := check.NewChecker()

	for i, p := range ps {
		c.CheckObject(strconv.Itoa(i), p)
	}

	return c.Error()
}

func IsValidFieldValue(value interface{}) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case float32, float64:
		return true
	case string:
		return true
	case bool:
		return true
	default:
		return false
	}
}
