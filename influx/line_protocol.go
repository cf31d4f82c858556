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
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Commas and spaces are escaped in measurements, tag names, tag values and
// field names. String field values are quoted but their content is left
// untouched, including double quotes, to match what existing line protocol
// consumers expect.
var lineEscaper = strings.NewReplacer(",", `\,`, " ", `\ `)

// EncodePoints encodes points to the line protocol, each line being
// terminated by a newline character. Timestamps are scaled to the precision.
func EncodePoints(points Points, precision Precision, buf *bytes.Buffer) error {
	for i, p := range points {
		if err := EncodePoint(p, precision, buf); err != nil {
			return fmt.Errorf("cannot encode point %d: %w", i, err)
		}

		buf.WriteByte('\n')
	}

	return nil
}

func EncodePoint(p *Point, precision Precision, buf *bytes.Buffer) error {
	if precision == PrecisionRFC3339 {
		return ErrRFC3339WritePrecision
	}

	if p.Measurement == "" {
		return fmt.Errorf("empty measurement")
	}

	if len(p.Fields) == 0 {
		return fmt.Errorf("empty field set")
	}

	buf.WriteString(escapeString(p.Measurement))

	for _, name := range sortedKeys(p.Tags) {
		buf.WriteByte(',')
		buf.WriteString(escapeString(name))
		buf.WriteByte('=')
		buf.WriteString(escapeString(p.Tags[name]))
	}

	buf.WriteByte(' ')

	fieldNames := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		fieldNames = append(fieldNames, name)
	}
	sort.Strings(fieldNames)

	for i, name := range fieldNames {
		if i > 0 {
			buf.WriteByte(',')
		}

		buf.WriteString(escapeString(name))
		buf.WriteByte('=')

		if err := encodeFieldValue(p.Fields[name], buf); err != nil {
			return fmt.Errorf("invalid field %q: %w", name, err)
		}
	}

	if p.Timestamp != nil {
		buf.WriteByte(' ')
		buf.WriteString(strconv.FormatInt(precision.ScaleTo(*p.Timestamp), 10))
	}

	return nil
}

func encodeFieldValue(value interface{}, buf *bytes.Buffer) error {
	switch v := value.(type) {
	case int:
		encodeIntegerValue(int64(v), buf)
	case int8:
		encodeIntegerValue(int64(v), buf)
	case int16:
		encodeIntegerValue(int64(v), buf)
	case int32:
		encodeIntegerValue(int64(v), buf)
	case int64:
		encodeIntegerValue(v, buf)

	case uint:
		encodeUnsignedValue(uint64(v), buf)
	case uint8:
		encodeUnsignedValue(uint64(v), buf)
	case uint16:
		encodeUnsignedValue(uint64(v), buf)
	case uint32:
		encodeUnsignedValue(uint64(v), buf)
	case uint64:
		encodeUnsignedValue(v, buf)

	case float32:
		buf.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	case float64:
		buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))

	case string:
		buf.WriteByte('"')
		buf.WriteString(v)
		buf.WriteByte('"')

	case bool:
		buf.WriteString(strconv.FormatBool(v))

	default:
		return fmt.Errorf("invalid value %#v (%T)", value, value)
	}

	return nil
}

func encodeIntegerValue(i int64, buf *bytes.Buffer) {
	buf.WriteString(strconv.FormatInt(i, 10))
	buf.WriteByte('i')
}

func encodeUnsignedValue(u uint64, buf *bytes.Buffer) {
	buf.WriteString(strconv.FormatUint(u, 10))
	buf.WriteByte('i')
}

func escapeString(s string) string {
	return lineEscaper.Replace(s)
}

func sortedKeys(tags Tags) []string {
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
