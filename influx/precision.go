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
	"errors"
	"fmt"
	"time"

	"github.com/exograd/go-influx/djson"
)

// Precision selects the representation of timestamps exchanged with the
// server. PrecisionRFC3339 is only valid for queries: written points always
// carry integer timestamps.
type Precision string

const (
	PrecisionNanosecond  Precision = "ns"
	PrecisionMicrosecond Precision = "us"
	PrecisionMillisecond Precision = "ms"
	PrecisionSecond      Precision = "s"
	PrecisionMinute      Precision = "m"
	PrecisionHour        Precision = "h"
	PrecisionRFC3339     Precision = "rfc3339"
)

var PrecisionValues = []string{
	string(PrecisionNanosecond),
	string(PrecisionMicrosecond),
	string(PrecisionMillisecond),
	string(PrecisionSecond),
	string(PrecisionMinute),
	string(PrecisionHour),
	string(PrecisionRFC3339),
}

// ErrRFC3339WritePrecision is returned when PrecisionRFC3339 is used on the
// write path.
var ErrRFC3339WritePrecision = errors.New("rfc3339 timestamps cannot be used to write points")

func (p Precision) IsValid() bool {
	switch p {
	case PrecisionNanosecond, PrecisionMicrosecond, PrecisionMillisecond,
		PrecisionSecond, PrecisionMinute, PrecisionHour, PrecisionRFC3339:
		return true
	default:
		return false
	}
}

// UnitNanoseconds returns the duration of one unit of the precision in
// nanoseconds. RFC3339 timestamps use nanosecond arithmetic.
func (p Precision) UnitNanoseconds() int64 {
	switch p {
	case PrecisionNanosecond, PrecisionRFC3339:
		return 1
	case PrecisionMicrosecond:
		return 1_000
	case PrecisionMillisecond:
		return 1_000_000
	case PrecisionSecond:
		return 1_000_000_000
	case PrecisionMinute:
		return 60_000_000_000
	case PrecisionHour:
		return 3_600_000_000_000
	default:
		panic(fmt.Sprintf("unknown precision %q", string(p)))
	}
}

// EpochCode returns the value of the "epoch" query parameter associated with
// the precision. RFC3339 has no code: the server sends RFC3339 timestamps
// when the parameter is absent.
func (p Precision) EpochCode() string {
	switch p {
	case PrecisionNanosecond:
		return "n"
	case PrecisionMicrosecond:
		return "u"
	case PrecisionMillisecond:
		return "ms"
	case PrecisionSecond:
		return "s"
	case PrecisionMinute:
		return "m"
	case PrecisionHour:
		return "h"
	case PrecisionRFC3339:
		return ""
	default:
		panic(fmt.Sprintf("unknown precision %q", string(p)))
	}
}

// ScaleTo converts a point in time to a number of precision units since the
// Unix epoch, rounded to the nearest unit.
func (p Precision) ScaleTo(t time.Time) int64 {
	return roundedDiv(t.UnixNano(), p.UnitNanoseconds())
}

// RoundTo rounds a point in time to the nearest multiple of the precision
// unit. The result is a number of nanoseconds since the Unix epoch whatever
// the precision; see ScaleTo for precision units.
func (p Precision) RoundTo(t time.Time) int64 {
	unit := p.UnitNanoseconds()
	return roundedDiv(t.UnixNano(), unit) * unit
}

// TimeValue interprets a value of the "time" result column: an RFC3339
// string for PrecisionRFC3339, a number of precision units since the Unix
// epoch otherwise.
func (p Precision) TimeValue(value djson.Value) (time.Time, error) {
	if p == PrecisionRFC3339 {
		if !djson.IsString(value) {
			return time.Time{},
				fmt.Errorf("timestamp %#v is not a string", value)
		}

		t, err := time.Parse(time.RFC3339Nano, djson.AsString(value))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp: %w", err)
		}

		return t.UTC(), nil
	}

	if !djson.IsNumber(value) {
		return time.Time{}, fmt.Errorf("timestamp %#v is not a number", value)
	}

	n, err := djson.AsInt64(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	return time.Unix(0, n*p.UnitNanoseconds()).UTC(), nil
}

// roundedDiv divides n by d, rounding half away from zero.
func roundedDiv(n, d int64) int64 {
	if n >= 0 {
		return (n + d/2) / d
	}

	return (n - d/2) / d
}
