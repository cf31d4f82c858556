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
	"encoding/json"
	"testing"
	"time"

	"github.com/exograd/go-influx/djson"
	"github.com/stretchr/testify/assert"
)

func TestPrecisionEpochCode(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		precision Precision
		code      string
	}{
		{PrecisionNanosecond, "n"},
		{PrecisionMicrosecond, "u"},
		{PrecisionMillisecond, "ms"},
		{PrecisionSecond, "s"},
		{PrecisionMinute, "m"},
		{PrecisionHour, "h"},
		{PrecisionRFC3339, ""},
	}

	for _, test := range tests {
		assert.Equal(test.code, test.precision.EpochCode(),
			string(test.precision))
	}
}

func TestPrecisionScaleTo(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		precision Precision
		t         time.Time
		n         int64
	}{
		{PrecisionNanosecond, time.Unix(1_650_000_000, 123_456_789),
			1_650_000_000_123_456_789},
		{PrecisionMicrosecond, time.Unix(1_650_000_000, 123_456_789),
			1_650_000_000_123_457},
		{PrecisionMillisecond, time.Unix(1_650_000_000, 123_456_789),
			1_650_000_000_123},
		{PrecisionSecond, time.Unix(1_650_000_000, 123_456_789),
			1_650_000_000},

		// Rounding goes to the nearest unit, not toward zero
		{PrecisionSecond, time.Unix(10, 500_000_000), 11},
		{PrecisionSecond, time.Unix(10, 499_999_999), 10},
		{PrecisionMillisecond, time.Unix(0, 1_500_000), 2},
		{PrecisionMinute, time.Unix(90, 0), 2},
		{PrecisionMinute, time.Unix(89, 0), 1},
		{PrecisionHour, time.Unix(5400, 0), 2},

		{PrecisionRFC3339, time.Unix(1, 2), 1_000_000_002},
	}

	for i, test := range tests {
		assert.Equal(test.n, test.precision.ScaleTo(test.t), i+1)
	}

	// On whole second boundaries, second scaling is exactly nanosecond
	// scaling divided by 1e9.
	t0 := time.Unix(1_650_000_000, 0)
	assert.Equal(PrecisionNanosecond.ScaleTo(t0)/1_000_000_000,
		PrecisionSecond.ScaleTo(t0))
}

func TestPrecisionRoundTo(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		precision Precision
		t         time.Time
		ns        int64
	}{
		// RoundTo always reports nanoseconds, whatever the precision
		{PrecisionNanosecond, time.Unix(10, 123_456_789), 10_123_456_789},
		{PrecisionSecond, time.Unix(10, 400_000_000), 10_000_000_000},
		{PrecisionSecond, time.Unix(10, 500_000_000), 11_000_000_000},
		{PrecisionMillisecond, time.Unix(10, 123_456_789), 10_123_000_000},
		{PrecisionMinute, time.Unix(90, 0), 120_000_000_000},
		{PrecisionHour, time.Unix(5400, 0), 7_200_000_000_000},
	}

	for i, test := range tests {
		assert.Equal(test.ns, test.precision.RoundTo(test.t), i+1)
	}
}

func TestPrecisionTimeValue(t *testing.T) {
	assert := assert.New(t)

	v, err := PrecisionMillisecond.TimeValue(djson.Value(json.Number("1500")))
	if assert.NoError(err) {
		assert.Equal(time.Unix(1, 500_000_000).UTC(), v)
	}

	v, err = PrecisionSecond.TimeValue(djson.Value(json.Number("2")))
	if assert.NoError(err) {
		assert.Equal(time.Unix(2, 0).UTC(), v)
	}

	v, err = PrecisionRFC3339.TimeValue(djson.Value("2022-04-15T06:40:00Z"))
	if assert.NoError(err) {
		assert.Equal(time.Date(2022, 4, 15, 6, 40, 0, 0, time.UTC), v)
	}

	_, err = PrecisionRFC3339.TimeValue(djson.Value(json.Number("1")))
	assert.Error(err)

	_, err = PrecisionSecond.TimeValue(djson.Value("not-a-number"))
	assert.Error(err)
}

func TestPrecisionIsValid(t *testing.T) {
	assert := assert.New(t)

	for _, s := range PrecisionValues {
		assert.True(Precision(s).IsValid(), s)
	}

	assert.False(Precision("").IsValid())
	assert.False(Precision("d").IsValid())
}
