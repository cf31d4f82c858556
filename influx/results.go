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
	"errors"
	"fmt"
	"io"

	"github.com/exograd/go-influx/djson"
)

// Series is one series of a query result: rows of column values sharing a
// measurement and a tag set.
type Series struct {
	Name    string
	Tags    Tags
	Columns []string
	Values  [][]djson.Value
}

type Result struct {
	Series []*Series
	Err    string
}

// Response is the decoded body of a query response, or one chunk of it for
// chunked queries.
type Response struct {
	Results []*Result
	Err     string
}

// Error returns the error of the response or of the first result containing
// one, if there is any.
func (res *Response) Error() error {
	if res.Err != "" {
		return errors.New(res.Err)
	}

	for _, result := range res.Results {
		if result.Err != "" {
			return errors.New(result.Err)
		}
	}

	return nil
}

// RowParser functions build a caller-defined row value from one row of a
// series.
type RowParser func(name string, tags Tags, columns []string, values []djson.Value) (interface{}, error)

// ParseRawRow is the identity row parser: each row is returned as the slice
// of its raw JSON values.
func ParseRawRow(name string, tags Tags, columns []string, values []djson.Value) (interface{}, error) {
	return values, nil
}

// Rows applies a parser to each row of each series of the response, in
// order.
func (res *Response) Rows(parser RowParser) ([]interface{}, error) {
	var rows []interface{}

	for _, result := range res.Results {
		for _, series := range result.Series {
			for _, values := range series.Values {
				row, err := parser(series.Name, series.Tags, series.Columns,
					values)
				if err != nil {
					return nil, fmt.Errorf("cannot parse row of series %q: %w",
						series.Name, err)
				}

				rows = append(rows, row)
			}
		}
	}

	return rows, nil
}

// Accumulator objects fold the row batches produced by a chunked query. Each
// decoded chunk yields one Step call; implementations keep whatever state
// they need between calls.
type Accumulator interface {
	Step(batch []interface{}) error
}

// AccumulatorFunc adapts a function to the Accumulator interface.
type AccumulatorFunc func(batch []interface{}) error

func (fn AccumulatorFunc) Step(batch []interface{}) error {
	return fn(batch)
}

// RowCollector accumulates all rows in memory.
type RowCollector struct {
	Rows []interface{}
}

func (c *RowCollector) Step(batch []interface{}) error {
	c.Rows = append(c.Rows, batch...)
	return nil
}

func decodeResponseBody(data []byte, status int) (*Response, error) {
	value, err := djson.Decode(data)
	if err != nil {
		return nil, &IllformedJSONError{Status: status, Body: data, Err: err}
	}

	return decodeResponse(value)
}

func decodeResponse(value djson.Value) (*Response, error) {
	if !djson.IsObject(value) {
		return nil, NewUnexpectedResponseError("response is not an object")
	}

	obj := djson.AsObject(value)

	var res Response

	if errValue, found := obj["error"]; found {
		if !djson.IsString(errValue) {
			return nil,
				NewUnexpectedResponseError("error member is not a string")
		}

		res.Err = djson.AsString(errValue)

		return &res, nil
	}

	resultsValue, found := obj["results"]
	if !found {
		return nil, NewUnexpectedResponseError("missing results member")
	}
	if !djson.IsArray(resultsValue) {
		return nil, NewUnexpectedResponseError("results member is not an array")
	}

	for i, resultValue := range djson.AsArray(resultsValue) {
		result, err := decodeResult(resultValue)
		if err != nil {
			return nil, fmt.Errorf("invalid result %d: %w", i, err)
		}

		res.Results = append(res.Results, result)
	}

	return &res, nil
}

func decodeResult(value djson.Value) (*Result, error) {
	if !djson.IsObject(value) {
		return nil, NewUnexpectedResponseError("result is not an object")
	}

	obj := djson.AsObject(value)

	var result Result

	if errValue, found := obj["error"]; found {
		if !djson.IsString(errValue) {
			return nil,
				NewUnexpectedResponseError("error member is not a string")
		}

		result.Err = djson.AsString(errValue)
	}

	if seriesValue, found := obj["series"]; found {
		if !djson.IsArray(seriesValue) {
			return nil,
				NewUnexpectedResponseError("series member is not an array")
		}

		for i, sv := range djson.AsArray(seriesValue) {
			series, err := decodeSeries(sv)
			if err != nil {
				return nil, fmt.Errorf("invalid series %d: %w", i, err)
			}

			result.Series = append(result.Series, series)
		}
	}

	return &result, nil
}

func decodeSeries(value djson.Value) (*Series, error) {
	if !djson.IsObject(value) {
		return nil, NewUnexpectedResponseError("series is not an object")
	}

	obj := djson.AsObject(value)

	var series Series

	if nameValue, found := obj["name"]; found {
		if !djson.IsString(nameValue) {
			return nil,
				NewUnexpectedResponseError("name member is not a string")
		}

		series.Name = djson.AsString(nameValue)
	}

	if tagsValue, found := obj["tags"]; found {
		if !djson.IsObject(tagsValue) {
			return nil,
				NewUnexpectedResponseError("tags member is not an object")
		}

		series.Tags = make(Tags)

		for name, tagValue := range djson.AsObject(tagsValue) {
			if !djson.IsString(tagValue) {
				return nil,
					NewUnexpectedResponseError("tag %q is not a string", name)
			}

			series.Tags[name] = djson.AsString(tagValue)
		}
	}

	if columnsValue, found := obj["columns"]; found {
		if !djson.IsArray(columnsValue) {
			return nil,
				NewUnexpectedResponseError("columns member is not an array")
		}

		for _, columnValue := range djson.AsArray(columnsValue) {
			if !djson.IsString(columnValue) {
				return nil,
					NewUnexpectedResponseError("column name is not a string")
			}

			series.Columns = append(series.Columns,
				djson.AsString(columnValue))
		}
	}

	if valuesValue, found := obj["values"]; found {
		if !djson.IsArray(valuesValue) {
			return nil,
				NewUnexpectedResponseError("values member is not an array")
		}

		for _, rowValue := range djson.AsArray(valuesValue) {
			if !djson.IsArray(rowValue) {
				return nil,
					NewUnexpectedResponseError("value row is not an array")
			}

			series.Values = append(series.Values, djson.AsArray(rowValue))
		}
	}

	return &series, nil
}

// decodeChunkedResponses consumes a stream of JSON response objects. Each
// complete object is decoded, turned into a batch of rows and folded into
// the accumulator. Decoding stops at the end of the stream; a JSON error
// aborts the query, no partial results are salvaged.
func decodeChunkedResponses(r io.Reader, parser RowParser, acc Accumulator) error {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	for {
		var value djson.Value

		if err := decoder.Decode(&value); err != nil {
			if err == io.EOF {
				return nil
			}

			return &IllformedJSONError{Err: err}
		}

		res, err := decodeResponse(value)
		if err != nil {
			return err
		}

		if res.Err != "" {
			return &InternalError{
				Message: fmt.Sprintf("chunk contains error %q despite "+
					"success status", res.Err),
			}
		}

		if err := res.Error(); err != nil {
			return err
		}

		rows, err := res.Rows(parser)
		if err != nil {
			return err
		}

		if err := acc.Step(rows); err != nil {
			return fmt.Errorf("cannot accumulate rows: %w", err)
		}
	}
}
