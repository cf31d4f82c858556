package check

import (
	"bytes"
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/exograd/go-influx/jsonpointer"
)

type Checker struct {
	Pointer jsonpointer.Pointer
	Errors  ValidationErrors
}

type Object interface {
	Check(*Checker)
}

type ValidationError struct {
	Pointer jsonpointer.Pointer `json:"pointer"`
	Message string              `json:"message"`
}

type ValidationErrors []*ValidationError

func (err ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", err.Pointer, err.Message)
}

func (errs ValidationErrors) Error() string {
	var buf bytes.Buffer
	for _, err := range errs {
		buf.WriteString(err.Error())
		buf.WriteByte('\n')
	}
	return buf.String()
}

func NewChecker() *Checker {
	return &Checker{}
}

func (c *Checker) Error() error {
	if len(c.Errors) == 0 {
		return nil
	}

	return c.Errors
}

func (c *Checker) Push(token string) {
	c.Pointer = append(c.Pointer, token)
}

func (c *Checker) Pop() {
	c.Pointer = c.Pointer[:len(c.Pointer)-1]
}

func (c *Checker) WithChild(tokenOrIndex interface{}, fn func()) {
	var token string
	switch v := tokenOrIndex.(type) {
	case string:
		token = v
	case int:
		token = strconv.Itoa(v)
	}

	c.Push(token)
	defer c.Pop()

	fn()
}

func (c *Checker) AddError(token string, format string, args ...interface{}) {
	var pointer jsonpointer.Pointer
	pointer = append(pointer, c.Pointer...)
	pointer.Append(token)

	err := ValidationError{
		Pointer: pointer,
		Message: fmt.Sprintf(format, args...),
	}

	c.Errors = append(c.Errors, &err)
}

func (c *Checker) Check(token string, v bool, format string, args ...interface{}) bool {
	if !v {
		c.AddError(token, format, args...)
	}

	return v
}

func (c *Checker) CheckIntMin(token string, i, min int) bool {
	return c.Check(token, i >= min,
		"integer %d must be greater or equal to %d", i, min)
}

func (c *Checker) CheckIntMax(token string, i, max int) bool {
	return c.Check(token, i <= max,
		"integer %d must be lower or equal to %d", i, max)
}

func (c *Checker) CheckIntMinMax(token string, i, min, max int) bool {
	if !c.CheckIntMin(token, i, min) {
		return false
	}

	return c.CheckIntMax(token, i, max)
}

func (c *Checker) CheckStringNotEmpty(token string, s string) bool {
	return c.Check(token, s != "",
		"string must not be empty")
}

func (c *Checker) CheckStringValue(token string, value interface{}, values interface{}) bool {
	valueType := reflect.TypeOf(value)
	if valueType.Kind() != reflect.String {
		panicf("value %#v (%T) is not a string", value, value)
	}

	s := reflect.ValueOf(value).String()

	valuesType := reflect.TypeOf(values)
	if valuesType.Kind() != reflect.Slice {
		panicf("values %#v (%T) are not a slice", values, values)
	}
	if valuesType.Elem().Kind() != reflect.String {
		panicf("values %#v (%T) are not a slice of strings", values, values)
	}

	valuesValue := reflect.ValueOf(values)

	found := false
	for i := 0; i < valuesValue.Len(); i++ {
		s2 := valuesValue.Index(i).String()
		if s == s2 {
			found = true
		}
	}

	if !found {
		var buf bytes.Buffer

		buf.WriteString("value must be one of the following strings: ")

		for i := 0; i < valuesValue.Len(); i++ {
			if i > 0 {
				buf.WriteString(", ")
			}

			buf.WriteString(valuesValue.Index(i).String())
		}

		c.AddError(token, "%s", buf.String())
	}

	return found
}

func (c *Checker) CheckStringURI(token string, s string) bool {
	// The url.Parse function considers that the empty string is a valid URL.
	// It is not.

	if s == "" {
		c.AddError(token, "string must be a valid uri")
		return false
	} else if _, err := url.Parse(s); err != nil {
		c.AddError(token, "string must be a valid uri")
		return false
	}

	return true
}

func (c *Checker) CheckOptionalObject(token string, value interface{}) bool {
	var isNil bool
	checkObject(value, &isNil)

	if isNil {
		return true
	}

	return c.doCheckObject(token, value)
}

func (c *Checker) CheckObject(token string, value interface{}) bool {
	var isNil bool
	checkObject(value, &isNil)

	if !c.Check(token, !isNil, "missing value") {
		return false
	}

	return c.doCheckObject(token, value)
}

func (c *Checker) doCheckObject(token string, value interface{}) bool {
	nbErrors := len(c.Errors)

	obj, ok := value.(Object)
	if !ok {
		panicf("value %#v (%T) does not implement Object", value, value)
	}

	c.WithChild(token, func() {
		obj.Check(c)
	})

	return len(c.Errors) == nbErrors
}

func checkObject(value interface{}, pnil *bool) {
	valueType := reflect.TypeOf(value)
	if valueType == nil {
		*pnil = true
		return
	}

	if valueType.Kind() != reflect.Pointer {
		panicf("value %#v (%T) is not a pointer", value, value)
	}

	pointedValueType := valueType.Elem()
	if pointedValueType.Kind() != reflect.Struct {
		panicf("value %#v (%T) is not an object pointer", value, value)
	}

	*pnil = reflect.ValueOf(value).IsZero()
}

func panicf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}
