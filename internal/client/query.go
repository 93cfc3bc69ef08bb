package client

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// Query accumulates query parameters. Nil pointers and empty lists are skipped.
type Query struct {
	values url.Values
}

// NewQuery creates an empty query.
func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

// Set sets a parameter unconditionally.
func (q *Query) Set(name, value string) *Query {
	q.values.Set(name, value)

	return q
}

// String sets name when value is non-nil.
func (q *Query) String(name string, value *string) *Query {
	if value != nil {
		q.values.Set(name, *value)
	}

	return q
}

// NonEmpty sets name when value is not empty.
func (q *Query) NonEmpty(name, value string) *Query {
	if value != "" {
		q.values.Set(name, value)
	}

	return q
}

// Int sets name when value is non-nil.
func (q *Query) Int(name string, value *int64) *Query {
	if value != nil {
		q.values.Set(name, strconv.FormatInt(*value, 10))
	}

	return q
}

// Bool sets name when value is non-nil.
func (q *Query) Bool(name string, value *bool) *Query {
	if value != nil {
		q.values.Set(name, strconv.FormatBool(*value))
	}

	return q
}

// Float sets name when value is non-nil.
func (q *Query) Float(name string, value *float64) *Query {
	if value != nil {
		q.values.Set(name, strconv.FormatFloat(*value, 'f', -1, 64))
	}

	return q
}

// List sets name to the comma-joined values when there are any.
func (q *Query) List(name string, values []string) *Query {
	if len(values) > 0 {
		q.values.Set(name, strings.Join(values, ","))
	}

	return q
}

// JSONList sets name to the values encoded as a JSON array when there are any.
func (q *Query) JSONList(name string, values []string) *Query {
	if len(values) == 0 {
		return q
	}

	encoded, _ := json.Marshal(values)
	q.values.Set(name, string(encoded))

	return q
}

// Values returns a copy of the parameters.
func (q *Query) Values() url.Values {
	clone := make(url.Values, len(q.values))
	for k, v := range q.values {
		clone[k] = append([]string(nil), v...)
	}

	return clone
}
