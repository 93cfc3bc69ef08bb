package discovery

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// Aggregation types sent in the "type" key.
const (
	AggregationTerm        = "term"
	AggregationHistogram   = "histogram"
	AggregationTimeslice   = "timeslice"
	AggregationNested      = "nested"
	AggregationFilter      = "filter"
	AggregationMin         = "min"
	AggregationMax         = "max"
	AggregationAverage     = "average"
	AggregationSum         = "sum"
	AggregationUniqueCount = "unique_count"
	AggregationTopHits     = "top_hits"
)

// Aggregation is implemented by every aggregation kind.
type Aggregation interface {
	AggregationType() string
}

// QueryAggregation holds one aggregation of a query response. The concrete
// type is chosen from the "type" key: *Term, *Histogram, *Timeslice, *Nested,
// *Filter, *Calculation, *TopHits or, for unknown kinds, *GenericAggregation.
type QueryAggregation struct {
	Aggregation
}

// UnmarshalJSON dispatches on the aggregation type.
func (a *QueryAggregation) UnmarshalJSON(data []byte) error {
	var target Aggregation

	kind := gjson.GetBytes(data, "type").String()

	switch kind {
	case AggregationTerm:
		target = &Term{}
	case AggregationHistogram:
		target = &Histogram{}
	case AggregationTimeslice:
		target = &Timeslice{}
	case AggregationNested:
		target = &Nested{}
	case AggregationFilter:
		target = &Filter{}
	case AggregationMin, AggregationMax, AggregationAverage, AggregationSum, AggregationUniqueCount:
		target = &Calculation{}
	case AggregationTopHits:
		target = &TopHits{}
	default:
		target = &GenericAggregation{}
	}

	err := json.Unmarshal(data, target)
	if err != nil {
		return fmt.Errorf("decoding %s aggregation: %w", kind, err)
	}

	a.Aggregation = target

	return nil
}

// MarshalJSON writes the concrete aggregation.
func (a QueryAggregation) MarshalJSON() ([]byte, error) {
	if a.Aggregation == nil {
		return []byte("null"), nil
	}

	return json.Marshal(a.Aggregation)
}

// AggregationResult is one bucket of a term aggregation.
type AggregationResult struct {
	Key             string             `json:"key"`
	MatchingResults int64              `json:"matching_results"`
	Aggregations    []QueryAggregation `json:"aggregations,omitempty"`
}

// HistogramResult is one bucket of a histogram aggregation.
type HistogramResult struct {
	Key             float64            `json:"key"`
	MatchingResults int64              `json:"matching_results"`
	Aggregations    []QueryAggregation `json:"aggregations,omitempty"`
}

// TimesliceResult is one bucket of a timeslice aggregation. Key is sent as
// milliseconds since the epoch.
type TimesliceResult struct {
	Key             watson.EpochTime   `json:"key"`
	KeyAsString     string             `json:"key_as_string,omitempty"`
	MatchingResults int64              `json:"matching_results"`
	Aggregations    []QueryAggregation `json:"aggregations,omitempty"`
}

// Term counts the most frequent values of a field.
type Term struct {
	Type            string              `json:"type"`
	Field           string              `json:"field"`
	Count           int64               `json:"count,omitempty"`
	MatchingResults int64               `json:"matching_results,omitempty"`
	Results         []AggregationResult `json:"results,omitempty"`
}

// AggregationType implements Aggregation.
func (t *Term) AggregationType() string { return AggregationTerm }

// Histogram buckets a numeric field by interval.
type Histogram struct {
	Type            string            `json:"type"`
	Field           string            `json:"field"`
	Interval        int64             `json:"interval"`
	MatchingResults int64             `json:"matching_results,omitempty"`
	Results         []HistogramResult `json:"results,omitempty"`
}

// AggregationType implements Aggregation.
func (h *Histogram) AggregationType() string { return AggregationHistogram }

// Timeslice buckets a date field by interval.
type Timeslice struct {
	Type            string            `json:"type"`
	Field           string            `json:"field"`
	Interval        string            `json:"interval"`
	Anomaly         bool              `json:"anomaly,omitempty"`
	MatchingResults int64             `json:"matching_results,omitempty"`
	Results         []TimesliceResult `json:"results,omitempty"`
}

// AggregationType implements Aggregation.
func (t *Timeslice) AggregationType() string { return AggregationTimeslice }

// Nested scopes sub-aggregations to a nested path.
type Nested struct {
	Type            string             `json:"type"`
	Path            string             `json:"path"`
	MatchingResults int64              `json:"matching_results,omitempty"`
	Aggregations    []QueryAggregation `json:"aggregations,omitempty"`
}

// AggregationType implements Aggregation.
func (n *Nested) AggregationType() string { return AggregationNested }

// Filter restricts sub-aggregations to documents matching a filter.
type Filter struct {
	Type            string             `json:"type"`
	Match           string             `json:"match"`
	MatchingResults int64              `json:"matching_results,omitempty"`
	Aggregations    []QueryAggregation `json:"aggregations,omitempty"`
}

// AggregationType implements Aggregation.
func (f *Filter) AggregationType() string { return AggregationFilter }

// Calculation is a single value computed over a field (min, max, average,
// sum or unique_count).
type Calculation struct {
	Type  string   `json:"type"`
	Field string   `json:"field"`
	Value *float64 `json:"value,omitempty"`
}

// AggregationType implements Aggregation.
func (c *Calculation) AggregationType() string { return c.Type }

// TopHits returns the best scoring documents of each bucket.
type TopHits struct {
	Type string         `json:"type"`
	Size int64          `json:"size"`
	Hits *TopHitResults `json:"hits,omitempty"`
}

// AggregationType implements Aggregation.
func (t *TopHits) AggregationType() string { return AggregationTopHits }

// TopHitResults are the documents of a top_hits aggregation.
type TopHitResults struct {
	MatchingResults int64         `json:"matching_results"`
	Hits            []QueryResult `json:"hits,omitempty"`
}

// GenericAggregation keeps an aggregation of a kind this package does not know.
type GenericAggregation struct {
	Type string
	Raw  json.RawMessage
}

// AggregationType implements Aggregation.
func (g *GenericAggregation) AggregationType() string { return g.Type }

// UnmarshalJSON keeps the payload.
func (g *GenericAggregation) UnmarshalJSON(data []byte) error {
	g.Type = gjson.GetBytes(data, "type").String()
	g.Raw = append(json.RawMessage(nil), data...)

	return nil
}

// MarshalJSON writes the kept payload.
func (g *GenericAggregation) MarshalJSON() ([]byte, error) {
	if len(g.Raw) == 0 {
		return json.Marshal(map[string]string{"type": g.Type})
	}

	return g.Raw, nil
}
