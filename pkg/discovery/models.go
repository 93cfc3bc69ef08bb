package discovery

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// Environment is a Discovery environment.
type Environment struct {
	EnvironmentID string         `json:"environment_id,omitempty"`
	Name          string         `json:"name,omitempty"`
	Description   string         `json:"description,omitempty"`
	Created       *time.Time     `json:"created,omitempty"`
	Updated       *time.Time     `json:"updated,omitempty"`
	Status        string         `json:"status,omitempty"`
	ReadOnly      bool           `json:"read_only,omitempty"`
	Size          int64          `json:"size,omitempty"`
	IndexCapacity *IndexCapacity `json:"index_capacity,omitempty"`
}

// IndexCapacity describes the storage used and available in an environment.
type IndexCapacity struct {
	Documents   *Capacity  `json:"documents,omitempty"`
	DiskUsage   *DiskUsage `json:"disk_usage,omitempty"`
	Collections *Capacity  `json:"collections,omitempty"`
}

// Capacity is a count against an upper bound.
type Capacity struct {
	Available      int64 `json:"available"`
	MaximumAllowed int64 `json:"maximum_allowed"`
}

// DiskUsage is a byte count against an upper bound.
type DiskUsage struct {
	UsedBytes           int64 `json:"used_bytes"`
	MaximumAllowedBytes int64 `json:"maximum_allowed_bytes,omitempty"`
}

// ListEnvironmentsResponse is returned by ListEnvironments.
type ListEnvironmentsResponse struct {
	Environments []Environment `json:"environments"`
}

// DeleteEnvironmentResponse is returned by DeleteEnvironment.
type DeleteEnvironmentResponse struct {
	EnvironmentID string `json:"environment_id"`
	Status        string `json:"status"`
}

// Configuration describes how documents are converted, enriched and
// normalized before they are indexed.
type Configuration struct {
	ConfigurationID string                   `json:"configuration_id,omitempty"`
	Name            string                   `json:"name"`
	Description     string                   `json:"description,omitempty"`
	Created         *time.Time               `json:"created,omitempty"`
	Updated         *time.Time               `json:"updated,omitempty"`
	Conversions     json.RawMessage          `json:"conversions,omitempty"`
	Enrichments     []Enrichment             `json:"enrichments,omitempty"`
	Normalizations  []NormalizationOperation `json:"normalizations,omitempty"`
}

// Enrichment applies an enrichment to a source field.
type Enrichment struct {
	Description            string          `json:"description,omitempty"`
	DestinationField       string          `json:"destination_field"`
	SourceField            string          `json:"source_field"`
	Overwrite              bool            `json:"overwrite,omitempty"`
	Enrichment             string          `json:"enrichment"`
	IgnoreDownstreamErrors bool            `json:"ignore_downstream_errors,omitempty"`
	Options                json.RawMessage `json:"options,omitempty"`
}

// NormalizationOperation copies, moves, merges or removes fields.
type NormalizationOperation struct {
	Operation        string `json:"operation,omitempty"`
	SourceField      string `json:"source_field,omitempty"`
	DestinationField string `json:"destination_field,omitempty"`
}

// ListConfigurationsResponse is returned by ListConfigurations.
type ListConfigurationsResponse struct {
	Configurations []Configuration `json:"configurations"`
}

// DeleteConfigurationResponse is returned by DeleteConfiguration.
type DeleteConfigurationResponse struct {
	ConfigurationID string   `json:"configuration_id"`
	Status          string   `json:"status"`
	Notices         []Notice `json:"notices,omitempty"`
}

// Collection is a set of documents in an environment.
type Collection struct {
	CollectionID    string          `json:"collection_id,omitempty"`
	Name            string          `json:"name,omitempty"`
	Description     string          `json:"description,omitempty"`
	Created         *time.Time      `json:"created,omitempty"`
	Updated         *time.Time      `json:"updated,omitempty"`
	Status          string          `json:"status,omitempty"`
	ConfigurationID string          `json:"configuration_id,omitempty"`
	Language        string          `json:"language,omitempty"`
	DocumentCounts  *DocumentCounts `json:"document_counts,omitempty"`
	DiskUsage       *DiskUsage      `json:"disk_usage,omitempty"`
}

// DocumentCounts counts the documents of a collection by state.
type DocumentCounts struct {
	Available  int64 `json:"available"`
	Processing int64 `json:"processing"`
	Failed     int64 `json:"failed"`
}

// ListCollectionsResponse is returned by ListCollections.
type ListCollectionsResponse struct {
	Collections []Collection `json:"collections"`
}

// DeleteCollectionResponse is returned by DeleteCollection.
type DeleteCollectionResponse struct {
	CollectionID string `json:"collection_id"`
	Status       string `json:"status"`
}

// Field is an indexed field and its type.
type Field struct {
	Field        string `json:"field"`
	Type         string `json:"type"`
	CollectionID string `json:"collection_id,omitempty"`
}

// ListCollectionFieldsResponse is returned by ListCollectionFields and ListFields.
type ListCollectionFieldsResponse struct {
	Fields []Field `json:"fields"`
}

// Notice is a warning or error raised while ingesting or querying.
type Notice struct {
	NoticeID    string     `json:"notice_id,omitempty"`
	Created     *time.Time `json:"created,omitempty"`
	DocumentID  string     `json:"document_id,omitempty"`
	QueryID     string     `json:"query_id,omitempty"`
	Severity    string     `json:"severity,omitempty"`
	Step        string     `json:"step,omitempty"`
	Description string     `json:"description,omitempty"`
}

// DocumentAccepted is returned when a document is queued for ingestion.
type DocumentAccepted struct {
	DocumentID string   `json:"document_id"`
	Status     string   `json:"status"`
	Notices    []Notice `json:"notices,omitempty"`
}

// DocumentStatus reports the ingestion state of a document.
type DocumentStatus struct {
	DocumentID        string     `json:"document_id"`
	ConfigurationID   string     `json:"configuration_id,omitempty"`
	Created           *time.Time `json:"created,omitempty"`
	Updated           *time.Time `json:"updated,omitempty"`
	Status            string     `json:"status"`
	StatusDescription string     `json:"status_description,omitempty"`
	Filename          string     `json:"filename,omitempty"`
	FileType          string     `json:"file_type,omitempty"`
	SHA1              string     `json:"sha1,omitempty"`
	Notices           []Notice   `json:"notices,omitempty"`
}

// DeleteDocumentResponse is returned by DeleteDocument.
type DeleteDocumentResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// QueryResponse is returned by Query and FederatedQuery.
type QueryResponse struct {
	MatchingResults   int64              `json:"matching_results"`
	Results           []QueryResult      `json:"results,omitempty"`
	Aggregations      []QueryAggregation `json:"aggregations,omitempty"`
	Passages          []QueryPassage     `json:"passages,omitempty"`
	DuplicatesRemoved int64              `json:"duplicates_removed,omitempty"`
	SessionToken      string             `json:"session_token,omitempty"`
}

// QueryResult is one matching document. Document fields vary by collection,
// so the full payload is kept in Raw and can be queried with Field.
type QueryResult struct {
	ID           string
	CollectionID string
	Score        float64
	Metadata     map[string]interface{}
	Raw          json.RawMessage
}

type queryResultFields struct {
	ID           string                 `json:"id,omitempty"`
	CollectionID string                 `json:"collection_id,omitempty"`
	Score        float64                `json:"score,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// UnmarshalJSON decodes the well-known fields and keeps the payload.
func (r *QueryResult) UnmarshalJSON(data []byte) error {
	var fields queryResultFields

	err := json.Unmarshal(data, &fields)
	if err != nil {
		return err
	}

	*r = QueryResult{
		ID:           fields.ID,
		CollectionID: fields.CollectionID,
		Score:        fields.Score,
		Metadata:     fields.Metadata,
		Raw:          append(json.RawMessage(nil), data...),
	}

	return nil
}

// MarshalJSON writes the original payload when there is one.
func (r QueryResult) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}

	return json.Marshal(queryResultFields{
		ID:           r.ID,
		CollectionID: r.CollectionID,
		Score:        r.Score,
		Metadata:     r.Metadata,
	})
}

// Field returns the value at a gjson path in the document, e.g. "enriched_text.sentiment.document.label".
func (r QueryResult) Field(path string) gjson.Result {
	return gjson.GetBytes(r.Raw, path)
}

// QueryPassage is a relevant excerpt of a matching document.
type QueryPassage struct {
	DocumentID   string  `json:"document_id"`
	PassageScore float64 `json:"passage_score"`
	PassageText  string  `json:"passage_text"`
	StartOffset  int64   `json:"start_offset"`
	EndOffset    int64   `json:"end_offset"`
	Field        string  `json:"field,omitempty"`
}
