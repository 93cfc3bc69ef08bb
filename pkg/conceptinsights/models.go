package conceptinsights

import (
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// Accounts is returned by GetAccountsInfo.
type Accounts struct {
	Accounts []Account `json:"accounts"`
}

// Account is an account the credentials can use.
type Account struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name,omitempty"`
}

// Graphs is returned by ListGraphs. Each entry is a graph id such as
// "/graphs/wikipedia/en-20120601".
type Graphs struct {
	Graphs []string `json:"graphs"`
}

// Concept identifies a node of a graph.
type Concept struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Matches is returned by SearchGraphConceptByLabel.
type Matches struct {
	Matches []Concept `json:"matches"`
}

// ScoredConcept is a concept with its relatedness score.
type ScoredConcept struct {
	Concept Concept `json:"concept"`
	Score   float64 `json:"score"`
}

// Concepts is returned by GetGraphRelatedConcepts.
type Concepts struct {
	Concepts []ScoredConcept `json:"concepts"`
}

// Annotation is a concept mentioned in annotated text.
type Annotation struct {
	Concept   Concept         `json:"concept"`
	Score     float64         `json:"score"`
	TextIndex watson.TextSpan `json:"text_index"`
}

// Annotations is returned by AnnotateText.
type Annotations struct {
	Annotations []Annotation `json:"annotations"`
}

// ConceptMetadata describes a concept.
type ConceptMetadata struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Abstract  string   `json:"abstract,omitempty"`
	Link      string   `json:"link,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Ontology  []string `json:"ontology,omitempty"`
}

// Score is the relation score between two concepts.
type Score struct {
	Concept string  `json:"concept"`
	Score   float64 `json:"score"`
}

// Scores is returned by GetGraphRelationScores.
type Scores struct {
	Scores []Score `json:"scores"`
}

// Corpus access levels.
const (
	AccessPrivate = "private"
	AccessPublic  = "public"
)

// CorpusUser grants a user access to a corpus.
type CorpusUser struct {
	UID        string `json:"uid"`
	Permission string `json:"permission"`
}

// Corpus is a collection of documents annotated against a graph.
type Corpus struct {
	ID        string       `json:"id"`
	Access    string       `json:"access,omitempty"`
	Users     []CorpusUser `json:"users,omitempty"`
	TTLHours  int64        `json:"ttl_hours,omitempty"`
	ExpiresOn string       `json:"expires_on,omitempty"`
}

// Corpora is returned by ListCorpora and GetCorpora.
type Corpora struct {
	Corpora []Corpus `json:"corpora"`
}

// ExplanationTag explains why a document matched a conceptual search.
type ExplanationTag struct {
	Concept          Concept         `json:"concept"`
	Score            float64         `json:"score"`
	ParentPartsIndex int64           `json:"parent_parts_index"`
	TextIndex        watson.TextSpan `json:"text_index"`
}

// SearchResult is a document matching a conceptual search.
type SearchResult struct {
	ID              string           `json:"id"`
	Label           string           `json:"label"`
	Score           float64          `json:"score"`
	ExplanationTags []ExplanationTag `json:"explanation_tags,omitempty"`
}

// QueryConcepts is returned by ConceptualSearch.
type QueryConcepts struct {
	QueryConcepts []Concept      `json:"query_concepts"`
	Results       []SearchResult `json:"results"`
}

// Document processing states, also used to filter ListDocuments.
const (
	StatusReady      = "ready"
	StatusProcessing = "processing"
	StatusError      = "error"
)

// DocumentPart is a named section of a document's content.
type DocumentPart struct {
	Name        string `json:"name"`
	ContentType string `json:"content-type"`
	Data        string `json:"data"`
}

// Document is a text document stored in a corpus.
type Document struct {
	ID           string            `json:"id,omitempty"`
	Label        string            `json:"label"`
	Parts        []DocumentPart    `json:"parts"`
	UserFields   map[string]string `json:"user_fields,omitempty"`
	TTLHours     int64             `json:"ttl_hours,omitempty"`
	ExpiresOn    string            `json:"expires_on,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
}

// Documents is returned by ListDocuments. Each entry is a full document id
// such as "/corpora/public/TEDTalks/documents/1".
type Documents struct {
	Documents []string `json:"documents"`
}

// PartAnnotation is a concept found in one part of a document.
type PartAnnotation struct {
	Concept    Concept         `json:"concept"`
	Score      float64         `json:"score"`
	PartsIndex int64           `json:"parts_index"`
	TextIndex  watson.TextSpan `json:"text_index"`
}

// DocumentAnnotations is returned by GetDocumentAnnotations.
type DocumentAnnotations struct {
	Annotations []PartAnnotation `json:"annotations"`
}

// DocumentProcessingState is returned by GetDocumentProcessingState.
type DocumentProcessingState struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	LastModified string `json:"last_modified,omitempty"`
}

// BuildStatus counts the documents of a corpus in each processing state.
type BuildStatus struct {
	Ready      int64 `json:"ready"`
	Processing int64 `json:"processing"`
	Error      int64 `json:"error"`
}

// CorpusProcessingState is returned by GetCorpusProcessingState.
type CorpusProcessingState struct {
	ID          string      `json:"id"`
	Documents   int64       `json:"documents"`
	LastUpdated string      `json:"last_updated,omitempty"`
	BuildStatus BuildStatus `json:"build_status"`
}

// TagCount is how many documents of a corpus mention a concept.
type TagCount struct {
	Concept string `json:"concept"`
	Count   int64  `json:"count"`
}

// TopTags lists the concepts most mentioned in a corpus.
type TopTags struct {
	TotalTags int64      `json:"total_tags"`
	Tags      []TagCount `json:"tags"`
}

// CorpusStats is returned by GetCorpusStats.
type CorpusStats struct {
	ID          string      `json:"id"`
	LastUpdated string      `json:"last_updated,omitempty"`
	BuildStatus BuildStatus `json:"build_status"`
	TopTags     TopTags     `json:"top_tags"`
}
