package nlu

import (
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// AnalysisResults is returned by Analyze. Only the requested features are set.
type AnalysisResults struct {
	Language      string                `json:"language,omitempty"`
	AnalyzedText  string                `json:"analyzed_text,omitempty"`
	RetrievedURL  string                `json:"retrieved_url,omitempty"`
	Usage         *Usage                `json:"usage,omitempty"`
	Concepts      []ConceptsResult      `json:"concepts,omitempty"`
	Entities      []EntitiesResult      `json:"entities,omitempty"`
	Keywords      []KeywordsResult      `json:"keywords,omitempty"`
	Categories    []CategoriesResult    `json:"categories,omitempty"`
	Emotion       *EmotionResult        `json:"emotion,omitempty"`
	Metadata      *MetadataResult       `json:"metadata,omitempty"`
	Relations     []RelationsResult     `json:"relations,omitempty"`
	SemanticRoles []SemanticRolesResult `json:"semantic_roles,omitempty"`
	Sentiment     *SentimentResult      `json:"sentiment,omitempty"`
}

// Usage reports the billable units of a request.
type Usage struct {
	Features       int64 `json:"features"`
	TextCharacters int64 `json:"text_characters"`
	TextUnits      int64 `json:"text_units"`
}

// ConceptsResult is a concept related to the text.
type ConceptsResult struct {
	Text            string  `json:"text"`
	Relevance       float64 `json:"relevance"`
	DBpediaResource string  `json:"dbpedia_resource,omitempty"`
}

// EntitiesResult is a named entity found in the text.
type EntitiesResult struct {
	Type           string                   `json:"type"`
	Text           string                   `json:"text"`
	Relevance      float64                  `json:"relevance"`
	Count          int64                    `json:"count,omitempty"`
	Mentions       []EntityMention          `json:"mentions,omitempty"`
	Emotion        *EmotionScores           `json:"emotion,omitempty"`
	Sentiment      *FeatureSentimentResults `json:"sentiment,omitempty"`
	Disambiguation *DisambiguationResult    `json:"disambiguation,omitempty"`
}

// EntityMention is one occurrence of an entity.
type EntityMention struct {
	Text     string          `json:"text"`
	Location watson.TextSpan `json:"location"`
}

// DisambiguationResult links an entity to a knowledge base resource.
type DisambiguationResult struct {
	Name            string   `json:"name,omitempty"`
	DBpediaResource string   `json:"dbpedia_resource,omitempty"`
	Subtype         []string `json:"subtype,omitempty"`
}

// KeywordsResult is an important keyword of the text.
type KeywordsResult struct {
	Text      string                   `json:"text"`
	Relevance float64                  `json:"relevance"`
	Count     int64                    `json:"count,omitempty"`
	Emotion   *EmotionScores           `json:"emotion,omitempty"`
	Sentiment *FeatureSentimentResults `json:"sentiment,omitempty"`
}

// CategoriesResult is a category of the content taxonomy, e.g. "/technology and computing".
type CategoriesResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// EmotionScores are the scores of the five emotions, between 0 and 1.
type EmotionScores struct {
	Anger   float64 `json:"anger"`
	Disgust float64 `json:"disgust"`
	Fear    float64 `json:"fear"`
	Joy     float64 `json:"joy"`
	Sadness float64 `json:"sadness"`
}

// EmotionResult holds document and target emotions.
type EmotionResult struct {
	Document *DocumentEmotionResults `json:"document,omitempty"`
	Targets  []TargetedEmotion       `json:"targets,omitempty"`
}

// DocumentEmotionResults are the emotions of the whole document.
type DocumentEmotionResults struct {
	Emotion EmotionScores `json:"emotion"`
}

// TargetedEmotion are the emotions expressed about a target phrase.
type TargetedEmotion struct {
	Text    string        `json:"text"`
	Emotion EmotionScores `json:"emotion"`
}

// FeatureSentimentResults is the sentiment toward an entity or keyword.
type FeatureSentimentResults struct {
	Score float64 `json:"score"`
}

// SentimentResult holds document and target sentiment.
type SentimentResult struct {
	Document *DocumentSentimentResults `json:"document,omitempty"`
	Targets  []TargetedSentiment       `json:"targets,omitempty"`
}

// DocumentSentimentResults is the sentiment of the whole document.
type DocumentSentimentResults struct {
	Label string  `json:"label,omitempty"`
	Score float64 `json:"score"`
}

// TargetedSentiment is the sentiment expressed about a target phrase.
type TargetedSentiment struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// MetadataResult is metadata of an analyzed web page.
type MetadataResult struct {
	Authors         []Author `json:"authors,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
	Title           string   `json:"title,omitempty"`
	Image           string   `json:"image,omitempty"`
	Feeds           []Feed   `json:"feeds,omitempty"`
}

// Author is an author of a web page.
type Author struct {
	Name string `json:"name"`
}

// Feed is an RSS or Atom feed of a web page.
type Feed struct {
	Link string `json:"link"`
}

// RelationsResult is a relation between two entities.
type RelationsResult struct {
	Score     float64            `json:"score"`
	Sentence  string             `json:"sentence"`
	Type      string             `json:"type"`
	Arguments []RelationArgument `json:"arguments,omitempty"`
}

// RelationArgument is one side of a relation.
type RelationArgument struct {
	Entities []RelationEntity `json:"entities,omitempty"`
	Location watson.TextSpan  `json:"location"`
	Text     string           `json:"text"`
}

// RelationEntity is an entity taking part in a relation.
type RelationEntity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// SemanticRolesResult is a subject-action-object triple of a sentence.
type SemanticRolesResult struct {
	Sentence string               `json:"sentence"`
	Subject  *SemanticRolesEntity `json:"subject,omitempty"`
	Action   *SemanticRolesAction `json:"action,omitempty"`
	Object   *SemanticRolesEntity `json:"object,omitempty"`
}

// SemanticRolesEntity is the subject or object of a semantic role.
type SemanticRolesEntity struct {
	Text     string                 `json:"text"`
	Entities []RelationEntity       `json:"entities,omitempty"`
	Keywords []SemanticRolesKeyword `json:"keywords,omitempty"`
}

// SemanticRolesKeyword is a keyword of a subject or object.
type SemanticRolesKeyword struct {
	Text string `json:"text"`
}

// SemanticRolesAction is the action of a semantic role.
type SemanticRolesAction struct {
	Text       string `json:"text"`
	Normalized string `json:"normalized,omitempty"`
	Verb       *Verb  `json:"verb,omitempty"`
}

// Verb is the verb of an action.
type Verb struct {
	Text  string `json:"text"`
	Tense string `json:"tense,omitempty"`
}

// Model is a custom model deployed to the instance.
type Model struct {
	ModelID     string `json:"model_id"`
	Status      string `json:"status,omitempty"`
	Language    string `json:"language,omitempty"`
	Description string `json:"description,omitempty"`
}

// ListModelsResults is returned by ListModels.
type ListModelsResults struct {
	Models []Model `json:"models"`
}

// DeleteModelResults is returned by DeleteModel.
type DeleteModelResults struct {
	Deleted string `json:"deleted"`
}
