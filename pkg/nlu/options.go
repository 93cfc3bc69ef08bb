package nlu

import (
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// Features selects the analyses to run and their parameters. At least one
// feature must be set.
type Features struct {
	Concepts      *ConceptsOptions      `json:"concepts,omitempty"`
	Emotion       *EmotionOptions       `json:"emotion,omitempty"`
	Entities      *EntitiesOptions      `json:"entities,omitempty"`
	Keywords      *KeywordsOptions      `json:"keywords,omitempty"`
	Metadata      *MetadataOptions      `json:"metadata,omitempty"`
	Relations     *RelationsOptions     `json:"relations,omitempty"`
	SemanticRoles *SemanticRolesOptions `json:"semantic_roles,omitempty"`
	Sentiment     *SentimentOptions     `json:"sentiment,omitempty"`
	Categories    *CategoriesOptions    `json:"categories,omitempty"`
}

func (f *Features) empty() bool {
	return f == nil || *f == Features{}
}

// clone copies f and every feature it selects.
func (f *Features) clone() *Features {
	if f == nil {
		return nil
	}

	out := &Features{
		Metadata:  clonePtr(f.Metadata),
		Relations: clonePtr(f.Relations),
	}

	if f.Relations != nil {
		out.Relations.Model = clonePtr(f.Relations.Model)
	}

	if f.Concepts != nil {
		out.Concepts = &ConceptsOptions{Limit: clonePtr(f.Concepts.Limit)}
	}

	if f.Categories != nil {
		out.Categories = &CategoriesOptions{Limit: clonePtr(f.Categories.Limit)}
	}

	if f.Emotion != nil {
		out.Emotion = &EmotionOptions{
			Document: clonePtr(f.Emotion.Document),
			Targets:  watson.CloneStrings(f.Emotion.Targets),
		}
	}

	if f.Sentiment != nil {
		out.Sentiment = &SentimentOptions{
			Document: clonePtr(f.Sentiment.Document),
			Targets:  watson.CloneStrings(f.Sentiment.Targets),
		}
	}

	if f.Entities != nil {
		out.Entities = &EntitiesOptions{
			Limit:     clonePtr(f.Entities.Limit),
			Mentions:  clonePtr(f.Entities.Mentions),
			Model:     clonePtr(f.Entities.Model),
			Sentiment: clonePtr(f.Entities.Sentiment),
			Emotion:   clonePtr(f.Entities.Emotion),
		}
	}

	if f.Keywords != nil {
		out.Keywords = &KeywordsOptions{
			Limit:     clonePtr(f.Keywords.Limit),
			Sentiment: clonePtr(f.Keywords.Sentiment),
			Emotion:   clonePtr(f.Keywords.Emotion),
		}
	}

	if f.SemanticRoles != nil {
		out.SemanticRoles = &SemanticRolesOptions{
			Limit:    clonePtr(f.SemanticRoles.Limit),
			Keywords: clonePtr(f.SemanticRoles.Keywords),
			Entities: clonePtr(f.SemanticRoles.Entities),
		}
	}

	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}

// ConceptsOptions configures concept tagging.
type ConceptsOptions struct {
	Limit *int64 `json:"limit,omitempty"`
}

// EmotionOptions configures emotion analysis of the document and of targets.
type EmotionOptions struct {
	Document *bool    `json:"document,omitempty"`
	Targets  []string `json:"targets,omitempty"`
}

// EntitiesOptions configures entity extraction.
type EntitiesOptions struct {
	Limit     *int64  `json:"limit,omitempty"`
	Mentions  *bool   `json:"mentions,omitempty"`
	Model     *string `json:"model,omitempty"`
	Sentiment *bool   `json:"sentiment,omitempty"`
	Emotion   *bool   `json:"emotion,omitempty"`
}

// KeywordsOptions configures keyword extraction.
type KeywordsOptions struct {
	Limit     *int64 `json:"limit,omitempty"`
	Sentiment *bool  `json:"sentiment,omitempty"`
	Emotion   *bool  `json:"emotion,omitempty"`
}

// MetadataOptions requests document metadata; it has no parameters.
type MetadataOptions struct{}

// RelationsOptions configures relation extraction.
type RelationsOptions struct {
	Model *string `json:"model,omitempty"`
}

// SemanticRolesOptions configures semantic role parsing.
type SemanticRolesOptions struct {
	Limit    *int64 `json:"limit,omitempty"`
	Keywords *bool  `json:"keywords,omitempty"`
	Entities *bool  `json:"entities,omitempty"`
}

// SentimentOptions configures sentiment analysis of the document and of targets.
type SentimentOptions struct {
	Document *bool    `json:"document,omitempty"`
	Targets  []string `json:"targets,omitempty"`
}

// CategoriesOptions configures categorization.
type CategoriesOptions struct {
	Limit *int64 `json:"limit,omitempty"`
}

// AnalyzeOptions are the parameters of Analyze. Exactly one of Text, HTML
// and URL must be set.
type AnalyzeOptions struct {
	Text                *string
	HTML                *string
	URL                 *string
	Features            *Features
	Clean               *bool
	XPath               *string
	FallbackToRaw       *bool
	ReturnAnalyzedText  *bool
	Language            *string
	LimitTextCharacters *int64
}

// Validate checks the required fields.
func (o *AnalyzeOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	sources := 0

	for _, source := range []*string{o.Text, o.HTML, o.URL} {
		if source != nil {
			sources++
		}
	}

	switch {
	case sources == 0:
		return watson.InvalidArgument("text", "html or url must be set")
	case sources > 1:
		return watson.InvalidArgument("text", "html and url are mutually exclusive")
	}

	if o.Features.empty() {
		return watson.RequiredArgument("features")
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *AnalyzeOptions) NewBuilder() *AnalyzeOptionsBuilder {
	opts := *o
	opts.Features = o.Features.clone()

	return &AnalyzeOptionsBuilder{opts: opts}
}

// AnalyzeOptionsBuilder builds AnalyzeOptions.
type AnalyzeOptionsBuilder struct {
	opts AnalyzeOptions
}

// NewAnalyzeOptionsBuilder starts an empty builder.
func NewAnalyzeOptionsBuilder() *AnalyzeOptionsBuilder {
	return &AnalyzeOptionsBuilder{}
}

// Text sets plain text to analyze.
func (b *AnalyzeOptionsBuilder) Text(text string) *AnalyzeOptionsBuilder {
	b.opts.Text = &text

	return b
}

// HTML sets HTML to analyze.
func (b *AnalyzeOptionsBuilder) HTML(html string) *AnalyzeOptionsBuilder {
	b.opts.HTML = &html

	return b
}

// URL sets a public web page to analyze.
func (b *AnalyzeOptionsBuilder) URL(url string) *AnalyzeOptionsBuilder {
	b.opts.URL = &url

	return b
}

// Features sets the analyses to run.
func (b *AnalyzeOptionsBuilder) Features(features Features) *AnalyzeOptionsBuilder {
	b.opts.Features = &features

	return b
}

// Clean toggles removal of ads and navigation from web pages.
func (b *AnalyzeOptionsBuilder) Clean(clean bool) *AnalyzeOptionsBuilder {
	b.opts.Clean = &clean

	return b
}

// XPath selects the part of a web page to analyze.
func (b *AnalyzeOptionsBuilder) XPath(xpath string) *AnalyzeOptionsBuilder {
	b.opts.XPath = &xpath

	return b
}

// FallbackToRaw analyzes the raw page when cleaning leaves no text.
func (b *AnalyzeOptionsBuilder) FallbackToRaw(fallback bool) *AnalyzeOptionsBuilder {
	b.opts.FallbackToRaw = &fallback

	return b
}

// ReturnAnalyzedText includes the analyzed text in the results.
func (b *AnalyzeOptionsBuilder) ReturnAnalyzedText(returnText bool) *AnalyzeOptionsBuilder {
	b.opts.ReturnAnalyzedText = &returnText

	return b
}

// Language overrides language detection.
func (b *AnalyzeOptionsBuilder) Language(language string) *AnalyzeOptionsBuilder {
	b.opts.Language = &language

	return b
}

// LimitTextCharacters truncates the analyzed text.
func (b *AnalyzeOptionsBuilder) LimitTextCharacters(limit int64) *AnalyzeOptionsBuilder {
	b.opts.LimitTextCharacters = &limit

	return b
}

// Build validates and returns the options.
func (b *AnalyzeOptionsBuilder) Build() (*AnalyzeOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// DeleteModelOptions are the parameters of DeleteModel.
type DeleteModelOptions struct {
	ModelID string
}

// Validate checks the required fields.
func (o *DeleteModelOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.ModelID == "" {
		return watson.RequiredArgument("model_id")
	}

	return nil
}

// NewDeleteModelOptions validates and returns options for modelID.
func NewDeleteModelOptions(modelID string) (*DeleteModelOptions, error) {
	opts := &DeleteModelOptions{ModelID: modelID}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}
