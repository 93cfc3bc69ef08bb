package languagetranslator

import (
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// TranslateOptions are the parameters of Translate. Either ModelID or Target
// selects the model; Source is identified automatically when omitted.
type TranslateOptions struct {
	Text    []string
	ModelID *string
	Source  *string
	Target  *string
}

// Validate checks the required fields.
func (o *TranslateOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if len(o.Text) == 0 {
		return watson.RequiredArgument("text")
	}

	if o.ModelID == nil && o.Target == nil {
		return watson.InvalidArgument("model_id", "or target must be set")
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *TranslateOptions) NewBuilder() *TranslateOptionsBuilder {
	opts := *o
	opts.Text = watson.CloneStrings(o.Text)

	return &TranslateOptionsBuilder{opts: opts}
}

// TranslateOptionsBuilder builds TranslateOptions.
type TranslateOptionsBuilder struct {
	opts TranslateOptions
}

// NewTranslateOptionsBuilder starts a builder with the texts to translate.
func NewTranslateOptionsBuilder(text ...string) *TranslateOptionsBuilder {
	return &TranslateOptionsBuilder{opts: TranslateOptions{Text: watson.CloneStrings(text)}}
}

// AddText appends a text to translate.
func (b *TranslateOptionsBuilder) AddText(text string) *TranslateOptionsBuilder {
	b.opts.Text = append(b.opts.Text, text)

	return b
}

// ModelID selects the model, e.g. "en-es".
func (b *TranslateOptionsBuilder) ModelID(modelID string) *TranslateOptionsBuilder {
	b.opts.ModelID = &modelID

	return b
}

// Source sets the source language.
func (b *TranslateOptionsBuilder) Source(source string) *TranslateOptionsBuilder {
	b.opts.Source = &source

	return b
}

// Target sets the target language.
func (b *TranslateOptionsBuilder) Target(target string) *TranslateOptionsBuilder {
	b.opts.Target = &target

	return b
}

// Build validates and returns the options.
func (b *TranslateOptionsBuilder) Build() (*TranslateOptions, error) {
	opts := b.opts
	opts.Text = watson.CloneStrings(b.opts.Text)

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// IdentifyOptions are the parameters of Identify.
type IdentifyOptions struct {
	Text string
}

// Validate checks the required fields.
func (o *IdentifyOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.Text == "" {
		return watson.RequiredArgument("text")
	}

	return nil
}

// NewIdentifyOptions validates and returns options for text.
func NewIdentifyOptions(text string) (*IdentifyOptions, error) {
	opts := &IdentifyOptions{Text: text}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// ListModelsOptions are the parameters of ListModels.
type ListModelsOptions struct {
	Source *string
	Target *string
	// DefaultModels keeps only default (true) or only non-default (false) models.
	DefaultModels *bool
}

// Validate checks the options.
func (o *ListModelsOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *ListModelsOptions) NewBuilder() *ListModelsOptionsBuilder {
	return &ListModelsOptionsBuilder{opts: *o}
}

// ListModelsOptionsBuilder builds ListModelsOptions.
type ListModelsOptionsBuilder struct {
	opts ListModelsOptions
}

// NewListModelsOptionsBuilder starts an empty builder.
func NewListModelsOptionsBuilder() *ListModelsOptionsBuilder {
	return &ListModelsOptionsBuilder{}
}

// Source keeps models translating from source.
func (b *ListModelsOptionsBuilder) Source(source string) *ListModelsOptionsBuilder {
	b.opts.Source = &source

	return b
}

// Target keeps models translating to target.
func (b *ListModelsOptionsBuilder) Target(target string) *ListModelsOptionsBuilder {
	b.opts.Target = &target

	return b
}

// DefaultModels filters on the default flag.
func (b *ListModelsOptionsBuilder) DefaultModels(defaultModels bool) *ListModelsOptionsBuilder {
	b.opts.DefaultModels = &defaultModels

	return b
}

// Build returns the options.
func (b *ListModelsOptionsBuilder) Build() (*ListModelsOptions, error) {
	opts := b.opts

	return &opts, nil
}

// CreateModelOptions are the parameters of CreateModel. At least one of
// ForcedGlossary and ParallelCorpus is required.
type CreateModelOptions struct {
	BaseModelID string
	Name        *string
	// ForcedGlossary is a TMX file of terms that are always translated the same way.
	ForcedGlossary *watson.FileSource
	// ParallelCorpus is a TMX file of sentence pairs.
	ParallelCorpus *watson.FileSource
}

// Validate checks the required fields.
func (o *CreateModelOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.BaseModelID == "" {
		return watson.RequiredArgument("base_model_id")
	}

	if o.ForcedGlossary == nil && o.ParallelCorpus == nil {
		return watson.InvalidArgument("forced_glossary", "or parallel_corpus must be set")
	}

	for _, file := range []*watson.FileSource{o.ForcedGlossary, o.ParallelCorpus} {
		if file == nil {
			continue
		}

		err := file.Validate()
		if err != nil {
			return err
		}
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *CreateModelOptions) NewBuilder() *CreateModelOptionsBuilder {
	return &CreateModelOptionsBuilder{opts: *o}
}

// CreateModelOptionsBuilder builds CreateModelOptions.
type CreateModelOptionsBuilder struct {
	opts CreateModelOptions
}

// NewCreateModelOptionsBuilder starts a builder customizing baseModelID.
func NewCreateModelOptionsBuilder(baseModelID string) *CreateModelOptionsBuilder {
	return &CreateModelOptionsBuilder{opts: CreateModelOptions{BaseModelID: baseModelID}}
}

// Name sets the custom model name.
func (b *CreateModelOptionsBuilder) Name(name string) *CreateModelOptionsBuilder {
	b.opts.Name = &name

	return b
}

// ForcedGlossary sets the glossary file.
func (b *CreateModelOptionsBuilder) ForcedGlossary(file *watson.FileSource) *CreateModelOptionsBuilder {
	b.opts.ForcedGlossary = file

	return b
}

// ParallelCorpus sets the parallel corpus file.
func (b *CreateModelOptionsBuilder) ParallelCorpus(file *watson.FileSource) *CreateModelOptionsBuilder {
	b.opts.ParallelCorpus = file

	return b
}

// Build validates and returns the options.
func (b *CreateModelOptionsBuilder) Build() (*CreateModelOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// ModelOptions identify one model. They are used by GetModel and DeleteModel.
type ModelOptions struct {
	ModelID string
}

// Validate checks the required fields.
func (o *ModelOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.ModelID == "" {
		return watson.RequiredArgument("model_id")
	}

	return nil
}

// NewModelOptions validates and returns options for modelID.
func NewModelOptions(modelID string) (*ModelOptions, error) {
	opts := &ModelOptions{ModelID: modelID}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}
