package speechtotext

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// Custom language model statuses.
const (
	ModelStatusPending   = "pending"
	ModelStatusReady     = "ready"
	ModelStatusTraining  = "training"
	ModelStatusAvailable = "available"
	ModelStatusUpgrading = "upgrading"
	ModelStatusFailed    = "failed"
)

// Word types accepted by TrainLanguageModel and ListWords.
const (
	WordTypeAll      = "all"
	WordTypeUser     = "user"
	WordTypeCorpora  = "corpora"
	WordTypeGrammars = "grammars"
)

// ErrTrainingFailed is returned by WaitForLanguageModel when training fails.
var ErrTrainingFailed = errors.New("language model training failed")

// reservedCorpusName holds the words added directly to a model.
const reservedCorpusName = "user"

// CreateLanguageModelOptions are the parameters of CreateLanguageModel.
type CreateLanguageModelOptions struct {
	Name          string
	BaseModelName string
	Dialect       *string
	Description   *string
}

// Validate checks the required fields.
func (o *CreateLanguageModelOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.Name == "" {
		return watson.RequiredArgument("name")
	}

	if o.BaseModelName == "" {
		return watson.RequiredArgument("base_model_name")
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *CreateLanguageModelOptions) NewBuilder() *CreateLanguageModelOptionsBuilder {
	return &CreateLanguageModelOptionsBuilder{opts: *o}
}

// CreateLanguageModelOptionsBuilder builds CreateLanguageModelOptions.
type CreateLanguageModelOptionsBuilder struct {
	opts CreateLanguageModelOptions
}

// NewCreateLanguageModelOptionsBuilder starts a custom model named name on top
// of a base model such as "en-US_BroadbandModel".
func NewCreateLanguageModelOptionsBuilder(name, baseModelName string) *CreateLanguageModelOptionsBuilder {
	return &CreateLanguageModelOptionsBuilder{opts: CreateLanguageModelOptions{Name: name, BaseModelName: baseModelName}}
}

// Dialect sets the dialect of the base model's language.
func (b *CreateLanguageModelOptionsBuilder) Dialect(dialect string) *CreateLanguageModelOptionsBuilder {
	b.opts.Dialect = &dialect

	return b
}

// Description sets the model description.
func (b *CreateLanguageModelOptionsBuilder) Description(description string) *CreateLanguageModelOptionsBuilder {
	b.opts.Description = &description

	return b
}

// Build validates and returns the options.
func (b *CreateLanguageModelOptionsBuilder) Build() (*CreateLanguageModelOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// LanguageModelOptions identify a custom language model.
type LanguageModelOptions struct {
	CustomizationID string
}

// Validate checks the required fields.
func (o *LanguageModelOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.CustomizationID == "" {
		return watson.RequiredArgument("customization_id")
	}

	return nil
}

func (o *LanguageModelOptions) path(suffix string) string {
	return client.Path("/v1/customizations/%s", o.CustomizationID) + suffix
}

// NewLanguageModelOptions validates and returns options for a custom model.
func NewLanguageModelOptions(customizationID string) (*LanguageModelOptions, error) {
	opts := &LanguageModelOptions{CustomizationID: customizationID}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// TrainLanguageModelOptions are the parameters of TrainLanguageModel.
type TrainLanguageModelOptions struct {
	LanguageModelOptions
	// WordTypeToAdd is WordTypeAll or WordTypeUser.
	WordTypeToAdd       *string
	CustomizationWeight *float64
	Strict              *bool
}

// Validate checks the required fields.
func (o *TrainLanguageModelOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.LanguageModelOptions.Validate()
	if err != nil {
		return err
	}

	if o.WordTypeToAdd != nil && *o.WordTypeToAdd != WordTypeAll && *o.WordTypeToAdd != WordTypeUser {
		return watson.InvalidArgument("word_type_to_add", "must be all or user")
	}

	if w := o.CustomizationWeight; w != nil && (*w < 0 || *w > 1) {
		return watson.InvalidArgument("customization_weight", "must be between 0.0 and 1.0")
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *TrainLanguageModelOptions) NewBuilder() *TrainLanguageModelOptionsBuilder {
	return &TrainLanguageModelOptionsBuilder{opts: *o}
}

// TrainLanguageModelOptionsBuilder builds TrainLanguageModelOptions.
type TrainLanguageModelOptionsBuilder struct {
	opts TrainLanguageModelOptions
}

// NewTrainLanguageModelOptionsBuilder starts a training request.
func NewTrainLanguageModelOptionsBuilder(customizationID string) *TrainLanguageModelOptionsBuilder {
	return &TrainLanguageModelOptionsBuilder{opts: TrainLanguageModelOptions{
		LanguageModelOptions: LanguageModelOptions{CustomizationID: customizationID},
	}}
}

// WordTypeToAdd selects which words of the words resource are trained.
func (b *TrainLanguageModelOptionsBuilder) WordTypeToAdd(wordType string) *TrainLanguageModelOptionsBuilder {
	b.opts.WordTypeToAdd = &wordType

	return b
}

// CustomizationWeight sets the weight stored with the trained model.
func (b *TrainLanguageModelOptionsBuilder) CustomizationWeight(weight float64) *TrainLanguageModelOptionsBuilder {
	b.opts.CustomizationWeight = &weight

	return b
}

// Strict makes training fail when any resource is invalid.
func (b *TrainLanguageModelOptionsBuilder) Strict(strict bool) *TrainLanguageModelOptionsBuilder {
	b.opts.Strict = &strict

	return b
}

// Build validates and returns the options.
func (b *TrainLanguageModelOptionsBuilder) Build() (*TrainLanguageModelOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// CorpusOptions identify a corpus of a custom language model.
type CorpusOptions struct {
	LanguageModelOptions
	CorpusName string
}

// Validate checks the required fields.
func (o *CorpusOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.LanguageModelOptions.Validate()
	if err != nil {
		return err
	}

	if o.CorpusName == "" {
		return watson.RequiredArgument("corpus_name")
	}

	return nil
}

func (o *CorpusOptions) path() string {
	return o.LanguageModelOptions.path(client.Path("/corpora/%s", o.CorpusName))
}

// NewCorpusOptions validates and returns options for a corpus.
func NewCorpusOptions(customizationID, corpusName string) (*CorpusOptions, error) {
	opts := &CorpusOptions{
		LanguageModelOptions: LanguageModelOptions{CustomizationID: customizationID},
		CorpusName:           corpusName,
	}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// AddCorpusOptions are the parameters of AddCorpus.
type AddCorpusOptions struct {
	CorpusOptions
	// CorpusFile is plain text, one sentence or phrase per line.
	CorpusFile     *watson.FileSource
	AllowOverwrite *bool
}

// Validate checks the required fields.
func (o *AddCorpusOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.CorpusOptions.Validate()
	if err != nil {
		return err
	}

	if o.CorpusName == reservedCorpusName {
		return watson.InvalidArgument("corpus_name", "user is reserved for words added directly")
	}

	if o.CorpusFile == nil {
		return watson.RequiredArgument("corpus_file")
	}

	return o.CorpusFile.Validate()
}

// NewBuilder returns a builder initialised from the options.
func (o *AddCorpusOptions) NewBuilder() *AddCorpusOptionsBuilder {
	return &AddCorpusOptionsBuilder{opts: *o}
}

// AddCorpusOptionsBuilder builds AddCorpusOptions.
type AddCorpusOptionsBuilder struct {
	opts AddCorpusOptions
}

// NewAddCorpusOptionsBuilder starts a builder adding file as corpus corpusName.
func NewAddCorpusOptionsBuilder(customizationID, corpusName string, file *watson.FileSource) *AddCorpusOptionsBuilder {
	return &AddCorpusOptionsBuilder{opts: AddCorpusOptions{
		CorpusOptions: CorpusOptions{
			LanguageModelOptions: LanguageModelOptions{CustomizationID: customizationID},
			CorpusName:           corpusName,
		},
		CorpusFile: file,
	}}
}

// AllowOverwrite replaces an existing corpus of the same name.
func (b *AddCorpusOptionsBuilder) AllowOverwrite(allow bool) *AddCorpusOptionsBuilder {
	b.opts.AllowOverwrite = &allow

	return b
}

// Build validates and returns the options.
func (b *AddCorpusOptionsBuilder) Build() (*AddCorpusOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// AddWordsOptions are the parameters of AddWords.
type AddWordsOptions struct {
	LanguageModelOptions
	Words []CustomWord
}

// Validate checks the required fields.
func (o *AddWordsOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.LanguageModelOptions.Validate()
	if err != nil {
		return err
	}

	if len(o.Words) == 0 {
		return watson.RequiredArgument("words")
	}

	for i, word := range o.Words {
		if word.Word == "" {
			return watson.InvalidArgument("words", fmt.Sprintf("entry %d has no word", i))
		}
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *AddWordsOptions) NewBuilder() *AddWordsOptionsBuilder {
	return &AddWordsOptionsBuilder{opts: o.clone()}
}

func (o *AddWordsOptions) clone() AddWordsOptions {
	opts := *o
	if o.Words == nil {
		return opts
	}

	opts.Words = make([]CustomWord, len(o.Words))
	for i, word := range o.Words {
		word.SoundsLike = watson.CloneStrings(word.SoundsLike)
		opts.Words[i] = word
	}

	return opts
}

// AddWordsOptionsBuilder builds AddWordsOptions.
type AddWordsOptionsBuilder struct {
	opts AddWordsOptions
}

// NewAddWordsOptionsBuilder starts a builder adding words to a custom model.
func NewAddWordsOptionsBuilder(customizationID string) *AddWordsOptionsBuilder {
	return &AddWordsOptionsBuilder{opts: AddWordsOptions{
		LanguageModelOptions: LanguageModelOptions{CustomizationID: customizationID},
	}}
}

// AddWord appends a word with its display form and pronunciations. Empty
// values are left for the service to derive.
func (b *AddWordsOptionsBuilder) AddWord(word, displayAs string, soundsLike ...string) *AddWordsOptionsBuilder {
	b.opts.Words = append(b.opts.Words, CustomWord{
		Word:       word,
		DisplayAs:  displayAs,
		SoundsLike: watson.CloneStrings(soundsLike),
	})

	return b
}

// Build validates and returns the options.
func (b *AddWordsOptionsBuilder) Build() (*AddWordsOptions, error) {
	opts := b.opts.clone()

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// ListWordsOptions are the parameters of ListWords.
type ListWordsOptions struct {
	LanguageModelOptions
	WordType *string
	// Sort is "alphabetical" or "count", optionally prefixed with + or -.
	Sort *string
}

// Validate checks the required fields.
func (o *ListWordsOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.LanguageModelOptions.Validate()
	if err != nil {
		return err
	}

	if o.WordType != nil {
		switch *o.WordType {
		case WordTypeAll, WordTypeUser, WordTypeCorpora, WordTypeGrammars:
		default:
			return watson.InvalidArgument("word_type", "must be all, user, corpora or grammars")
		}
	}

	if o.Sort != nil {
		switch *o.Sort {
		case "alphabetical", "+alphabetical", "-alphabetical", "count", "+count", "-count":
		default:
			return watson.InvalidArgument("sort", "must be alphabetical or count")
		}
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *ListWordsOptions) NewBuilder() *ListWordsOptionsBuilder {
	return &ListWordsOptionsBuilder{opts: *o}
}

// ListWordsOptionsBuilder builds ListWordsOptions.
type ListWordsOptionsBuilder struct {
	opts ListWordsOptions
}

// NewListWordsOptionsBuilder starts a listing of a custom model's words.
func NewListWordsOptionsBuilder(customizationID string) *ListWordsOptionsBuilder {
	return &ListWordsOptionsBuilder{opts: ListWordsOptions{
		LanguageModelOptions: LanguageModelOptions{CustomizationID: customizationID},
	}}
}

// WordType filters by where the words came from.
func (b *ListWordsOptionsBuilder) WordType(wordType string) *ListWordsOptionsBuilder {
	b.opts.WordType = &wordType

	return b
}

// Sort orders the words.
func (b *ListWordsOptionsBuilder) Sort(sort string) *ListWordsOptionsBuilder {
	b.opts.Sort = &sort

	return b
}

// Build validates and returns the options.
func (b *ListWordsOptionsBuilder) Build() (*ListWordsOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// WordOptions identify a word of a custom language model.
type WordOptions struct {
	LanguageModelOptions
	WordName string
}

// Validate checks the required fields.
func (o *WordOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.LanguageModelOptions.Validate()
	if err != nil {
		return err
	}

	if o.WordName == "" {
		return watson.RequiredArgument("word_name")
	}

	return nil
}

// NewWordOptions validates and returns options for a word.
func NewWordOptions(customizationID, wordName string) (*WordOptions, error) {
	opts := &WordOptions{
		LanguageModelOptions: LanguageModelOptions{CustomizationID: customizationID},
		WordName:             wordName,
	}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

type createLanguageModelRequest struct {
	Name          string  `json:"name"`
	BaseModelName string  `json:"base_model_name"`
	Dialect       *string `json:"dialect,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// CreateLanguageModel creates an empty custom language model.
func (c *Client) CreateLanguageModel(opts *CreateLanguageModelOptions) (*watson.ServiceCall[LanguageModel], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[LanguageModel](c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      "/v1/customizations",
		Operation: "create_language_model",
		Body: createLanguageModelRequest{
			Name:          opts.Name,
			BaseModelName: opts.BaseModelName,
			Dialect:       opts.Dialect,
			Description:   opts.Description,
		},
	}), nil
}

// GetLanguageModel returns a custom language model with its status.
func (c *Client) GetLanguageModel(opts *LanguageModelOptions) (*watson.ServiceCall[LanguageModel], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[LanguageModel](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path(""),
		Operation: "get_language_model",
	}), nil
}

// DeleteLanguageModel deletes a custom language model.
func (c *Client) DeleteLanguageModel(opts *LanguageModelOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:    http.MethodDelete,
		Path:      opts.path(""),
		Operation: "delete_language_model",
	}), nil
}

// TrainLanguageModel starts training a custom model on its corpora and words.
// Training runs asynchronously; see WaitForLanguageModel.
func (c *Client) TrainLanguageModel(opts *TrainLanguageModelOptions) (*watson.ServiceCall[TrainingResponse], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[TrainingResponse](c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      opts.path("/train"),
		Operation: "train_language_model",
		Query: client.NewQuery().
			String("word_type_to_add", opts.WordTypeToAdd).
			Float("customization_weight", opts.CustomizationWeight).
			Bool("strict", opts.Strict),
	}), nil
}

// ResetLanguageModel removes every corpus and word from a custom model,
// keeping its name and language.
func (c *Client) ResetLanguageModel(opts *LanguageModelOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      opts.path("/reset"),
		Operation: "reset_language_model",
	}), nil
}

// ListCorpora lists the corpora of a custom model.
func (c *Client) ListCorpora(opts *LanguageModelOptions) (*watson.ServiceCall[Corpora], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Corpora](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path("/corpora"),
		Operation: "list_corpora",
	}), nil
}

// AddCorpus uploads a plain text corpus. The service extracts its words
// asynchronously; the corpus status turns "analyzed" when done.
func (c *Client) AddCorpus(opts *AddCorpusOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:      http.MethodPost,
		Path:        opts.path(),
		Operation:   "add_corpus",
		Query:       client.NewQuery().Bool("allow_overwrite", opts.AllowOverwrite),
		RawFile:     opts.CorpusFile,
		ContentType: constants.MediaTypeTextPlain,
	}), nil
}

// GetCorpus returns a corpus with its word counts.
func (c *Client) GetCorpus(opts *CorpusOptions) (*watson.ServiceCall[Corpus], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Corpus](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path(),
		Operation: "get_corpus",
	}), nil
}

// DeleteCorpus removes a corpus and the words only it contributed.
func (c *Client) DeleteCorpus(opts *CorpusOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:    http.MethodDelete,
		Path:      opts.path(),
		Operation: "delete_corpus",
	}), nil
}

type addWordsRequest struct {
	Words []CustomWord `json:"words"`
}

// AddWords adds or replaces custom words of a model.
func (c *Client) AddWords(opts *AddWordsOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:    http.MethodPost,
		Path:      opts.path("/words"),
		Operation: "add_words",
		Body:      addWordsRequest{Words: opts.Words},
	}), nil
}

// ListWords lists the words of a custom model.
func (c *Client) ListWords(opts *ListWordsOptions) (*watson.ServiceCall[Words], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Words](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path("/words"),
		Operation: "list_words",
		Query: client.NewQuery().
			String("word_type", opts.WordType).
			String("sort", opts.Sort),
	}), nil
}

// GetWord returns a word of a custom model.
func (c *Client) GetWord(opts *WordOptions) (*watson.ServiceCall[Word], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewCall[Word](c.service, &client.Request{
		Method:    http.MethodGet,
		Path:      opts.path(client.Path("/words/%s", opts.WordName)),
		Operation: "get_word",
	}), nil
}

// DeleteWord removes a word from a custom model.
func (c *Client) DeleteWord(opts *WordOptions) (*watson.ServiceCall[watson.Empty], error) {
	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return client.NewEmptyCall(c.service, &client.Request{
		Method:    http.MethodDelete,
		Path:      opts.path(client.Path("/words/%s", opts.WordName)),
		Operation: "delete_word",
	}), nil
}

// WaitForLanguageModel polls a custom model every interval until training
// leaves it available or failed. A zero interval uses the default; the wait
// is bounded by ctx and by a default timeout.
func (c *Client) WaitForLanguageModel(ctx context.Context, opts *LanguageModelOptions, interval time.Duration) (*LanguageModel, error) {
	call, err := c.GetLanguageModel(opts)
	if err != nil {
		return nil, err
	}

	if interval <= 0 {
		interval = constants.DefaultPollInterval
	}

	pollCtx, cancel := context.WithTimeout(ctx, constants.DefaultJobPollTimeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		model, err := call.Execute(pollCtx)
		if err != nil {
			return nil, fmt.Errorf("checking language model %s: %w", opts.CustomizationID, err)
		}

		switch model.Status {
		case ModelStatusAvailable:
			return model, nil
		case ModelStatusFailed:
			return model, fmt.Errorf("%w: %s", ErrTrainingFailed, model.Error)
		}

		select {
		case <-pollCtx.Done():
			return model, fmt.Errorf("waiting for language model %s: %w", opts.CustomizationID, pollCtx.Err())
		case <-ticker.C:
		}
	}
}
