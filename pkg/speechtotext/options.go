package speechtotext

import (
	"fmt"
	"net/url"

	"github.com/tidwall/sjson"

	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// Job callback events.
const (
	EventRecognitionsStarted          = "recognitions.started"
	EventRecognitionsCompleted        = "recognitions.completed"
	EventRecognitionsCompletedResults = "recognitions.completed_with_results"
	EventRecognitionsFailed           = "recognitions.failed"
)

// RecognitionParameters tune a recognition. They are shared by Recognize,
// CreateJob and RecognizeUsingWebSocket.
type RecognitionParameters struct {
	Model                   *string
	CustomizationID         *string
	AcousticCustomizationID *string
	BaseModelVersion        *string
	CustomizationWeight     *float64

	// InactivityTimeout is the number of seconds of silence after which the
	// service stops recognizing; -1 disables the timeout.
	InactivityTimeout         *int64
	Keywords                  []string
	KeywordsThreshold         *float64
	MaxAlternatives           *int64
	WordAlternativesThreshold *float64
	WordConfidence            *bool
	Timestamps                *bool
	ProfanityFilter           *bool
	SmartFormatting           *bool
	SpeakerLabels             *bool
}

func (p *RecognitionParameters) validate() error {
	ratios := []struct {
		name  string
		value *float64
	}{
		{"customization_weight", p.CustomizationWeight},
		{"keywords_threshold", p.KeywordsThreshold},
		{"word_alternatives_threshold", p.WordAlternativesThreshold},
	}

	for _, ratio := range ratios {
		if ratio.value != nil && (*ratio.value < 0 || *ratio.value > 1) {
			return watson.InvalidArgument(ratio.name, "must be between 0 and 1")
		}
	}

	if len(p.Keywords) > 0 && p.KeywordsThreshold == nil {
		return watson.InvalidArgument("keywords_threshold", "must be set with keywords")
	}

	if p.MaxAlternatives != nil && *p.MaxAlternatives < 1 {
		return watson.InvalidArgument("max_alternatives", "must be positive")
	}

	return nil
}

func (p *RecognitionParameters) clone() RecognitionParameters {
	clone := *p
	clone.Keywords = watson.CloneStrings(p.Keywords)

	return clone
}

// modelQuery adds the parameters that select the model. The streaming
// interface only accepts these in the URL.
func (p *RecognitionParameters) modelQuery(q *client.Query) *client.Query {
	return q.
		String("model", p.Model).
		String("customization_id", p.CustomizationID).
		String("acoustic_customization_id", p.AcousticCustomizationID).
		String("base_model_version", p.BaseModelVersion).
		Float("customization_weight", p.CustomizationWeight)
}

func (p *RecognitionParameters) query(q *client.Query) *client.Query {
	return p.modelQuery(q).
		Int("inactivity_timeout", p.InactivityTimeout).
		List("keywords", p.Keywords).
		Float("keywords_threshold", p.KeywordsThreshold).
		Int("max_alternatives", p.MaxAlternatives).
		Float("word_alternatives_threshold", p.WordAlternativesThreshold).
		Bool("word_confidence", p.WordConfidence).
		Bool("timestamps", p.Timestamps).
		Bool("profanity_filter", p.ProfanityFilter).
		Bool("smart_formatting", p.SmartFormatting).
		Bool("speaker_labels", p.SpeakerLabels)
}

// startMessage encodes the streaming start action. Model selection is left
// out: it travels in the URL.
func (p *RecognitionParameters) startMessage(contentType string, interimResults *bool) (string, error) {
	message := `{"action":"start"}`

	var err error

	set := func(path string, value interface{}) {
		if err == nil {
			message, err = sjson.Set(message, path, value)
		}
	}

	set("content-type", contentType)

	if interimResults != nil {
		set("interim_results", *interimResults)
	}

	if p.InactivityTimeout != nil {
		set("inactivity_timeout", *p.InactivityTimeout)
	}

	if len(p.Keywords) > 0 {
		set("keywords", p.Keywords)
	}

	if p.KeywordsThreshold != nil {
		set("keywords_threshold", *p.KeywordsThreshold)
	}

	if p.MaxAlternatives != nil {
		set("max_alternatives", *p.MaxAlternatives)
	}

	if p.WordAlternativesThreshold != nil {
		set("word_alternatives_threshold", *p.WordAlternativesThreshold)
	}

	flags := []struct {
		path  string
		value *bool
	}{
		{"word_confidence", p.WordConfidence},
		{"timestamps", p.Timestamps},
		{"profanity_filter", p.ProfanityFilter},
		{"smart_formatting", p.SmartFormatting},
		{"speaker_labels", p.SpeakerLabels},
	}

	for _, flag := range flags {
		if flag.value != nil {
			set(flag.path, *flag.value)
		}
	}

	if err != nil {
		return "", fmt.Errorf("encoding start message: %w", err)
	}

	return message, nil
}

// RecognizeOptions are the parameters of Recognize.
type RecognizeOptions struct {
	Audio *watson.FileSource
	// ContentType overrides the media type of Audio, e.g. "audio/l16; rate=16000".
	ContentType *string
	RecognitionParameters
}

// Validate checks the required fields.
func (o *RecognizeOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.Audio == nil {
		return watson.RequiredArgument("audio")
	}

	err := o.Audio.Validate()
	if err != nil {
		return err
	}

	return o.RecognitionParameters.validate()
}

// MediaType returns the content type sent with the audio.
func (o *RecognizeOptions) MediaType() string {
	if o.ContentType != nil && *o.ContentType != "" {
		return *o.ContentType
	}

	return o.Audio.ContentType()
}

func (o *RecognizeOptions) clone() RecognizeOptions {
	clone := *o
	clone.RecognitionParameters = o.RecognitionParameters.clone()

	return clone
}

// NewBuilder returns a builder initialised from the options.
func (o *RecognizeOptions) NewBuilder() *RecognizeOptionsBuilder {
	return &RecognizeOptionsBuilder{opts: o.clone()}
}

// CreateJobOptions are the parameters of CreateJob.
type CreateJobOptions struct {
	RecognizeOptions

	// CallbackURL must have been allowlisted with RegisterCallback. Without
	// it the job is polled with CheckJob.
	CallbackURL *string
	Events      []string
	UserToken   *string
	// ResultsTTL is the number of minutes results stay available.
	ResultsTTL *int64
}

// Validate checks the required fields.
func (o *CreateJobOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.RecognizeOptions.Validate()
	if err != nil {
		return err
	}

	if o.CallbackURL == nil && (len(o.Events) > 0 || o.UserToken != nil) {
		return watson.InvalidArgument("events", "and user_token need a callback_url")
	}

	if o.ResultsTTL != nil && *o.ResultsTTL < 0 {
		return watson.InvalidArgument("results_ttl", "cannot be negative")
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *CreateJobOptions) NewBuilder() *RecognizeOptionsBuilder {
	job := *o
	job.Events = watson.CloneStrings(o.Events)

	return &RecognizeOptionsBuilder{opts: o.clone(), job: job}
}

// RecognizeWebSocketOptions are the parameters of RecognizeUsingWebSocket.
// Audio may be an unbounded reader such as a microphone; it is streamed until
// it returns io.EOF or the session stops.
type RecognizeWebSocketOptions struct {
	RecognizeOptions

	InterimResults *bool
}

// Validate checks the required fields.
func (o *RecognizeWebSocketOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	return o.RecognizeOptions.Validate()
}

// NewBuilder returns a builder initialised from the options.
func (o *RecognizeWebSocketOptions) NewBuilder() *RecognizeOptionsBuilder {
	return &RecognizeOptionsBuilder{opts: o.clone(), interimResults: o.InterimResults}
}

// RecognizeOptionsBuilder builds RecognizeOptions, CreateJobOptions and
// RecognizeWebSocketOptions.
type RecognizeOptionsBuilder struct {
	opts           RecognizeOptions
	job            CreateJobOptions
	interimResults *bool
}

// NewRecognizeOptionsBuilder starts a builder for the given audio.
func NewRecognizeOptionsBuilder(audio *watson.FileSource) *RecognizeOptionsBuilder {
	return &RecognizeOptionsBuilder{opts: RecognizeOptions{Audio: audio}}
}

// Audio replaces the audio.
func (b *RecognizeOptionsBuilder) Audio(audio *watson.FileSource) *RecognizeOptionsBuilder {
	b.opts.Audio = audio

	return b
}

// ContentType sets the audio media type.
func (b *RecognizeOptionsBuilder) ContentType(contentType string) *RecognizeOptionsBuilder {
	b.opts.ContentType = &contentType

	return b
}

// Model selects the base model, e.g. "en-US_BroadbandModel".
func (b *RecognizeOptionsBuilder) Model(model string) *RecognizeOptionsBuilder {
	b.opts.Model = &model

	return b
}

// CustomizationID selects a custom language model.
func (b *RecognizeOptionsBuilder) CustomizationID(id string) *RecognizeOptionsBuilder {
	b.opts.CustomizationID = &id

	return b
}

// AcousticCustomizationID selects a custom acoustic model.
func (b *RecognizeOptionsBuilder) AcousticCustomizationID(id string) *RecognizeOptionsBuilder {
	b.opts.AcousticCustomizationID = &id

	return b
}

// BaseModelVersion pins the version of the base model.
func (b *RecognizeOptionsBuilder) BaseModelVersion(version string) *RecognizeOptionsBuilder {
	b.opts.BaseModelVersion = &version

	return b
}

// CustomizationWeight sets the weight of the custom language model, 0 to 1.
func (b *RecognizeOptionsBuilder) CustomizationWeight(weight float64) *RecognizeOptionsBuilder {
	b.opts.CustomizationWeight = &weight

	return b
}

// InactivityTimeout sets the silence timeout in seconds.
func (b *RecognizeOptionsBuilder) InactivityTimeout(seconds int64) *RecognizeOptionsBuilder {
	b.opts.InactivityTimeout = &seconds

	return b
}

// Keywords sets the keywords to spot and their confidence threshold.
func (b *RecognizeOptionsBuilder) Keywords(threshold float64, keywords ...string) *RecognizeOptionsBuilder {
	b.opts.Keywords = watson.CloneStrings(keywords)
	b.opts.KeywordsThreshold = &threshold

	return b
}

// MaxAlternatives sets the number of alternative transcripts.
func (b *RecognizeOptionsBuilder) MaxAlternatives(count int64) *RecognizeOptionsBuilder {
	b.opts.MaxAlternatives = &count

	return b
}

// WordAlternativesThreshold enables word alternatives above a confidence.
func (b *RecognizeOptionsBuilder) WordAlternativesThreshold(threshold float64) *RecognizeOptionsBuilder {
	b.opts.WordAlternativesThreshold = &threshold

	return b
}

// WordConfidence toggles per-word confidence.
func (b *RecognizeOptionsBuilder) WordConfidence(enabled bool) *RecognizeOptionsBuilder {
	b.opts.WordConfidence = &enabled

	return b
}

// Timestamps toggles per-word timestamps.
func (b *RecognizeOptionsBuilder) Timestamps(enabled bool) *RecognizeOptionsBuilder {
	b.opts.Timestamps = &enabled

	return b
}

// ProfanityFilter toggles profanity masking.
func (b *RecognizeOptionsBuilder) ProfanityFilter(enabled bool) *RecognizeOptionsBuilder {
	b.opts.ProfanityFilter = &enabled

	return b
}

// SmartFormatting toggles formatting of dates, numbers and the like.
func (b *RecognizeOptionsBuilder) SmartFormatting(enabled bool) *RecognizeOptionsBuilder {
	b.opts.SmartFormatting = &enabled

	return b
}

// SpeakerLabels toggles speaker identification.
func (b *RecognizeOptionsBuilder) SpeakerLabels(enabled bool) *RecognizeOptionsBuilder {
	b.opts.SpeakerLabels = &enabled

	return b
}

// InterimResults toggles interim results on a streaming session.
func (b *RecognizeOptionsBuilder) InterimResults(enabled bool) *RecognizeOptionsBuilder {
	b.interimResults = &enabled

	return b
}

// CallbackURL sets the job callback URL.
func (b *RecognizeOptionsBuilder) CallbackURL(callbackURL string) *RecognizeOptionsBuilder {
	b.job.CallbackURL = &callbackURL

	return b
}

// AddEvent subscribes the job callback to an event.
func (b *RecognizeOptionsBuilder) AddEvent(event string) *RecognizeOptionsBuilder {
	b.job.Events = append(b.job.Events, event)

	return b
}

// UserToken sets the token echoed back in job callbacks.
func (b *RecognizeOptionsBuilder) UserToken(token string) *RecognizeOptionsBuilder {
	b.job.UserToken = &token

	return b
}

// ResultsTTL sets how many minutes job results are kept.
func (b *RecognizeOptionsBuilder) ResultsTTL(minutes int64) *RecognizeOptionsBuilder {
	b.job.ResultsTTL = &minutes

	return b
}

// Build validates and returns options for Recognize.
func (b *RecognizeOptionsBuilder) Build() (*RecognizeOptions, error) {
	opts := b.opts.clone()

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// BuildJob validates and returns options for CreateJob.
func (b *RecognizeOptionsBuilder) BuildJob() (*CreateJobOptions, error) {
	opts := b.job
	opts.RecognizeOptions = b.opts.clone()
	opts.Events = watson.CloneStrings(b.job.Events)

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// BuildWebSocket validates and returns options for RecognizeUsingWebSocket.
func (b *RecognizeOptionsBuilder) BuildWebSocket() (*RecognizeWebSocketOptions, error) {
	opts := &RecognizeWebSocketOptions{RecognizeOptions: b.opts.clone(), InterimResults: b.interimResults}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// GetModelOptions are the parameters of GetModel.
type GetModelOptions struct {
	ModelID string
}

// Validate checks the required fields.
func (o *GetModelOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.ModelID == "" {
		return watson.RequiredArgument("model_id")
	}

	return nil
}

// NewGetModelOptions validates and returns options for modelID.
func NewGetModelOptions(modelID string) (*GetModelOptions, error) {
	opts := &GetModelOptions{ModelID: modelID}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// JobOptions identify a recognition job.
type JobOptions struct {
	ID string
}

// Validate checks the required fields.
func (o *JobOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.ID == "" {
		return watson.RequiredArgument("id")
	}

	return nil
}

// NewJobOptions validates and returns options for a job id.
func NewJobOptions(id string) (*JobOptions, error) {
	opts := &JobOptions{ID: id}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// RegisterCallbackOptions are the parameters of RegisterCallback.
type RegisterCallbackOptions struct {
	CallbackURL string
	// UserSecret signs callback requests with HMAC-SHA1.
	UserSecret *string
}

// Validate checks the required fields.
func (o *RegisterCallbackOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	return validateCallbackURL(o.CallbackURL)
}

// NewRegisterCallbackOptions validates and returns options for callbackURL.
// An empty secret leaves callbacks unsigned.
func NewRegisterCallbackOptions(callbackURL, userSecret string) (*RegisterCallbackOptions, error) {
	opts := &RegisterCallbackOptions{CallbackURL: callbackURL}
	if userSecret != "" {
		opts.UserSecret = &userSecret
	}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// UnregisterCallbackOptions are the parameters of UnregisterCallback.
type UnregisterCallbackOptions struct {
	CallbackURL string
}

// Validate checks the required fields.
func (o *UnregisterCallbackOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	return validateCallbackURL(o.CallbackURL)
}

// NewUnregisterCallbackOptions validates and returns options for callbackURL.
func NewUnregisterCallbackOptions(callbackURL string) (*UnregisterCallbackOptions, error) {
	opts := &UnregisterCallbackOptions{CallbackURL: callbackURL}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

func validateCallbackURL(callbackURL string) error {
	if callbackURL == "" {
		return watson.RequiredArgument("callback_url")
	}

	parsed, err := url.Parse(callbackURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return watson.InvalidArgument("callback_url", "must be an absolute http or https URL")
	}

	return nil
}

// ListLanguageModelsOptions are the parameters of ListLanguageModels.
type ListLanguageModelsOptions struct {
	Language *string
}

// Validate checks the required fields.
func (o *ListLanguageModelsOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	return nil
}
