package speechtotext

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformedResult is returned when a word tuple in a result has the wrong shape.
var ErrMalformedResult = errors.New("malformed recognition result")

// Job status values.
const (
	JobStatusWaiting    = "waiting"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// SpeechModel describes a base recognition model.
type SpeechModel struct {
	Name              string            `json:"name"`
	Language          string            `json:"language"`
	Rate              int64             `json:"rate"`
	URL               string            `json:"url,omitempty"`
	Description       string            `json:"description,omitempty"`
	SupportedFeatures SupportedFeatures `json:"supported_features"`
}

// SupportedFeatures lists optional capabilities of a model.
type SupportedFeatures struct {
	CustomLanguageModel bool `json:"custom_language_model"`
	SpeakerLabels       bool `json:"speaker_labels"`
}

// SpeechModels is returned by ListModels.
type SpeechModels struct {
	Models []SpeechModel `json:"models"`
}

// SpeechRecognitionResults is a transcription, or one interim update of a
// streaming transcription.
type SpeechRecognitionResults struct {
	Results       []SpeechRecognitionResult `json:"results,omitempty"`
	ResultIndex   int64                     `json:"result_index"`
	SpeakerLabels []SpeakerLabelsResult     `json:"speaker_labels,omitempty"`
	Warnings      []string                  `json:"warnings,omitempty"`
}

// SpeechRecognitionResult is the transcription of one utterance.
type SpeechRecognitionResult struct {
	Final            bool                           `json:"final"`
	Alternatives     []SpeechRecognitionAlternative `json:"alternatives"`
	KeywordsResult   map[string][]KeywordResult     `json:"keywords_result,omitempty"`
	WordAlternatives []WordAlternativeResults       `json:"word_alternatives,omitempty"`
}

// SpeechRecognitionAlternative is one candidate transcript.
type SpeechRecognitionAlternative struct {
	Transcript     string           `json:"transcript"`
	Confidence     *float64         `json:"confidence,omitempty"`
	Timestamps     []WordTimestamp  `json:"timestamps,omitempty"`
	WordConfidence []WordConfidence `json:"word_confidence,omitempty"`
}

// WordTimestamp is a word with its start and end time in seconds, carried on
// the wire as ["word", start, end].
type WordTimestamp struct {
	Word      string
	StartTime float64
	EndTime   float64
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *WordTimestamp) UnmarshalJSON(data []byte) error {
	parts := gjson.ParseBytes(data).Array()
	if len(parts) != 3 {
		return fmt.Errorf("%w: timestamp %s", ErrMalformedResult, data)
	}

	*w = WordTimestamp{Word: parts[0].String(), StartTime: parts[1].Float(), EndTime: parts[2].Float()}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (w WordTimestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{w.Word, w.StartTime, w.EndTime})
}

// WordConfidence is a word with its confidence, carried on the wire as
// ["word", confidence].
type WordConfidence struct {
	Word       string
	Confidence float64
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *WordConfidence) UnmarshalJSON(data []byte) error {
	parts := gjson.ParseBytes(data).Array()
	if len(parts) != 2 {
		return fmt.Errorf("%w: word confidence %s", ErrMalformedResult, data)
	}

	*w = WordConfidence{Word: parts[0].String(), Confidence: parts[1].Float()}

	return nil
}

// MarshalJSON implements json.Marshaler.
func (w WordConfidence) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{w.Word, w.Confidence})
}

// KeywordResult is a spotted keyword.
type KeywordResult struct {
	NormalizedText string  `json:"normalized_text"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
	Confidence     float64 `json:"confidence"`
}

// WordAlternativeResults lists alternative words for a time range.
type WordAlternativeResults struct {
	StartTime    float64                 `json:"start_time"`
	EndTime      float64                 `json:"end_time"`
	Alternatives []WordAlternativeResult `json:"alternatives"`
}

// WordAlternativeResult is one alternative word.
type WordAlternativeResult struct {
	Confidence float64 `json:"confidence"`
	Word       string  `json:"word"`
}

// SpeakerLabelsResult attributes a time range to a speaker.
type SpeakerLabelsResult struct {
	From       float64 `json:"from"`
	To         float64 `json:"to"`
	Speaker    int64   `json:"speaker"`
	Confidence float64 `json:"confidence"`
	Final      bool    `json:"final"`
}

// RecognitionJob is an asynchronous recognition request.
type RecognitionJob struct {
	ID        string                     `json:"id"`
	Status    string                     `json:"status"`
	Created   string                     `json:"created"`
	Updated   string                     `json:"updated,omitempty"`
	URL       string                     `json:"url,omitempty"`
	UserToken string                     `json:"user_token,omitempty"`
	Results   []SpeechRecognitionResults `json:"results,omitempty"`
	Warnings  []string                   `json:"warnings,omitempty"`
}

// Done reports whether the job reached a terminal status.
func (j *RecognitionJob) Done() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// RecognitionJobs is returned by CheckJobs.
type RecognitionJobs struct {
	Recognitions []RecognitionJob `json:"recognitions"`
}

// RegisterStatus is returned by RegisterCallback.
type RegisterStatus struct {
	Status string `json:"status"`
	URL    string `json:"url"`
}

// LanguageModel is a custom language model.
type LanguageModel struct {
	CustomizationID string   `json:"customization_id"`
	Created         string   `json:"created,omitempty"`
	Language        string   `json:"language,omitempty"`
	Dialect         string   `json:"dialect,omitempty"`
	Versions        []string `json:"versions,omitempty"`
	Owner           string   `json:"owner,omitempty"`
	Name            string   `json:"name,omitempty"`
	Description     string   `json:"description,omitempty"`
	BaseModelName   string   `json:"base_model_name,omitempty"`
	Status          string   `json:"status,omitempty"`
	Progress        int64    `json:"progress,omitempty"`
	Error           string   `json:"error,omitempty"`
	Warnings        string   `json:"warnings,omitempty"`
}

// LanguageModels is returned by ListLanguageModels.
type LanguageModels struct {
	Customizations []LanguageModel `json:"customizations"`
}

// TrainingWarning is a non-fatal problem found while training a custom model.
type TrainingWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TrainingResponse is returned by TrainLanguageModel.
type TrainingResponse struct {
	Warnings []TrainingWarning `json:"warnings,omitempty"`
}

// Corpus is a text corpus of a custom language model.
type Corpus struct {
	Name                 string `json:"name"`
	TotalWords           int64  `json:"total_words"`
	OutOfVocabularyWords int64  `json:"out_of_vocabulary_words"`
	Status               string `json:"status"`
	Error                string `json:"error,omitempty"`
}

// Corpora is returned by ListCorpora.
type Corpora struct {
	Corpora []Corpus `json:"corpora"`
}

// CustomWord is a word to add to a custom language model.
type CustomWord struct {
	Word       string   `json:"word"`
	SoundsLike []string `json:"sounds_like,omitempty"`
	DisplayAs  string   `json:"display_as,omitempty"`
}

// WordError reports why a pronunciation of a word is invalid.
type WordError map[string]string

// Word is a word of a custom language model.
type Word struct {
	Word       string      `json:"word"`
	SoundsLike []string    `json:"sounds_like"`
	DisplayAs  string      `json:"display_as"`
	Count      int64       `json:"count"`
	Source     []string    `json:"source"`
	Error      []WordError `json:"error,omitempty"`
}

// Words is returned by ListWords.
type Words struct {
	Words []Word `json:"words"`
}
