package languagetranslator

// TranslationResult is returned by Translate.
type TranslationResult struct {
	WordCount      int64         `json:"word_count"`
	CharacterCount int64         `json:"character_count"`
	Translations   []Translation `json:"translations"`
}

// Translation is the translation of one input text.
type Translation struct {
	Translation string `json:"translation"`
}

// IdentifiedLanguages is returned by Identify, best match first.
type IdentifiedLanguages struct {
	Languages []IdentifiedLanguage `json:"languages"`
}

// IdentifiedLanguage is a candidate language and its confidence.
type IdentifiedLanguage struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// IdentifiableLanguages is returned by ListIdentifiableLanguages.
type IdentifiableLanguages struct {
	Languages []IdentifiableLanguage `json:"languages"`
}

// IdentifiableLanguage is a language the service can identify.
type IdentifiableLanguage struct {
	Language string `json:"language"`
	Name     string `json:"name"`
}

// Model statuses.
const (
	ModelStatusUploading   = "uploading"
	ModelStatusUploaded    = "uploaded"
	ModelStatusDispatching = "dispatching"
	ModelStatusQueued      = "queued"
	ModelStatusTraining    = "training"
	ModelStatusTrained     = "trained"
	ModelStatusPublishing  = "publishing"
	ModelStatusAvailable   = "available"
	ModelStatusDeleted     = "deleted"
	ModelStatusError       = "error"
)

// TranslationModel describes a base or custom translation model.
type TranslationModel struct {
	ModelID      string `json:"model_id"`
	Name         string `json:"name,omitempty"`
	Source       string `json:"source,omitempty"`
	Target       string `json:"target,omitempty"`
	BaseModelID  string `json:"base_model_id,omitempty"`
	Domain       string `json:"domain,omitempty"`
	Customizable bool   `json:"customizable,omitempty"`
	DefaultModel bool   `json:"default_model,omitempty"`
	Owner        string `json:"owner,omitempty"`
	Status       string `json:"status,omitempty"`
}

// TranslationModels is returned by ListModels.
type TranslationModels struct {
	Models []TranslationModel `json:"models"`
}

// DeleteModelResult is returned by DeleteModel.
type DeleteModelResult struct {
	Status string `json:"status"`
}
