package conceptinsights

import (
	"github.com/fivetwenty-io/watson-go/internal/client"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// Well-known accounts, graphs and corpora.
const (
	PublicAccount        = "public"
	WikipediaAccount     = "wikipedia"
	WikipediaGraph       = "en-20120601"
	IBMResearchersCorpus = "ibmresearcher"
	TEDTalksCorpus       = "TEDTalks"
)

// Graph names a concept graph.
type Graph struct {
	AccountID string
	Name      string
}

// Wikipedia is the public English Wikipedia graph.
var Wikipedia = Graph{AccountID: WikipediaAccount, Name: WikipediaGraph}

func (g Graph) validate() error {
	if g.AccountID == "" {
		return watson.RequiredArgument("account_id")
	}

	if g.Name == "" {
		return watson.RequiredArgument("graph")
	}

	return nil
}

func (g Graph) path(suffix string) string {
	return client.Path("/v2/graphs/%s/%s", g.AccountID, g.Name) + suffix
}

// ConceptURI returns the full id of a concept of the graph, the form the
// concepts parameters expect.
func (g Graph) ConceptURI(concept string) string {
	return "/graphs/" + g.AccountID + "/" + g.Name + "/concepts/" + concept
}

// SearchGraphConceptByLabelOptions are the parameters of SearchGraphConceptByLabel.
type SearchGraphConceptByLabelOptions struct {
	Graph
	Query string
	// Prefix matches labels starting with Query.
	Prefix *bool
	Limit  *int64
}

// Validate checks the required fields.
func (o *SearchGraphConceptByLabelOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.Graph.validate()
	if err != nil {
		return err
	}

	if o.Query == "" {
		return watson.RequiredArgument("query")
	}

	return validateLimit(o.Limit)
}

// NewBuilder returns a builder initialised from the options.
func (o *SearchGraphConceptByLabelOptions) NewBuilder() *SearchGraphConceptByLabelOptionsBuilder {
	return &SearchGraphConceptByLabelOptionsBuilder{opts: *o}
}

// SearchGraphConceptByLabelOptionsBuilder builds SearchGraphConceptByLabelOptions.
type SearchGraphConceptByLabelOptionsBuilder struct {
	opts SearchGraphConceptByLabelOptions
}

// NewSearchGraphConceptByLabelOptionsBuilder starts a label search in graph.
func NewSearchGraphConceptByLabelOptionsBuilder(graph Graph, query string) *SearchGraphConceptByLabelOptionsBuilder {
	return &SearchGraphConceptByLabelOptionsBuilder{opts: SearchGraphConceptByLabelOptions{Graph: graph, Query: query}}
}

// Prefix toggles prefix matching.
func (b *SearchGraphConceptByLabelOptionsBuilder) Prefix(prefix bool) *SearchGraphConceptByLabelOptionsBuilder {
	b.opts.Prefix = &prefix

	return b
}

// Limit caps the number of matches.
func (b *SearchGraphConceptByLabelOptionsBuilder) Limit(limit int64) *SearchGraphConceptByLabelOptionsBuilder {
	b.opts.Limit = &limit

	return b
}

// Build validates and returns the options.
func (b *SearchGraphConceptByLabelOptionsBuilder) Build() (*SearchGraphConceptByLabelOptions, error) {
	opts := b.opts

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// RelatedConceptsOptions are the parameters of GetGraphRelatedConcepts.
// Exactly one of Concepts and ConceptID must be set: Concepts finds concepts
// related to a set of full concept ids, ConceptID to a single concept of the
// graph.
type RelatedConceptsOptions struct {
	Graph
	Concepts  []string
	ConceptID *string
	// Level widens the search from 0 (popular concepts) to 3 (obscure ones).
	Level *int64
	Limit *int64
}

// Validate checks the required fields.
func (o *RelatedConceptsOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.Graph.validate()
	if err != nil {
		return err
	}

	switch {
	case len(o.Concepts) == 0 && o.ConceptID == nil:
		return watson.InvalidArgument("concepts", "or concept_id must be set")
	case len(o.Concepts) > 0 && o.ConceptID != nil:
		return watson.InvalidArgument("concepts", "and concept_id are mutually exclusive")
	case o.ConceptID != nil && *o.ConceptID == "":
		return watson.RequiredArgument("concept_id")
	}

	err = validateLevel(o.Level)
	if err != nil {
		return err
	}

	return validateLimit(o.Limit)
}

// NewBuilder returns a builder initialised from the options.
func (o *RelatedConceptsOptions) NewBuilder() *RelatedConceptsOptionsBuilder {
	opts := *o
	opts.Concepts = watson.CloneStrings(o.Concepts)

	return &RelatedConceptsOptionsBuilder{opts: opts}
}

// RelatedConceptsOptionsBuilder builds RelatedConceptsOptions.
type RelatedConceptsOptionsBuilder struct {
	opts RelatedConceptsOptions
}

// NewRelatedConceptsOptionsBuilder starts a builder for graph.
func NewRelatedConceptsOptionsBuilder(graph Graph) *RelatedConceptsOptionsBuilder {
	return &RelatedConceptsOptionsBuilder{opts: RelatedConceptsOptions{Graph: graph}}
}

// AddConcept adds a full concept id to relate to.
func (b *RelatedConceptsOptionsBuilder) AddConcept(conceptID string) *RelatedConceptsOptionsBuilder {
	b.opts.Concepts = append(b.opts.Concepts, conceptID)

	return b
}

// ConceptID relates to a single concept of the graph.
func (b *RelatedConceptsOptionsBuilder) ConceptID(concept string) *RelatedConceptsOptionsBuilder {
	b.opts.ConceptID = &concept

	return b
}

// Level sets the popularity level.
func (b *RelatedConceptsOptionsBuilder) Level(level int64) *RelatedConceptsOptionsBuilder {
	b.opts.Level = &level

	return b
}

// Limit caps the number of concepts.
func (b *RelatedConceptsOptionsBuilder) Limit(limit int64) *RelatedConceptsOptionsBuilder {
	b.opts.Limit = &limit

	return b
}

// Build validates and returns the options.
func (b *RelatedConceptsOptionsBuilder) Build() (*RelatedConceptsOptions, error) {
	opts := b.opts
	opts.Concepts = watson.CloneStrings(b.opts.Concepts)

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// AnnotateTextOptions are the parameters of AnnotateText.
type AnnotateTextOptions struct {
	Graph
	Text string
}

// Validate checks the required fields.
func (o *AnnotateTextOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.Graph.validate()
	if err != nil {
		return err
	}

	if o.Text == "" {
		return watson.RequiredArgument("text")
	}

	return nil
}

// NewAnnotateTextOptions validates and returns options annotating text against graph.
func NewAnnotateTextOptions(graph Graph, text string) (*AnnotateTextOptions, error) {
	opts := &AnnotateTextOptions{Graph: graph, Text: text}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// ConceptOptions identify a concept of a graph.
type ConceptOptions struct {
	Graph
	Concept string
}

// Validate checks the required fields.
func (o *ConceptOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.Graph.validate()
	if err != nil {
		return err
	}

	if o.Concept == "" {
		return watson.RequiredArgument("concept")
	}

	return nil
}

// NewConceptOptions validates and returns options for concept in graph.
func NewConceptOptions(graph Graph, concept string) (*ConceptOptions, error) {
	opts := &ConceptOptions{Graph: graph, Concept: concept}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// RelationScoresOptions are the parameters of GetGraphRelationScores.
type RelationScoresOptions struct {
	ConceptOptions
	// Concepts are the full ids of the concepts to score against.
	Concepts []string
}

// Validate checks the required fields.
func (o *RelationScoresOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.ConceptOptions.Validate()
	if err != nil {
		return err
	}

	if len(o.Concepts) == 0 {
		return watson.RequiredArgument("concepts")
	}

	return nil
}

// NewRelationScoresOptions validates and returns options scoring concept
// against the given full concept ids.
func NewRelationScoresOptions(graph Graph, concept string, concepts ...string) (*RelationScoresOptions, error) {
	opts := &RelationScoresOptions{
		ConceptOptions: ConceptOptions{Graph: graph, Concept: concept},
		Concepts:       watson.CloneStrings(concepts),
	}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// AccountOptions identify an account.
type AccountOptions struct {
	AccountID string
}

// Validate checks the required fields.
func (o *AccountOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.AccountID == "" {
		return watson.RequiredArgument("account_id")
	}

	return nil
}

// CorpusOptions identify a corpus.
type CorpusOptions struct {
	AccountID string
	Corpus    string
}

// Validate checks the required fields.
func (o *CorpusOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	if o.AccountID == "" {
		return watson.RequiredArgument("account_id")
	}

	if o.Corpus == "" {
		return watson.RequiredArgument("corpus")
	}

	return nil
}

func (o *CorpusOptions) path(suffix string) string {
	return client.Path("/v2/corpora/%s/%s", o.AccountID, o.Corpus) + suffix
}

// NewCorpusOptions validates and returns options for a corpus.
func NewCorpusOptions(accountID, corpus string) (*CorpusOptions, error) {
	opts := &CorpusOptions{AccountID: accountID, Corpus: corpus}

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

// CreateCorpusOptions are the parameters of CreateCorpus.
type CreateCorpusOptions struct {
	CorpusOptions
	Access   *string
	Users    []CorpusUser
	TTLHours *int64
}

// Validate checks the required fields.
func (o *CreateCorpusOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.CorpusOptions.Validate()
	if err != nil {
		return err
	}

	if o.Access != nil && *o.Access != AccessPrivate && *o.Access != AccessPublic {
		return watson.InvalidArgument("access", "must be private or public")
	}

	if o.TTLHours != nil && *o.TTLHours < 0 {
		return watson.InvalidArgument("ttl_hours", "cannot be negative")
	}

	return nil
}

// NewBuilder returns a builder initialised from the options.
func (o *CreateCorpusOptions) NewBuilder() *CreateCorpusOptionsBuilder {
	opts := *o
	opts.Users = cloneUsers(o.Users)

	return &CreateCorpusOptionsBuilder{opts: opts}
}

// CreateCorpusOptionsBuilder builds CreateCorpusOptions.
type CreateCorpusOptionsBuilder struct {
	opts CreateCorpusOptions
}

// NewCreateCorpusOptionsBuilder starts a builder for a new corpus.
func NewCreateCorpusOptionsBuilder(accountID, corpus string) *CreateCorpusOptionsBuilder {
	return &CreateCorpusOptionsBuilder{opts: CreateCorpusOptions{CorpusOptions: CorpusOptions{AccountID: accountID, Corpus: corpus}}}
}

// Access sets the access level.
func (b *CreateCorpusOptionsBuilder) Access(access string) *CreateCorpusOptionsBuilder {
	b.opts.Access = &access

	return b
}

// AddUser grants a user a permission.
func (b *CreateCorpusOptionsBuilder) AddUser(uid, permission string) *CreateCorpusOptionsBuilder {
	b.opts.Users = append(b.opts.Users, CorpusUser{UID: uid, Permission: permission})

	return b
}

// TTLHours sets the corpus lifetime.
func (b *CreateCorpusOptionsBuilder) TTLHours(hours int64) *CreateCorpusOptionsBuilder {
	b.opts.TTLHours = &hours

	return b
}

// Build validates and returns the options.
func (b *CreateCorpusOptionsBuilder) Build() (*CreateCorpusOptions, error) {
	opts := b.opts
	opts.Users = cloneUsers(b.opts.Users)

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

// ConceptualSearchOptions are the parameters of ConceptualSearch.
type ConceptualSearchOptions struct {
	CorpusOptions
	// IDs are the full concept ids to search for.
	IDs    []string
	Cursor *int64
	Limit  *int64
}

// Validate checks the required fields.
func (o *ConceptualSearchOptions) Validate() error {
	if o == nil {
		return watson.ErrNilOptions
	}

	err := o.CorpusOptions.Validate()
	if err != nil {
		return err
	}

	if len(o.IDs) == 0 {
		return watson.RequiredArgument("ids")
	}

	if o.Cursor != nil && *o.Cursor < 0 {
		return watson.InvalidArgument("cursor", "cannot be negative")
	}

	return validateLimit(o.Limit)
}

// NewBuilder returns a builder initialised from the options.
func (o *ConceptualSearchOptions) NewBuilder() *ConceptualSearchOptionsBuilder {
	opts := *o
	opts.IDs = watson.CloneStrings(o.IDs)

	return &ConceptualSearchOptionsBuilder{opts: opts}
}

// ConceptualSearchOptionsBuilder builds ConceptualSearchOptions.
type ConceptualSearchOptionsBuilder struct {
	opts ConceptualSearchOptions
}

// NewConceptualSearchOptionsBuilder starts a search of a corpus for the given concept ids.
func NewConceptualSearchOptionsBuilder(accountID, corpus string, ids ...string) *ConceptualSearchOptionsBuilder {
	return &ConceptualSearchOptionsBuilder{opts: ConceptualSearchOptions{
		CorpusOptions: CorpusOptions{AccountID: accountID, Corpus: corpus},
		IDs:           watson.CloneStrings(ids),
	}}
}

// AddID adds a concept id.
func (b *ConceptualSearchOptionsBuilder) AddID(id string) *ConceptualSearchOptionsBuilder {
	b.opts.IDs = append(b.opts.IDs, id)

	return b
}

// Cursor sets the index of the first result.
func (b *ConceptualSearchOptionsBuilder) Cursor(cursor int64) *ConceptualSearchOptionsBuilder {
	b.opts.Cursor = &cursor

	return b
}

// Limit caps the number of results.
func (b *ConceptualSearchOptionsBuilder) Limit(limit int64) *ConceptualSearchOptionsBuilder {
	b.opts.Limit = &limit

	return b
}

// Build validates and returns the options.
func (b *ConceptualSearchOptionsBuilder) Build() (*ConceptualSearchOptions, error) {
	opts := b.opts
	opts.IDs = watson.CloneStrings(b.opts.IDs)

	err := opts.Validate()
	if err != nil {
		return nil, err
	}

	return &opts, nil
}

func cloneUsers(users []CorpusUser) []CorpusUser {
	if users == nil {
		return nil
	}

	return append([]CorpusUser(nil), users...)
}

func validateLevel(level *int64) error {
	if level != nil && (*level < 0 || *level > 3) {
		return watson.InvalidArgument("level", "must be between 0 and 3")
	}

	return nil
}

func validateLimit(limit *int64) error {
	if limit != nil && *limit < 1 {
		return watson.InvalidArgument("limit", "must be positive")
	}

	return nil
}
