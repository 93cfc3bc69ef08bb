package commands

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/nlu"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

var nluFeatureNames = []string{"categories", "concepts", "emotion", "entities", "keywords", "metadata", "relations", "semantic_roles", "sentiment"}

// NewNLUCommand creates the nlu command group.
func NewNLUCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nlu",
		Short: "Analyze text with Natural Language Understanding",
		Long:  "Extract entities, keywords, concepts, categories, emotion and sentiment from text, HTML or a web page",
	}

	cmd.AddCommand(newNLUAnalyzeCommand())

	return cmd
}

type analyzeFlags struct {
	text     string
	html     string
	url      string
	features []string
	limit    int64
	language string
}

func newNLUAnalyzeCommand() *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze content",
		Long: fmt.Sprintf(`Analyze one of --text, --html or --url with the requested features
(%s).`, strings.Join(nluFeatureNames, ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildAnalyzeOptions(flags)
			if err != nil {
				return err
			}

			cfg, err := newServiceConfig(cmd.Context(), ServiceNLU)
			if err != nil {
				return err
			}

			svc, err := nlu.New(cfg)
			if err != nil {
				return err
			}

			call, err := svc.Analyze(opts)
			if err != nil {
				return err
			}

			result, err := call.Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to analyze: %w", err)
			}

			return writeResult(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
				setHeader(table, "feature", "text", "type", "score")

				for _, row := range analysisRows(result) {
					err := table.Append(row[0], row[1], row[2], row[3])
					if err != nil {
						return err
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&flags.text, "text", "", "plain text to analyze")
	cmd.Flags().StringVar(&flags.html, "html", "", "HTML to analyze")
	cmd.Flags().StringVar(&flags.url, "url", "", "public web page to analyze")
	cmd.Flags().StringSliceVarP(&flags.features, "feature", "f", []string{"entities", "keywords"}, "features to run")
	cmd.Flags().Int64VarP(&flags.limit, "limit", "l", 0, "maximum results per feature")
	cmd.Flags().StringVar(&flags.language, "language", "", "language of the content, detected when unset")

	return cmd
}

func buildAnalyzeOptions(flags analyzeFlags) (*nlu.AnalyzeOptions, error) {
	builder := nlu.NewAnalyzeOptionsBuilder()

	if flags.text == "" && flags.html == "" && flags.url == "" {
		return nil, constants.ErrInputRequired
	}

	// More than one input is rejected by Build.
	if flags.text != "" {
		builder.Text(flags.text)
	}

	if flags.html != "" {
		builder.HTML(flags.html)
	}

	if flags.url != "" {
		builder.URL(flags.url)
	}

	features, err := buildFeatures(flags.features, flags.limit)
	if err != nil {
		return nil, err
	}

	builder.Features(features)

	if flags.language != "" {
		builder.Language(flags.language)
	}

	return builder.Build()
}

func buildFeatures(names []string, limit int64) (nlu.Features, error) {
	var features nlu.Features

	if len(names) == 0 {
		return features, constants.ErrFeatureRequired
	}

	var limitPtr *int64
	if limit > 0 {
		limitPtr = watson.Int64(limit)
	}

	for _, name := range names {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "categories":
			features.Categories = &nlu.CategoriesOptions{Limit: limitPtr}
		case "concepts":
			features.Concepts = &nlu.ConceptsOptions{Limit: limitPtr}
		case "emotion":
			features.Emotion = &nlu.EmotionOptions{}
		case "entities":
			features.Entities = &nlu.EntitiesOptions{Limit: limitPtr}
		case "keywords":
			features.Keywords = &nlu.KeywordsOptions{Limit: limitPtr}
		case "metadata":
			features.Metadata = &nlu.MetadataOptions{}
		case "relations":
			features.Relations = &nlu.RelationsOptions{}
		case "semantic_roles":
			features.SemanticRoles = &nlu.SemanticRolesOptions{Limit: limitPtr}
		case "sentiment":
			features.Sentiment = &nlu.SentimentOptions{}
		default:
			return features, fmt.Errorf("%w: %s", constants.ErrUnknownFeature, name)
		}
	}

	return features, nil
}

func analysisRows(result *nlu.AnalysisResults) [][4]string {
	var rows [][4]string

	for _, entity := range result.Entities {
		rows = append(rows, [4]string{"entity", entity.Text, entity.Type, formatScore(entity.Relevance)})
	}

	for _, keyword := range result.Keywords {
		rows = append(rows, [4]string{"keyword", keyword.Text, "", formatScore(keyword.Relevance)})
	}

	for _, concept := range result.Concepts {
		rows = append(rows, [4]string{"concept", concept.Text, concept.DBpediaResource, formatScore(concept.Relevance)})
	}

	for _, category := range result.Categories {
		rows = append(rows, [4]string{"category", category.Label, "", formatScore(category.Score)})
	}

	if result.Sentiment != nil && result.Sentiment.Document != nil {
		document := result.Sentiment.Document
		rows = append(rows, [4]string{"sentiment", "document", document.Label, formatScore(document.Score)})
	}

	if result.Emotion != nil && result.Emotion.Document != nil {
		emotion := result.Emotion.Document.Emotion
		scores := []struct {
			name  string
			score float64
		}{
			{"anger", emotion.Anger},
			{"disgust", emotion.Disgust},
			{"fear", emotion.Fear},
			{"joy", emotion.Joy},
			{"sadness", emotion.Sadness},
		}

		for _, score := range scores {
			rows = append(rows, [4]string{"emotion", "document", score.name, formatScore(score.score)})
		}
	}

	return rows
}
