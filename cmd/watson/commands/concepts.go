package commands

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/conceptinsights"
)

const annotationTextWidth = 60

// NewConceptsCommand creates the concepts command group.
func NewConceptsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "concepts",
		Aliases: []string{"ci"},
		Short:   "Explore concept graphs",
		Long:    "List graphs, search concepts by label and annotate text with the Concept Insights service",
	}

	cmd.AddCommand(newConceptsGraphsCommand())
	cmd.AddCommand(newConceptsSearchCommand())
	cmd.AddCommand(newConceptsAnnotateCommand())

	return cmd
}

func newConceptsClient(cmd *cobra.Command) (*conceptinsights.Client, error) {
	cfg, err := newServiceConfig(cmd.Context(), ServiceConceptInsights)
	if err != nil {
		return nil, err
	}

	return conceptinsights.New(cfg)
}

// graphFlags selects the graph a command works on.
type graphFlags struct {
	account string
	graph   string
}

func (f *graphFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.account, "account", conceptinsights.WikipediaAccount, "account owning the graph")
	cmd.Flags().StringVar(&f.graph, "graph", conceptinsights.WikipediaGraph, "graph name")
}

func (f *graphFlags) resolve() (conceptinsights.Graph, error) {
	if f.account == "" {
		return conceptinsights.Graph{}, constants.ErrAccountRequired
	}

	if f.graph == "" {
		return conceptinsights.Graph{}, constants.ErrGraphRequired
	}

	return conceptinsights.Graph{AccountID: f.account, Name: f.graph}, nil
}

func newConceptsGraphsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "graphs",
		Short: "List available graphs",
		Long:  "List the concept graphs the configured credentials can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newConceptsClient(cmd)
			if err != nil {
				return err
			}

			result, err := svc.ListGraphs().Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list graphs: %w", err)
			}

			return writeResult(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
				setHeader(table, "graph")

				for _, graph := range result.Graphs {
					err := table.Append(graph)
					if err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
}

func newConceptsSearchCommand() *cobra.Command {
	var (
		graph  graphFlags
		prefix bool
		limit  int64
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search concepts by label",
		Long:  "Search a graph for concepts whose label matches QUERY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := graph.resolve()
			if err != nil {
				return err
			}

			builder := conceptinsights.NewSearchGraphConceptByLabelOptionsBuilder(target, args[0])
			if prefix {
				builder.Prefix(true)
			}

			if limit > 0 {
				builder.Limit(limit)
			}

			opts, err := builder.Build()
			if err != nil {
				return err
			}

			svc, err := newConceptsClient(cmd)
			if err != nil {
				return err
			}

			call, err := svc.SearchGraphConceptByLabel(opts)
			if err != nil {
				return err
			}

			result, err := call.Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to search concepts: %w", err)
			}

			return writeResult(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
				setHeader(table, "id", "label")

				for _, match := range result.Matches {
					err := table.Append(match.ID, match.Label)
					if err != nil {
						return err
					}
				}

				return nil
			})
		},
	}

	graph.register(cmd)
	cmd.Flags().BoolVar(&prefix, "prefix", false, "match labels starting with QUERY")
	cmd.Flags().Int64Var(&limit, "limit", 0, "maximum number of matches")

	return cmd
}

func newConceptsAnnotateCommand() *cobra.Command {
	var graph graphFlags

	cmd := &cobra.Command{
		Use:   "annotate TEXT",
		Short: "Annotate text with concepts",
		Long:  "Find the concepts of a graph mentioned in TEXT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := graph.resolve()
			if err != nil {
				return err
			}

			opts, err := conceptinsights.NewAnnotateTextOptions(target, args[0])
			if err != nil {
				return err
			}

			svc, err := newConceptsClient(cmd)
			if err != nil {
				return err
			}

			call, err := svc.AnnotateText(opts)
			if err != nil {
				return err
			}

			result, err := call.Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to annotate text: %w", err)
			}

			return writeResult(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
				setHeader(table, "concept", "score", "span", "text")

				for _, annotation := range result.Annotations {
					span := strconv.Itoa(annotation.TextIndex.Start) + "-" + strconv.Itoa(annotation.TextIndex.End)

					err := table.Append(
						annotation.Concept.Label,
						formatScore(annotation.Score),
						span,
						truncate(excerpt(args[0], annotation.TextIndex.Start, annotation.TextIndex.End), annotationTextWidth),
					)
					if err != nil {
						return err
					}
				}

				return nil
			})
		},
	}

	graph.register(cmd)

	return cmd
}

// excerpt returns the characters of text between start and end, clamped to the text.
func excerpt(text string, start, end int) string {
	runes := []rune(text)

	start = max(0, min(start, len(runes)))
	end = max(start, min(end, len(runes)))

	return string(runes[start:end])
}
