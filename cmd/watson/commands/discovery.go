package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/discovery"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

const resultTextLimit = 60

// NewDiscoveryCommand creates the discovery command group.
func NewDiscoveryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "discovery",
		Aliases: []string{"disco"},
		Short:   "Query and feed Discovery collections",
		Long:    "List environments and collections, run queries and add documents with the Discovery service",
	}

	cmd.AddCommand(newDiscoveryEnvironmentsCommand())
	cmd.AddCommand(newDiscoveryCollectionsCommand())
	cmd.AddCommand(newDiscoveryQueryCommand())
	cmd.AddCommand(newDiscoveryAddDocumentsCommand())

	return cmd
}

func newDiscoveryClient(cmd *cobra.Command) (*discovery.Client, error) {
	cfg, err := newServiceConfig(cmd.Context(), ServiceDiscovery)
	if err != nil {
		return nil, err
	}

	return discovery.New(cfg)
}

func newDiscoveryEnvironmentsCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "environments",
		Short: "List environments",
		Long:  "List the Discovery environments of the instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newDiscoveryClient(cmd)
			if err != nil {
				return err
			}

			opts := &discovery.ListEnvironmentsOptions{}
			if name != "" {
				opts.Name = &name
			}

			call, err := svc.ListEnvironments(opts)
			if err != nil {
				return err
			}

			result, err := call.Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list environments: %w", err)
			}

			return writeResult(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
				setHeader(table, "environment_id", "name", "status", "read_only")

				for _, env := range result.Environments {
					err := table.Append(env.EnvironmentID, env.Name, env.Status, fmt.Sprint(env.ReadOnly))
					if err != nil {
						return err
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by exact name")

	return cmd
}

func newDiscoveryCollectionsCommand() *cobra.Command {
	var environmentID, name string

	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List collections",
		Long:  "List the collections of a Discovery environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if environmentID == "" {
				return constants.ErrEnvironmentRequired
			}

			svc, err := newDiscoveryClient(cmd)
			if err != nil {
				return err
			}

			opts := &discovery.ListCollectionsOptions{EnvironmentID: environmentID}
			if name != "" {
				opts.Name = &name
			}

			call, err := svc.ListCollections(opts)
			if err != nil {
				return err
			}

			result, err := call.Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list collections: %w", err)
			}

			return writeResult(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
				setHeader(table, "collection_id", "name", "status", "language")

				for _, collection := range result.Collections {
					err := table.Append(collection.CollectionID, collection.Name, collection.Status, collection.Language)
					if err != nil {
						return err
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&environmentID, "environment", "e", "", "environment id")
	cmd.Flags().StringVar(&name, "name", "", "filter by exact name")

	return cmd
}

type queryFlags struct {
	environmentID string
	collectionIDs []string
	query         string
	nlq           string
	filter        string
	aggregation   string
	count         int64
	offset        int64
	returnFields  []string
	passages      bool
}

func newDiscoveryQueryCommand() *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query collections",
		Long: `Search one collection, or several of the same environment at once, with the
Discovery query language (--query) or natural language (--nlq).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.environmentID == "" {
				return constants.ErrEnvironmentRequired
			}

			if len(flags.collectionIDs) == 0 {
				return constants.ErrCollectionRequired
			}

			svc, err := newDiscoveryClient(cmd)
			if err != nil {
				return err
			}

			call, err := buildQueryCall(svc, flags)
			if err != nil {
				return err
			}

			result, err := call.Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to query: %w", err)
			}

			return writeResult(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
				setHeader(table, "id", "collection_id", "score", "text")

				for _, doc := range result.Results {
					err := table.Append(doc.ID, doc.CollectionID, formatScore(doc.Score), truncate(doc.Field("text").String(), resultTextLimit))
					if err != nil {
						return err
					}
				}

				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s matching results\n", formatCount(result.MatchingResults))

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&flags.environmentID, "environment", "e", "", "environment id")
	cmd.Flags().StringSliceVarP(&flags.collectionIDs, "collection", "c", nil, "collection id, repeat for a federated query")
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "query language search")
	cmd.Flags().StringVar(&flags.nlq, "nlq", "", "natural language search")
	cmd.Flags().StringVar(&flags.filter, "filter", "", "filter applied before ranking")
	cmd.Flags().StringVar(&flags.aggregation, "aggregation", "", "aggregation expression")
	cmd.Flags().Int64Var(&flags.count, "count", 0, "number of results")
	cmd.Flags().Int64Var(&flags.offset, "offset", 0, "index of the first result")
	cmd.Flags().StringSliceVar(&flags.returnFields, "return", nil, "fields to return")
	cmd.Flags().BoolVar(&flags.passages, "passages", false, "return passages")

	return cmd
}

func buildQueryCall(svc *discovery.Client, flags queryFlags) (*watson.ServiceCall[discovery.QueryResponse], error) {
	var builder *discovery.QueryOptionsBuilder
	if len(flags.collectionIDs) == 1 {
		builder = discovery.NewQueryOptionsBuilder(flags.environmentID, flags.collectionIDs[0])
	} else {
		builder = discovery.NewFederatedQueryOptionsBuilder(flags.environmentID, flags.collectionIDs...)
	}

	if flags.query != "" {
		builder.Query(flags.query)
	}

	if flags.nlq != "" {
		builder.NaturalLanguageQuery(flags.nlq)
	}

	if flags.filter != "" {
		builder.Filter(flags.filter)
	}

	if flags.aggregation != "" {
		builder.Aggregation(flags.aggregation)
	}

	if flags.count > 0 {
		builder.Count(flags.count)
	}

	if flags.offset > 0 {
		builder.Offset(flags.offset)
	}

	for _, field := range flags.returnFields {
		builder.AddReturnField(field)
	}

	if flags.passages {
		builder.Passages(true)
	}

	if len(flags.collectionIDs) > 1 {
		opts, err := builder.BuildFederated()
		if err != nil {
			return nil, err
		}

		return svc.FederatedQuery(opts)
	}

	opts, err := builder.Build()
	if err != nil {
		return nil, err
	}

	return svc.Query(opts)
}

// addDocumentRow is one line of the add-documents report.
type addDocumentRow struct {
	File       string `json:"file"`
	DocumentID string `json:"document_id,omitempty"`
	Status     string `json:"status,omitempty"`
	Error      string `json:"error,omitempty"`
}

func newDiscoveryAddDocumentsCommand() *cobra.Command {
	var (
		environmentID   string
		collectionID    string
		configurationID string
		metadata        string
		concurrency     int
	)

	cmd := &cobra.Command{
		Use:   "add-documents FILE...",
		Short: "Add documents to a collection",
		Long:  "Upload files to a collection, several at a time",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if environmentID == "" {
				return constants.ErrEnvironmentRequired
			}

			if collectionID == "" {
				return constants.ErrCollectionRequired
			}

			docs := make([]*discovery.AddDocumentOptions, 0, len(args))

			for _, path := range args {
				builder := discovery.NewDocumentOptionsBuilder(environmentID, collectionID).File(watson.FileFromPath(path))
				if configurationID != "" {
					builder.ConfigurationID(configurationID)
				}

				if metadata != "" {
					builder.Metadata(metadata)
				}

				opts, err := builder.BuildAdd()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				docs = append(docs, opts)
			}

			svc, err := newDiscoveryClient(cmd)
			if err != nil {
				return err
			}

			results, err := svc.AddDocuments(cmd.Context(), docs, concurrency)
			if err != nil {
				return err
			}

			rows := make([]addDocumentRow, len(results))
			for i, result := range results {
				rows[i] = addDocumentRow{File: filepath.Base(args[result.Index])}
				if result.Error != nil {
					rows[i].Error = result.Error.Error()

					continue
				}

				rows[i].DocumentID = result.Value.DocumentID
				rows[i].Status = result.Value.Status
			}

			summary := watson.Summarize(results)

			err = writeResult(cmd.OutOrStdout(), rows, func(table *tablewriter.Table) error {
				setHeader(table, "file", "document_id", "status", "error")

				for _, row := range rows {
					err := table.Append(row.File, row.DocumentID, row.Status, row.Error)
					if err != nil {
						return err
					}
				}

				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%d added, %d failed in %s\n", summary.Succeeded, summary.Failed, summary.Duration.Round(time.Millisecond))

				return nil
			})
			if err != nil {
				return err
			}

			if summary.Failed > 0 {
				return fmt.Errorf("%w: %d of %d", constants.ErrBatchFailed, summary.Failed, summary.Total)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&environmentID, "environment", "e", "", "environment id")
	cmd.Flags().StringVarP(&collectionID, "collection", "c", "", "collection id")
	cmd.Flags().StringVar(&configurationID, "configuration", "", "configuration id")
	cmd.Flags().StringVar(&metadata, "metadata", "", "JSON metadata attached to every document")
	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultConcurrencyLimit, "documents uploaded at once")

	return cmd
}
