package commands

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/languagetranslator"
)

// NewTranslateCommand creates the translate command group.
func NewTranslateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "translate",
		Aliases: []string{"lt"},
		Short:   "Translate text and identify languages",
		Long:    "Translate text, identify its language and list models with the Language Translator service",
	}

	cmd.AddCommand(newTranslateTextCommand())
	cmd.AddCommand(newTranslateIdentifyCommand())
	cmd.AddCommand(newTranslateModelsCommand())

	return cmd
}

func newTranslatorClient(cmd *cobra.Command) (*languagetranslator.Client, error) {
	cfg, err := newServiceConfig(cmd.Context(), ServiceLanguageTranslator)
	if err != nil {
		return nil, err
	}

	return languagetranslator.New(cfg)
}

func newTranslateTextCommand() *cobra.Command {
	var modelID, source, target string

	cmd := &cobra.Command{
		Use:   "text TEXT...",
		Short: "Translate text",
		Long:  "Translate each argument with a model (--model) or a language pair (--source, --target)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if modelID == "" && target == "" {
				return constants.ErrTargetRequired
			}

			builder := languagetranslator.NewTranslateOptionsBuilder(args...)
			if modelID != "" {
				builder.ModelID(modelID)
			}

			if source != "" {
				builder.Source(source)
			}

			if target != "" {
				builder.Target(target)
			}

			opts, err := builder.Build()
			if err != nil {
				return err
			}

			svc, err := newTranslatorClient(cmd)
			if err != nil {
				return err
			}

			call, err := svc.Translate(opts)
			if err != nil {
				return err
			}

			result, err := call.Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to translate: %w", err)
			}

			return writeResult(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
				setHeader(table, "text", "translation")

				for i, translation := range result.Translations {
					original := ""
					if i < len(args) {
						original = args[i]
					}

					err := table.Append(original, translation.Translation)
					if err != nil {
						return err
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&modelID, "model", "m", "", "translation model id (e.g., en-es)")
	cmd.Flags().StringVarP(&source, "source", "s", "", "source language")
	cmd.Flags().StringVarP(&target, "target", "t", "", "target language")

	return cmd
}

func newTranslateIdentifyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "identify TEXT...",
		Short: "Identify the language of text",
		Long:  "Identify the language of the text given as arguments, best match first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := languagetranslator.NewIdentifyOptions(strings.Join(args, " "))
			if err != nil {
				return err
			}

			svc, err := newTranslatorClient(cmd)
			if err != nil {
				return err
			}

			call, err := svc.Identify(opts)
			if err != nil {
				return err
			}

			result, err := call.Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to identify language: %w", err)
			}

			if limit > 0 && len(result.Languages) > limit {
				result.Languages = result.Languages[:limit]
			}

			return writeResult(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
				setHeader(table, "language", "confidence")

				for _, lang := range result.Languages {
					err := table.Append(lang.Language, formatScore(lang.Confidence))
					if err != nil {
						return err
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 5, "number of candidates shown, 0 for all")

	return cmd
}

func newTranslateModelsCommand() *cobra.Command {
	var (
		source, target string
		defaults       bool
	)

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List translation models",
		Long:  "List the base and custom translation models, optionally filtered by language",
		RunE: func(cmd *cobra.Command, args []string) error {
			builder := languagetranslator.NewListModelsOptionsBuilder()
			if source != "" {
				builder.Source(source)
			}

			if target != "" {
				builder.Target(target)
			}

			if cmd.Flags().Changed("default") {
				builder.DefaultModels(defaults)
			}

			opts, err := builder.Build()
			if err != nil {
				return err
			}

			svc, err := newTranslatorClient(cmd)
			if err != nil {
				return err
			}

			call, err := svc.ListModels(opts)
			if err != nil {
				return err
			}

			result, err := call.Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list models: %w", err)
			}

			return writeResult(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
				setHeader(table, "model_id", "source", "target", "domain", "status")

				for _, model := range result.Models {
					err := table.Append(model.ModelID, model.Source, model.Target, model.Domain, model.Status)
					if err != nil {
						return err
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "source language")
	cmd.Flags().StringVarP(&target, "target", "t", "", "target language")
	cmd.Flags().BoolVar(&defaults, "default", false, "only default models")

	return cmd
}
