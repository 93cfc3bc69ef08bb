package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/speechtotext"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// NewSTTCommand creates the stt command group.
func NewSTTCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stt",
		Aliases: []string{"speech-to-text"},
		Short:   "Transcribe audio with Speech to Text",
		Long:    "List models and transcribe audio files, over HTTP, as a background job or streamed over a WebSocket",
	}

	cmd.AddCommand(newSTTModelsCommand())
	cmd.AddCommand(newSTTRecognizeCommand())
	cmd.AddCommand(newSTTStreamCommand())

	return cmd
}

func newSTTClient(cmd *cobra.Command) (*speechtotext.Client, error) {
	cfg, err := newServiceConfig(cmd.Context(), ServiceSpeechToText)
	if err != nil {
		return nil, err
	}

	return speechtotext.New(cfg)
}

func newSTTModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List speech models",
		Long:  "List the models available for speech recognition",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSTTClient(cmd)
			if err != nil {
				return err
			}

			result, err := svc.ListModels().Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list models: %w", err)
			}

			return writeResult(cmd.OutOrStdout(), result, func(table *tablewriter.Table) error {
				setHeader(table, "name", "language", "rate", "description")

				for _, model := range result.Models {
					err := table.Append(model.Name, model.Language, formatCount(model.Rate), model.Description)
					if err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
}

type recognizeFlags struct {
	model             string
	contentType       string
	timestamps        bool
	smartFormatting   bool
	speakerLabels     bool
	keywords          []string
	keywordsThreshold float64
	inactivityTimeout int64
	interimResults    bool
	async             bool
}

func (f *recognizeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "recognition model (e.g., en-US_BroadbandModel)")
	cmd.Flags().StringVar(&f.contentType, "content-type", "", "audio format, inferred from the file extension when unset")
	cmd.Flags().BoolVar(&f.timestamps, "timestamps", false, "return word timestamps")
	cmd.Flags().BoolVar(&f.smartFormatting, "smart-formatting", false, "format dates, times and numbers")
	cmd.Flags().BoolVar(&f.speakerLabels, "speaker-labels", false, "identify speakers")
	cmd.Flags().StringSliceVarP(&f.keywords, "keyword", "k", nil, "keywords to spot")
	cmd.Flags().Float64Var(&f.keywordsThreshold, "keywords-threshold", 0.5, "minimum keyword confidence")
}

func (f *recognizeFlags) builder(path string) *speechtotext.RecognizeOptionsBuilder {
	builder := speechtotext.NewRecognizeOptionsBuilder(watson.FileFromPath(path))

	if f.model != "" {
		builder.Model(f.model)
	}

	if f.contentType != "" {
		builder.ContentType(f.contentType)
	}

	if f.timestamps {
		builder.Timestamps(true)
	}

	if f.smartFormatting {
		builder.SmartFormatting(true)
	}

	if f.speakerLabels {
		builder.SpeakerLabels(true)
	}

	if len(f.keywords) > 0 {
		builder.Keywords(f.keywordsThreshold, f.keywords...)
	}

	if f.inactivityTimeout != 0 {
		builder.InactivityTimeout(f.inactivityTimeout)
	}

	return builder
}

// transcriptRow is one line of a transcription report.
type transcriptRow struct {
	Transcript string   `json:"transcript"`
	Confidence *float64 `json:"confidence,omitempty"`
}

func transcriptRows(results []speechtotext.SpeechRecognitionResults) []transcriptRow {
	var rows []transcriptRow

	for _, batch := range results {
		for _, result := range batch.Results {
			if !result.Final || len(result.Alternatives) == 0 {
				continue
			}

			best := result.Alternatives[0]
			rows = append(rows, transcriptRow{Transcript: best.Transcript, Confidence: best.Confidence})
		}
	}

	return rows
}

func writeTranscript(cmd *cobra.Command, rows []transcriptRow) error {
	return writeResult(cmd.OutOrStdout(), rows, func(table *tablewriter.Table) error {
		setHeader(table, "transcript", "confidence")

		for _, row := range rows {
			confidence := constants.NotAvailable
			if row.Confidence != nil {
				confidence = formatScore(*row.Confidence)
			}

			err := table.Append(row.Transcript, confidence)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func newSTTRecognizeCommand() *cobra.Command {
	var flags recognizeFlags

	cmd := &cobra.Command{
		Use:   "recognize FILE",
		Short: "Transcribe an audio file",
		Long: `Send an audio file in one request and print the final transcript. With --async
the file is submitted as a background job that is polled until it finishes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSTTClient(cmd)
			if err != nil {
				return err
			}

			if flags.async {
				return recognizeAsJob(cmd, svc, flags.builder(args[0]))
			}

			opts, err := flags.builder(args[0]).Build()
			if err != nil {
				return err
			}

			call, err := svc.Recognize(opts)
			if err != nil {
				return err
			}

			result, err := call.Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to recognize: %w", err)
			}

			return writeTranscript(cmd, transcriptRows([]speechtotext.SpeechRecognitionResults{*result}))
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.async, "async", false, "submit as a job and wait for it")

	return cmd
}

func recognizeAsJob(cmd *cobra.Command, svc *speechtotext.Client, builder *speechtotext.RecognizeOptionsBuilder) error {
	opts, err := builder.BuildJob()
	if err != nil {
		return err
	}

	call, err := svc.CreateJob(opts)
	if err != nil {
		return err
	}

	job, err := call.Execute(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "job %s %s\n", job.ID, job.Status)

	jobOpts, err := speechtotext.NewJobOptions(job.ID)
	if err != nil {
		return err
	}

	job, err = svc.WaitForJob(cmd.Context(), jobOpts, constants.DefaultPollInterval)
	if err != nil {
		return err
	}

	return writeTranscript(cmd, transcriptRows(job.Results))
}

func newSTTStreamCommand() *cobra.Command {
	var flags recognizeFlags

	cmd := &cobra.Command{
		Use:   "stream FILE",
		Short: "Stream an audio file over a WebSocket",
		Long: `Stream an audio file to the service over a WebSocket and print the final
transcript. Interim results are written to stderr with --interim. Interrupting
the command stops the session.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			builder := flags.builder(args[0])
			if flags.interimResults {
				builder.InterimResults(true)
			}

			opts, err := builder.BuildWebSocket()
			if err != nil {
				return err
			}

			svc, err := newSTTClient(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			callback := speechtotext.NewChannelCallback(constants.SmallBufferSize)

			session, err := svc.RecognizeUsingWebSocket(ctx, opts, callback)
			if err != nil {
				return fmt.Errorf("failed to start recognition: %w", err)
			}

			var results []speechtotext.SpeechRecognitionResults

			for event := range callback.Events() {
				if event.Type != speechtotext.EventTranscription {
					continue
				}

				results = append(results, *event.Results)

				if flags.interimResults {
					for _, result := range event.Results.Results {
						if !result.Final && len(result.Alternatives) > 0 {
							_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "... %s\n", result.Alternatives[0].Transcript)
						}
					}
				}
			}

			err = session.Wait()
			if err != nil {
				return fmt.Errorf("recognition session %s: %w", session.ID(), err)
			}

			return writeTranscript(cmd, transcriptRows(results))
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.interimResults, "interim", false, "show interim results")
	cmd.Flags().Int64Var(&flags.inactivityTimeout, "inactivity-timeout", 0, "seconds of silence before the session ends, -1 for none")

	return cmd
}
