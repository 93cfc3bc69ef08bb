package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

func outputFormat() string {
	format := viper.GetString("output")
	if format == "" {
		return constants.FormatTable
	}

	return format
}

func validateOutputFormat(format string) error {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownOutputFormat, format)
	}
}

// writeResult renders result in the selected output format. Table output is
// produced by fill; JSON and YAML output use the JSON field names of result.
func writeResult(w io.Writer, result interface{}, fill func(table *tablewriter.Table) error) error {
	format := outputFormat()

	err := validateOutputFormat(format)
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		err = encoder.Encode(result)
		if err != nil {
			return fmt.Errorf("failed to encode result as JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		return writeYAML(w, result)
	default:
		table := tablewriter.NewWriter(w)

		err = fill(table)
		if err != nil {
			return fmt.Errorf("failed to append table rows: %w", err)
		}

		err = table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// writeYAML goes through JSON so that the service models keep their wire names.
func writeYAML(w io.Writer, result interface{}) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	var plain interface{}

	err = json.Unmarshal(data, &plain)
	if err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}

	encoder := yaml.NewEncoder(w)

	err = encoder.Encode(plain)
	if err != nil {
		return fmt.Errorf("failed to encode result as YAML: %w", err)
	}

	return encoder.Close()
}

func setHeader(table *tablewriter.Table, names ...string) {
	title := cases.Title(language.English)
	headers := make([]any, len(names))

	for i, name := range names {
		headers[i] = title.String(strings.ReplaceAll(name, "_", " "))
	}

	table.Header(headers...)
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 3, 64)
}

func formatCount(count int64) string {
	return strconv.FormatInt(count, 10)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit-1]) + "…"
}
