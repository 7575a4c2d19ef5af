package presentation

import (
	"encoding/json"
	"fmt"
	"io"
)

// Format selects how results are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table or json)", name)
	}
}

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format Format
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, format Format) *Formatter {
	return &Formatter{
		writer: writer,
		format: format,
	}
}

// FormatDatasets writes the dataset info table.
func (f *Formatter) FormatDatasets(datasets []DatasetDTO) error {
	if f.format == FormatJSON {
		return f.encode(datasets)
	}
	_, err := fmt.Fprintln(f.writer, RenderDatasetTable(datasets))
	return err
}

// FormatBatchSizes writes the batch size report.
func (f *Formatter) FormatBatchSizes(results []BatchSizeDTO) error {
	if f.format == FormatJSON {
		return f.encode(results)
	}
	_, err := fmt.Fprintln(f.writer, RenderBatchSizeTable(results))
	return err
}

// FormatFilterResult writes the datasets kept by a filter pass.
func (f *Formatter) FormatFilterResult(result FilterResultDTO) error {
	if f.format == FormatJSON {
		return f.encode(result)
	}
	if _, err := fmt.Fprintf(f.writer, "threshold: %d trials\n", result.Threshold); err != nil {
		return err
	}
	for _, name := range result.Kept {
		if _, err := fmt.Fprintln(f.writer, name); err != nil {
			return err
		}
	}
	return nil
}

// FormatJSON writes any value as indented JSON.
func (f *Formatter) FormatJSON(v any) error {
	return f.encode(v)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
