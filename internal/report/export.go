package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for export paths with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// FormatFor picks the format from the file extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Export writes the report to path in the format implied by its extension.
func (r *Report) Export(path string) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := r.Encode(f, format); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes the report to w in the given format.
func (r *Report) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return r.writeCSV(w)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// writeCSV dumps one row per probe: successes first, then failures.
func (r *Report) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"scenario", "category", "seq", "ms", "status", "error"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, s := range r.samples {
		record := []string{
			string(s.Scenario),
			string(s.Scenario.Category()),
			strconv.Itoa(s.Seq),
			strconv.FormatFloat(s.Millis, 'f', 3, 64),
			strconv.Itoa(s.Status),
			"",
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	for _, f := range r.failures {
		record := []string{
			string(f.Scenario),
			string(f.Scenario.Category()),
			strconv.Itoa(f.Seq),
			"",
			"",
			f.Description,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
