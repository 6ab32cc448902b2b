// Package export writes analysis results to CSV and JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"megasena-analyzer/internal/frequency"
	"megasena-analyzer/models"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var filenameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename replaces every character outside the portable set with an
// underscore so user-supplied names cannot escape the output directory.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	return filenameSanitizer.ReplaceAllString(name, "_")
}

// Writer exports data sets into a target directory.
type Writer struct {
	dir    string
	logger zerolog.Logger
}

// NewWriter creates an export writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &Writer{
		dir:    dir,
		logger: log.With().Str("component", "export").Logger(),
	}, nil
}

// Draws exports the full draw history.
func (w *Writer) Draws(name string, format Format, draws []models.Draw) (string, error) {
	switch format {
	case FormatJSON:
		return w.writeJSON(name, draws)
	case FormatCSV:
		header := []string{"sequence", "date", "n1", "n2", "n3", "n4", "n5", "n6"}
		rows := make([][]string, 0, len(draws))
		for _, d := range draws {
			row := []string{
				strconv.FormatUint(uint64(d.Sequence), 10),
				d.Date.Format("2006-01-02"),
			}
			for _, n := range d.Numbers {
				row = append(row, strconv.Itoa(n))
			}
			rows = append(rows, row)
		}
		return w.writeCSV(name, header, rows)
	default:
		return "", fmt.Errorf("%w: unknown export format %q", models.ErrInvalidArgument, format)
	}
}

// Frequencies exports a frequency table sorted by number.
func (w *Writer) Frequencies(name string, format Format, table models.FrequencyTable) (string, error) {
	switch format {
	case FormatJSON:
		return w.writeJSON(name, table)
	case FormatCSV:
		rows := make([][]string, 0, models.MaxNumber)
		for n := 1; n <= models.MaxNumber; n++ {
			rows = append(rows, []string{strconv.Itoa(n), strconv.Itoa(table[n])})
		}
		return w.writeCSV(name, []string{"number", "count"}, rows)
	default:
		return "", fmt.Errorf("%w: unknown export format %q", models.ErrInvalidArgument, format)
	}
}

// Pairs exports ranked pair co-occurrence counts.
func (w *Writer) Pairs(name string, format Format, pairs []frequency.PairCount) (string, error) {
	switch format {
	case FormatJSON:
		return w.writeJSON(name, pairs)
	case FormatCSV:
		rows := make([][]string, 0, len(pairs))
		for _, p := range pairs {
			rows = append(rows, []string{
				strconv.Itoa(p.Pair[0]),
				strconv.Itoa(p.Pair[1]),
				strconv.Itoa(p.Count),
			})
		}
		return w.writeCSV(name, []string{"a", "b", "count"}, rows)
	default:
		return "", fmt.Errorf("%w: unknown export format %q", models.ErrInvalidArgument, format)
	}
}

// Triplets exports ranked triplet co-occurrence counts.
func (w *Writer) Triplets(name string, format Format, triplets []frequency.TripletCount) (string, error) {
	switch format {
	case FormatJSON:
		return w.writeJSON(name, triplets)
	case FormatCSV:
		rows := make([][]string, 0, len(triplets))
		for _, t := range triplets {
			rows = append(rows, []string{
				strconv.Itoa(t.Triplet[0]),
				strconv.Itoa(t.Triplet[1]),
				strconv.Itoa(t.Triplet[2]),
				strconv.Itoa(t.Count),
			})
		}
		return w.writeCSV(name, []string{"a", "b", "c", "count"}, rows)
	default:
		return "", fmt.Errorf("%w: unknown export format %q", models.ErrInvalidArgument, format)
	}
}

func (w *Writer) path(name string, format Format) string {
	name = SanitizeFilename(name)
	ext := "." + string(format)
	if !strings.HasSuffix(name, ext) {
		name += ext
	}
	return filepath.Join(w.dir, name)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) (string, error) {
	path := w.path(name, FormatCSV)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}

	w.logger.Info().Str("path", path).Int("rows", len(rows)).Msg("Exported CSV")
	return path, nil
}

func (w *Writer) writeJSON(name string, v any) (string, error) {
	path := w.path(name, FormatJSON)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}

	w.logger.Info().Str("path", path).Msg("Exported JSON")
	return path, nil
}
