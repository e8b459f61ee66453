// Package file writes scenario results to CSV and JSON files.
package file

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/openfield-comfort/internal/domain"
)

// Output file names within the result directory.
const (
	UTCIFile       = "utci.csv"
	CategoriesFile = "utci_categories.csv"
	SummaryFile    = "summary.json"
)

// Writer stores a batch of results as files in one directory.
// It implements pipeline.ResultLoader.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a writer targeting dir, which is created on first use.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Name identifies the sink in metrics.
func (w *Writer) Name() string { return "file" }

// LoadResults writes the hourly UTCI table, the hourly stress category table
// and the JSON summary.
func (w *Writer) LoadResults(_ context.Context, results []domain.ScenarioResult) error {
	if len(results) == 0 {
		return nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create result dir: %w", err)
	}
	files := []struct {
		name  string
		write func(io.Writer, []domain.ScenarioResult) error
	}{
		{UTCIFile, WriteUTCI},
		{CategoriesFile, WriteCategories},
		{SummaryFile, WriteSummary},
	}
	for _, f := range files {
		if err := writeAtomic(filepath.Join(w.dir, f.name), func(out io.Writer) error {
			return f.write(out, results)
		}); err != nil {
			return err
		}
	}
	w.logger.Info("results written", "dir", w.dir, "cases", len(results))
	return nil
}

// WriteUTCI writes one row per hour with a column per case.
func WriteUTCI(out io.Writer, results []domain.ScenarioResult) error {
	return writeTable(out, results, func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	})
}

// WriteCategories writes the stress category label of each hour and case.
func WriteCategories(out io.Writer, results []domain.ScenarioResult) error {
	return writeTable(out, results, func(v float64) string {
		return domain.Categorize(v).String()
	})
}

// WriteSeries writes a single series as a timestamp,value table.
func WriteSeries(out io.Writer, s domain.Series) error {
	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"timestamp", fmt.Sprintf("%s (%s)", s.Name, s.Unit)}); err != nil {
		return err
	}
	for i, v := range s.Values {
		if err := cw.Write([]string{
			s.Period.At(i).Format(time.RFC3339),
			strconv.FormatFloat(v, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTable(out io.Writer, results []domain.ScenarioResult, format func(float64) string) error {
	hours := results[0].UTCI.Len()
	header := make([]string, 0, len(results)+1)
	header = append(header, "timestamp")
	for _, r := range results {
		if r.UTCI.Len() != hours {
			return fmt.Errorf("case %s has %d hours, want %d", r.CaseID, r.UTCI.Len(), hours)
		}
		header = append(header, r.CaseID)
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	period := results[0].UTCI.Period
	for h := 0; h < hours; h++ {
		row[0] = period.At(h).Format(time.RFC3339)
		for i, r := range results {
			row[i+1] = format(r.UTCI.Values[h])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// summaryDoc is the JSON layout of summary.json.
type summaryDoc struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Categories  []string      `json:"categories"`
	Cases       []summaryCase `json:"cases"`
}

type summaryCase struct {
	CaseID   string          `json:"case_id"`
	Scenario domain.Scenario `json:"scenario"`
	Summary  domain.Summary  `json:"summary"`
}

// WriteSummary writes the per-case summaries without the hourly series.
func WriteSummary(out io.Writer, results []domain.ScenarioResult) error {
	doc := summaryDoc{
		RunID:       results[0].RunID,
		GeneratedAt: results[0].GeneratedAt,
		Categories:  make([]string, domain.NumStressCategories),
		Cases:       make([]summaryCase, len(results)),
	}
	for i := range doc.Categories {
		doc.Categories[i] = domain.StressCategory(i - 5).String()
	}
	for i, r := range results {
		doc.Cases[i] = summaryCase{CaseID: r.CaseID, Scenario: r.Scenario, Summary: r.Summary}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// writeAtomic writes to a temporary file and renames it over path.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
