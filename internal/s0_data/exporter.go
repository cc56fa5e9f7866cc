package s0_data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// Export maps a dataset field to its output file name
type Export struct {
	Field string
	File  string
}

// Exporter writes flat per-field tables for external consumers
type Exporter struct {
	dir    string
	logger *logger.Logger
}

// NewExporter creates an exporter writing into dir
func NewExporter(dir string, log *logger.Logger) *Exporter {
	return &Exporter{
		dir:    dir,
		logger: log,
	}
}

// Export writes every requested field and returns the written paths
func (e *Exporter) Export(ctx context.Context, ds *contracts.Dataset, exports []Export) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	paths := make([]string, 0, len(exports))
	for _, ex := range exports {
		p, err := ds.Get(ex.Field)
		if err != nil {
			return nil, err
		}

		path := filepath.Join(e.dir, ex.File)
		if err := writeFile(path, p); err != nil {
			return nil, fmt.Errorf("export %s: %w", ex.Field, err)
		}
		paths = append(paths, path)

		e.logger.WithFields(map[string]interface{}{
			"field": ex.Field,
			"path":  path,
			"rows":  p.Rows(),
		}).Debug("Field exported")
	}

	e.logger.WithField("files", len(paths)).Info("Export completed")
	return paths, nil
}

func writeFile(path string, p *contracts.Panel) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteCSV writes a header of asset ids then one row per date.
// There is no index column; missing cells are empty.
func WriteCSV(w io.Writer, p *contracts.Panel) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(p.Assets); err != nil {
		return err
	}

	record := make([]string, p.Cols())
	for _, row := range p.Values {
		for j, c := range row {
			record[j] = ""
			if c.IsSome() {
				record[j] = strconv.FormatFloat(c.Unwrap(), 'f', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
