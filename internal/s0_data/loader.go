package s0_data

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// Loader reads the raw field panels of one dataset
// ⭐ SSOT: S0 데이터 로딩 진입점
type Loader interface {
	Load(ctx context.Context) (*contracts.Dataset, error)
}

// NewLoader picks a loader by file extension:
// .parquet and .csv go through DuckDB, everything else is split-JSON
// (optionally .bz2 compressed). fields limits what is loaded; empty loads all.
func NewLoader(path string, fields []string, log *logger.Logger) Loader {
	name := strings.ToLower(path)
	ext := filepath.Ext(strings.TrimSuffix(name, ".bz2"))

	switch ext {
	case ".parquet", ".csv":
		return NewDuckDBLoader(path, fields, log)
	default:
		return NewJSONLoader(path, fields, log)
	}
}

// wanted reports whether field passes the filter
func wanted(fields []string, field string) bool {
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
