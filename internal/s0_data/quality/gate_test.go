package quality

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

var (
	dates  = []time.Time{time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC)}
	assets = []string{"AAA", "BBB"}
)

func full(name string) *contracts.Panel {
	return contracts.NewPanel(name, dates, assets).FillMissing(1).Rename(name)
}

func dataset(panels ...*contracts.Panel) *contracts.Dataset {
	ds := contracts.NewDataset("test")
	for _, p := range panels {
		ds.Fields[p.Name] = p
	}
	return ds
}

func gate(minCoverage float64) *QualityGate {
	return NewQualityGate(Config{
		Required:    []string{contracts.FieldClose, contracts.FieldTotalEquity},
		MinCoverage: minCoverage,
	}, logger.Nop())
}

func TestCheck_Passes(t *testing.T) {
	equity := full(contracts.FieldTotalEquity)
	equity.Values[0][0] = contracts.Missing()

	snap, err := gate(0.9).Check(context.Background(), dataset(full(contracts.FieldClose), equity))
	require.NoError(t, err)

	assert.True(t, snap.Passed)
	assert.Equal(t, 2, snap.Dates)
	assert.Equal(t, 2, snap.Assets)
	assert.Equal(t, 1.0, snap.Coverage[contracts.FieldClose])
	assert.Equal(t, 0.75, snap.Coverage[contracts.FieldTotalEquity])
	assert.Len(t, snap.Warnings, 1, "low coverage warns but passes")
}

func TestCheck_Fatal(t *testing.T) {
	shifted := contracts.NewPanel(contracts.FieldTotalEquity, []time.Time{dates[0], dates[1].AddDate(0, 0, 1)}, assets)
	reordered := contracts.NewPanel(contracts.FieldTotalEquity, dates, []string{"BBB", "AAA"})
	backwards := contracts.NewPanel(contracts.FieldClose, []time.Time{dates[1], dates[0]}, assets)

	tests := []struct {
		name string
		ds   *contracts.Dataset
		want error
	}{
		{"missing field", dataset(full(contracts.FieldClose)), contracts.ErrFieldMissing},
		{"misaligned dates", dataset(full(contracts.FieldClose), shifted), contracts.ErrPanelMismatch},
		{"misaligned columns", dataset(full(contracts.FieldClose), reordered), contracts.ErrPanelMismatch},
		{"unordered dates", dataset(backwards, full(contracts.FieldTotalEquity)), contracts.ErrPanelMismatch},
		{"empty", dataset(contracts.NewPanel(contracts.FieldClose, nil, assets)), contracts.ErrEmptyPanel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gate(0).Check(context.Background(), tt.ds)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
