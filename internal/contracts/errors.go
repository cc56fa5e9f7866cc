package contracts

import "errors"

// Structural errors. Numeric gaps are never errors; they propagate as missing cells.
var (
	ErrFieldMissing     = errors.New("required field missing from dataset")
	ErrPanelMismatch    = errors.New("panel index or columns mismatch")
	ErrEmptyPanel       = errors.New("panel has no dates or no assets")
	ErrNoRebalanceDates = errors.New("no rebalancing dates left after reconciliation")
)
