package storage

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StimulusRecord catalogues one generated stimulus file.
type StimulusRecord struct {
	ID          uuid.UUID
	Kinetics    string
	Comment     string
	Parameters  json.RawMessage
	Sampling    string
	DelayMS     decimal.Decimal
	Samples     int
	DurationMS  decimal.Decimal
	PeakTimeMS  decimal.Decimal
	PeakCurrent decimal.Decimal
	ATFPath     string
	PlotPath    *string
	CreatedAt   time.Time
}
