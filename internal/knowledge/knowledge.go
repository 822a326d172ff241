// Package knowledge holds the static accident-type table loaded at
// startup. Every report's legal fields (title, fault ratios, statutes,
// precedents) come from this table, never from the analysis payload.
package knowledge

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

// Column layout of the accident case table. The accident type code in
// column 7 is the lookup key.
const (
	colIndex = iota
	colPlace
	colPlaceFeature
	colVehicleADir
	colVehicleBDir
	colFaultA
	colFaultB
	colCode
	colTitle
	colLaws
	colPrecedents
	columnCount
)

// CaseEntry is one row of the accident case table.
type CaseEntry struct {
	Code         int
	Place        string
	PlaceFeature string
	VehicleADir  string
	VehicleBDir  string
	FaultA       int
	FaultB       int
	Title        string
	Laws         string
	Precedents   string
}

// AccidentCaseTable resolves accident type codes to their legal context.
// The table is immutable after Load, so lookups need no locking.
type AccidentCaseTable struct {
	log     *logger.Logger
	entries map[int]CaseEntry
}

// Load reads the case table CSV at path. Rows with too few columns or a
// non-numeric code are skipped with a warning; unparsable fault ratios
// default to 0 so one bad cell does not drop the row.
func Load(path string, baseLog *logger.Logger) (*AccidentCaseTable, error) {
	tableLog := baseLog.With("component", "AccidentCaseTable")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open case table %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse case table %q: %w", path, err)
	}

	entries := make(map[int]CaseEntry)
	for i, row := range rows {
		if i == 0 {
			// Header row.
			continue
		}
		if len(row) < columnCount {
			tableLog.Warn("Skipping malformed case table row", "line", i+1, "columns", len(row))
			continue
		}
		code, err := strconv.Atoi(strings.TrimSpace(row[colCode]))
		if err != nil {
			tableLog.Warn("Skipping case table row with non-numeric code", "line", i+1, "code", row[colCode])
			continue
		}
		entries[code] = CaseEntry{
			Code:         code,
			Place:        strings.TrimSpace(row[colPlace]),
			PlaceFeature: strings.TrimSpace(row[colPlaceFeature]),
			VehicleADir:  strings.TrimSpace(row[colVehicleADir]),
			VehicleBDir:  strings.TrimSpace(row[colVehicleBDir]),
			FaultA:       atoiOrZero(row[colFaultA]),
			FaultB:       atoiOrZero(row[colFaultB]),
			Title:        strings.TrimSpace(row[colTitle]),
			Laws:         strings.TrimSpace(row[colLaws]),
			Precedents:   strings.TrimSpace(row[colPrecedents]),
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("case table %q contains no usable rows", path)
	}

	tableLog.Info("Loaded accident case table", "path", path, "entries", len(entries))
	return &AccidentCaseTable{log: tableLog, entries: entries}, nil
}

// Resolve returns the entry for code, or a sentinel entry when the code
// is unknown. Report assembly never fails on an unmapped code.
func (t *AccidentCaseTable) Resolve(code int) CaseEntry {
	if entry, ok := t.entries[code]; ok {
		return entry
	}
	t.log.Warn("Unknown accident type code, using sentinel entry", "code", code)
	return CaseEntry{
		Code:       code,
		Title:      "Unclassified accident type",
		Laws:       "No statute reference available for this accident type.",
		Precedents: "No precedent reference available for this accident type.",
	}
}

// Size reports the number of loaded entries.
func (t *AccidentCaseTable) Size() int {
	return len(t.entries)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
