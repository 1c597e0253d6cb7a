// Package export renders record sets into delimited text for download.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/chessman8212-ai/poinatge-app/internal/ledger"
)

var header = []string{"id", "jour", "nom", "service_code", "service_label", "arrivee", "depart", "note"}

// Render produces the CSV body: header row then one row per record, in the
// order the records were given. Identical input yields byte-identical
// output. The whole result is materialized before return, which is fine at
// this scale but a known limit for very large ledgers.
func Render(records []ledger.Record, delimiter rune) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = delimiter
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, rec := range records {
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.Day,
			rec.Owner,
			rec.Category,
			ledger.CategoryLabel(rec.Category),
			rec.Arrival,
			rec.Departure,
			rec.Note,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename returns the download name: pointages.csv for a full export,
// pointages_<day>.csv when scoped to one day.
func Filename(day string) string {
	if day == "" {
		return "pointages.csv"
	}
	return "pointages_" + day + ".csv"
}
