package domain

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// WriteCSV writes the hourly energy series as `time,value` rows, one per
// hour of the target day, timestamps in the target timezone.
func (r ForecastResult) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "value"}); err != nil {
		return err
	}
	for i, ts := range r.Hours {
		row := []string{
			ts.Format(time.RFC3339),
			strconv.FormatFloat(r.HourlyEnergyKWh[i], 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
