package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/trainlog/trainlog/ingest"
)

// LoadRecords reads a record table (trainlog.csv or best_results.csv) back
// into memory. Unlike raw log ingestion, these files are this module's own
// output, so malformed rows are errors rather than discards.
func LoadRecords(path string) ([]ingest.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening record table: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)

	// Skip header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	var records []ingest.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		r, err := parseRecordRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(records)+1, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func parseRecordRow(row []string) (ingest.Record, error) {
	if len(row) != len(ingest.Columns) {
		return ingest.Record{}, fmt.Errorf("row has %d columns, expected %d", len(row), len(ingest.Columns))
	}
	step, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return ingest.Record{}, fmt.Errorf("parsing Step: %w", err)
	}
	lastCrash, err := strconv.ParseInt(row[6], 10, 64)
	if err != nil {
		return ingest.Record{}, fmt.Errorf("parsing Last Crash: %w", err)
	}
	found, err := strconv.ParseBool(row[9])
	if err != nil {
		return ingest.Record{}, fmt.Errorf("parsing Found: %w", err)
	}
	floats := make([]float64, 0, 6)
	for _, idx := range []int{3, 4, 5, 7, 8, 10} {
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return ingest.Record{}, fmt.Errorf("parsing %s: %w", ingest.Columns[idx], err)
		}
		floats = append(floats, v)
	}
	return ingest.Record{
		Step:         step,
		Episode:      row[1],
		Decision:     row[2],
		Eps:          floats[0],
		LearningRate: floats[1],
		Return:       floats[2],
		LastCrash:    lastCrash,
		StepTime:     floats[3],
		SF:           floats[4],
		Found:        found,
		Reward:       floats[5],
	}, nil
}

// LoadParams reads a params.csv back into memory.
func LoadParams(path string) ([]ingest.Param, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening params table: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	var params []ingest.Param
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if len(row) != len(ParamColumns) {
			return nil, fmt.Errorf("row has %d columns, expected %d", len(row), len(ParamColumns))
		}
		params = append(params, ingest.Param{Name: row[0], Value: row[1]})
	}
	return params, nil
}
