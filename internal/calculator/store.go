package calculator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// writeHistoryFile writes calcs as CSV to path in the named text encoding.
// Data goes to a temp file in the same directory first and is renamed over
// path, so readers never see a half-written file.
func writeHistoryFile(path, encodingName string, calcs []Calculation) (err error) {
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return fmt.Errorf("resolving encoding %q: %w", encodingName, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	tw := transform.NewWriter(tmp, enc.NewEncoder())
	w := csv.NewWriter(tw)

	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, calc := range calcs {
		if err := w.Write(calcRow(calc)); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}

// readHistoryFile decodes every row of the CSV at path. Columns are matched
// by header name.
func readHistoryFile(path, encodingName string) ([]Calculation, error) {
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return nil, fmt.Errorf("resolving encoding %q: %w", encodingName, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, enc.NewDecoder()))

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var calcs []Calculation
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		data := make(map[string]string, len(header))
		for i, col := range header {
			data[col] = record[i]
		}

		calc, err := CalculationFromMap(data)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		calcs = append(calcs, calc)
	}

	return calcs, nil
}

func calcRow(calc Calculation) []string {
	m := calc.ToMap()
	row := make([]string, len(Columns))
	for i, col := range Columns {
		row[i] = m[col]
	}
	return row
}
