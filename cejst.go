package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const tractIDLength = 11

const (
	columnTract         = "Census tract ID"
	columnCounty        = "County Name"
	columnState         = "State/Territory"
	columnDisadvantaged = "Identified as disadvantaged"
	columnPopulation    = "Total population"
)

var cejstColumns = []string{
	columnTract,
	columnCounty,
	columnState,
	columnDisadvantaged,
	columnPopulation,
}

// CEJSTTract is one row of the screening tool dataset, reduced to the
// columns the report uses.
type CEJSTTract struct {
	Tract         string
	County        string
	State         string
	Disadvantaged bool
	Population    float64
}

func LoadCEJST(path string) ([]CEJSTTract, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cejst data: %w", err)
	}
	defer file.Close()

	tracts, err := ReadCEJST(file)
	if err != nil {
		var dfe *DataFormatError
		if errors.As(err, &dfe) {
			dfe.Path = path
		}
		return nil, err
	}
	return tracts, nil
}

func ReadCEJST(r io.Reader) ([]CEJSTTract, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &DataFormatError{Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, csvFormatError(err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		index[strings.TrimSpace(name)] = i
	}

	columns := make(map[string]int, len(cejstColumns))
	for _, name := range cejstColumns {
		i, ok := index[name]
		if !ok {
			return nil, &DataFormatError{Line: 1, Column: name, Err: ErrMissingColumn}
		}
		columns[name] = i
	}

	var tracts []CEJSTTract
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvFormatError(err)
		}
		line, _ := reader.FieldPos(0)

		tract, err := padTract(record[columns[columnTract]])
		if err != nil {
			return nil, &DataFormatError{Line: line, Column: columnTract, Err: err}
		}

		disadvantaged, err := strconv.ParseBool(strings.TrimSpace(record[columns[columnDisadvantaged]]))
		if err != nil {
			return nil, &DataFormatError{Line: line, Column: columnDisadvantaged, Err: err}
		}

		population, err := parseCount(record[columns[columnPopulation]])
		if err != nil {
			return nil, &DataFormatError{Line: line, Column: columnPopulation, Err: err}
		}

		tracts = append(tracts, CEJSTTract{
			Tract:         tract,
			County:        record[columns[columnCounty]],
			State:         record[columns[columnState]],
			Disadvantaged: disadvantaged,
			Population:    population,
		})
	}

	return tracts, nil
}

// padTract restores the leading zeros lost when tract ids were stored as
// numbers.
func padTract(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > tractIDLength {
		return "", fmt.Errorf("tract id %q is not 1-%d digits", raw, tractIDLength)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("tract id %q is not numeric", raw)
		}
	}
	return strings.Repeat("0", tractIDLength-len(id)) + id, nil
}

// parseCount reads a population figure. Blank cells are NaN.
func parseCount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func csvFormatError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &DataFormatError{Line: pe.Line, Err: pe.Err}
	}
	return &DataFormatError{Err: err}
}
