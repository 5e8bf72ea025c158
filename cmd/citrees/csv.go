package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

/*
readLabeledCSV parses a training CSV stream into a feature matrix and a
label slice. The first row is expected to be a header; every column but
the last is parsed as a float feature and the last column as an integer
class label. The returned slice holds the header names of the feature
columns.
*/
func readLabeledCSV(reader io.Reader) (*mat.Dense, []int, []string, error) {
	records, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading CSV data: %v", err)
	}
	if len(records) < 2 {
		return nil, nil, nil, fmt.Errorf("CSV data needs a header row and at least one sample")
	}
	header := records[0]
	if len(header) < 2 {
		return nil, nil, nil, fmt.Errorf("CSV data needs at least one feature column and a label column")
	}
	p := len(header) - 1
	data := make([]float64, 0, (len(records)-1)*p)
	labels := make([]int, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != p+1 {
			return nil, nil, nil, fmt.Errorf("row %d has %d columns, expected %d", i+2, len(record), p+1)
		}
		for j := 0; j < p; j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("parsing feature at row %d, column %d: %v", i+2, j+1, err)
			}
			data = append(data, v)
		}
		label, err := strconv.Atoi(record[p])
		if err != nil {
			return nil, nil, nil, fmt.Errorf("parsing label at row %d: %v", i+2, err)
		}
		labels = append(labels, label)
	}
	return mat.NewDense(len(labels), p, data), labels, header[:p], nil
}

/*
readUnlabeledCSV parses a prediction CSV stream with a header row and p
float feature columns into a feature matrix.
*/
func readUnlabeledCSV(reader io.Reader, p int) (*mat.Dense, error) {
	records, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV data: %v", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV data needs a header row and at least one sample")
	}
	data := make([]float64, 0, (len(records)-1)*p)
	for i, record := range records[1:] {
		if len(record) != p {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i+2, len(record), p)
		}
		for j := 0; j < p; j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("parsing feature at row %d, column %d: %v", i+2, j+1, err)
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(len(records)-1, p, data), nil
}
