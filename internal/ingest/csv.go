package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"firegate/internal/core/domain"
	"firegate/internal/faults"
)

// CSVSource reads records from a CSV file in batches. The first row is the
// header; empty cells become nil so null checks see them as missing.
type CSVSource struct {
	name      string
	path      string
	batchSize int

	file    *os.File
	reader  *csv.Reader
	columns []string
}

// NewCSVSource creates a CSV batch source. batchSize <= 0 means read the
// whole file as one batch.
func NewCSVSource(name, path string, batchSize int) *CSVSource {
	return &CSVSource{name: name, path: path, batchSize: batchSize}
}

func (s *CSVSource) Name() string { return s.name }

func (s *CSVSource) open() error {
	f, err := os.Open(s.path)
	if err != nil {
		return faults.New(faults.KindConnectivity, fmt.Errorf("failed to open %s: %w", s.path, err))
	}
	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		_ = f.Close()
		return faults.New(faults.KindSchema, fmt.Errorf("failed to read header: %w", err))
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	s.file = f
	s.reader = r
	s.columns = header
	return nil
}

// Extract reads the next batch of rows.
func (s *CSVSource) Extract(ctx context.Context) (domain.Batch, error) {
	if s.reader == nil {
		if err := s.open(); err != nil {
			return nil, err
		}
	}

	var batch domain.Batch
	for s.batchSize <= 0 || len(batch) < s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := s.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, faults.New(faults.KindSchema, fmt.Errorf("failed to read row: %w", err))
		}
		if len(row) != len(s.columns) {
			return nil, faults.New(faults.KindSchema,
				fmt.Errorf("row has %d fields, header has %d", len(row), len(s.columns)))
		}
		batch = append(batch, rowToRecord(s.columns, row))
	}
	return batch, nil
}

// Close releases the underlying file.
func (s *CSVSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.reader = nil
	return err
}

func rowToRecord(columns, row []string) domain.Record {
	rec := make(domain.Record, len(columns))
	for i, col := range columns {
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			rec[col] = nil
			continue
		}
		if f, err := strconv.ParseFloat(cell, 64); err == nil {
			rec[col] = f
			continue
		}
		rec[col] = cell
	}
	return rec
}
