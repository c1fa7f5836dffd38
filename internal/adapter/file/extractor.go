// Package file reads raw departure records from a JSON-lines fixture, one
// {"source": "...", "record": {...}} envelope per line.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/flight-delay-etl/internal/domain"
)

const maxLineBytes = 1 << 20

// Envelope is one line of a fixture file.
type Envelope struct {
	Source domain.SourceID `json:"source"`
	Record json.RawMessage `json:"record"`
}

// Extractor implements pipeline.BatchExtractor over a JSON-lines file.
type Extractor struct {
	f       *os.File
	scanner *bufio.Scanner
	name    string
	line    int64
}

// Open prepares path for extraction.
func Open(path string) (*Extractor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ingest file: %w", err)
	}
	return newExtractor(f, filepath.Base(path)), nil
}

func newExtractor(f *os.File, name string) *Extractor {
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Extractor{f: f, scanner: s, name: name}
}

// ExtractBatch returns up to batchSize records. The final batch is returned
// together with io.EOF. Lines that are not valid envelopes are passed on with
// no source so the pipeline counts them as normalization failures.
func (e *Extractor) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	batch := make([]domain.RawEvent, 0, batchSize)
	for len(batch) < batchSize {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		if !e.scanner.Scan() {
			if err := e.scanner.Err(); err != nil {
				return batch, fmt.Errorf("%w: read %s line %d: %w", domain.ErrSourceUnreadable, e.name, e.line+1, err)
			}
			return batch, io.EOF
		}
		e.line++
		raw := e.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		batch = append(batch, e.toRawEvent(raw))
	}
	return batch, nil
}

func (e *Extractor) toRawEvent(line []byte) domain.RawEvent {
	ev := domain.RawEvent{
		Topic:  e.name,
		Offset: e.line,
		Value:  append([]byte(nil), line...),
	}
	var env Envelope
	if err := json.Unmarshal(line, &env); err == nil && len(env.Record) > 0 {
		ev.Source = env.Source
		ev.Value = append([]byte(nil), env.Record...)
	}
	return ev
}

func (e *Extractor) Close() error {
	return e.f.Close()
}

// ReadAll loads every envelope of a fixture file. The replay tool uses it.
func ReadAll(r io.Reader) ([]Envelope, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var out []Envelope
	line := 0
	for s.Scan() {
		line++
		if len(s.Bytes()) == 0 {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(s.Bytes(), &env); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, env)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
