package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"flickbridge/internal/dupindex"
)

// Severity classifies an anomaly record.
type Severity string

const (
	// SeverityWarning marks a recognized Flickr reference that does not
	// name a single photo (an album, a gallery, a profile).
	SeverityWarning Severity = "warning"
	// SeverityError marks a record claiming a Flickr source that could not
	// be recognized at all, or a record the scanner could not parse.
	SeverityError Severity = "error"
)

// AnomalyRecord describes one record the scanner could not turn into an
// index entry.
type AnomalyRecord struct {
	Severity Severity `json:"severity"`
	PageID   string   `json:"page_id,omitempty"`
	Title    string   `json:"title,omitempty"`
	Value    string   `json:"value,omitempty"`
	Reason   string   `json:"reason"`
}

// Sink receives scanner output. Implementations are called from a single
// goroutine; they do not need to be safe for concurrent use.
type Sink interface {
	Entry(ctx context.Context, entry dupindex.IndexEntry) error
	Anomaly(ctx context.Context, record AnomalyRecord) error
}

// Collector is an in-memory sink for tests and dry runs.
type Collector struct {
	mu        sync.Mutex
	Entries   []dupindex.IndexEntry
	Anomalies []AnomalyRecord
}

// Entry records an index entry.
func (c *Collector) Entry(_ context.Context, entry dupindex.IndexEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Entries = append(c.Entries, entry)
	return nil
}

// Anomaly records an anomaly.
func (c *Collector) Anomaly(_ context.Context, record AnomalyRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Anomalies = append(c.Anomalies, record)
	return nil
}

// Warnings returns the collected warning-severity anomalies.
func (c *Collector) Warnings() []AnomalyRecord {
	return c.bySeverity(SeverityWarning)
}

// Errors returns the collected error-severity anomalies.
func (c *Collector) Errors() []AnomalyRecord {
	return c.bySeverity(SeverityError)
}

func (c *Collector) bySeverity(severity Severity) []AnomalyRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	var matched []AnomalyRecord
	for _, record := range c.Anomalies {
		if record.Severity == severity {
			matched = append(matched, record)
		}
	}
	return matched
}

const putBatchSize = 500

// BuildSink feeds index entries into a dupindex store in batches and
// appends anomalies as line-oriented JSON to errors.log and warnings.log
// in the anomaly directory.
type BuildSink struct {
	store *dupindex.Store
	batch []dupindex.IndexEntry

	warnings *os.File
	errors   *os.File
}

// NewBuildSink opens the anomaly log files and returns a sink writing into
// the given store.
func NewBuildSink(store *dupindex.Store, anomalyDir string) (*BuildSink, error) {
	if err := os.MkdirAll(anomalyDir, 0o755); err != nil {
		return nil, fmt.Errorf("create anomaly directory: %w", err)
	}

	warnings, err := openAppend(filepath.Join(anomalyDir, "warnings.log"))
	if err != nil {
		return nil, err
	}
	errorsFile, err := openAppend(filepath.Join(anomalyDir, "errors.log"))
	if err != nil {
		_ = warnings.Close()
		return nil, err
	}

	return &BuildSink{
		store:    store,
		batch:    make([]dupindex.IndexEntry, 0, putBatchSize),
		warnings: warnings,
		errors:   errorsFile,
	}, nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// Entry buffers the entry and flushes a full batch to the store.
func (s *BuildSink) Entry(ctx context.Context, entry dupindex.IndexEntry) error {
	s.batch = append(s.batch, entry)
	if len(s.batch) >= putBatchSize {
		return s.Flush(ctx)
	}
	return nil
}

// Anomaly appends the record to the matching log file.
func (s *BuildSink) Anomaly(_ context.Context, record AnomalyRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal anomaly: %w", err)
	}
	target := s.errors
	if record.Severity == SeverityWarning {
		target = s.warnings
	}
	if _, err := target.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write anomaly: %w", err)
	}
	return nil
}

// Flush writes any buffered entries to the store.
func (s *BuildSink) Flush(ctx context.Context) error {
	if len(s.batch) == 0 {
		return nil
	}
	if err := s.store.Put(ctx, s.batch...); err != nil {
		return fmt.Errorf("flush entries: %w", err)
	}
	s.batch = s.batch[:0]
	return nil
}

// Close flushes remaining entries and closes the anomaly files.
func (s *BuildSink) Close(ctx context.Context) error {
	flushErr := s.Flush(ctx)
	warnErr := s.warnings.Close()
	errErr := s.errors.Close()
	if flushErr != nil {
		return flushErr
	}
	if warnErr != nil {
		return warnErr
	}
	return errErr
}
