package snapshot

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"flickbridge/internal/dupindex"
	"flickbridge/internal/flickrid"
	"flickbridge/internal/logging"
	"flickbridge/internal/sdc"
	"flickbridge/internal/services"
)

const (
	defaultWorkers = 4
	// Entity lines in statement dumps routinely exceed bufio's default
	// line limit; heavily described files run to several megabytes.
	maxLineBytes = 32 * 1024 * 1024
)

// Scanner streams dump files and emits index entries and anomalies.
type Scanner struct {
	workers int
	logger  *slog.Logger
	now     func() time.Time
}

// NewScanner builds a scanner with a fixed worker count. A non-positive
// count selects the default.
func NewScanner(workers int, logger *slog.Logger) *Scanner {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		workers: workers,
		logger:  logging.NewComponentLogger(logger, "snapshot"),
		now:     time.Now,
	}
}

// Scan opens the dump at path, undoes gzip or bz2 compression by file
// extension, and dispatches to the statement or XML scanner.
func (s *Scanner) Scan(ctx context.Context, path string, sink Sink) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()

	var reader io.Reader = bufio.NewReaderSize(f, 1<<20)
	name := filepath.Base(path)
	switch {
	case strings.HasSuffix(name, ".bz2"):
		reader = bzip2.NewReader(reader)
		name = strings.TrimSuffix(name, ".bz2")
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(reader)
		if err != nil {
			return fmt.Errorf("open gzip dump: %w", err)
		}
		defer zr.Close()
		reader = zr
		name = strings.TrimSuffix(name, ".gz")
	}

	s.logger.Info("scanning dump", logging.String(logging.FieldDump, path))
	if strings.HasSuffix(name, ".xml") {
		return s.ScanRevisionXML(ctx, reader, sink)
	}
	return s.ScanStatements(ctx, reader, sink)
}

type recordResult struct {
	entries   []dupindex.IndexEntry
	anomalies []AnomalyRecord
}

// ScanStatements streams a structured-data entity dump: a JSON array with
// one entity object per line. A fixed pool of workers parses lines; the
// sink sees results from this goroutine only.
func (s *Scanner) ScanStatements(ctx context.Context, r io.Reader, sink Sink) error {
	scannedAt := s.now().UTC()
	lines := make(chan []byte, s.workers*4)
	results := make(chan recordResult, s.workers*4)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for line := range lines {
				results <- s.processEntityLine(line, scannedAt)
			}
		}()
	}

	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		readErr <- readDumpLines(ctx, r, lines)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var entryCount, anomalyCount int64
	var sinkErr error
	for result := range results {
		if sinkErr != nil {
			continue
		}
		for _, entry := range result.entries {
			if err := sink.Entry(ctx, entry); err != nil {
				sinkErr = fmt.Errorf("sink entry: %w", err)
				break
			}
			entryCount++
		}
		for _, record := range result.anomalies {
			if sinkErr != nil {
				break
			}
			if err := sink.Anomaly(ctx, record); err != nil {
				sinkErr = fmt.Errorf("sink anomaly: %w", err)
				break
			}
			anomalyCount++
		}
	}

	if err := <-readErr; err != nil {
		return err
	}
	if sinkErr != nil {
		return sinkErr
	}

	s.logger.Info("statement scan complete",
		logging.Int64("entries", entryCount),
		logging.Int64("anomalies", anomalyCount))
	return nil
}

// readDumpLines feeds trimmed entity lines to the workers, skipping the
// array brackets and trailing commas of the dump framing.
func readDumpLines(ctx context.Context, r io.Reader, lines chan<- []byte) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		line = bytes.TrimSuffix(line, []byte(","))
		if len(line) == 0 || bytes.Equal(line, []byte("[")) || bytes.Equal(line, []byte("]")) {
			continue
		}
		dup := make([]byte, len(line))
		copy(dup, line)
		lines <- dup
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read dump: %w", err)
	}
	return nil
}

type dumpEntity struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Statements json.RawMessage `json:"statements"`
}

func (s *Scanner) processEntityLine(line []byte, scannedAt time.Time) recordResult {
	var entity dumpEntity
	if err := json.Unmarshal(line, &entity); err != nil {
		err = fmt.Errorf("%w: %w", services.ErrMalformedRecord, err)
		return recordResult{anomalies: []AnomalyRecord{{
			Severity: SeverityError,
			Value:    truncate(string(line), 200),
			Reason:   err.Error(),
		}}}
	}

	// Entities without structured data carry statements as an empty JSON
	// array rather than an object.
	trimmed := bytes.TrimSpace(entity.Statements)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return recordResult{}
	}

	// UnmarshalClaims already tags these with services.ErrMalformedRecord.
	statements, err := sdc.UnmarshalClaims(trimmed)
	if err != nil {
		return recordResult{anomalies: []AnomalyRecord{{
			Severity: SeverityError,
			PageID:   entity.ID,
			Title:    entity.Title,
			Reason:   err.Error(),
		}}}
	}

	return s.extractReferences(entity.ID, entity.Title, statements, scannedAt)
}

// extractReferences turns one file's statements into index entries and
// anomalies. Each photo id yields at most one entry per file.
func (s *Scanner) extractReferences(pageID, title string, statements []sdc.Statement, scannedAt time.Time) recordResult {
	var result recordResult
	seen := map[string]bool{}

	addEntry := func(photoID string) {
		if seen[photoID] {
			return
		}
		seen[photoID] = true
		result.entries = append(result.entries, dupindex.IndexEntry{
			PhotoID:   photoID,
			Title:     title,
			PageID:    pageID,
			ScannedAt: scannedAt,
		})
	}

	for _, url := range sdc.SourceURLs(statements) {
		ref, err := flickrid.Recognize(url)
		if err != nil {
			result.anomalies = append(result.anomalies, AnomalyRecord{
				Severity: SeverityError,
				PageID:   pageID,
				Title:    title,
				Value:    url,
				Reason:   "source url is not a flickr reference",
			})
			continue
		}
		if !ref.IsPhoto() {
			result.anomalies = append(result.anomalies, AnomalyRecord{
				Severity: SeverityWarning,
				PageID:   pageID,
				Title:    title,
				Value:    url,
				Reason:   fmt.Sprintf("flickr %s reference, not a single photo", ref.Kind),
			})
			continue
		}
		addEntry(ref.PhotoID)
	}

	for _, statement := range statements {
		if statement.Property != sdc.PropFlickrPhotoID {
			continue
		}
		if statement.Mainsnak.Type == sdc.SnakValue && statement.Mainsnak.Value.Type == sdc.ValueString {
			addEntry(statement.Mainsnak.Value.String)
		}
	}

	return result
}

type revisionPage struct {
	Title     string `xml:"title"`
	ID        int64  `xml:"id"`
	Revisions []struct {
		Text string `xml:"text"`
	} `xml:"revision"`
}

// ScanRevisionXML streams a MediaWiki revision-history export and searches
// each file page's latest wikitext for Flickr URLs.
func (s *Scanner) ScanRevisionXML(ctx context.Context, r io.Reader, sink Sink) error {
	scannedAt := s.now().UTC()
	decoder := xml.NewDecoder(r)

	var entryCount, anomalyCount int64
	emit := func(result recordResult) error {
		for _, entry := range result.entries {
			if err := sink.Entry(ctx, entry); err != nil {
				return fmt.Errorf("sink entry: %w", err)
			}
			entryCount++
		}
		for _, record := range result.anomalies {
			if err := sink.Anomaly(ctx, record); err != nil {
				return fmt.Errorf("sink anomaly: %w", err)
			}
			anomalyCount++
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A broken export cannot be resynchronized; record what
			// happened and keep the output produced so far.
			anomaly := AnomalyRecord{
				Severity: SeverityError,
				Reason:   "malformed revision xml: " + err.Error(),
			}
			if sinkErr := sink.Anomaly(ctx, anomaly); sinkErr != nil {
				return fmt.Errorf("sink anomaly: %w", sinkErr)
			}
			break
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "page" {
			continue
		}

		var page revisionPage
		if err := decoder.DecodeElement(&page, &start); err != nil {
			anomaly := AnomalyRecord{
				Severity: SeverityError,
				Reason:   "unreadable page element: " + err.Error(),
			}
			if sinkErr := sink.Anomaly(ctx, anomaly); sinkErr != nil {
				return fmt.Errorf("sink anomaly: %w", sinkErr)
			}
			continue
		}

		if !strings.HasPrefix(page.Title, "File:") || len(page.Revisions) == 0 {
			continue
		}

		text := page.Revisions[len(page.Revisions)-1].Text
		result := s.extractFromWikitext(page, text, scannedAt)
		if err := emit(result); err != nil {
			return err
		}
	}

	s.logger.Info("revision scan complete",
		logging.Int64("entries", entryCount),
		logging.Int64("anomalies", anomalyCount))
	return nil
}

func (s *Scanner) extractFromWikitext(page revisionPage, text string, scannedAt time.Time) recordResult {
	pageID := fmt.Sprintf("M%d", page.ID)
	var result recordResult
	seen := map[string]bool{}

	for _, url := range flickrid.FindCandidateURLs(text) {
		ref, err := flickrid.Recognize(url)
		if err != nil {
			result.anomalies = append(result.anomalies, AnomalyRecord{
				Severity: SeverityError,
				PageID:   pageID,
				Title:    page.Title,
				Value:    url,
				Reason:   "flickr-like url not recognized",
			})
			continue
		}
		if !ref.IsPhoto() {
			result.anomalies = append(result.anomalies, AnomalyRecord{
				Severity: SeverityWarning,
				PageID:   pageID,
				Title:    page.Title,
				Value:    url,
				Reason:   fmt.Sprintf("flickr %s reference, not a single photo", ref.Kind),
			})
			continue
		}
		if seen[ref.PhotoID] {
			continue
		}
		seen[ref.PhotoID] = true
		result.entries = append(result.entries, dupindex.IndexEntry{
			PhotoID:   ref.PhotoID,
			Title:     page.Title,
			PageID:    pageID,
			ScannedAt: scannedAt,
		})
	}

	return result
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
