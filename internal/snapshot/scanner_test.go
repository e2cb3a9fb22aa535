package snapshot_test

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"flickbridge/internal/dupindex"
	"flickbridge/internal/services"
	"flickbridge/internal/snapshot"
	"flickbridge/internal/testsupport"
)

const (
	photoRecord = `{"type":"mediainfo","id":"M100","title":"File:Penguin.jpg","statements":{"P7482":[{"type":"statement","mainsnak":{"snaktype":"value","property":"P7482","datavalue":{"type":"wikibase-entityid","value":{"id":"Q74228490"}}},"qualifiers":{"P973":[{"snaktype":"value","property":"P973","datavalue":{"type":"string","value":"https://www.flickr.com/photos/poly/6318576132/"}}],"P137":[{"snaktype":"value","property":"P137","datavalue":{"type":"wikibase-entityid","value":{"id":"Q103204"}}}]},"qualifiers-order":["P973","P137"]}]}}`

	galleryRecord = `{"type":"mediainfo","id":"M200","title":"File:Gallery.jpg","statements":{"P7482":[{"type":"statement","mainsnak":{"snaktype":"value","property":"P7482","datavalue":{"type":"wikibase-entityid","value":{"id":"Q74228490"}}},"qualifiers":{"P973":[{"snaktype":"value","property":"P973","datavalue":{"type":"string","value":"https://www.flickr.com/photos/poly/galleries/72157716232834435/"}}]}}]}}`

	nonFlickrRecord = `{"type":"mediainfo","id":"M300","title":"File:Elsewhere.jpg","statements":{"P7482":[{"type":"statement","mainsnak":{"snaktype":"value","property":"P7482","datavalue":{"type":"wikibase-entityid","value":{"id":"Q74228490"}}},"qualifiers":{"P973":[{"snaktype":"value","property":"P973","datavalue":{"type":"string","value":"https://example.com/some/photo.jpg"}}]}}]}}`

	bareIDRecord = `{"type":"mediainfo","id":"M400","title":"File:Bare.jpg","statements":{"P12120":[{"type":"statement","mainsnak":{"snaktype":"value","property":"P12120","datavalue":{"type":"string","value":"53240661807"}}}]}}`

	emptyStatementsRecord = `{"type":"mediainfo","id":"M500","title":"File:Empty.jpg","statements":[]}`
)

func scanRecords(t *testing.T, records []string) *snapshot.Collector {
	t.Helper()
	scanner := snapshot.NewScanner(2, nil)
	sink := &snapshot.Collector{}
	dump := "[\n" + strings.Join(records, ",\n") + "\n]\n"
	if err := scanner.ScanStatements(context.Background(), strings.NewReader(dump), sink); err != nil {
		t.Fatalf("ScanStatements failed: %v", err)
	}
	return sink
}

func photoIDs(entries []dupindex.IndexEntry) []string {
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.PhotoID
	}
	sort.Strings(ids)
	return ids
}

func TestScanStatementsMixedRecords(t *testing.T) {
	sink := scanRecords(t, []string{photoRecord, galleryRecord, nonFlickrRecord})

	if got := photoIDs(sink.Entries); len(got) != 1 || got[0] != "6318576132" {
		t.Fatalf("entries = %v, want [6318576132]", got)
	}
	if warnings := sink.Warnings(); len(warnings) != 1 {
		t.Fatalf("warnings = %+v, want exactly one", warnings)
	} else if warnings[0].PageID != "M200" {
		t.Fatalf("warning page = %q", warnings[0].PageID)
	}
	if errs := sink.Errors(); len(errs) != 1 {
		t.Fatalf("errors = %+v, want exactly one", errs)
	} else if errs[0].Value != "https://example.com/some/photo.jpg" {
		t.Fatalf("error value = %q", errs[0].Value)
	}
}

func TestScanStatementsBarePhotoIDStatement(t *testing.T) {
	sink := scanRecords(t, []string{bareIDRecord})

	if len(sink.Entries) != 1 {
		t.Fatalf("entries = %+v", sink.Entries)
	}
	entry := sink.Entries[0]
	if entry.PhotoID != "53240661807" || entry.PageID != "M400" || entry.Title != "File:Bare.jpg" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestScanStatementsSkipsEmptyAndMalformed(t *testing.T) {
	sink := scanRecords(t, []string{emptyStatementsRecord, `{"this is not json`})

	if len(sink.Entries) != 0 {
		t.Fatalf("expected no entries, got %+v", sink.Entries)
	}
	errs := sink.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0].Reason, services.ErrMalformedRecord.Error()) {
		t.Fatalf("errors = %+v", errs)
	}
}

func TestScanStatementsIdempotent(t *testing.T) {
	records := []string{photoRecord, galleryRecord, nonFlickrRecord, bareIDRecord}
	first := scanRecords(t, records)
	second := scanRecords(t, records)

	if got, want := photoIDs(first.Entries), photoIDs(second.Entries); len(got) != len(want) {
		t.Fatalf("entry counts differ: %v vs %v", got, want)
	} else {
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("entries differ: %v vs %v", got, want)
			}
		}
	}
	if len(first.Anomalies) != len(second.Anomalies) {
		t.Fatalf("anomaly counts differ: %d vs %d", len(first.Anomalies), len(second.Anomalies))
	}
}

func TestScanGzipDumpIntoIndex(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIndex(t, cfg)
	ctx := context.Background()

	dumpPath := filepath.Join(t.TempDir(), "commons-20240115-mediainfo.json.gz")
	testsupport.WriteGzipDump(t, dumpPath, []string{photoRecord, bareIDRecord, galleryRecord})

	sink, err := snapshot.NewBuildSink(store, cfg.Paths.LogDir)
	if err != nil {
		t.Fatalf("NewBuildSink failed: %v", err)
	}

	scanner := snapshot.NewScanner(2, nil)
	if err := scanner.Scan(ctx, dumpPath, sink); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if err := sink.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("indexed %d photos, want 2", count)
	}

	entry, err := store.Lookup(ctx, "6318576132")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if entry.Title != "File:Penguin.jpg" || entry.PageID != "M100" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

const revisionXML = `<mediawiki>
  <page>
    <title>File:Penguin.jpg</title>
    <ns>6</ns>
    <id>100</id>
    <revision>
      <id>1</id>
      <text>old text, no links yet</text>
    </revision>
    <revision>
      <id>2</id>
      <text>{{Information |Source=[https://www.flickr.com/photos/poly/6318576132/ Flickr]}}</text>
    </revision>
  </page>
  <page>
    <title>File:Album.jpg</title>
    <ns>6</ns>
    <id>200</id>
    <revision>
      <id>3</id>
      <text>Source: https://www.flickr.com/photos/poly/albums/72157650910758151</text>
    </revision>
  </page>
  <page>
    <title>Talk:Unrelated</title>
    <ns>1</ns>
    <id>300</id>
    <revision>
      <id>4</id>
      <text>https://www.flickr.com/photos/poly/253009/</text>
    </revision>
  </page>
</mediawiki>
`

func TestScanRevisionXML(t *testing.T) {
	scanner := snapshot.NewScanner(1, nil)
	sink := &snapshot.Collector{}

	err := scanner.ScanRevisionXML(context.Background(), strings.NewReader(revisionXML), sink)
	if err != nil {
		t.Fatalf("ScanRevisionXML failed: %v", err)
	}

	if len(sink.Entries) != 1 {
		t.Fatalf("entries = %+v, want one from the File page", sink.Entries)
	}
	entry := sink.Entries[0]
	if entry.PhotoID != "6318576132" || entry.PageID != "M100" || entry.Title != "File:Penguin.jpg" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if warnings := sink.Warnings(); len(warnings) != 1 {
		t.Fatalf("warnings = %+v, want the album reference", warnings)
	}
}
