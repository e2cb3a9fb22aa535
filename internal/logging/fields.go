package logging

// Standardized attribute keys used across flickbridge log lines.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldTarget    = "target"
	FieldPhotoID   = "photo_id"
	FieldPageID    = "page_id"
	FieldDump      = "dump"
)
