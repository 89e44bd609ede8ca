// Package importers turns spreadsheet exports of a reading library into books.
//
// # Architecture
//
// An import runs in three steps:
//
//	CSV text → PreviewHeaders → AutoDetectColumns → (user edits) → Import → Store
//
// AutoDetectColumns proposes a ColumnMapping from canonical field keys to CSV
// headers. The proposal is a heuristic and is always shown to the user for
// confirmation before Import runs.
//
// Import parses the whole document before touching the store, so a malformed
// CSV returns a *ParseError and commits nothing. A mapping without title or
// author returns a *ValidationError before any row is read. Rows that cannot
// be imported are never errors: they are reported in ImportOutcome.Skipped
// with a SkipReason.
//
// # Supported Exports
//
// The alias table in fields.go recognises Goodreads, StoryGraph and
// LibraryThing headers. Anything else falls back to substring and token
// overlap scoring.
//
// # Example Usage
//
//	svc := importers.NewService(booksRepo)
//	headers, err := svc.PreviewHeaders(csvText)
//	detection := svc.AutoDetectColumns(headers)
//	outcome, err := svc.ImportCSV(ctx, csvText, detection.Mapping, "goodreads")
package importers
