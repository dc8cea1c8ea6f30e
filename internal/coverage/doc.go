// Package coverage implements the coverage analysis engine: best-status
// aggregation over mappings, framework metrics, gap detection across
// business units and keyword-based content matching between document
// markdown and requirement text.
//
// All functions are pure reductions over in-memory collections. Mappings
// without a document are excluded before any aggregation, and mappings
// referencing unknown requirements are silently ignored; the store owns
// referential integrity.
package coverage
