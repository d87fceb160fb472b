// Package model defines the data structures shared by the analysis engine,
// the pipeline, the report writers and the history database.
//
// This package contains the following main types:
//   - Analysis: The result of key length estimation and key recovery
//   - AnalysisReport: One input's run, wrapping Analysis with provenance
//   - SimpleReport: A summarized, human-readable view of a report
//   - HexBytes: Binary data that renders as hex in JSON
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The analysis, report, pipeline and database packages all need
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
