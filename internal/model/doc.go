// Package model defines the core data structures used throughout psinsight.
//
// This package contains the following main types:
//   - AnalysisResult: The normalized result of one PageSpeed analysis
//   - MetricValue: A single lab-data timing metric
//   - Opportunity: An API-reported improvement suggestion
//   - URLReport: The desktop and mobile results for one URL, paired for display
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (pagespeed, report, database) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
