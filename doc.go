// Package main provides the entry point for the PolicyHub GRC service.
// It initializes and runs a web server using the Fiber framework that exposes
// a REST API for regulatory frameworks, policy documents, coverage mappings,
// risks, findings and audits. The application uses gorm for data persistence
// and includes a coverage analysis engine that classifies compliance gaps and
// scores document content against requirement text.
package main
