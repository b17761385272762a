// Package preflight provides readiness checks for the filesystem paths that
// chanmap writes to.
//
// The convert pipeline calls CheckOutputDir before locking or writing a
// channel map so that a bad destination fails fast with ErrOutputDir. RunAll
// backs the "chanmap config validate" report.
package preflight
