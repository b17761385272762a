// Package textutil provides text helpers for file and variable naming.
//
// The primary use cases are:
//   - Deriving a channel map base name from a metadata file name
//   - Normalizing base names to Unicode NFC before they are stored
//   - Sanitizing filenames for safe filesystem use
package textutil
