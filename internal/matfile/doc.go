// Package matfile encodes and decodes the subset of the MATLAB Level 5
// MAT-file format used for Kilosort channel maps.
//
// Supported arrays are real double matrices, logical (uint8) matrices and
// char row vectors, stored uncompressed in little-endian byte order. Files
// written by MATLAB or scipy that use other numeric storage types for double
// arrays can still be read; compressed and complex arrays cannot.
//
// Layout reference: "MAT-File Format", MathWorks, section "Level 5 MAT-File
// Format".
package matfile
