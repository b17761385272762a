// Package chanmap turns parsed probe geometry into the Kilosort channel map
// schema.
//
// Kilosort reads seven fields from the .mat file: chanMap, chanMap0ind,
// connected, name, xcoords, ycoords and kcoords. Every numeric field is an
// N x 1 double column, including the integer-valued indices, and connected
// is an N x 1 logical column. Those shapes and types are what Kilosort's
// probe loader expects and must not be changed.
package chanmap
