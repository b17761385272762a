// Package spikeglx reads SpikeGLX metadata files and the probe geometry they
// describe.
//
// A .meta file is a flat list of KEY=VALUE lines. ParseMeta turns it into a
// Meta mapping, stripping the leading '~' that marks some keys. The typed
// helpers then pull out the two values the channel map needs: the per-type
// channel counts in snsApLfSy and the shank geometry records in snsGeomMap.
//
// Every failure wraps one of the exported sentinels so callers can branch on
// errors.Is without parsing messages.
package spikeglx
