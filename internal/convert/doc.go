// Package convert orchestrates one metadata-to-channel-map conversion.
//
// Load runs the pure half of the pipeline (read metadata, extract channel
// counts, resolve geometry, assemble the channel map) and is shared by the
// convert and inspect commands. Converter.Convert adds the side effects:
// destination preflight, an exclusive lock beside the output, an atomic
// MAT-file write, and an optional history record.
//
// Every failure before the rename leaves the destination untouched.
package convert
