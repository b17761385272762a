package convert

import (
	"fmt"
	"strings"

	"chanmap/internal/chanmap"
	"chanmap/internal/spikeglx"
	"chanmap/internal/textutil"
)

// Loaded holds every intermediate of the pure pipeline for one metadata file.
type Loaded struct {
	SourcePath string
	BaseName   string
	Meta       spikeglx.Meta
	Counts     spikeglx.ChannelCounts
	Geometry   spikeglx.Geometry
	Map        *chanmap.ChannelMap
}

// Load parses metaPath and assembles its channel map. baseName overrides the
// name derived from the file stem when non-empty. The AP count is the
// channel count the geometry must match.
func Load(metaPath, baseName string, opts spikeglx.ParseOptions) (*Loaded, error) {
	meta, err := spikeglx.ReadMetaFile(metaPath, opts)
	if err != nil {
		return nil, stageError(StageRead, err)
	}
	counts, err := spikeglx.ChannelCountsFromMeta(meta)
	if err != nil {
		return nil, stageError(StageCounts, err)
	}
	geometry, err := spikeglx.GeometryFromMeta(meta)
	if err != nil {
		return nil, stageError(StageGeometry, err)
	}

	name, err := resolveBaseName(metaPath, baseName)
	if err != nil {
		return nil, stageError(StageAssemble, err)
	}
	m, err := chanmap.Assemble(geometry.Header, geometry.Entries, counts.AP, name)
	if err != nil {
		return nil, stageError(StageAssemble, err)
	}

	return &Loaded{
		SourcePath: metaPath,
		BaseName:   name,
		Meta:       meta,
		Counts:     counts,
		Geometry:   geometry,
		Map:        m,
	}, nil
}

func resolveBaseName(metaPath, override string) (string, error) {
	name := override
	if strings.TrimSpace(name) == "" {
		name = textutil.Stem(metaPath)
	}
	name = textutil.NormalizeName(name)
	if textutil.SanitizeFileName(name) == "" {
		return "", fmt.Errorf("%w: %q", ErrBaseName, name)
	}
	return name, nil
}
