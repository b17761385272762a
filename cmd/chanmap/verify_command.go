package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chanmap/internal/chanmap"
	"chanmap/internal/matfile"
)

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "verify <mat-file>",
		Short:       "Check that a MAT-file follows the Kilosort channel map layout",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			file, err := matfile.Read(f)
			if err != nil {
				return fmt.Errorf("verify %s: %w", path, err)
			}
			m, err := chanmap.FromMAT(file)
			if err != nil {
				return fmt.Errorf("verify %s: %w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d channels, %d connected, %d shanks, name %q)\n",
				path, m.Len(), m.ConnectedCount(), countShanks(m), m.Name)
			return nil
		},
	}
}

func countShanks(m *chanmap.ChannelMap) int {
	seen := make(map[float64]struct{}, len(m.KCoords))
	for _, k := range m.KCoords {
		seen[k] = struct{}{}
	}
	return len(seen)
}
