package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"chanmap/internal/convert"
	"chanmap/internal/spikeglx"
)

type inspectChannel struct {
	Index     int     `json:"index"`
	Shank     int     `json:"shank"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Connected bool    `json:"connected"`
}

type inspectReport struct {
	Source     string           `json:"source"`
	BaseName   string           `json:"base_name"`
	ProbeType  string           `json:"probe_type"`
	Shanks     int              `json:"shanks"`
	ShankPitch float64          `json:"shank_pitch"`
	ShankWidth float64          `json:"shank_width"`
	AP         int              `json:"ap"`
	LF         int              `json:"lf"`
	SY         int              `json:"sy"`
	Connected  int              `json:"connected"`
	Channels   []inspectChannel `json:"channels"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var nameFlag string
	var strict bool

	cmd := &cobra.Command{
		Use:   "inspect <meta-file>",
		Short: "Show the channel map a metadata file would produce without writing it",
		Args:  metaFileArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			loaded, err := convert.Load(args[0], nameFlag, spikeglx.ParseOptions{
				StrictDuplicates: strict || cfg.Parsing.StrictDuplicateKeys,
			})
			if err != nil {
				return err
			}

			report := buildInspectReport(loaded)
			if jsonOutput {
				return writeJSON(cmd, report)
			}
			renderInspectReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	cmd.Flags().StringVar(&nameFlag, "name", "", "Override the name (defaults to the meta file stem)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject metadata files with duplicate keys")
	return cmd
}

func buildInspectReport(loaded *convert.Loaded) inspectReport {
	header := loaded.Geometry.Header
	m := loaded.Map
	report := inspectReport{
		Source:     loaded.SourcePath,
		BaseName:   loaded.BaseName,
		ProbeType:  header.ProbeType,
		Shanks:     header.NShank,
		ShankPitch: header.ShankPitch,
		ShankWidth: header.ShankWidth,
		AP:         loaded.Counts.AP,
		LF:         loaded.Counts.LF,
		SY:         loaded.Counts.SY,
		Connected:  m.ConnectedCount(),
		Channels:   make([]inspectChannel, m.Len()),
	}
	for i := range report.Channels {
		report.Channels[i] = inspectChannel{
			Index:     int(m.ChanMap0Ind[i]),
			Shank:     loaded.Geometry.Entries[i].Shank,
			X:         m.XCoords[i],
			Y:         m.YCoords[i],
			Connected: m.Connected[i],
		}
	}
	return report
}

func renderInspectReport(cmd *cobra.Command, report inspectReport) {
	out := cmd.OutOrStdout()
	summary := [][2]string{
		{"Source", report.Source},
		{"Name", report.BaseName},
		{"Probe", report.ProbeType},
		{"Shanks", fmt.Sprintf("%d (pitch %s, width %s)", report.Shanks, formatNumber(report.ShankPitch), formatNumber(report.ShankWidth))},
		{"Channels", fmt.Sprintf("AP %d, LF %d, SY %d", report.AP, report.LF, report.SY)},
		{"Connected", fmt.Sprintf("%d of %d", report.Connected, len(report.Channels))},
	}
	for _, line := range summary {
		fmt.Fprintf(out, "%s %s\n", bold(out, fmt.Sprintf("%-10s", line[0]+":")), line[1])
	}
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(report.Channels))
	for _, ch := range report.Channels {
		rows = append(rows, []string{
			strconv.Itoa(ch.Index),
			strconv.Itoa(ch.Shank),
			formatNumber(ch.X),
			formatNumber(ch.Y),
			yesNo(ch.Connected),
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Channel", "Shank", "X", "Y", "Connected"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
