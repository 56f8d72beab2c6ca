package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"concordat/internal/analysis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <trail.jsonl>",
	Short: "Compute per-power statistics from a persisted audit trail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := analysis.FromJSONL(args[0])
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Println("no records")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "POWER\tMSGS\tSILENT\tAVG_TRUST\tTOP_INTENT\tFALLBACK\tILLEGAL\tOFFERS\tHONESTY")
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%s\t%.2f\t%d\t%d\t%.2f\n",
				s.Power, s.MessagesSent, s.SilentPhases, s.AvgTrust,
				s.MostCommonIntent, s.FallbackRate, s.IllegalDropped,
				s.Offers, s.HonestyRate)
		}
		return w.Flush()
	},
}
