package main

import (
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/mahudhurio/core/report"
)

func (c *cli) analyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show attendance percentages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.analytics.Overall(cmd.Context())
			if err != nil {
				return err
			}
			if o.IsEmpty() {
				c.printf("No data yet. Mark some attendance to see your statistics.\n")
				return nil
			}

			c.printf("Overall attendance: %s (%s)\n", o.Percent(), o.Tier())
			c.printf("Lectures: %d  Attended: %d  Missed: %d\n\n", o.TotalConducted, o.TotalAttended, o.TotalAbsent)

			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			_, _ = w.Write([]byte("SUBJECT\tTOTAL\tATTENDED\tABSENT\tATTENDANCE\tSTATUS\n"))
			for _, s := range o.SubjectStats {
				_, _ = w.Write([]byte(s.SubjectName + "\t" + strconv.Itoa(s.TotalConducted) + "\t" +
					strconv.Itoa(s.TotalAttended) + "\t" + strconv.Itoa(s.TotalAbsent) + "\t" +
					s.Percent() + "\t" + s.Tier().String() + "\n"))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			c.printf("\nInsights:\n")
			for _, insight := range o.Insights() {
				c.printf("  - %s\n", insight)
			}
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save the analytics as a spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := c.analytics.Overall(cmd.Context())
			if err != nil {
				return err
			}
			now := nowFunc()
			if out == "" {
				out = report.Filename(now)
			}

			f, err := os.Create(out)
			if err != nil {
				return errors.Wrap(err, "creating export file")
			}
			if err := report.WriteXLSX(f, o, now); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(err, "closing export file")
			}
			c.printf("Exported %d subjects to %s\n", len(o.SubjectStats), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default attendance-<date>.xlsx)")
	return cmd
}
