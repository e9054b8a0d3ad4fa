package main

import (
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
)

func (c *cli) markCmd() *cobra.Command {
	var (
		in   attendance.FormInput
		date string
	)
	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Save the lectures held and attended for a subject on a day",
		Example: `  mahudhurio mark --subject 1 --total 3 --attended 2
  mahudhurio mark --subject 1 --total 0 --attended 0 --date 2024-03-08`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Date = date
			if in.Date == "" {
				in.Date = core.FormatDate(nowFunc())
			}
			nr, err := in.Parse()
			if err != nil {
				return err
			}
			rec, err := c.attendance.Record(cmd.Context(), nr)
			if err != nil {
				return err
			}

			name := rec.SubjectName
			if name == "" {
				name = "subject " + strconv.Itoa(rec.SubjectID)
			}
			c.printf("Saved %s on %s: %d of %d attended, %d absent.\n",
				name, rec.Date, rec.AttendedLectures, rec.TotalLectures, rec.Absent())
			return nil
		},
	}
	cmd.Flags().IntVar(&in.SubjectID, "subject", 0, "Subject id")
	cmd.Flags().StringVar(&in.Total, "total", "", "Lectures held")
	cmd.Flags().StringVar(&in.Attended, "attended", "", "Lectures attended")
	cmd.Flags().StringVar(&date, "date", "", "Day as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func (c *cli) recordsCmd() *cobra.Command {
	var filter attendance.QueryFilter
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List saved attendance, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := c.attendance.Query(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				c.printf("No attendance records.\n")
				return nil
			}
			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			_, _ = w.Write([]byte("DATE\tSUBJECT\tTOTAL\tATTENDED\tABSENT\n"))
			for _, r := range recs {
				subject := r.SubjectName
				if subject == "" {
					subject = strconv.Itoa(r.SubjectID)
				}
				_, _ = w.Write([]byte(r.Date + "\t" + subject + "\t" + strconv.Itoa(r.TotalLectures) + "\t" +
					strconv.Itoa(r.AttendedLectures) + "\t" + strconv.Itoa(r.Absent()) + "\n"))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&filter.SubjectID, "subject", 0, "Only this subject id")
	cmd.Flags().StringVar(&filter.StartDate, "from", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&filter.EndDate, "to", "", "Last day, YYYY-MM-DD")
	return cmd
}
