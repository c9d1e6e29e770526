package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/ipcscan/datarecording"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <database>",
		Short: "Print the samples and summary stored by --record.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showRecording(cmd, args[0])
		},
	}
}

func showRecording(cmd *cobra.Command, dbFile string) error {
	if _, err := os.Stat(dbFile); err != nil {
		return err
	}

	reader, err := datarecording.NewSampleReader(dbFile)
	if err != nil {
		return err
	}
	defer reader.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	samples, err := reader.Query(ctx, datarecording.SampleTableName,
		datarecording.QueryParams{OrderBy: "RunID, Line"})
	if err != nil {
		return err
	}

	for _, s := range samples {
		sample := s.(*datarecording.SampleEntry)
		fmt.Fprintf(out, "%s\t%d\t%v\n", sample.RunID, sample.Line, sample.Value)
	}

	summaries, err := reader.Query(ctx, datarecording.SummaryTableName,
		datarecording.QueryParams{})
	if err != nil {
		return err
	}

	for _, s := range summaries {
		summary := s.(*datarecording.SummaryEntry)
		fmt.Fprintf(out, "%s\t%s\tmax %v at line %d (%d values)\n",
			summary.RunID, summary.Path, summary.Max, summary.MaxLine,
			summary.Count)
	}

	return nil
}
