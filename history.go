package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historySets  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished workouts",
	Example: `  liftr history
  liftr history --limit 5 --sets`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Number of workouts to show (default: history.limit)")
	historyCmd.Flags().BoolVar(&historySets, "sets", false, "Show the sets of each workout")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	limit := historyLimit
	if limit <= 0 {
		limit = e.cfg.History.Limit
	}
	workouts, err := e.store.ListWorkouts(limit)
	if err != nil {
		return err
	}
	if len(workouts) == 0 {
		fmt.Println("No finished workouts yet.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FINISHED\tWORKOUT\tDURATION\tSETS\tVOLUME")
	for _, w := range workouts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%.1f\n",
			w.FinishedAt.Local().Format("2006-01-02 15:04"), w.Name,
			time.Duration(w.Duration)*time.Second, w.CompletedSets, w.TotalSets, w.TotalVolume)
		if !historySets {
			continue
		}
		sets, err := e.store.ListWorkoutSets(w.ID)
		if err != nil {
			return err
		}
		for _, s := range sets {
			mark := " "
			if s.CompletedAt != nil {
				mark = "x"
			}
			fmt.Fprintf(tw, "\t  [%s] %s #%d\t%.1f x %d\t\t\n", mark, s.ExerciseName, s.SetIndex+1, s.Weight, s.Reps)
		}
	}
	return tw.Flush()
}
