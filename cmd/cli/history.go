package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/hybrid-warden/internal/gitutil"
)

var (
	historyJSON  bool
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history [owner/repo] [pr-number]",
	Short: "Show stored analysis records of a repository",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runHistory,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output records as JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Maximum number of records")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	owner, repo, err := gitutil.ParseRepoFullName(args[0])
	if err != nil {
		return err
	}
	prNumber := 0
	if len(args) == 2 {
		if prNumber, err = strconv.Atoi(args[1]); err != nil || prNumber <= 0 {
			return fmt.Errorf("invalid PR number %q", args[1])
		}
	}

	cli, err := initCLI(ctx)
	if err != nil {
		return err
	}
	store, cleanup, err := cli.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := store.ListRecords(ctx, owner+"/"+repo, prNumber, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to retrieve records: %w", err)
	}

	if historyJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	if len(records) == 0 {
		dimColor.Printf("No analysis records for %s/%s.\n", owner, repo)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RECORDED\tPR\tCOMMIT\tFILE\tSEVERITY\tML\tSTATIC")
	for _, r := range records {
		sha := r.HeadSHA
		if len(sha) > 7 {
			sha = sha[:7]
		}
		fmt.Fprintf(w, "%s\t#%d\t%s\t%s\t%s\t%.2f\t%s\n",
			r.Timestamp.Local().Format(time.DateTime),
			r.RequestNumber,
			sha,
			r.FilePath,
			severityColor(r.Severity).Sprint(r.Severity),
			r.MLProbability,
			strings.Join(r.StaticCategories, ","),
		)
	}
	return w.Flush()
}
