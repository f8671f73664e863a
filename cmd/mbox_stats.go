package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dhcgn/mbox-to-postgres/filter"
	"github.com/dhcgn/mbox-to-postgres/mbox"
	"github.com/dhcgn/mbox-to-postgres/model"
	"github.com/dhcgn/mbox-to-postgres/runner"
	"github.com/dhcgn/mbox-to-postgres/stats"
)

// StatsOptions configures the mbox-stats analysis.
type StatsOptions struct {
	ReportDir string
	TopN      int
	Filter    filter.Options
}

// NewStatsCommand returns the mbox-stats subcommand. It runs the extraction
// pipeline without a database and reports the most frequent senders.
func NewStatsCommand() *cobra.Command {
	var opts StatsOptions

	statsCmd := &cobra.Command{
		Use:   "mbox-stats [mbox file]",
		Short: "Analyse the mbox file and show sender statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunStats(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	flags := statsCmd.Flags()
	flags.StringVarP(&opts.ReportDir, "output", "o", ".", "Output directory for CSV reports")
	flags.IntVarP(&opts.TopN, "top", "t", 10, "Number of top items to display in statistics")
	flags.StringArrayVar(&opts.Filter.IncludeAddress, "include-address", nil, "Regex allow-list applied to sender addresses (mutually exclusive with exclude flags)")
	flags.StringArrayVar(&opts.Filter.IncludeDomain, "include-domain", nil, "Regex allow-list applied to sender domains (mutually exclusive with exclude flags)")
	flags.StringArrayVar(&opts.Filter.ExcludeAddress, "exclude-address", nil, "Regex block-list applied to sender addresses (mutually exclusive with include flags)")
	flags.StringArrayVar(&opts.Filter.ExcludeDomain, "exclude-domain", nil, "Regex block-list applied to sender domains (mutually exclusive with include flags)")

	return statsCmd
}

// senderCounter is a runner.Loader that counts records instead of storing them.
type senderCounter struct {
	filter    *filter.Filter
	domains   map[string]int
	addresses map[string]int
	skipped   int
}

func (c *senderCounter) Insert(_ context.Context, rec model.Record) error {
	if !c.filter.Allows(rec) {
		c.skipped++
		return nil
	}
	domain := rec.Domain
	if domain == "" {
		domain = "(none)"
	}
	c.domains[domain]++
	c.addresses[rec.Address]++
	return nil
}

func RunStats(ctx context.Context, mboxPath string, opts StatsOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	f, err := filter.New(opts.Filter)
	if err != nil {
		return fmt.Errorf("create filter: %w", err)
	}

	archive, err := mbox.Open(mboxPath)
	if err != nil {
		return model.Fatalf(model.KindArchiveOpen, err)
	}
	defer archive.Close()

	fmt.Fprintln(out, "Analyzing mbox file:", mboxPath)

	counter := &senderCounter{
		filter:    f,
		domains:   make(map[string]int),
		addresses: make(map[string]int),
	}
	summary, err := runner.New(nil).Run(ctx, archive, counter)
	if err != nil && model.KindOf(err) != model.KindIncomplete {
		return fmt.Errorf("error reading mbox file: %w", err)
	}

	printStats(out, summary, counter, opts.TopN)

	reports := map[string]map[string]int{
		"domain":  counter.domains,
		"address": counter.addresses,
	}
	if err := saveCSVReports(reports, opts.ReportDir, 1000); err != nil {
		return fmt.Errorf("error saving CSV reports: %w", err)
	}
	fmt.Fprintf(out, "\nReports saved to directory: %s\n", opts.ReportDir)

	return nil
}

func printStats(out io.Writer, summary stats.Summary, counter *senderCounter, topN int) {
	total := summary.Succeeded + summary.Failed
	var failPercent float64
	if total > 0 {
		failPercent = float64(summary.Failed) / float64(total) * 100
	}
	fmt.Fprintf(out, "Processed %d entries (%d failed, %.2f%%, %d skipped by filters)\n\n",
		total, summary.Failed, failPercent, counter.skipped)

	if summary.Failed > 0 {
		fmt.Fprintln(out, "Failures by kind:")
		for _, kind := range summary.FailedKinds() {
			fmt.Fprintf(out, "  %s: %d\n", kind, summary.FailedByKind[kind])
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Top %d domains:\n", topN)
	stats.PrettyPrintTop(out, counter.domains, topN)
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Top %d addresses:\n", topN)
	stats.PrettyPrintTop(out, counter.addresses, topN)
}

func saveCSVReports(reports map[string]map[string]int, dir string, limit int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for name, counts := range reports {
		filePath := filepath.Join(dir, fmt.Sprintf("report_%s.csv", name))
		if err := writeCSVReport(filePath, counts, limit); err != nil {
			return err
		}
	}

	return nil
}

func writeCSVReport(path string, counts map[string]int, limit int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Value", "Count"}); err != nil {
		return err
	}

	for i, p := range stats.SortedCounts(counts) {
		if i >= limit {
			break
		}
		if err := writer.Write([]string{p.Key, strconv.Itoa(p.Value)}); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
