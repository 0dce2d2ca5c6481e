// Command despesasctl manages expense snapshots from the shell.
//
//	despesasctl ingest [-name NAME] FILE
//	despesasctl import -sheet ID -range RANGE -name NAME
//	despesasctl list
//	despesasctl show [-category C]... [-status S]... [-cost-center CC]... [-json] NAME
//	despesasctl delete NAME
//	despesasctl history [-n N]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"despesas/internal/cli"
	"despesas/internal/core"
	"despesas/internal/ingest"
	"despesas/internal/log"
	"despesas/internal/services"
	"despesas/internal/storage"
	"despesas/internal/table"
	"despesas/internal/view"
)

var errUsage = errors.New("usage: despesasctl ingest|import|list|show|delete|history [flags] [args]")

func main() {
	ctx := context.Background()
	app, err := cli.Bootstrap(ctx, log.ComponentCLI)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer app.Close()

	if err := run(ctx, app.Service, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		app.Close()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	case errors.Is(err, core.ErrNotFound):
		return 3
	default:
		return 1
	}
}

func run(ctx context.Context, svc *services.SnapshotService, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "ingest":
		return runIngest(ctx, svc, rest, out)
	case "import":
		return runImport(ctx, svc, rest, out)
	case "list":
		return runList(ctx, svc, out)
	case "show":
		return runShow(ctx, svc, rest, out)
	case "delete":
		return runDelete(ctx, svc, rest, out)
	case "history":
		return runHistory(ctx, svc, rest, out)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func runIngest(ctx context.Context, svc *services.SnapshotService, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	name := fs.String("name", "", "snapshot name (default: file name without extension)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("ingest needs exactly one file: %w", errUsage)
	}
	path := fs.Arg(0)

	format, err := table.FormatFromFilename(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	t, err := table.Read(f, format)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if *name == "" {
		*name = core.SnapshotNameFromFile(path)
	}

	res, err := svc.Ingest(ctx, t, *name, services.SourceCLI)
	if err != nil {
		return err
	}
	printResult(out, res)
	return nil
}

func runImport(ctx context.Context, svc *services.SnapshotService, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	sheet := fs.String("sheet", "", "spreadsheet id")
	rng := fs.String("range", "", "A1 range, e.g. Março!A1:G")
	name := fs.String("name", "", "snapshot name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sheet == "" || *rng == "" || *name == "" {
		return fmt.Errorf("import needs -sheet, -range and -name: %w", errUsage)
	}

	res, err := svc.ImportSheet(ctx, *sheet, *rng, *name)
	if err != nil {
		return err
	}
	printResult(out, res)
	return nil
}

func printResult(out io.Writer, res ingest.Result) {
	verb := "stored"
	if res.Replaced {
		verb = "replaced"
	}
	fmt.Fprintf(out, "%s %s: %d rows read, %d kept", verb, res.Name, res.RowsRead, res.RowsKept)
	if res.MissingDates > 0 || res.DegradedAmounts > 0 {
		fmt.Fprintf(out, " (%d missing dates, %d unparsed amounts)", res.MissingDates, res.DegradedAmounts)
	}
	fmt.Fprintln(out)
}

func runList(ctx context.Context, svc *services.SnapshotService, out io.Writer) error {
	names, err := svc.List(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

func (m multiFlag) selection() view.Selection {
	if len(m) == 0 {
		return view.Everything()
	}
	return view.Selection(m)
}

func runShow(ctx context.Context, svc *services.SnapshotService, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	var categories, statuses, costCenters multiFlag
	fs.Var(&categories, "category", "category to keep (repeatable, 'all' for every)")
	fs.Var(&statuses, "status", "status to keep (repeatable)")
	fs.Var(&costCenters, "cost-center", "cost center to keep (repeatable)")
	asJSON := fs.Bool("json", false, "print the full dashboard as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("show needs a snapshot name: %w", errUsage)
	}

	d, err := svc.Dashboard(ctx, fs.Arg(0), view.Criteria{
		Categories:  categories.selection(),
		Statuses:    statuses.selection(),
		CostCenters: costCenters.selection(),
	})
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(d.Summary)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "snapshot\t%s\n", d.Name)
	fmt.Fprintf(tw, "records\t%d\n", d.Summary.RecordCount)
	fmt.Fprintf(tw, "total\t%s\n", core.FormatBRL(d.Summary.GrandTotal))
	writeGroup(tw, "month", d.Summary.Monthly)
	writeGroup(tw, "status", d.Summary.ByStatus)
	writeGroup(tw, "category", d.Summary.TopCategories)
	writeGroup(tw, "cost center", d.Summary.TopCostCenters)
	return tw.Flush()
}

func writeGroup(w io.Writer, title string, groups []core.GroupTotal) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\ttotal\n", title)
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\n", g.Key, core.FormatBRL(g.Total))
	}
}

func runDelete(ctx context.Context, svc *services.SnapshotService, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("delete needs a snapshot name: %w", errUsage)
	}
	if err := svc.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %s\n", args[0])
	return nil
}

func runHistory(ctx context.Context, svc *services.SnapshotService, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	n := fs.Int("n", storage.DefaultHistoryLimit, "number of events")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n < 1 {
		return fmt.Errorf("-n must be positive: %w", errUsage)
	}

	events, err := svc.History(ctx, *n)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "time\tsnapshot\taction\tsource\trows")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Snapshot, e.Action, e.Source, e.RowsKept, e.RowsRead)
	}
	return tw.Flush()
}
