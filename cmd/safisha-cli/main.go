// Command safisha-cli records leads and sales from a terminal and runs
// one-off maintenance tasks against the configured stores.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/davecgh/go-spew/spew"

	"safisha/internal/analytics"
	"safisha/internal/backend"
	"safisha/internal/cli"
	"safisha/internal/config"
	"safisha/internal/core"
	applog "safisha/internal/log"
	"safisha/internal/services"
)

const usage = `usage: safisha-cli <command> [flags]

commands:
  lead      capture a lead with the three-step wizard
  sale      record a sale with the three-step wizard
  summary   print the dashboard summary (-date, -period, -employee)
  sync      upload sales missing from the spreadsheet mirror
  diag      dump the resolved configuration
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: applog.ComponentCLI,
		Output:    os.Stderr,
	})
	applog.SetDefault(logger)
	cfg := cli.LoadAndValidateConfig(logger)

	cmd, args := os.Args[1], os.Args[2:]
	if cmd == "diag" {
		spew.Fdump(os.Stdout, cfg.Diagnostics())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := cli.InitBackend(ctx, logger, cfg)
	defer func() { _ = b.Close() }()

	var err error
	switch cmd {
	case "lead":
		err = runLead(ctx, b)
	case "sale":
		err = runSale(ctx, b, logger)
	case "summary":
		err = runSummary(ctx, b, args)
	case "sync":
		err = runSync(ctx, b, cfg, logger)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "\ncancelled")
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runLead(ctx context.Context, b *backend.Backend) error {
	lead, err := cli.RunLeadWizard(ctx, cli.NewPrompter(os.Stdin, os.Stdout), b.Gateway.Leads.Create)
	if err != nil {
		return err
	}
	fmt.Printf("Lead %s saved for %s\n", lead.ID, lead.CustomerName)
	return nil
}

func runSale(ctx context.Context, b *backend.Backend, logger *applog.Logger) error {
	opts := services.SalesOptions{Logger: logger}
	if b.Mirror != nil {
		opts.Mirror = b.Mirror
	}
	if b.Publisher != nil {
		opts.Publisher = b.Publisher
	}
	sales := services.NewSalesService(b.Gateway.Sales, opts)
	defer sales.Wait()

	sale, err := cli.RunSaleWizard(ctx, cli.NewPrompter(os.Stdin, os.Stdout), sales.Create)
	if err != nil {
		return err
	}
	fmt.Printf("Sale %s saved: %s, KSh %.2f\n", sale.ID, sale.Description, sale.Amount.Money().Shillings())
	return nil
}

func runSummary(ctx context.Context, b *backend.Backend, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	date := fs.String("date", core.Today(), "anchor date (YYYY-MM-DD)")
	period := fs.String("period", "day", "day, week, month or year")
	employee := fs.String("employee", "all", "employee name or all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := analytics.ParsePeriod(*period)
	if err != nil {
		return err
	}

	all, err := b.Gateway.Sales.GetAll(ctx)
	if err != nil {
		return err
	}
	s, err := analytics.Summarize(all, analytics.Query{Date: *date, Period: p, Employee: *employee})
	if err != nil {
		return err
	}
	printSummary(os.Stdout, s)
	return nil
}

func printSummary(w io.Writer, s analytics.Summary) {
	fmt.Fprintf(w, "%s to %s\n", s.From, s.To)
	fmt.Fprintf(w, "Services: %d  Revenue: KSh %.2f\n", s.TotalServices, s.TotalRevenue.Shillings())

	cats := make([]string, 0, len(s.Categories))
	for c := range s.Categories {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	for _, c := range cats {
		t := s.Categories[core.Category(c)]
		fmt.Fprintf(w, "  %-10s %3d  KSh %.2f\n", c, t.Count, t.Revenue.Shillings())
	}
	for _, r := range s.Recent {
		fmt.Fprintf(w, "  %s  %-30s KSh %.2f\n", r.Date, r.Description, r.Amount.Money().Shillings())
	}
	if s.HasMore {
		fmt.Fprintf(w, "  ... and %d more\n", s.More)
	}
}

func runSync(ctx context.Context, b *backend.Backend, cfg *config.Config, logger *applog.Logger) error {
	if b.Mirror == nil {
		return errors.New("no spreadsheet mirror configured")
	}
	res, err := services.NewMirrorSync(b.Gateway.Sales, b.Mirror, cfg.SyncBatchSize, logger).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded %d of %d sales (%d skipped)\n", res.Uploaded, res.Total, res.Skipped)
	return nil
}
