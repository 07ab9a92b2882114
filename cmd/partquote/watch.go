package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/piwi3910/partquote/internal/watcher"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchFlags       quoteFlags
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch [files...]",
	Short: "Re-quote parts whenever they change on disk",
	Long:  "Quote each file once, then again every time it is saved. Useful next to a CAD tool that exports STL on save.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchFlags.register(watchCmd)
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fw, err := watcher.New(time.Duration(a.cfg.WatchDebounceMillis)*time.Millisecond, a.log)
	if err != nil {
		return err
	}
	defer fw.Close()

	requote := func(path string) {
		if err := quoteOnce(ctx, a, path); err != nil {
			a.log.Error("quote failed", zap.String("file", path), zap.Error(err))
		}
	}
	if err := fw.Add(requote, args...); err != nil {
		return err
	}

	if watchMetricsAddr != "" {
		srv := &http.Server{
			Addr:              watchMetricsAddr,
			Handler:           promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	for _, f := range args {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		requote(abs)
	}
	a.log.Info("watching for changes", zap.Strings("files", args))
	fw.Run(ctx)
	return nil
}

func quoteOnce(ctx context.Context, a *app, path string) error {
	g, err := a.engine.AnalyzeFile(ctx, path, watchFlags.analyzeOptions())
	if err != nil {
		return err
	}
	in, err := watchFlags.input(a, g)
	if err != nil {
		return err
	}
	b, err := a.engine.CalculatePricing(in)
	if err != nil {
		return err
	}
	a.remember(path, b)

	if jsonOutput {
		return printJSON(b)
	}
	manual := ""
	if b.RequiresManualQuote {
		manual = "  [manual review]"
	}
	fmt.Printf("%s  %s  %s  qty %d  unit %s  total %s  %d days%s\n",
		time.Now().Format("15:04:05"), filepath.Base(path), b.Process, b.Quantity,
		money(a.cfg, b.UnitPrice), money(a.cfg, b.TotalPrice), b.LeadTimeDays.TotalDays, manual)
	return nil
}
