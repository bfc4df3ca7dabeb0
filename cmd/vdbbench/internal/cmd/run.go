package cmd

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bnb-chain/zkbnb-vdb/cmd/vdbbench/internal/bench"
	"github.com/bnb-chain/zkbnb-vdb/cmd/vdbbench/internal/config"
	prommetrics "github.com/bnb-chain/zkbnb-vdb/metrics/prometheus"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the commit latency benchmark",
	Long: `Run the commit latency benchmark.

Settings are read from the config file when one is given; flags set on the
command line override the file.`,
	RunE: run,
}

func init() {
	RootCmd.AddCommand(runCmd)
	flags := runCmd.Flags()
	flags.StringP("config", "c", "", "Path to benchmark configuration file")
	flags.Uint64("size", 0, "Number of addresses in the store")
	flags.String("digest", "", "Digest used by the commitment tree")
	flags.IntP("txns", "n", 0, "Number of transactions to run")
	flags.Int("writes", 0, "Writes per transaction")
	flags.Int("reads", 0, "Reads per transaction")
	flags.Int("clients", 0, "Concurrent clients")
	flags.Int("workers", 0, "Goroutines used to rebuild the tree")
	flags.Bool("verify", false, "Verify every returned proof")
	flags.Bool("baseline", true, "Also run the workload on an unverified store")
	flags.StringP("output", "o", "", "CSV file receiving one row per commit")
	flags.String("metrics", "", "Address serving prometheus metrics and pprof")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.String("archive", "", "Proof archive (none, memory, leveldb, redis, redis-embedded)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	conf := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		conf = loaded
	}
	if flags.Changed("size") {
		conf.AddressSpace, _ = flags.GetUint64("size")
	}
	if flags.Changed("digest") {
		conf.Digest, _ = flags.GetString("digest")
	}
	if flags.Changed("txns") {
		conf.Transactions, _ = flags.GetInt("txns")
	}
	if flags.Changed("writes") {
		conf.WritesPerTxn, _ = flags.GetInt("writes")
	}
	if flags.Changed("reads") {
		conf.ReadsPerTxn, _ = flags.GetInt("reads")
	}
	if flags.Changed("clients") {
		conf.Clients, _ = flags.GetInt("clients")
	}
	if flags.Changed("workers") {
		conf.RebuildWorkers, _ = flags.GetInt("workers")
	}
	if flags.Changed("verify") {
		conf.VerifyProofs, _ = flags.GetBool("verify")
	}
	if flags.Changed("baseline") {
		conf.Baseline, _ = flags.GetBool("baseline")
	}
	if flags.Changed("output") {
		conf.Output, _ = flags.GetString("output")
	}
	if flags.Changed("metrics") {
		conf.MetricsAddr, _ = flags.GetString("metrics")
	}
	if flags.Changed("log-level") {
		conf.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("archive") {
		conf.Archive.Type, _ = flags.GetString("archive")
	}
	return conf, conf.Validate()
}

func setupLogger(level string) error {
	lvl, err := log.LvlFromString(level)
	if err != nil {
		return errors.Wrap(config.ErrInvalidConfig, err.Error())
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat(false))))
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Metrics server stopped", "addr", addr, "err", err)
		}
	}()
	log.Info("Serving metrics", "addr", addr)
	return server
}

func run(cmd *cobra.Command, args []string) (err error) {
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := setupLogger(conf.LogLevel); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts := []bench.Option{bench.WithLogger(log.New("module", "bench"))}
	if conf.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		opts = append(opts, bench.WithMetrics(prommetrics.NewCollector(reg)))
		server := serveMetrics(conf.MetricsAddr, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Warn("Metrics server shutdown failed", "err", err)
			}
		}()
	}

	proofs, closeArchive, err := openArchive(conf.Archive)
	if err != nil {
		return err
	}
	defer closeArchive()
	if proofs != nil {
		opts = append(opts, bench.WithArchive(proofs))
	}

	if conf.Output != "" {
		recorder, closeOutput, openErr := openOutput(conf.Output)
		if openErr != nil {
			return openErr
		}
		defer func() {
			if closeErr := closeOutput(); err == nil {
				err = closeErr
			}
		}()
		opts = append(opts, bench.WithRecorder(recorder))
	}

	runner := bench.New(conf, opts...)
	modes := []bench.Mode{bench.ModeVerified}
	if conf.Baseline {
		modes = append(modes, bench.ModeUnverified)
	}
	var results []*bench.Result
	for _, mode := range modes {
		result, err := runner.Run(ctx, mode)
		if err != nil {
			return errors.Wrapf(err, "%s run", mode)
		}
		results = append(results, result)
	}

	for _, result := range results {
		cmd.Printf("%-10s  txns=%d  total=%v  avg=%v\n", result.Mode, result.Transactions,
			common.PrettyDuration(result.Elapsed), common.PrettyDuration(result.Elapsed/time.Duration(result.Transactions)))
	}
	if len(results) == 2 && results[1].Elapsed > 0 {
		cmd.Printf("overhead    %.2fx\n", float64(results[0].Elapsed)/float64(results[1].Elapsed))
	}
	return nil
}

// openOutput creates the CSV file at path. The returned close function
// flushes the recorder and reports the first write error.
func openOutput(path string) (*bench.Recorder, func() error, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	recorder, err := bench.NewRecorder(file)
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return recorder, func() error {
		err := recorder.Flush()
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		return errors.Wrapf(err, "write %s", path)
	}, nil
}
