package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/simulation"
	"github.com/sarchlab/csim/trace"
	"github.com/sarchlab/csim/tracing"
)

var runFlags struct {
	setIndexBits  int
	associativity int
	blockBits     int
	tracePath     string
	verbose       bool

	csvPath       string
	record        bool
	output        string
	monitor       bool
	monitorPort   int
	openDashboard bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a trace file against a cache configuration.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := runReplay()
		if err != nil {
			fmt.Fprintf(os.Stderr, "csim: %s\n", err)
			atexit.Exit(1)
		}

		atexit.Exit(0)
	},
}

func init() {
	runCmd.Flags().IntVarP(&runFlags.setIndexBits, "set-bits", "s", 0,
		"number of set index bits (the cache has 2^s sets)")
	runCmd.Flags().IntVarP(&runFlags.associativity, "associativity", "E", 1,
		"number of lines per set")
	runCmd.Flags().IntVarP(&runFlags.blockBits, "block-bits", "b", 0,
		"number of block offset bits (blocks are 2^b bytes)")
	runCmd.Flags().StringVarP(&runFlags.tracePath, "trace", "t", "",
		"path of the trace file to replay")
	runCmd.Flags().BoolVarP(&runFlags.verbose, "verbose", "v", false,
		"echo each access and the final counters")

	runCmd.Flags().StringVar(&runFlags.csvPath, "csv", "",
		"write a per-access CSV trace to this file")
	runCmd.Flags().BoolVar(&runFlags.record, "record", false,
		"record the replay into a SQLite database")
	runCmd.Flags().StringVar(&runFlags.output, "output", "",
		"database file name for --record (without extension)")
	runCmd.Flags().BoolVar(&runFlags.monitor, "monitor", false,
		"serve replay progress and statistics over HTTP")
	runCmd.Flags().IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"port for the monitoring server (default: random)")
	runCmd.Flags().BoolVar(&runFlags.openDashboard, "open-dashboard", false,
		"open the monitoring URL in the default browser")

	_ = runCmd.MarkFlagRequired("trace")

	rootCmd.AddCommand(runCmd)
}

func runReplay() error {
	if runFlags.associativity <= 0 {
		return fmt.Errorf(
			"associativity must be positive, got %d",
			runFlags.associativity)
	}
	if runFlags.setIndexBits < 0 || runFlags.blockBits < 0 {
		return fmt.Errorf("set index bits and block bits must be non-negative")
	}

	reader, err := trace.Open(runFlags.tracePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	c := cache.MakeBuilder().
		WithSetIndexBits(runFlags.setIndexBits).
		WithAssociativity(runFlags.associativity).
		WithLog2BlockSize(runFlags.blockBits).
		Build("L1")

	s := makeSimulationBuilder().Build()
	s.RegisterCache(c)

	if runFlags.verbose {
		s.AttachTracer(tracing.NewLogTracer(
			log.New(os.Stdout, "", 0)))
	}

	if runFlags.csvPath != "" {
		backend := tracing.NewCSVTracerBackend(runFlags.csvPath)
		backend.Init()
		s.AttachTracer(backend)
	}

	if runFlags.openDashboard && s.Monitor() != nil {
		s.Monitor().OpenDashboard()
	}

	stats, err := s.Run(reader)
	if err != nil {
		return err
	}

	printSummary(stats)

	return nil
}

func makeSimulationBuilder() simulation.Builder {
	b := simulation.MakeBuilder()

	if runFlags.record {
		b = b.WithRecording()
		if runFlags.output != "" {
			b = b.WithOutputFileName(runFlags.output)
		}
	}

	if runFlags.monitor {
		b = b.WithMonitoring()

		port := runFlags.monitorPort
		if port == 0 {
			port = monitorPortFromEnv()
		}
		if port > 0 {
			b = b.WithMonitorPort(port)
		}
	}

	return b
}

func monitorPortFromEnv() int {
	v := os.Getenv("CSIM_MONITOR_PORT")
	if v == "" {
		return 0
	}

	port, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ignoring bad CSIM_MONITOR_PORT %q\n", v)
		return 0
	}

	return port
}

func printSummary(stats cache.Stats) {
	if runFlags.verbose {
		fmt.Printf("Hits: %d\n", stats.Hits)
		fmt.Printf("Misses: %d\n", stats.Misses)
		fmt.Printf("Evictions: %d\n", stats.Evictions)
		fmt.Printf("Dirty Bytes: %d\n", stats.DirtyBytes)
		fmt.Printf("Dirty Evictions: %d\n", stats.DirtyEvictions)
	}

	fmt.Printf(
		"hits:%d misses:%d evictions:%d "+
			"dirty_bytes_in_cache:%d dirty_bytes_evicted:%d\n",
		stats.Hits,
		stats.Misses,
		stats.Evictions,
		stats.DirtyBytes,
		stats.DirtyEvictions,
	)
}
