// Package cmd provides the command-line interface for ipcscan.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/ipcscan/datarecording"
	"github.com/sarchlab/ipcscan/monitoring"
	"github.com/sarchlab/ipcscan/scanning"
)

const autoRecordName = "auto"

type rootOptions struct {
	printValues bool
	recordName  string
	monitor     bool
	monitorPort int
	openBrowser bool
}

// newRootCmd builds the command tree. Flag defaults come from cfg.
func newRootCmd(cfg config) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "ipcscan [log-file]",
		Short: "Report the highest IPC value found in a simulator log.",
		Long: `ipcscan reads a performance log, extracts the value that ` +
			`follows "` + scanning.Marker + `" on every line, and prints the ` +
			`maximum. Without an argument it reads ` + cfg.LogFile + `.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.LogFile
			if len(args) == 1 {
				path = args[0]
			}

			return runScan(cmd, path, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.printValues, "values", false,
		"Print every IPC value, in file order, before the maximum")
	flags.StringVar(&opts.recordName, "record", cfg.RecordName,
		"Record samples into a SQLite database with the given name "+
			"(\""+autoRecordName+"\" picks a unique name)")
	flags.Lookup("record").NoOptDefVal = autoRecordName
	flags.BoolVar(&opts.monitor, "monitor", false,
		"Serve scan progress over HTTP; the server is reachable only while "+
			"the scan runs and stops when ipcscan exits")
	flags.IntVar(&opts.monitorPort, "monitor-port", cfg.MonitorPort,
		"Port of the monitoring server (random if unset)")
	flags.BoolVar(&opts.openBrowser, "open", false,
		"Open the monitoring page in a browser")

	rootCmd.AddCommand(newShowCmd())

	return rootCmd
}

func runScan(cmd *cobra.Command, path string, opts *rootOptions) error {
	if opts.openBrowser && !opts.monitor {
		return fmt.Errorf("--open requires --monitor")
	}

	builder := scanning.MakeBuilder()
	if opts.printValues {
		builder = builder.WithValueRetention()
	}

	if opts.recordName != "" {
		recorder, err := openRecorder(opts.recordName)
		if err != nil {
			return err
		}
		defer recorder.Close()

		builder = builder.WithHook(datarecording.NewSampleRecorder(recorder))
	}

	var monitor *monitoring.Monitor
	if opts.monitor {
		monitor = monitoring.NewMonitor()
		if opts.monitorPort != 0 {
			monitor.WithPortNumber(opts.monitorPort)
		}

		bar := monitor.CreateProgressBar(path, fileSize(path))
		defer monitor.CompleteProgressBar(bar)

		builder = builder.WithHook(monitoring.NewProgressHook(bar))
	}

	scanner := builder.Build()

	if monitor != nil {
		monitor.RegisterScanner(scanner)

		err := startMonitor(monitor, opts.openBrowser)
		if err != nil {
			return err
		}
	}

	res, err := scanner.ScanFile(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, v := range res.Values {
		fmt.Fprintln(out, v)
	}

	fmt.Fprintln(out, res.Max)

	return nil
}

func openRecorder(name string) (datarecording.DataRecorder, error) {
	if name == autoRecordName {
		name = ""
	}

	return datarecording.New(name)
}

func startMonitor(monitor *monitoring.Monitor, openBrowser bool) error {
	err := monitor.StartServer()
	if err != nil {
		return err
	}

	if openBrowser {
		err = monitor.OpenInBrowser()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open browser: %v\n", err)
		}
	}

	return nil
}

func fileSize(path string) uint64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}

	return uint64(info.Size())
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	cfg, err := loadConfig(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	err = newRootCmd(cfg).Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
