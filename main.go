package main

import (
	"flag"
	"os"

	"grimm.is/confirmd/cmd"
	"grimm.is/confirmd/internal/brand"
	"grimm.is/confirmd/internal/i18n"
)

var printer = i18n.NewCLIPrinter()

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	defaultConfig := brand.DefaultConfigPath()

	switch os.Args[1] {
	case "run":
		runFlags := flag.NewFlagSet("run", flag.ExitOnError)
		configFile := runFlags.String("config", defaultConfig, "Configuration file")
		runFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")
		metricsAddr := runFlags.String("metrics-addr", "", "Serve Prometheus metrics on this address during the window")
		runFlags.Parse(os.Args[2:])

		verdict, err := cmd.RunAcceptance(cmd.RunOptions{
			ConfigFile:  *configFile,
			MetricsAddr: *metricsAddr,
		})
		if err != nil {
			printer.Fprintf(os.Stderr, "Run failed: %v\n", err)
		}
		os.Exit(cmd.ExitCode(verdict, err))

	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		configFile := checkFlags.String("config", defaultConfig, "Configuration file")
		checkFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")
		verbose := checkFlags.Bool("verbose", false, "Verbose output")
		checkFlags.BoolVar(verbose, "v", false, "Verbose output (short)")
		checkFlags.Parse(os.Args[2:])

		if len(checkFlags.Args()) > 0 {
			*configFile = checkFlags.Arg(0)
		}

		if err := cmd.RunCheck(*configFile, *verbose); err != nil {
			printer.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}

	case "init":
		initFlags := flag.NewFlagSet("init", flag.ExitOnError)
		configFile := initFlags.String("config", defaultConfig, "Configuration file to create")
		initFlags.StringVar(configFile, "c", defaultConfig, "Configuration file to create (short)")
		force := initFlags.Bool("force", false, "Overwrite an existing file")
		initFlags.BoolVar(force, "f", false, "Overwrite an existing file (short)")
		initFlags.Parse(os.Args[2:])

		if err := cmd.RunInit(*configFile, *force); err != nil {
			printer.Fprintf(os.Stderr, "Init failed: %v\n", err)
			os.Exit(1)
		}

	case "history":
		historyFlags := flag.NewFlagSet("history", flag.ExitOnError)
		configFile := historyFlags.String("config", defaultConfig, "Configuration file")
		historyFlags.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")
		limit := historyFlags.Int("n", 20, "Number of cycles to show (0 for all)")
		historyFlags.Parse(os.Args[2:])

		if err := cmd.RunHistory(*configFile, *limit); err != nil {
			printer.Fprintf(os.Stderr, "History failed: %v\n", err)
			os.Exit(1)
		}

	case "version", "--version", "-V":
		cmd.RunVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		printer.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printer.Printf(`%s - %s

Usage:
  %s <command> [options]

Commands:
  run       Open a confirmation window and report the verdict
            Options: --config (-c) <file>, --metrics-addr <addr>
            Exit status: 0 accepted or disabled, 3 not accepted, 1 error
  check     Validate configuration file
            Options: --config (-c) <file>, --verbose (-v)
  init      Write a default configuration file
            Options: --config (-c) <file>, --force (-f)
  history   Show recorded acceptance cycles
            Options: --config (-c) <file>, -n <count>
  version   Show version information

To accept a change, write "true" to the marker file while the window is open.
`, brand.Name, brand.Description, brand.BinaryName)
}
