// =============================================================================
// svspy - SystemVerilog Spy Interface Generator
// =============================================================================
//
// svspy turns a tree of SystemVerilog sources into an assertion-ready
// observation interface, without touching the RTL.
//
// THE PIPELINE:
//   1. Parser scans each file into Module/Port/Signal/Instance records
//   2. Registry merges all files into one name-keyed module table
//   3. Hierarchy resolver finds the unique top module
//   4. Flattener walks the hierarchy collecting ports and _s registers
//   5. Conflict resolver makes every spy name globally unique
//   6. CUE validator enforces the model contract (crash on mismatch)
//   7. Renderer emits the interface file and the bind statement
//
// =============================================================================

package main

import (
	"fmt"
	"os"

	"github.com/robert-at-pretension-io/svspy/internal/config"
	"github.com/robert-at-pretension-io/svspy/internal/generator"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "init":
		runInit()
	case "-v", "--verbose":
		if len(os.Args) < 3 {
			printUsage()
			os.Exit(1)
		}
		runGenerate(os.Args[2], nil, true)
	case "-h", "--help", "help":
		printUsage()
	case "-c", "--config":
		if len(os.Args) < 4 {
			printUsage()
			os.Exit(1)
		}
		runGenerateWithConfig(os.Args[2], os.Args[3], false)
	default:
		runGenerate(cmd, nil, false)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: svspy [command] [options] <path>

Commands:
  init              Create a svspy.json configuration file
  <path>            Generate a spy interface for the design under the given path

Options:
  -v, --verbose     Enable verbose output
  -c, --config      Specify config file: svspy -c config.json <path>
  -h, --help        Show this help message

Configuration:
  svspy looks for configuration in:
    1. ./svspy.json
    2. ./.svspy.json
    3. ~/.config/svspy/config.json

  Run 'svspy init' to create a default configuration file.`)
}

func runInit() {
	configPath := "svspy.json"

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file %s already exists. Overwrite? [y/N]: ", configPath)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Selection mode (ports, registers, both)")
	fmt.Println("  - Register name suffix and naming convention")
	fmt.Println("  - Source file patterns and the output path")
}

func runGenerate(path string, cfg *config.Config, verbose bool) {
	gen := generator.New(cfg)
	gen.Verbose = verbose
	result, err := gen.Run(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s (%d spy signals from %d files)\n",
		result.Output, len(result.Model.Spies()), len(result.Files))
	fmt.Println("\nAdd this bind statement to your testbench:")
	fmt.Printf("\n  %s\n", result.Bind)
}

func runGenerateWithConfig(configPath, genPath string, verbose bool) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", configPath, err)
		os.Exit(1)
	}
	runGenerate(genPath, cfg, verbose)
}
