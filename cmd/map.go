package main

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fyerfyer/dnacompiler/pkg/algorithm"
	"github.com/fyerfyer/dnacompiler/pkg/circuit"
	"github.com/fyerfyer/dnacompiler/pkg/cytometry"
	"github.com/fyerfyer/dnacompiler/pkg/logic"
	"github.com/fyerfyer/dnacompiler/pkg/utils"
	"github.com/fyerfyer/dnacompiler/pkg/verify"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	mapCmd = &cobra.Command{
		Use:   "map",
		Short: "Assign library devices to a netlist by simulated annealing",
	}

	netlistFile     = mapCmd.Flags().String("netlist", "", "Netlist file (JSON, or BENCH with a .bench extension)")
	libraryFile     = mapCmd.Flags().String("library", "", "Device library file (JSON)")
	constraintsFile = mapCmd.Flags().String("constraints", "", "Netlist constraint file with sensor and reporter maps (JSON)")
	outputDir       = mapCmd.Flags().String("output", ".", "Directory for the CSV dumps and output netlist")
	seed            = mapCmd.Flags().Int64("seed", algorithm.DefaultSeed, "Random seed")
	steps           = mapCmd.Flags().Int("steps", algorithm.DefaultSteps, "Annealed iterations")
	t0Steps         = mapCmd.Flags().Int("t0-steps", algorithm.DefaultT0Steps, "Greedy iterations at temperature 0")
	maxTemp         = mapCmd.Flags().Float64("max-temp", algorithm.DefaultMaxTemp, "Starting temperature")
	minTemp         = mapCmd.Flags().Float64("min-temp", algorithm.DefaultMinTemp, "Temperature reached after the annealed iterations")
	growth          = mapCmd.Flags().Float64("growth-threshold", algorithm.DefaultGrowthThreshold, "Minimum acceptable growth")
	poolProbability = mapCmd.Flags().Float64("unassigned-probability", 1.0, "Chance of pulling a spare gate when one is available")
	writeDOT        = mapCmd.Flags().Bool("dot", false, "Also write a Graphviz rendering of the mapped netlist")
	verifyLogic     = mapCmd.Flags().Bool("verify", true, "Cross-check truth tables against an and-inverter graph")
	showProgress    = mapCmd.Flags().Bool("progress", true, "Show a progress bar when stdout is a terminal")

	logicCmd = &cobra.Command{
		Use:   "logic",
		Short: "Print the truth tables of a netlist",
	}

	logicNetlist = logicCmd.Flags().String("netlist", "", "Netlist file (JSON, or BENCH with a .bench extension)")
)

func runMap(cmd *cobra.Command, args []string) error {
	if *netlistFile == "" || *libraryFile == "" {
		return errors.New("both --netlist and --library are required")
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Close()

	logger.Info("Reading netlist from %s", *netlistFile)
	n, err := utils.ReadNetlist(*netlistFile)
	if err != nil {
		return errors.Wrap(err, "failed to read netlist")
	}
	logger.SetPrefix(n.Name)
	logger.Info("Reading library from %s", *libraryFile)
	lib, err := utils.ReadLibrary(*libraryFile)
	if err != nil {
		return errors.Wrap(err, "failed to read library")
	}

	cfg := algorithm.DefaultConfig()
	cfg.Seed = *seed
	cfg.Steps = *steps
	cfg.T0Steps = *t0Steps
	cfg.MaxTemp = *maxTemp
	cfg.MinTemp = *minTemp
	cfg.GrowthThreshold = *growth
	cfg.UnassignedDrawProbability = *poolProbability
	if *constraintsFile != "" {
		c, err := utils.ReadConstraints(*constraintsFile)
		if err != nil {
			return errors.Wrap(err, "failed to read constraints")
		}
		cfg.InputConstraints = c.Inputs
		cfg.OutputConstraints = c.Outputs
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sa := algorithm.NewSimulatedAnnealing(n, lib, cfg, logger)
	var bar *pterm.ProgressbarPrinter
	if *showProgress && *logFile == "" && term.IsTerminal(int(os.Stdout.Fd())) {
		if bar, err = pterm.DefaultProgressbar.WithTotal(cfg.Steps + cfg.T0Steps).WithTitle("Annealing").Start(); err == nil {
			sa.Progress = func(iteration, total int) {
				bar.Increment()
			}
		} else {
			bar = nil
		}
	}
	result, err := sa.Run(ctx)
	if bar != nil {
		bar.Stop()
	}
	if err != nil {
		return errors.Wrapf(err, "mapping failed in phase %s", sa.Phase)
	}

	if *verifyLogic {
		if err := verify.CheckTruthTables(result.Logic); err != nil {
			return err
		}
		logger.Debug("Truth tables match the and-inverter graph")
	}

	ce, err := cytometry.Evaluate(n, result.Activity, result.Assignment)
	if err != nil {
		return errors.Wrap(err, "cytometry evaluation")
	}
	logger.Debug("%s", result.Activity)
	logger.Debug("%s", result.Toxicity)

	tables := []utils.Table{
		{Suffix: "logic", Data: result.Logic},
		{Suffix: "activity", Data: result.Activity},
		{Suffix: "toxicity", Data: result.Toxicity},
	}
	if len(ce.Nodes()) > 0 {
		logger.Debug("%s", ce)
		tables = append(tables, utils.Table{Suffix: "cytometry", Data: ce})
	}

	var dot bytes.Buffer
	if *writeDOT {
		if err := utils.WriteDOT(&dot, n, result); err != nil {
			return errors.Wrap(err, "rendering DOT")
		}
	}
	files, err := utils.WriteResults(*outputDir, n, result, tables...)
	if err != nil {
		return err
	}
	if *writeDOT {
		path := filepath.Join(*outputDir, n.Name+".dot")
		if err := os.WriteFile(path, dot.Bytes(), 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
		files = append(files, path)
	}
	for _, f := range files {
		logger.Info("Wrote %s", f)
	}

	printSummary(n, result)
	return nil
}

func printSummary(n *circuit.Netlist, result *algorithm.Result) {
	data := pterm.TableData{{"Node", "Type", "Device"}}
	data = append(data, result.Rows()...)
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	pterm.Info.Printfln("Netlist %s: %d nodes, %d logic gates", n.Name, n.NumVertex(), len(n.LogicNodes()))
	pterm.Info.Printfln("Iterations: %d (%d accepted, %d rejected, %d reverted by growth)",
		result.Stats.Iterations, result.Stats.Accepted, result.Stats.Rejected, result.Stats.ToxicityRejected)
	pterm.Info.Printfln("Minimum growth: %.2f", result.Toxicity.MinimumGrowth())
	pterm.Success.Printfln("Score: %.2f (initial %.2f)", result.Score, result.Stats.InitialScore)
}

func runLogic(cmd *cobra.Command, args []string) error {
	if *logicNetlist == "" {
		return errors.New("--netlist is required")
	}
	n, err := utils.ReadNetlist(*logicNetlist)
	if err != nil {
		return errors.Wrap(err, "failed to read netlist")
	}
	le, err := logic.Evaluate(n)
	if err != nil {
		return err
	}
	if err := verify.CheckTruthTables(le); err != nil {
		return err
	}
	pterm.Println(le.String())
	return nil
}
