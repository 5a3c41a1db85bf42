package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/persistorai/kinship/internal/bench"
	"github.com/persistorai/kinship/internal/kinship"
)

func newBenchCmd() *cobra.Command {
	var (
		planPath string
		seed     uint64
		style    string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time relationship lookups on generated families",
		Long: `Generate random families of growing size, time random relationship
lookups and check child/parent labels against the generated links. Runs
offline. A plan file is a YAML list of {size, queries, check_accuracy}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := kinship.ParseStyle(style)
			if err != nil {
				return err
			}

			plan := bench.DefaultPlan
			if planPath != "" {
				if plan, err = readPlan(planPath); err != nil {
					return err
				}
			}

			log := logrus.New()
			log.SetOutput(os.Stderr)
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			runner := &bench.Runner{Resolver: kinship.NewResolver(st), Seed: seed, Log: log}

			results, err := runner.Run(cmd.Context(), plan)
			if err != nil {
				return fmt.Errorf("bench: %w", err)
			}

			printBench(results)

			for _, res := range results {
				if res.Checked && len(res.Failures) > 0 {
					return fmt.Errorf("accuracy check failed at size %d: %d wrong labels", res.Size, len(res.Failures))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "YAML plan file (default: built-in plan)")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")
	cmd.Flags().StringVar(&style, "style", "words", "Ordinal style: words|numeric")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log each experiment")

	return cmd
}

func readPlan(path string) ([]bench.Experiment, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied path is intentional
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	var plan []bench.Experiment
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}

	if len(plan) == 0 {
		return nil, fmt.Errorf("parse plan: no experiments")
	}

	return plan, nil
}

func printBench(results []bench.Result) {
	if flagFmt != "table" {
		formatJSON(results)
		return
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		acc := "-"
		if r.Checked {
			acc = fmt.Sprintf("%.1f%%", r.Accuracy)
		}
		rows = append(rows, []string{itoa(r.Size), itoa(r.Queries), r.Mean.String(), r.P95.String(), acc})
	}

	formatTable([]string{"SIZE", "QUERIES", "MEAN", "P95", "ACCURACY"}, rows)
}
