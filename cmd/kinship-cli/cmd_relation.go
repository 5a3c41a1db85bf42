package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/persistorai/kinship/client"
)

func newRelationCmd() *cobra.Command {
	var sentence bool

	cmd := &cobra.Command{
		Use:     "relation <from> <to>",
		Aliases: []string{"rel"},
		Short:   "Show what <from> is to <to>",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := apiClient.Relationships.Get(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("relation: %w", err)
			}

			switch {
			case sentence:
				fmt.Println(r.Sentence)
			case flagFmt == "quiet":
				formatQuiet(r.Label)
			case flagFmt == "table":
				printRelationships([]client.Relationship{*r})
			default:
				formatJSON(r)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&sentence, "sentence", false, "Print a full sentence")
	return cmd
}

func newChainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chain <from> <to>",
		Short: "Show the hop-by-hop path between two people",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			links, err := apiClient.Relationships.Chain(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("chain: %w", err)
			}

			printChain(links)
			return nil
		},
	}
}

func printChain(links []client.ChainLink) {
	switch flagFmt {
	case "quiet":
		for _, l := range links {
			formatQuiet(l.To)
		}
	case "table":
		rows := make([][]string, 0, len(links))
		for i, l := range links {
			rows = append(rows, []string{itoa(i + 1), l.From, l.Label, l.To})
		}
		formatTable([]string{"#", "FROM", "LABEL", "TO"}, rows)
	default:
		formatJSON(map[string]any{"chain": links})
	}
}

func newAncestorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ancestors <id>",
		Short: "List a person's ancestors, nearest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ancestors, err := apiClient.People.Ancestors(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("ancestors: %w", err)
			}

			switch flagFmt {
			case "quiet":
				for _, a := range ancestors {
					formatQuiet(a.ID)
				}
			case "table":
				rows := make([][]string, 0, len(ancestors))
				for _, a := range ancestors {
					rows = append(rows, []string{a.ID, a.Name, itoa(a.Distance), a.Side, a.Label})
				}
				formatTable([]string{"ID", "NAME", "DISTANCE", "SIDE", "LABEL"}, rows)
			default:
				formatJSON(map[string]any{"ancestors": ancestors})
			}

			return nil
		},
	}
}

func newBatchCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "batch [from:to ...]",
		Short: "Resolve many pairs at once",
		Long: `Resolve many pairs in one request. Pairs are given as from:to arguments
or read from a YAML/JSON file (a list of {from, to}) with --file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parsePairs(args)
			if err != nil {
				return err
			}

			if file != "" {
				fromFile, err := readPairsFile(file)
				if err != nil {
					return err
				}
				pairs = append(pairs, fromFile...)
			}

			if len(pairs) == 0 {
				return fmt.Errorf("no pairs given")
			}

			results, err := apiClient.Relationships.Batch(cmd.Context(), pairs)
			if err != nil {
				return fmt.Errorf("batch: %w", err)
			}

			switch flagFmt {
			case "quiet":
				for _, r := range results {
					formatQuiet(r.Label)
				}
			case "table":
				printRelationships(results)
			default:
				formatJSON(map[string]any{"results": results})
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read pairs from a YAML or JSON file")
	return cmd
}

func parsePairs(args []string) ([]client.Pair, error) {
	pairs := make([]client.Pair, 0, len(args))
	for _, arg := range args {
		from, to, ok := strings.Cut(arg, ":")
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid pair %q: want from:to", arg)
		}
		pairs = append(pairs, client.Pair{From: from, To: to})
	}

	return pairs, nil
}

func readPairsFile(path string) ([]client.Pair, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied path is intentional
	if err != nil {
		return nil, fmt.Errorf("read pairs: %w", err)
	}

	var pairs []struct {
		From string `yaml:"from"`
		To   string `yaml:"to"`
	}
	if err := yaml.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("parse pairs: %w", err)
	}

	out := make([]client.Pair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, client.Pair{From: p.From, To: p.To})
	}

	return out, nil
}

func printRelationships(rs []client.Relationship) {
	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		label := r.Label
		if r.Error != "" {
			label = "error: " + r.Error
		}
		rows = append(rows, []string{r.From, r.To, r.Kind, label})
	}
	formatTable([]string{"FROM", "TO", "KIND", "LABEL"}, rows)
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show family statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := apiClient.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}

			if flagFmt == "table" {
				formatTable([]string{"PEOPLE", "PARENT LINKS", "PARTNERSHIPS", "ROOTS", "GENERATIONS", "COMPONENTS"},
					[][]string{{
						itoa(s.People), itoa(s.ParentLinks), itoa(s.Partnerships),
						itoa(s.Roots), itoa(s.Generations), itoa(s.Components),
					}})
				return nil
			}

			output(s, itoa(s.People))
			return nil
		},
	}
}
