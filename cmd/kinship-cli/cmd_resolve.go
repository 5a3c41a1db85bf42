package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/persistorai/kinship/internal/kinship"
)

func newResolveCmd() *cobra.Command {
	var (
		style    string
		chain    bool
		sentence bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <family-file> <from> [to]",
		Short: "Resolve relationships offline from a family file",
		Long: `Resolve relationships without a server. The family file is YAML or JSON
with a top-level "people" list of {id, name, gender, parents, partners}; a
'kinship export' file works as is.

With one person, every other member is labelled relative to them.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := kinship.ParseStyle(style)
			if err != nil {
				return err
			}

			fam, err := loadFamily(args[0])
			if err != nil {
				return err
			}

			return runResolve(fam, kinship.NewResolver(st), args[1:], chain, sentence)
		},
	}

	cmd.Flags().StringVar(&style, "style", "words", "Ordinal style: words|numeric")
	cmd.Flags().BoolVar(&chain, "chain", false, "Print the hop-by-hop path instead of a label")
	cmd.Flags().BoolVar(&sentence, "sentence", false, "Print a full sentence")

	return cmd
}

func runResolve(fam *family, r kinship.Resolver, ids []string, chain, sentence bool) error {
	from := ids[0]
	if !fam.graph.Has(from) {
		return fmt.Errorf("unknown person %q", from)
	}

	if len(ids) == 1 {
		return resolveAll(fam, r, from)
	}

	to := ids[1]

	if chain {
		links, err := r.GetRelationshipChain(fam.graph, from, to)
		if err != nil {
			return err
		}

		out := make([]map[string]string, 0, len(links))
		for _, l := range links {
			out = append(out, map[string]string{"from": l.From, "to": l.To, "label": l.Label})
		}

		switch flagFmt {
		case "table":
			rows := make([][]string, 0, len(links))
			for i, l := range links {
				rows = append(rows, []string{itoa(i + 1), fam.name(l.From), l.Label, fam.name(l.To)})
			}
			formatTable([]string{"#", "FROM", "LABEL", "TO"}, rows)
		case "quiet":
			for _, l := range links {
				formatQuiet(l.To)
			}
		default:
			formatJSON(map[string]any{"chain": out})
		}

		return nil
	}

	rel, err := r.Relation(fam.graph, from, to)
	if err != nil {
		return err
	}

	label := r.Formatter.Format(rel)
	text := r.Formatter.Sentence(fam.name(from), fam.name(to), rel)

	switch {
	case sentence:
		fmt.Println(text)
	case flagFmt == "quiet":
		formatQuiet(label)
	case flagFmt == "table":
		formatTable([]string{"FROM", "TO", "KIND", "LABEL"},
			[][]string{{fam.name(from), fam.name(to), string(rel.Kind()), label}})
	default:
		formatJSON(map[string]string{
			"from": from, "to": to, "kind": string(rel.Kind()), "label": label, "sentence": text,
		})
	}

	return nil
}

// resolveAll labels every other person relative to id.
func resolveAll(fam *family, r kinship.Resolver, id string) error {
	type relative struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Label string `json:"label"`
	}

	var rows []relative
	for _, other := range fam.graph.IDs() {
		if other == id {
			continue
		}

		label, err := r.GetRelationship(fam.graph, other, id)
		if err != nil {
			return err
		}

		rows = append(rows, relative{ID: other, Name: fam.name(other), Label: label})
	}

	switch flagFmt {
	case "table":
		cells := make([][]string, 0, len(rows))
		for _, row := range rows {
			cells = append(cells, []string{row.ID, row.Name, row.Label})
		}
		formatTable([]string{"ID", "NAME", "IS " + fam.name(id) + "'S"}, cells)
	case "quiet":
		for _, row := range rows {
			formatQuiet(row.ID + "\t" + row.Label)
		}
	default:
		formatJSON(map[string]any{"person": id, "relatives": rows})
	}

	return nil
}
