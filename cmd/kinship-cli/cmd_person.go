package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/persistorai/kinship/client"
)

func newPersonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "person",
		Aliases: []string{"people", "p"},
		Short:   "Manage people",
	}

	cmd.AddCommand(newPersonAddCmd())
	cmd.AddCommand(newPersonGetCmd())
	cmd.AddCommand(newPersonListCmd())
	cmd.AddCommand(newPersonUpdateCmd())
	cmd.AddCommand(newPersonDeleteCmd())

	return cmd
}

func newPersonAddCmd() *cobra.Command {
	var id, gender, birthDate string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := apiClient.People.Create(cmd.Context(), &client.CreatePersonRequest{
				ID:        id,
				Name:      args[0],
				Gender:    gender,
				BirthDate: birthDate,
			})
			if err != nil {
				return fmt.Errorf("add person: %w", err)
			}

			printPeople([]client.Person{*p}, p)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Person ID (generated if empty)")
	cmd.Flags().StringVarP(&gender, "gender", "g", "", "Gender: male|female|other")
	cmd.Flags().StringVar(&birthDate, "born", "", "Birth date (YYYY-MM-DD)")

	return cmd
}

func newPersonGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := apiClient.People.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get person: %w", err)
			}

			printPeople([]client.Person{*p}, p)
			return nil
		},
	}
}

func newPersonListCmd() *cobra.Command {
	var (
		query  string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List people",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			people, hasMore, err := apiClient.People.List(cmd.Context(), &client.PersonListOptions{
				Query:  query,
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return fmt.Errorf("list people: %w", err)
			}

			switch flagFmt {
			case "table", "quiet":
				printPeople(people, nil)
			default:
				formatJSON(map[string]any{"people": people, "has_more": hasMore})
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by name")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Results to skip")

	return cmd
}

func newPersonUpdateCmd() *cobra.Command {
	var name, gender, birthDate string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a person's name, gender or birth date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &client.UpdatePersonRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("gender") {
				req.Gender = &gender
			}
			if cmd.Flags().Changed("born") {
				req.BirthDate = &birthDate
			}

			if req.Name == nil && req.Gender == nil && req.BirthDate == nil {
				return fmt.Errorf("nothing to update: pass --name, --gender or --born")
			}

			p, err := apiClient.People.Update(cmd.Context(), args[0], req)
			if err != nil {
				return fmt.Errorf("update person: %w", err)
			}

			printPeople([]client.Person{*p}, p)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVarP(&gender, "gender", "g", "", "New gender")
	cmd.Flags().StringVar(&birthDate, "born", "", "New birth date")

	return cmd
}

func newPersonDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a person with no children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.People.Delete(cmd.Context(), args[0]); err != nil {
				if client.IsConflict(err) {
					return fmt.Errorf("delete person: %s still has children; unlink them first", args[0])
				}
				return fmt.Errorf("delete person: %w", err)
			}

			output(map[string]string{"deleted": args[0]}, args[0])
			return nil
		},
	}
}

func printPeople(people []client.Person, single *client.Person) {
	switch flagFmt {
	case "quiet":
		for _, p := range people {
			formatQuiet(p.ID)
		}
	case "table":
		rows := make([][]string, 0, len(people))
		for _, p := range people {
			rows = append(rows, []string{
				p.ID, p.Name, p.Gender, p.BirthDate,
				strings.Join(p.Parents, ","), strings.Join(p.Partners, ","),
			})
		}
		formatTable([]string{"ID", "NAME", "GENDER", "BORN", "PARENTS", "PARTNERS"}, rows)
	default:
		if single != nil {
			formatJSON(single)
			return
		}
		formatJSON(people)
	}
}

func itoa(n int) string { return strconv.Itoa(n) }
