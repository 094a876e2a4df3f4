package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minutes/internal/ipc"
)

func newPersonCommand(ctx *commandContext) *cobra.Command {
	personCmd := &cobra.Command{
		Use:   "person",
		Short: "Manage the people tasks are assigned to",
	}

	var role string
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.AddPerson(args[0], role)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", resp.Person.Name, resp.Person.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVarP(&role, "role", "r", "", "Role or team")

	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List people",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ListPeople()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.People)
				}
				if len(resp.People) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No people recorded")
					return nil
				}
				rows := make([][]string, 0, len(resp.People))
				for _, p := range resp.People {
					rows = append(rows, []string{p.Name, p.Role, p.ID})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Name", "Role", "ID"}, rows, nil))
				return nil
			})
		},
	}
	addJSONFlag(listCmd, &asJSON)

	personCmd.AddCommand(addCmd, listCmd)
	return personCmd
}
