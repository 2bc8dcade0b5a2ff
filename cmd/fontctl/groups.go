package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dukerupert/fontgroup/internal/client"
	"github.com/dukerupert/fontgroup/internal/fontgroup"
	"github.com/dukerupert/fontgroup/internal/model"
	"github.com/spf13/cobra"
)

func groupsCommand(newClient func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage font groups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List font groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := newClient().ListGroups(cmd.Context())
			if err != nil {
				return err
			}
			printGroups(cmd.OutOrStdout(), groups)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [id]",
		Short: "Show one group with its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			g, err := newClient().GetGroup(cmd.Context(), id)
			if err != nil {
				return err
			}
			printGroup(cmd.OutOrStdout(), g)
			return nil
		},
	})

	cmd.AddCommand(saveGroupCommand(newClient, false), saveGroupCommand(newClient, true))

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a font group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := newClient().DeleteGroup(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted group %d\n", id)
			return nil
		},
	})

	return cmd
}

// saveGroupCommand builds "create" or, with update set, "update [id]".
func saveGroupCommand(newClient func() *client.Client, update bool) *cobra.Command {
	var title string
	var rows []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a font group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int64
			if update {
				var err error
				if id, err = parseID(args[0]); err != nil {
					return err
				}
			}

			form := fontgroup.Form{Title: title}
			for _, s := range rows {
				row, err := parseRow(s)
				if err != nil {
					return err
				}
				form.Rows = append(form.Rows, row)
			}

			groups, err := newClient().SaveGroup(cmd.Context(), id, form)
			if err != nil {
				return err
			}
			printGroups(cmd.OutOrStdout(), groups)
			return nil
		},
	}
	if update {
		cmd.Use = "update [id]"
		cmd.Short = "Replace a font group's title and rows"
		cmd.Args = cobra.ExactArgs(1)
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Group title")
	cmd.Flags().StringArrayVarP(&rows, "font", "f", nil, "Row as id:name[:size[:price]]; repeat for each font")
	return cmd
}

// parseRow reads id:name[:size[:price]]. Size and price default like a new
// form row.
func parseRow(s string) (fontgroup.Row, error) {
	row := fontgroup.NewRow()
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 4 {
		return row, fmt.Errorf("invalid font row %q, want id:name[:size[:price]]", s)
	}

	id, err := parseID(parts[0])
	if err != nil {
		return row, fmt.Errorf("invalid font row %q: %w", s, err)
	}
	row.FontID = id
	row.FontName = strings.TrimSpace(parts[1])

	if len(parts) > 2 && parts[2] != "" {
		if row.SpecificSize, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return row, fmt.Errorf("invalid size in font row %q", s)
		}
	}
	if len(parts) > 3 && parts[3] != "" {
		if row.PriceChange, err = strconv.ParseFloat(parts[3], 64); err != nil {
			return row, fmt.Errorf("invalid price in font row %q", s)
		}
	}
	return row, nil
}

func printGroups(w io.Writer, groups []model.GroupSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tFONTS\tCOUNT")
	for _, g := range groups {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", g.ID, g.Title, g.FontNames, g.Count)
	}
	tw.Flush()
}

func printGroup(w io.Writer, g *model.GroupSummary) {
	fmt.Fprintf(w, "%s (id %d)\n", g.Title, g.ID)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FONT ID\tNAME\tSIZE\tPRICE")
	for _, r := range g.Fonts {
		fmt.Fprintf(tw, "%d\t%s\t%g\t%g\n", r.FontID, r.FontName, r.SpecificSize, r.PriceChange)
	}
	tw.Flush()
}
