package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dukerupert/fontgroup/internal/client"
	"github.com/dukerupert/fontgroup/internal/model"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func fontsCommand(newClient func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "List, upload and delete fonts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List uploaded fonts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fonts, err := newClient().ListFonts(cmd.Context())
			if err != nil {
				return err
			}
			printFonts(cmd.OutOrStdout(), fonts)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upload [file.ttf]...",
		Short: "Upload TrueType font files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			var fonts []model.Font
			for _, path := range args {
				var err error
				fonts, err = c.UploadFont(cmd.Context(), path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			printFonts(cmd.OutOrStdout(), fonts)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a font; groups using it lose that row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := newClient().DeleteFont(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted font %d\n", id)
			return nil
		},
	})

	return cmd
}

func printFonts(w io.Writer, fonts []model.Font) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFONT NAME\tFILE\tSIZE\tUPLOADED")
	for _, f := range fonts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", f.ID, f.FontName, f.FileName, humanize.Bytes(uint64(f.Size)), humanize.Time(f.CreatedAt))
	}
	tw.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
