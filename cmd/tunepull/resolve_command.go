package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tunepull/internal/catalog"
	"tunepull/internal/track"
)

type resolveView struct {
	Kind       track.Kind     `json:"kind"`
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	SourceURL  string         `json:"source_url"`
	EmbedURL   string         `json:"embed_url"`
	Records    []track.Record `json:"records"`
}

func newResolveView(cat track.Catalog) resolveView {
	records := cat.Records
	if records == nil {
		records = []track.Record{}
	}
	return resolveView{
		Kind:       cat.Kind,
		ID:         cat.ID,
		Collection: cat.CollectionName,
		SourceURL:  cat.SourceURL,
		EmbedURL:   catalog.Reference{Kind: cat.Kind, ID: cat.ID}.EmbedURL(),
		Records:    records,
	}
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <spotify-url>",
		Short: "List the tracks behind a Spotify track, album, or playlist link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := ctx.newResolver()
			if err != nil {
				return err
			}
			cat, err := resolver.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			view := newResolveView(cat)
			if asJSON {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s (%s)\n", view.Kind, view.Collection, plural(len(view.Records), "track", "tracks"))
			fmt.Fprintf(out, "Embed: %s\n", view.EmbedURL)
			if len(view.Records) == 0 {
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Title", "Artist", "Album"}, recordRows(view.Records),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func recordRows(records []track.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		rows = append(rows, []string{strconv.Itoa(i + 1), rec.Title, rec.Artist, rec.Album})
	}
	return rows
}
