package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show word and character counts for the active book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeSession, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSession()

			book := sess.Book()
			st := sess.Stats()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s by %s\n\n", book.Metadata.Title, book.Metadata.Author)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CHAPTER\tWORDS\tCHARS\tREVISIONS")
			for _, ch := range st.Chapters {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", ch.Title, ch.Words, ch.Chars, ch.Revisions)
			}
			fmt.Fprintf(tw, "TOTAL\t%d\t%d\t\n", st.Words, st.Chars)
			return tw.Flush()
		},
	}
}

func newPreviewCmd(a *app) *cobra.Command {
	var sheet int
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the text of one two-page spread",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeSession, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSession()

			p := sess.Preview()
			for p.Sheet < sheet {
				next, moved := sess.NextSpread()
				if !moved {
					break
				}
				p = next
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Spread %d of %d (%s)\n", p.Sheet, p.SheetCount, p.Layout.StyleName)
			for _, page := range p.Pages {
				fmt.Fprintf(out, "\n--- page %d ---\n%s\n", page.Index+1, page.Text)
				if page.Footer != "" {
					fmt.Fprintf(out, "[%s]\n", page.Footer)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&sheet, "sheet", 1, "spread to show, starting at 1")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the active book to files",
		Long:  "Export the active book in one format, or in every supported format when --format is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeSession, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSession()

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}

			if format != "" {
				artifact, err := sess.Export(cmd.Context(), format)
				if err != nil {
					return err
				}
				return writeArtifact(cmd, outDir, artifact.Name, artifact.Data)
			}

			artifacts, err := sess.ExportAll(cmd.Context())
			if err != nil {
				return err
			}
			for _, artifact := range artifacts {
				if err := writeArtifact(cmd, outDir, artifact.Name, artifact.Data); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "export format (calibre, epub, markdown, scribus)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

func writeArtifact(cmd *cobra.Command, dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
