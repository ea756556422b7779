package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/destrack/internal/state"
	"github.com/papapumpkin/destrack/internal/transfer"
	"github.com/papapumpkin/destrack/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:   "export <project>",
	Short: "Write a project to a JSON, TOML or YAML document",
	Long: `Write a project and everything it contains to a document. The file
name defaults to destrack-<project>-<date>.<format> in export_dir; the format
comes from --format, the extension of -o, or export_format. Use -o - to write
to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		p, err := s.project(args[0])
		if err != nil {
			return err
		}
		now := s.tracker.Engine().Timestamp()
		doc, _ := transfer.Export(s.tracker.Snapshot(), p.ID, now)

		out := s.flagString("output")
		format, err := exportFormat(s, out)
		if err != nil {
			return err
		}
		if out == "-" {
			return transfer.Encode(s.out, doc, format)
		}
		if out == "" {
			out = filepath.Join(s.cfg.ExportDir, transfer.Filename(p.Name, now, format))
		}
		if err := transfer.WriteFile(out, doc, format); err != nil {
			return err
		}
		s.printer.Success(fmt.Sprintf("exported %s to %s %s", p.Name, out,
			ui.CountsSummary(docCounts(doc))))
		return nil
	}),
}

// exportFormat resolves --format, then the output extension, then config.
func exportFormat(s *session, out string) (transfer.Format, error) {
	if f := s.flagString("format"); f != "" {
		return transfer.ParseFormat(f)
	}
	if out != "" && out != "-" && transfer.Supported(out) {
		return transfer.FormatFromPath(out), nil
	}
	return transfer.ParseFormat(s.cfg.ExportFormat)
}

func docCounts(doc transfer.Document) state.Counts {
	return state.Counts{
		Projects:      1,
		Categories:    len(doc.Categories),
		Subcategories: len(doc.Subcategories),
		Requirements:  len(doc.Requirements),
		Nodes:         len(doc.ImplementationNodes),
	}
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an exported document as a new project",
	Long: `Import an exported document as a new project. Every entity gets a new
id, so importing the same file twice yields two independent projects. The
format is chosen from the file extension (.json, .toml, .yaml or .yml).`,
	Args: cobra.ExactArgs(1),
	RunE: withSession(func(s *session, args []string) error {
		doc, err := transfer.ReadFile(args[0])
		if err != nil {
			return err
		}
		res, err := s.tracker.Import(s.ctx, doc)
		if err != nil {
			return err
		}
		s.printer.Created("project", res.Project.Name, res.Project.ID)
		s.printer.Info("imported " + ui.CountsSummary(res.Imported))
		if res.Dropped > 0 {
			s.printer.Warn(fmt.Sprintf("dropped %d entities with references outside the document", res.Dropped))
		}
		return nil
	}),
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file, or - for stdout")
	exportCmd.Flags().String("format", "", "json, toml or yaml")

	rootCmd.AddCommand(exportCmd, importCmd)
}
