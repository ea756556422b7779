package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/destrack/internal/snapshot"
)

var nodeScanCmd = &cobra.Command{
	Use:   "scan <requirement> [dir]",
	Short: "Record a directory's layout as implementation nodes",
	Long: `Capture the files and directories under dir (default: the current
directory) and record them as directory and file nodes of a requirement.
Inside a git work tree only tracked files are captured. Nodes that already
exist with the same name and type under the same parent are reused, so a scan
can be repeated after the code changes.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: withSession(func(s *session, args []string) error {
		r, err := s.requirement(args[0])
		if err != nil {
			return err
		}
		parentID := s.flagString("parent")
		if parentID != "" {
			if _, err := s.node(parentID); err != nil {
				return err
			}
		}
		sc := &snapshot.Scanner{
			MaxDepth:   s.flagInt("depth"),
			MaxEntries: s.flagInt("max-entries"),
		}
		if len(args) == 2 {
			sc.WorkDir = args[1]
		}
		root, err := sc.Scan(s.ctx)
		if err != nil {
			return err
		}
		added, err := s.tracker.RecordSnapshot(s.ctx, r.ID, parentID, root)
		if err != nil {
			return err
		}
		s.printer.Success(fmt.Sprintf("scanned %s into %s: %s, %d already recorded",
			root.Name, r.Code, plural(len(added), "new node"), root.Count()-len(added)))
		return nil
	}),
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func init() {
	nodeScanCmd.Flags().String("parent", "", "node to record the directory under (default: a root node)")
	nodeScanCmd.Flags().Int("depth", snapshot.DefaultMaxDepth, "directories this deep are recorded without contents")
	nodeScanCmd.Flags().Int("max-entries", snapshot.DefaultMaxEntries, "directories with more entries are recorded without contents")

	nodeCmd.AddCommand(nodeScanCmd)
}
