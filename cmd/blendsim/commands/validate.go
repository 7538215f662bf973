package commands

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-blend/engine/tree_config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errInvalidGraphs = errors.New("one or more graphs are invalid")

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <graph.yaml>...",
		Short: "Validate graph files",
		Long: `Validate graph files without evaluating them.

This command checks:
  - YAML syntax and unknown fields
  - Field constraints (node types, transition styles, ranges)
  - Joint, clip and node references
  - Input kinds and counts per node type
  - Cycles in the node graph`,
		Example: `  # Validate one graph
  blendsim validate examples/graphs/walk_run.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				doc, err := tree_config.Load(path)
				if err != nil {
					failed++
					log.Error().Err(err).Str("path", path).Msg("invalid graph")
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%d joints, %d clips, %d nodes, root %s)\n",
					path, len(doc.Skeleton.Joints), len(doc.Clips), len(doc.Nodes), doc.Root)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d: %w", failed, len(args), errInvalidGraphs)
			}
			return nil
		},
	}
	return cmd
}
