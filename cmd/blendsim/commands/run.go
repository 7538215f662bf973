package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/Carmen-Shannon/oxy-blend/engine/animation"
	"github.com/Carmen-Shannon/oxy-blend/engine/blend_tree"
	"github.com/Carmen-Shannon/oxy-blend/engine/clip"
	"github.com/Carmen-Shannon/oxy-blend/engine/profiler"
	"github.com/Carmen-Shannon/oxy-blend/engine/ragdoll"
	"github.com/Carmen-Shannon/oxy-blend/engine/tree_config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	errUnknownNode   = errors.New("unknown node")
	errWrongNodeType = errors.New("wrong node type")
	errNegativeFrame = errors.New("frame must not be negative")
)

type runOptions struct {
	graph     string
	frames    int
	dt        float32
	instances int
	realtime  bool
	triggers  map[string]int
	activate  map[string]int
}

// frameEvent is a node action scheduled for a frame.
type frameEvent struct {
	frame int
	node  string
	apply func(tree blend_tree.BlendTree, id blend_tree.NodeID)
}

func newRunCommand(cfg Config) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a graph for a number of frames",
		Long: `Evaluate a graph for a number of frames and print the final output pose.

Transition nodes can be toggled and ragdoll nodes activated at given frames. Every instance is an
independent animation with its own tree; instances are updated in parallel.`,
		Example: `  # Run two seconds of the synchronized walk/run blend at 60 fps
  blendsim run --graph examples/graphs/walk_run.yaml --frames 120

  # Start the jump transition at frame 30, drop into the ragdoll at frame 60
  blendsim run --graph examples/graphs/run_jump.yaml --trigger to_jump=30 --activate ragdoll=60

  # Serve metrics while running 50 instances in real time
  BLENDSIM_METRICS_ADDR=:9090 blendsim run --graph examples/graphs/walk_run.yaml --instances 50 --realtime`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.graph, "graph", "g", "", "graph file to evaluate")
	cmd.Flags().IntVarP(&opts.frames, "frames", "n", 120, "number of frames to evaluate")
	cmd.Flags().Float32Var(&opts.dt, "dt", 1.0/60.0, "frame time in seconds")
	cmd.Flags().IntVar(&opts.instances, "instances", 1, "number of animation instances")
	cmd.Flags().BoolVar(&opts.realtime, "realtime", false, "pace frames to wall-clock time")
	cmd.Flags().StringToIntVar(&opts.triggers, "trigger", nil, "toggle transition node at frame (name=frame)")
	cmd.Flags().StringToIntVar(&opts.activate, "activate", nil, "toggle ragdoll node active at frame (name=frame)")
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}

func runGraph(ctx context.Context, cfg Config, opts runOptions, out io.Writer) error {
	doc, err := tree_config.Load(opts.graph)
	if err != nil {
		return err
	}
	skel, err := doc.BuildSkeleton()
	if err != nil {
		return err
	}
	clips, err := doc.BuildClips(skel)
	if err != nil {
		return err
	}
	events, err := scheduleEvents(doc, opts)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := profiler.NewTreeMetrics(reg, "blendsim")
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	prof := profiler.NewProfiler()
	observer := profiler.Observers{prof, metrics}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
	}

	ordered := make([]clip.Clip, 0, len(doc.Clips))
	for _, spec := range doc.Clips {
		ordered = append(ordered, clips[spec.Name])
	}

	manager := animation.NewManager(animation.WithWorkers(cfg.Workers))
	for i := 0; i < max(opts.instances, 1); i++ {
		bind := skel.BindPose()
		anim, err := animation.NewAnimation(bind,
			animation.WithName(fmt.Sprintf("instance-%d", i)),
			animation.WithClips(ordered...),
			animation.WithGraph(doc),
			animation.WithRagdoll(ragdoll.NewRagdoll(bind)),
			animation.WithTreeOptions(blend_tree.WithObserver(observer)),
		)
		if err != nil {
			return err
		}
		manager.Add(anim)
		log.Debug().Str("instance", anim.Name()).Stringer("id", anim.ID()).Msg("instance created")
	}

	log.Info().
		Str("graph", opts.graph).
		Int("frames", opts.frames).
		Float32("dt", opts.dt).
		Int("instances", manager.Len()).
		Msg("running graph")

	var ticker *time.Ticker
	if opts.realtime {
		ticker = time.NewTicker(time.Duration(float64(opts.dt) * float64(time.Second)))
		defer ticker.Stop()
	}

	failedFrames, physicsFrames, next := 0, 0, 0
	for frame := 0; frame < opts.frames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for ; next < len(events) && events[next].frame == frame; next++ {
			ev := events[next]
			for _, anim := range manager.Animations() {
				id, _ := anim.Node(ev.node)
				ev.apply(anim.Tree(), id)
			}
			log.Debug().Int("frame", frame).Str("node", ev.node).Msg("event applied")
		}

		if failed := manager.Update(opts.dt); failed > 0 {
			failedFrames++
		}
		if manager.RequirePhysics() {
			physicsFrames++
		}
		prof.Tick()

		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}

	log.Info().
		Int("frames", opts.frames).
		Int("failed_frames", failedFrames).
		Int("physics_frames", physicsFrames).
		Msg("run complete")

	return printPose(out, manager.Animations()[0])
}

// scheduleEvents resolves --trigger and --activate against the graph and sorts them by frame.
func scheduleEvents(doc *tree_config.Document, opts runOptions) ([]frameEvent, error) {
	types := make(map[string]string, len(doc.Nodes))
	for _, n := range doc.Nodes {
		types[n.Name] = n.Type
	}

	var events []frameEvent
	add := func(flags map[string]int, nodeType string, apply func(blend_tree.BlendTree, blend_tree.NodeID)) error {
		for name, frame := range flags {
			t, ok := types[name]
			if !ok {
				return fmt.Errorf("node %q: %w", name, errUnknownNode)
			}
			if t != nodeType {
				return fmt.Errorf("node %q is %s, want %s: %w", name, t, nodeType, errWrongNodeType)
			}
			if frame < 0 {
				return fmt.Errorf("node %q frame %d: %w", name, frame, errNegativeFrame)
			}
			events = append(events, frameEvent{frame: frame, node: name, apply: apply})
		}
		return nil
	}

	if err := add(opts.triggers, blend_tree.NodeTypeTransition.String(), func(tree blend_tree.BlendTree, id blend_tree.NodeID) {
		if tn, ok := blend_tree.NodeAs[*blend_tree.TransitionNode](tree, id); ok {
			tn.ToggleTransition()
		}
	}); err != nil {
		return nil, err
	}
	if err := add(opts.activate, blend_tree.NodeTypeRagdoll.String(), func(tree blend_tree.BlendTree, id blend_tree.NodeID) {
		if rn, ok := blend_tree.NodeAs[*blend_tree.RagdollNode](tree, id); ok {
			rn.SetActive(!rn.IsActive())
		}
	}); err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].frame != events[j].frame {
			return events[i].frame < events[j].frame
		}
		return events[i].node < events[j].node
	})
	return events, nil
}

func printPose(out io.Writer, anim animation.Animation) error {
	pose := anim.Pose()
	skel := pose.Skeleton()
	fmt.Fprintf(out, "final pose of %s\n", anim.Name())
	for i := 0; i < skel.JointCount(); i++ {
		t := pose.Local()[i]
		if _, err := fmt.Fprintf(out, "  %-16s t=(%.4f %.4f %.4f) r=(%.4f %.4f %.4f %.4f)\n",
			skel.Joint(i).Name,
			t.Translation.X(), t.Translation.Y(), t.Translation.Z(),
			t.Rotation.V.X(), t.Rotation.V.Y(), t.Rotation.V.Z(), t.Rotation.W); err != nil {
			return err
		}
	}
	return nil
}
