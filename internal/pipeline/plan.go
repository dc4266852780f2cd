package pipeline

import (
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1"
)

// stageEdges are the data dependencies between stages.
var stageEdges = [][2]Stage{
	{StageOriginal, StageSmoothed},
	{StageSmoothed, StageSharpened},
	{StageSharpened, StageGray},
	{StageGray, StageSobel},
	{StageGray, StagePrewitt},
	{StageGray, StageCanny},
}

// Plan builds the stage dependency graph for cfg. Each vertex is labelled with
// the caption its raster will carry and filled by raster kind: colour stages,
// the grayscale raster and the three edge maps.
func Plan(cfg Config) (graph.Graph[string, string], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Smooth, _ = ParseSmoothMethod(string(cfg.Smooth))
	cfg.Sharpen, _ = ParseSharpenMethod(string(cfg.Sharpen))
	captions := &Result{Config: cfg}

	g := graph.New(graph.StringHash, graph.Directed(), graph.Acyclic(), graph.PreventCycles())

	for _, s := range AllStages {
		fill, err := stageFill(s)
		if err != nil {
			return nil, err
		}
		err = g.AddVertex(string(s),
			graph.VertexAttribute("label", captions.Caption(s)),
			graph.VertexAttribute("style", "filled"),
			graph.VertexAttribute("fillcolor", fill),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add stage %s", s)
		}
	}

	for _, e := range stageEdges {
		if err := g.AddEdge(string(e[0]), string(e[1])); err != nil {
			return nil, errors.Wrapf(err, "unable to add edge from %s to %s", e[0], e[1])
		}
	}
	return g, nil
}

func stageFill(s Stage) (string, error) {
	var r, g, b uint8
	switch s {
	case StageOriginal, StageSmoothed, StageSharpened:
		r, g, b = 173, 216, 230
	case StageGray:
		r, g, b = 211, 211, 211
	default:
		r, g, b = 255, 228, 181
	}
	c, err := colors.RGB(r, g, b)
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}
	return c.ToHEX().String(), nil
}

// StageOrder returns the stages of cfg in execution order. Stages with no
// mutual dependency keep their display order.
func StageOrder(cfg Config) ([]Stage, error) {
	g, err := Plan(cfg)
	if err != nil {
		return nil, err
	}

	rank := make(map[string]int, len(AllStages))
	for i, s := range AllStages {
		rank[string(s)] = i
	}
	order, err := graph.StableTopologicalSort(g, func(a, b string) bool {
		return rank[a] < rank[b]
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to order stages")
	}

	stages := make([]Stage, len(order))
	for i, s := range order {
		stages[i] = Stage(s)
	}
	return stages, nil
}

// WriteDOT renders the stage graph of cfg in Graphviz DOT format.
func WriteDOT(w io.Writer, cfg Config) error {
	g, err := Plan(cfg)
	if err != nil {
		return err
	}
	if err := draw.DOT(g, w, draw.GraphAttribute("rankdir", "LR")); err != nil {
		return errors.Wrap(err, "unable to render dot")
	}
	return nil
}
