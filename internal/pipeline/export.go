package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-enhance-mcp/internal/imaging"
)

// Artifact is one exported raster: its PNG stream, the base64 envelope sent to
// clients and a summary of its pixels.
type Artifact struct {
	*imaging.EncodedImage
	Stats imaging.Stats `json:"stats"`

	// PNG is the raw stream; it is already carried base64-encoded in EncodedImage.
	PNG []byte `json:"-"`
}

// Export encodes the requested stages as PNG concurrently. With no stages it
// exports the six OutputStages. Artifacts come back in request order.
//
// Each artifact's ColorDrift is the Lab distance between its mean colour and
// the original's.
func (r *Result) Export(ctx context.Context, stages ...Stage) ([]*Artifact, error) {
	if len(stages) == 0 {
		stages = OutputStages
	}

	outs := make([]Output, len(stages))
	for i, s := range stages {
		o, err := r.Output(s)
		if err != nil {
			return nil, err
		}
		outs[i] = o
	}

	reference := imaging.Summarize(r.Original)
	artifacts := make([]*Artifact, len(outs))

	g, ctx := errgroup.WithContext(ctx)
	for i, o := range outs {
		i, o := i, o
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := imaging.EncodePNG(o.Image)
			if err != nil {
				return errors.Wrapf(err, "export %s", o.Stage)
			}
			stats := imaging.Summarize(o.Image)
			stats.ColorDrift = imaging.ColorDistance(reference, stats)

			artifacts[i] = &Artifact{
				EncodedImage: imaging.NewEncodedImage(string(o.Stage), o.Caption, o.FileName, o.Image.Bounds(), data),
				Stats:        stats,
				PNG:          data,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// WriteDir writes each artifact's PNG into dir, creating it if needed. A
// non-empty prefix is joined to each file name with an underscore. It returns
// the written paths in artifact order.
func WriteDir(dir, prefix string, artifacts []*Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", dir)
	}

	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		name := a.FileName
		if prefix != "" {
			name = prefix + "_" + name
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, a.PNG, 0o644); err != nil {
			return nil, errors.Wrapf(err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
