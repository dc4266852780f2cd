package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-enhance-mcp/internal/filter"
	"github.com/ironsheep/image-enhance-mcp/internal/pipeline"
)

// smoothFlag and sharpenFlag accept method names or display labels.
type smoothFlag pipeline.SmoothMethod

func (f *smoothFlag) String() string { return string(*f) }

func (f *smoothFlag) Set(s string) error {
	m, err := pipeline.ParseSmoothMethod(s)
	if err != nil {
		return err
	}
	*f = smoothFlag(m)
	return nil
}

type sharpenFlag pipeline.SharpenMethod

func (f *sharpenFlag) String() string { return string(*f) }

func (f *sharpenFlag) Set(s string) error {
	m, err := pipeline.ParseSharpenMethod(s)
	if err != nil {
		return err
	}
	*f = sharpenFlag(m)
	return nil
}

// bindConfigFlags registers one flag per pipeline parameter, defaulting to cfg.
func bindConfigFlags(fs *flag.FlagSet, cfg *pipeline.Config) {
	fs.Var((*smoothFlag)(&cfg.Smooth), "smooth", "smoothing method: gaussian, median, bilateral")
	fs.IntVar(&cfg.SmoothKernel, "smooth-kernel", cfg.SmoothKernel, "smoothing kernel size / bilateral diameter (1-31)")
	fs.Float64Var(&cfg.SmoothSigma, "smooth-sigma", cfg.SmoothSigma, "Gaussian sigma (0 derives it from the kernel)")
	fs.IntVar(&cfg.SigmaColor, "sigma-color", cfg.SigmaColor, "bilateral sigma in colour space (1-200)")
	fs.IntVar(&cfg.SigmaSpace, "sigma-space", cfg.SigmaSpace, "bilateral sigma in coordinate space (1-200)")
	fs.Var((*sharpenFlag)(&cfg.Sharpen), "sharpen", "sharpening method: unsharp, laplacian")
	fs.IntVar(&cfg.SharpenKernel, "sharpen-kernel", cfg.SharpenKernel, "unsharp Gaussian kernel size (1-31)")
	fs.Float64Var(&cfg.SharpenSigma, "sharpen-sigma", cfg.SharpenSigma, "unsharp Gaussian sigma")
	fs.Float64Var(&cfg.SharpenAmount, "amount", cfg.SharpenAmount, "unsharp amount (0-3)")
	fs.IntVar(&cfg.SobelKernel, "sobel-kernel", cfg.SobelKernel, "Sobel kernel size: 1, 3, 5 or 7")
	fs.IntVar(&cfg.CannyLow, "canny-low", cfg.CannyLow, "Canny lower threshold (0-255)")
	fs.IntVar(&cfg.CannyHigh, "canny-high", cfg.CannyHigh, "Canny upper threshold (0-255)")
	fs.IntVar(&cfg.MaxSide, "max-side", cfg.MaxSide, "downscale so the longer side fits (0 = off, 16-8192)")
}

func parseStages(list string) ([]pipeline.Stage, error) {
	if strings.TrimSpace(list) == "" {
		return pipeline.OutputStages, nil
	}
	var stages []pipeline.Stage
	for _, name := range strings.Split(list, ",") {
		st, err := pipeline.ParseStage(name)
		if err != nil {
			return nil, err
		}
		stages = append(stages, st)
	}
	return stages, nil
}

// runCommand implements "image-enhance run". It returns the process exit code.
func runCommand(args []string, env envConfig, logger *logrus.Logger, stdout io.Writer) int {
	cfg := env.defaults
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	bindConfigFlags(fs, &cfg)
	out := fs.String("out", ".", "output directory")
	outputs := fs.String("outputs", "", "comma-separated outputs (default: original,smoothed,sharpened,sobel,prewitt,canny)")
	backendName := fs.String("backend", env.backend, "filter backend: "+strings.Join(filter.Available(), ", "))
	jobs := fs.Int("j", runtime.NumCPU(), "images processed in parallel")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: image-enhance run [flags] <input>...")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Error("invalid parameters")
		return 2
	}
	stages, err := parseStages(*outputs)
	if err != nil {
		logger.WithError(err).Error("invalid outputs")
		return 2
	}
	backend, err := filter.Lookup(*backendName)
	if err != nil {
		logger.WithError(err).Error("unable to select filter backend")
		return 2
	}

	if _, err := outputBases(fs.Args()); err != nil {
		logger.WithError(err).Error("conflicting inputs")
		return 2
	}

	p := pipeline.New(backend, logger)
	if err := enhanceFiles(context.Background(), p, cfg, stages, fs.Args(), *out, *jobs, logger, stdout); err != nil {
		logger.WithError(err).Error("run failed")
		return 1
	}
	return 0
}

// outputBases returns the file name prefix of each input: its base name
// without extension. Two inputs sharing a prefix would overwrite each other's
// outputs, so that is an error.
func outputBases(inputs []string) ([]string, error) {
	bases := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, input := range inputs {
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		if prev, ok := seen[base]; ok {
			return nil, errors.Errorf("%s and %s both write %s_*.png", prev, input, base)
		}
		seen[base] = input
		bases[i] = base
	}
	return bases, nil
}

// enhanceFiles runs every input through p and writes the selected stages into
// dir as <input-base>_<file-name>. It stops at the first failure.
func enhanceFiles(ctx context.Context, p *pipeline.Pipeline, cfg pipeline.Config, stages []pipeline.Stage,
	inputs []string, dir string, jobs int, logger *logrus.Logger, stdout io.Writer) error {
	bases, err := outputBases(inputs)
	if err != nil {
		return err
	}
	if jobs < 1 {
		jobs = 1
	}

	results := make([][]string, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			data, err := os.ReadFile(input)
			if err != nil {
				return errors.Wrapf(err, "read %s", input)
			}
			res, err := p.Process(data, cfg)
			if err != nil {
				return errors.Wrap(err, input)
			}
			artifacts, err := res.Export(ctx, stages...)
			if err != nil {
				return errors.Wrap(err, input)
			}

			paths, err := pipeline.WriteDir(dir, bases[i], artifacts)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"input":  input,
				"width":  res.Width(),
				"height": res.Height(),
				"files":  len(paths),
			}).Info("enhanced image")
			results[i] = paths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, paths := range results {
		for _, path := range paths {
			fmt.Fprintln(stdout, path)
		}
	}
	return nil
}

// planCommand implements "image-enhance plan". It returns the process exit code.
func planCommand(args []string, env envConfig, stdout io.Writer) int {
	cfg := env.defaults
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	bindConfigFlags(fs, &cfg)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: image-enhance plan [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := pipeline.WriteDOT(stdout, cfg); err != nil {
		fmt.Fprintf(fs.Output(), "image-enhance: %v\n", err)
		return 2
	}
	return 0
}
