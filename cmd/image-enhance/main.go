package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-enhance-mcp/internal/filter"
	"github.com/ironsheep/image-enhance-mcp/internal/pipeline"
	"github.com/ironsheep/image-enhance-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `image-enhance - image enhancement pipeline (MCP server and batch CLI)

Usage:
  image-enhance                       Run the MCP server on stdin/stdout
  image-enhance run [flags] <input>...  Enhance images and write PNGs
  image-enhance plan [flags]          Print the stage graph in DOT format

Options:
  --version, -v    Print version information
  --help, -h       Print this help message

Run "image-enhance run -h" for the pipeline flags.

Environment variables:
  IMAGE_ENHANCE_LOG_LEVEL=debug     Log level (debug, info, warn, error)
  IMAGE_ENHANCE_BACKEND=native      Filter backend (%s)
  IMAGE_ENHANCE_MAX_SIDE=0          Default downscale cap for the longer side

The MCP server communicates over stdin/stdout; logs go to stderr.
Configure it in your MCP client (e.g., Claude Desktop).
`

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-enhance %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Backends:   %s\n", strings.Join(filter.Available(), ", "))
			return
		case "--help", "-h", "help":
			fmt.Printf(usage, strings.Join(filter.Available(), ", "))
			return
		}
	}

	env, err := loadEnv(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "image-enhance: %v\n", err)
		os.Exit(2)
	}
	logger := initLogger(env.logLevel)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "run":
			os.Exit(runCommand(os.Args[2:], env, logger, os.Stdout))
		case "plan":
			os.Exit(planCommand(os.Args[2:], env, os.Stdout))
		default:
			fmt.Fprintf(os.Stderr, "image-enhance: unknown command %q\n\n", os.Args[1])
			fmt.Fprintf(os.Stderr, usage, strings.Join(filter.Available(), ", "))
			os.Exit(2)
		}
	}

	backend, err := filter.Lookup(env.backend)
	if err != nil {
		logger.WithError(err).Fatal("unable to select filter backend")
	}

	logger.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
		"backend": backend.Name(),
	}).Debug("starting image-enhance MCP server")

	server.Version = Version
	srv := server.New(pipeline.New(backend, logger), logger)
	if err := srv.SetDefaults(env.defaults); err != nil {
		logger.WithError(err).Fatal("invalid default configuration")
	}
	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}

// initLogger builds the process logger. Output goes to stderr because stdout
// carries the MCP protocol.
func initLogger(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)

	if level >= logrus.DebugLevel {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
