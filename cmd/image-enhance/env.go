package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-enhance-mcp/internal/pipeline"
)

// envConfig is the process configuration read from the environment.
type envConfig struct {
	logLevel logrus.Level
	backend  string
	defaults pipeline.Config
}

func loadEnv(getenv func(string) string) (envConfig, error) {
	env := envConfig{
		logLevel: logrus.InfoLevel,
		backend:  strings.TrimSpace(getenv("IMAGE_ENHANCE_BACKEND")),
		defaults: pipeline.DefaultConfig(),
	}

	if v := strings.TrimSpace(getenv("IMAGE_ENHANCE_LOG_LEVEL")); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return env, errors.Wrap(err, "IMAGE_ENHANCE_LOG_LEVEL")
		}
		env.logLevel = level
	}

	if v := strings.TrimSpace(getenv("IMAGE_ENHANCE_MAX_SIDE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return env, errors.Wrapf(err, "IMAGE_ENHANCE_MAX_SIDE=%q", v)
		}
		env.defaults.MaxSide = n
		if err := env.defaults.Validate(); err != nil {
			return env, errors.Wrap(err, "IMAGE_ENHANCE_MAX_SIDE")
		}
	}

	return env, nil
}
