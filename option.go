package gatepass

import (
	"github.com/ikeenlabs/gatepass/logger"
	"github.com/ikeenlabs/gatepass/metrics"
)

type Option func(*Gate)

func WithLogger(l logger.Logger) Option {
	return func(g *Gate) {
		g.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(g *Gate) {
		g.metrics = r
	}
}
