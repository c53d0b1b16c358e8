package pipeline

import (
	"time"

	"github.com/pep299/american-standard/internal/config"
)

// Options are the generation tunables
type Options struct {
	TopicCount    int
	MaxArticles   int
	BatchSize     int
	BatchDelay    time.Duration
	FactCheckTopK int // 0 disables FACT_CHECK
	WordTarget    string
}

// DefaultOptions mirrors config.DefaultPipeline
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultPipeline())
}

// OptionsFromConfig converts the loaded configuration
func OptionsFromConfig(c config.PipelineConfig) Options {
	return Options{
		TopicCount:    c.TopicCount,
		MaxArticles:   c.MaxArticles,
		BatchSize:     c.BatchSize,
		BatchDelay:    time.Duration(c.BatchDelayMS) * time.Millisecond,
		FactCheckTopK: c.FactCheckTopK,
		WordTarget:    c.WordTarget,
	}
}

func (o Options) normalized() Options {
	if o.TopicCount < 1 {
		o.TopicCount = 10
	}
	if o.MaxArticles < 1 {
		o.MaxArticles = 8
	}
	if o.BatchSize < 1 {
		o.BatchSize = 3
	}
	if o.BatchDelay < 0 {
		o.BatchDelay = 0
	}
	if o.FactCheckTopK < 0 {
		o.FactCheckTopK = 0
	}
	if o.WordTarget == "" {
		o.WordTarget = "350-500"
	}
	return o
}
