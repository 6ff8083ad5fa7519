// Package roadmapgen drives one roadmap generation end to end: prompt,
// generation service call, normalization and assembly.
package roadmapgen

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/normalize"
	"github.com/abhisek/pathwise/internal/prompt"
	"github.com/abhisek/pathwise/internal/roadmap"
)

// Purpose tags LLM request events made by the generator.
const Purpose = "roadmap-gen"

// UpstreamError indicates the generation service call itself failed.
// It never wraps a parse or validation failure.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation service failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Generator produces validated roadmaps. It is safe for concurrent use.
type Generator struct {
	provider   llm.Provider
	normalizer *normalize.Normalizer
	config     Config
	logger     *zap.Logger
}

// New creates a Generator. logger may be nil.
func New(provider llm.Provider, cfg Config, logger *zap.Logger) (*Generator, error) {
	n, err := roadmap.NewNormalizer(cfg.Limits)
	if err != nil {
		return nil, fmt.Errorf("roadmap normalizer: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{provider: provider, normalizer: n, config: cfg, logger: logger}, nil
}

// Generate builds the prompt for params, calls the generation service once
// and returns the validated nodes with their subject filled in.
//
// Errors are *prompt.ParamsError, *UpstreamError, *normalize.ParseError or
// *normalize.ValidationError. Nothing is retried here.
func (g *Generator) Generate(ctx context.Context, params prompt.Params) ([]roadmap.Node, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	p, err := prompt.Build(params, g.config.Limits)
	if err != nil {
		return nil, err
	}

	req := llm.Request{
		System: p.System,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: p.User},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	nodes, err := normalize.Decode[[]roadmap.Node](g.normalizer, resp.Text)
	if err != nil {
		g.logger.Info("generated roadmap rejected",
			zap.String("subject", params.Subject),
			zap.String("model", resp.Model),
			zap.Error(err))
		return nil, err
	}

	for i := range nodes {
		if nodes[i].Subject == "" {
			nodes[i].Subject = params.Subject
		}
	}

	if warns := roadmap.NewGraph(nodes).Warnings(); len(warns) > 0 {
		g.logger.Warn("generated roadmap has dependency problems",
			zap.String("subject", params.Subject),
			zap.Strings("warnings", warns))
	}

	g.logger.Debug("generated roadmap",
		zap.String("subject", params.Subject),
		zap.Int("nodes", len(nodes)))
	return nodes, nil
}

// Result is the outcome of one request in GenerateAll.
type Result struct {
	Params prompt.Params
	Nodes  []roadmap.Node
	Err    error
}

// GenerateAll runs one independent generation per params entry, at most
// Config.Concurrency at a time. Results are returned in input order and a
// failure in one request does not affect the others.
func (g *Generator) GenerateAll(ctx context.Context, params []prompt.Params) []Result {
	results := make([]Result, len(params))

	var eg errgroup.Group
	limit := g.config.Concurrency
	if limit <= 0 {
		limit = 1
	}
	eg.SetLimit(limit)

	for i, p := range params {
		eg.Go(func() error {
			nodes, err := g.Generate(ctx, p)
			results[i] = Result{Params: p, Nodes: nodes, Err: err}
			return nil
		})
	}
	_ = eg.Wait()

	return results
}
