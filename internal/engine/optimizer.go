package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/RebarCut/internal/model"
)

// Optimizer computes minimum-cost buy and cut plans for rebar.
type Optimizer struct {
	Options model.Options

	logger *zap.Logger
	solver lpSolver
}

// New creates an optimizer. A nil logger disables logging.
func New(opts model.Options, logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{Options: opts, logger: logger}
}

// Optimize aggregates the requirements per diameter and solves each diameter
// independently and concurrently. Either every diameter is solved or an
// *OptimizationError is returned and no plan is produced.
//
// Options.TimeBudget bounds the whole run; running out of time is reported as
// a solver error, while cancellation of ctx is reported as Cancelled.
func (o *Optimizer) Optimize(ctx context.Context, requirements []model.CutRequirement, catalog []model.StockOption) (model.CuttingPlan, error) {
	opts := o.Options.Normalize()
	start := time.Now()

	catalog, err := PrepareCatalog(catalog)
	if err != nil {
		o.logger.Warn("invalid catalog", zap.String("op", "aggregate"), zap.Error(err))
		return model.CuttingPlan{}, err
	}
	if !opts.AllowCustomStock {
		catalog = marketOnly(catalog)
	}

	demand, err := Aggregate(requirements, catalog)
	if err != nil {
		o.logger.Warn("invalid demand", zap.String("op", "aggregate"), zap.Error(err))
		return model.CuttingPlan{}, err
	}

	diameters := make([]model.Diameter, 0, len(demand))
	for d := range demand {
		diameters = append(diameters, d)
	}
	model.SortDiameters(diameters)

	runCtx := ctx
	if opts.TimeBudget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.TimeBudget)
		defer cancel()
	}

	plans := make([]model.DiameterPlan, len(diameters))
	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(opts.Workers)
	for i, dia := range diameters {
		g.Go(func() error {
			plan, err := o.optimizeDiameter(gctx, opts, demand[dia], stocksFor(catalog, dia))
			if err != nil {
				return err
			}
			plans[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		err = classify(ctx, err)
		o.logger.Error("optimization failed", zap.String("op", "optimize"), zap.Error(err))
		return model.CuttingPlan{}, err
	}

	plan := model.CuttingPlan{Diameters: plans}
	o.logger.Info("optimization complete",
		zap.String("op", "optimize"),
		zap.Int("diameters", len(plans)),
		zap.Int("bars", plan.TotalBars()),
		zap.Float64("cost", plan.TotalCost()),
		zap.Float64("lower_bound", plan.LowerBound()),
		zap.Float64("waste_percent", plan.WastePercent()),
		zap.Duration("elapsed", time.Since(start)))
	return plan, nil
}

// optimizeDiameter runs the generate, solve, round and reconstruct pipeline
// for one diameter.
func (o *Optimizer) optimizeDiameter(ctx context.Context, opts model.Options, lines []model.DemandLine, stocks []model.StockOption) (model.DiameterPlan, error) {
	dia := diameterOf(lines)
	log := o.logger.With(zap.String("diameter", string(dia)))
	m := newMaster(opts, o.solver, log)

	relaxed, err := relaxDiameter(ctx, m, opts, lines, stocks, log)
	if err != nil {
		return model.DiameterPlan{}, err
	}

	if err := checkContext(ctx, dia); err != nil {
		return model.DiameterPlan{}, err
	}
	sol, err := Integerize(ctx, relaxed, lines, stocks, opts)
	if err != nil {
		return model.DiameterPlan{}, err
	}
	if opts.ResidualPasses > 0 {
		sol, err = improveResidual(ctx, m, opts, relaxed, lines, stocks, sol, log)
		if err != nil {
			return model.DiameterPlan{}, err
		}
	}

	plan := Reconstruct(dia, sol, lines, stocks, opts)
	plan.LowerBound = relaxed.Cost
	log.Debug("diameter solved",
		zap.String("op", "optimize_diameter"),
		zap.Int("bars", plan.BarsPurchased()),
		zap.Float64("cost", plan.TotalCost),
		zap.Float64("lower_bound", relaxed.Cost),
		zap.Int("surplus_pieces", plan.SurplusPieces))
	return plan, nil
}

// relaxDiameter produces the patterns of one diameter with the configured
// strategy and solves the LP relaxation over them.
func relaxDiameter(ctx context.Context, m *master, opts model.Options, lines []model.DemandLine, stocks []model.StockOption, log *zap.Logger) (LPSolution, error) {
	var patterns []model.Pattern
	var err error
	if opts.Strategy != model.StrategyColumn {
		patterns, err = Generate(ctx, lines, stocks, opts)
	}
	if opts.Strategy == model.StrategyColumn || errors.Is(err, errPatternLimit) {
		log.Debug("using column generation",
			zap.String("op", "generate"),
			zap.String("strategy", string(opts.Strategy)),
			zap.Int("max_patterns", opts.MaxPatterns))
		patterns, err = m.generateColumns(ctx, lines, stocks)
	}
	if err != nil {
		return LPSolution{}, err
	}
	log.Debug("patterns ready", zap.String("op", "generate"), zap.Int("patterns", len(patterns)))

	return m.solve(ctx, patterns, lines, stocks)
}

// marketOnly drops custom stock options.
func marketOnly(catalog []model.StockOption) []model.StockOption {
	out := make([]model.StockOption, 0, len(catalog))
	for _, s := range catalog {
		if !s.Custom {
			out = append(out, s)
		}
	}
	return out
}
