package main

import (
	"context"

	"go.uber.org/zap"
)

// Run executes the whole report: load, fetch, join, bin, render.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	bins, err := NewBins(cfg.Bins)
	if err != nil {
		return err
	}
	theme, err := cfg.Theme.Theme()
	if err != nil {
		return err
	}

	cejst, err := LoadCEJST(cfg.CEJSTPath)
	if err != nil {
		return err
	}
	logger.Info("loaded cejst tracts",
		zap.String("path", cfg.CEJSTPath),
		zap.Int("tracts", len(cejst)))

	client := NewCensusClient(cfg.Census, logger)
	race, err := client.FetchRace(ctx)
	if err != nil {
		return err
	}
	logger.Info("downloaded census tracts",
		zap.Int("year", cfg.Census.Year),
		zap.Int("tracts", len(race)))

	joined := JoinTracts(cejst, race)
	stats := ComputeStatistics(joined, bins)
	if err := stats.Validate(); err != nil {
		return err
	}
	logger.Info("computed bin statistics",
		zap.Int("joined", stats.Joined),
		zap.Int("unbinned", stats.Unbinned),
		zap.Ints("counts", stats.Counts()))

	if err := RenderChart(cfg.Output, stats, theme); err != nil {
		return err
	}
	logger.Info("wrote chart", zap.String("path", cfg.Output))

	if cfg.Workbook != "" {
		if err := WriteWorkbook(cfg.Workbook, stats, joined); err != nil {
			return err
		}
		logger.Info("wrote workbook", zap.String("path", cfg.Workbook))
	}
	if cfg.Summary != "" {
		if err := WriteSummary(cfg.Summary, NewSummary(cejst, race, joined, stats)); err != nil {
			return err
		}
		logger.Info("wrote summary", zap.String("path", cfg.Summary))
	}
	return nil
}
