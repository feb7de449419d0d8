// Package service ties the pipeline together: read the statement, load the
// mappings, resolve every record, write the bookkeeping CSV.
package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/xinyuanma/Bankstatements2iCost/pkg/config"
	"github.com/xinyuanma/Bankstatements2iCost/pkg/engine"
	"github.com/xinyuanma/Bankstatements2iCost/pkg/icost"
	"github.com/xinyuanma/Bankstatements2iCost/pkg/mappings"
	"github.com/xinyuanma/Bankstatements2iCost/pkg/models"
	"github.com/xinyuanma/Bankstatements2iCost/pkg/statement"
)

type Processor struct {
	config *config.Config
	logger *log.Logger
}

func NewProcessor(config *config.Config, logger *log.Logger) *Processor {
	return &Processor{
		config: config,
		logger: logger,
	}
}

// Process runs one conversion end to end.
func (p *Processor) Process() error {
	in, err := os.Open(p.config.InputPath)
	if err != nil {
		return fmt.Errorf("failed to open statement: %w", err)
	}
	defer in.Close()

	records, err := statement.New(p.logger).Read(in)
	if err != nil {
		return fmt.Errorf("failed to parse statement %s: %w", p.config.InputPath, err)
	}

	cfg, err := mappings.Load(p.config.MappingsPath)
	if err != nil {
		return err
	}
	if cfg == nil {
		p.logger.Warn("mappings file not found, converting with built-in fallbacks only",
			"path", p.config.MappingsPath)
	}
	cfg = cfg.ApplyOverrides(p.config.DefaultAccount1, p.config.DefaultCurrency)

	rows := make([]models.Fields, 0, len(records))
	for _, rec := range records {
		out := engine.Initialize(rec)
		out = engine.Apply(out, rec, cfg)
		rows = append(rows, out)
	}

	if dir := filepath.Dir(p.config.OutputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.Create(p.config.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if err := icost.Write(out, rows); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	p.logger.Info("wrote converted statement", "rows", len(rows), "output", p.config.OutputPath)
	return nil
}
