package services

import (
	"fmt"

	"github.com/salary-parser/app/config"
	"github.com/salary-parser/internal/external"
	"github.com/salary-parser/internal/extractor"
	"github.com/salary-parser/internal/location"
	"github.com/salary-parser/internal/normalizer"
	"github.com/salary-parser/internal/parser"
	"go.uber.org/zap"
)

// BuildParser loads the source table, phrase tables and gazetteer and
// assembles the parsing pipeline both binaries share.
func BuildParser(cfg config.ParserCfg, logger *zap.Logger) (*parser.PostParser, *location.Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry, err := extractor.LoadRegistry(cfg.SourcesPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("load sources: %w", err)
	}
	tables, err := normalizer.LoadTables()
	if err != nil {
		return nil, nil, fmt.Errorf("load phrase tables: %w", err)
	}

	var hinter external.CityHinter
	if cfg.Location.UseLibpostal {
		if hinter = external.NewCityHinter(); hinter == nil {
			logger.Warn("libpostal requested but not compiled in; build with -tags libpostal")
		}
	}
	resolver, err := location.NewResolver(cfg.LocationOptions(), hinter, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("load gazetteer: %w", err)
	}

	norm := normalizer.NewNormalizer(tables, cfg.NormalizerOptions(), logger)
	p := parser.NewPostParser(registry, norm, resolver, cfg.ParserOptions(), logger)
	logger.Info("parser ready",
		zap.Strings("sources", registry.IDs()),
		zap.String("tables_version", p.TablesVersion()))
	return p, resolver, nil
}
