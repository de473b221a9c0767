package reconciler

import (
	"context"
	"fmt"

	"golang-backoffice-converter/internal/table"
	"golang-backoffice-converter/pkg/logger"
)

// Config holds configuration options for the reconciliation service
type Config struct {
	Coercion Coercion
	// Number of unmatched rows echoed at debug level
	LogPreviewRows int
}

// DefaultConfig returns a default configuration for the reconciliation service
func DefaultConfig() *Config {
	return &Config{
		Coercion:       DefaultCoercion(),
		LogPreviewRows: 5,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.LogPreviewRows < 0 {
		return fmt.Errorf("log preview rows cannot be negative, got %d", c.LogPreviewRows)
	}
	return nil
}

// Service runs reconciliations and logs their outcome
type Service struct {
	config *Config
	logger logger.Logger
}

// NewService creates a reconciliation service
func NewService(config *Config, log logger.Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	return &Service{
		config: config,
		logger: log.WithComponent("reconciler"),
	}, nil
}

// Reconcile compares a and b. The context is only checked before work
// starts; the comparison itself runs to completion.
func (s *Service) Reconcile(ctx context.Context, a, b *table.Table) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.WithFields(logger.Fields{
		"rows_a":  a.Len(),
		"rows_b":  b.Len(),
		"columns": a.Width(),
	}).Debug("Starting reconciliation")

	result, err := ReconcileWith(a, b, s.config.Coercion)
	if err != nil {
		s.logger.WithError(err).Error("Reconciliation failed")
		return nil, err
	}

	summary := result.Summary()
	s.logger.WithFields(logger.Fields{
		"rows_a":    summary.RowsA,
		"rows_b":    summary.RowsB,
		"matched":   summary.Matched,
		"only_in_a": summary.OnlyInA,
		"only_in_b": summary.OnlyInB,
		"duration":  summary.Duration.String(),
	}).Info("Reconciliation completed")

	for i, rec := range result.OnlyInA.Head(s.config.LogPreviewRows).Records()[1:] {
		s.logger.WithField("row", i).Debugf("only in A: %v", rec)
	}
	for i, rec := range result.OnlyInB.Head(s.config.LogPreviewRows).Records()[1:] {
		s.logger.WithField("row", i).Debugf("only in B: %v", rec)
	}

	return result, nil
}
