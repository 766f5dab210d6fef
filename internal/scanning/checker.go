package scanning

import (
	"context"
	stderrors "errors"

	"github.com/Ullaakut/nmap/v3"

	"github.com/anstrom/easymap/internal/config"
	"github.com/anstrom/easymap/internal/errors"
	"github.com/anstrom/easymap/internal/logging"
	"github.com/anstrom/easymap/internal/runner"
)

// LocateFunc reports whether the scanner binary can be found.
type LocateFunc func(ctx context.Context, binary string) error

// LocateNmap resolves the binary the same way the nmap library does before a
// scan: a bare name is searched on PATH, anything else is taken as given.
func LocateNmap(ctx context.Context, binary string) error {
	var opts []nmap.Option
	if binary != "" && binary != config.DefaultBinary {
		opts = append(opts, nmap.WithBinaryPath(binary))
	}
	_, err := nmap.NewScanner(ctx, opts...)
	return err
}

// Checker verifies that the scanner can be invoked before the menu is shown.
type Checker struct {
	cfg    config.ScannerConfig
	runner runner.Runner
	locate LocateFunc
	log    *logging.Logger
}

// NewChecker creates a checker. A nil locate uses LocateNmap.
func NewChecker(cfg config.ScannerConfig, r runner.Runner, locate LocateFunc, log *logging.Logger) *Checker {
	if locate == nil {
		locate = LocateNmap
	}
	if log == nil {
		log = logging.Default()
	}
	return &Checker{
		cfg:    cfg,
		runner: r,
		locate: locate,
		log:    log.WithComponent("checker"),
	}
}

// Check locates the binary and runs it once with the probe arguments.
// The probe runs without the privilege command.
func (c *Checker) Check(ctx context.Context) error {
	binary := c.cfg.Binary
	if binary == "" {
		binary = config.DefaultBinary
	}

	if err := c.locate(ctx, binary); err != nil {
		c.log.Debug("Scanner binary not found", "binary", binary, "error", err)
		if stderrors.Is(err, nmap.ErrNmapNotInstalled) {
			return errors.ErrScannerMissing(binary, err)
		}
		return errors.ErrScannerMissing(binary, err).WithOperation("locate")
	}

	if _, err := c.runner.Run(ctx, binary, c.cfg.ProbeArgs...); err != nil {
		c.log.Debug("Scanner probe failed", "binary", binary, "error", err)
		return errors.WrapScanError(errors.CodeScanFailed, "scanner probe failed", err).
			WithOperation("probe").
			WithContext("binary", binary)
	}

	c.log.Debug("Scanner available", "binary", binary)
	return nil
}
