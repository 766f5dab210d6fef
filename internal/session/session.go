// Package session runs the interactive easymap menu. A session checks that
// the scanner can be invoked, prints the banner and the menu, then loops:
// read a selection, explain the option, optionally run nmap with it and
// print whatever nmap wrote.
package session

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"

	"github.com/anstrom/easymap/internal/catalogue"
	"github.com/anstrom/easymap/internal/config"
	"github.com/anstrom/easymap/internal/errors"
	"github.com/anstrom/easymap/internal/logging"
	"github.com/anstrom/easymap/internal/metrics"
	"github.com/anstrom/easymap/internal/runner"
	"github.com/anstrom/easymap/internal/scanning"
)

// Prompts and messages.
const (
	msgScannerFound   = "NMAP exists [yes]"
	msgInstallPrompt  = "You do not have nmap installed. Install it? (y/n)"
	msgInstalling     = "Installing nmap..."
	msgInstallInvalid = "Invalid input. Please enter 'y' to install or 'n' to skip."

	promptMenu    = "Enter the number of the option you want to learn about (0 to exit): "
	promptConfirm = "Do you want to perform this scan? (y/n): "
	promptTarget  = "Enter the target IP: "
	promptPorts   = "Enter the port(s) (comma-separated for multiple ports or leave blank for all ports): "

	msgNotANumber = "Invalid input. Please enter a number between 0 and 20."
	msgGoodbye    = "Exiting Nmap Options Guide. Goodbye!"
	msgScanning   = "Scanning..."
)

// exitKey ends the session from the menu.
const exitKey = 0

type state int

const (
	stateAwaitingMenuChoice state = iota
	stateAwaitingScanConfirmation
	stateAwaitingScanInputs
	stateInvoking
	stateExit
)

func (s state) String() string {
	switch s {
	case stateAwaitingMenuChoice:
		return "awaiting_menu_choice"
	case stateAwaitingScanConfirmation:
		return "awaiting_scan_confirmation"
	case stateAwaitingScanInputs:
		return "awaiting_scan_inputs"
	case stateInvoking:
		return "invoking"
	case stateExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Session is one interactive run of the menu.
type Session struct {
	cfg       *config.Config
	console   *console
	presenter *Presenter
	runner    runner.Runner
	checker   *scanning.Checker
	locate    scanning.LocateFunc
	metrics   metrics.Recorder
	log       *logging.Logger
	version   string

	// Set while a selection moves through confirmation and invocation.
	selected catalogue.Option
	request  scanning.Request
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log *logging.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithMetrics sets the metrics sink. The global instance is used otherwise.
func WithMetrics(m metrics.Recorder) Option {
	return func(s *Session) { s.metrics = m }
}

// WithLocator replaces the scanner binary lookup used by the dependency check.
func WithLocator(locate scanning.LocateFunc) Option {
	return func(s *Session) { s.locate = locate }
}

// WithVersion sets the version shown under the banner.
func WithVersion(version string) Option {
	return func(s *Session) { s.version = version }
}

// New creates a session reading answers from in and writing to out.
func New(cfg *config.Config, in io.Reader, out io.Writer, r runner.Runner, opts ...Option) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Session{
		cfg:       cfg,
		console:   newConsole(in, out, cfg.Session.MessageDelay),
		presenter: NewPresenter(out),
		runner:    r,
		log:       logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.GetGlobalMetrics()
	}
	base := s.log
	s.log = base.WithComponent("session")
	s.checker = scanning.NewChecker(cfg.Scanner, r, s.locate, base)
	return s
}

// Run performs the dependency check and, when the scanner is available or
// the user accepts installation, shows the menu and runs the loop.
// Declining installation ends the session without an error.
func (s *Session) Run(ctx context.Context) error {
	ok, err := s.EnsureScannerAvailable(ctx)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Info("Scanner unavailable and installation declined")
		return nil
	}

	if s.cfg.Session.ShowBanner {
		s.presenter.Banner(s.version)
	}
	s.presenter.Menu()

	return s.Loop(ctx)
}

// EnsureScannerAvailable reports whether the session may continue.
// When the scanner cannot be invoked the user is asked whether to install it
// until they answer y or n. Installation itself is not performed.
// The error is non-nil only when ctx ends or input cannot be read.
func (s *Session) EnsureScannerAvailable(ctx context.Context) (bool, error) {
	checkErr := s.checker.Check(ctx)
	if checkErr == nil {
		s.console.println(msgScannerFound)
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.log.Info("Scanner not available", "code", errors.GetCode(checkErr), "error", checkErr)

	for {
		if err := s.console.pace(ctx, msgInstallPrompt); err != nil {
			return false, err
		}

		answer, err := s.console.readLine(ctx)
		if stderrors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "y":
			if err := s.console.pace(ctx, msgInstalling); err != nil {
				return false, err
			}
			return true, nil
		case "n":
			return false, nil
		default:
			s.console.println(msgInstallInvalid)
		}
	}
}

// Loop runs the menu state machine until the user selects 0, input ends or
// ctx is done. Only the last case returns an error.
func (s *Session) Loop(ctx context.Context) error {
	defer s.logSummary()

	st := stateAwaitingMenuChoice
	for st != stateExit {
		if err := ctx.Err(); err != nil {
			return err
		}

		next, err := s.step(ctx, st)
		if stderrors.Is(err, io.EOF) {
			s.log.Debug("Input closed", "state", st.String())
			return nil
		}
		if err != nil {
			return err
		}
		if next != st {
			s.log.Debug("State transition", "from", st.String(), "to", next.String())
		}
		st = next
	}
	return nil
}

func (s *Session) step(ctx context.Context, st state) (state, error) {
	switch st {
	case stateAwaitingMenuChoice:
		return s.awaitMenuChoice(ctx)
	case stateAwaitingScanConfirmation:
		return s.awaitScanConfirmation(ctx)
	case stateAwaitingScanInputs:
		return s.awaitScanInputs(ctx)
	case stateInvoking:
		return s.invoke(ctx)
	default:
		return stateExit, nil
	}
}

func (s *Session) awaitMenuChoice(ctx context.Context) (state, error) {
	s.console.print(promptMenu)
	line, err := s.console.readLine(ctx)
	if err != nil {
		return stateExit, err
	}

	key, ok := parseMenuChoice(line)
	if !ok {
		s.metrics.IncrementSelections(metrics.OutcomeNotNumber)
		s.console.println(msgNotANumber)
		return stateAwaitingMenuChoice, nil
	}

	if key == exitKey {
		s.metrics.IncrementSelections(metrics.OutcomeExit)
		s.console.println(msgGoodbye)
		return stateExit, nil
	}

	opt, found := s.presenter.DescribeOption(key)
	if !found {
		s.metrics.IncrementSelections(metrics.OutcomeUnknownKey)
		return stateAwaitingMenuChoice, nil
	}

	s.metrics.IncrementSelections(metrics.OutcomeOption)
	s.selected = opt
	return stateAwaitingScanConfirmation, nil
}

// Anything other than y returns to the menu without a message.
func (s *Session) awaitScanConfirmation(ctx context.Context) (state, error) {
	yes, err := s.console.askYesNo(ctx, promptConfirm)
	if err != nil {
		return stateExit, err
	}
	if !yes {
		s.selected = catalogue.Option{}
		return stateAwaitingMenuChoice, nil
	}
	return stateAwaitingScanInputs, nil
}

// Target and ports are passed to the scanner exactly as typed.
func (s *Session) awaitScanInputs(ctx context.Context) (state, error) {
	target, err := s.console.ask(ctx, promptTarget)
	if err != nil {
		return stateExit, err
	}
	ports, err := s.console.ask(ctx, promptPorts)
	if err != nil {
		return stateExit, err
	}

	s.request = scanning.NewRequest(s.selected.Flag, target, ports)
	return stateInvoking, nil
}

// invoke runs the scanner and echoes its output. The outcome never changes
// the next state.
func (s *Session) invoke(ctx context.Context) (state, error) {
	req := s.request
	s.request = scanning.Request{}
	s.selected = catalogue.Option{}

	log := s.log.WithScanID(req.ID)
	name, args := req.Command(s.cfg.Scanner)
	log.InfoScan("Starting scan", req.Target, "command", req.CommandLine(s.cfg.Scanner))

	res, runErr := s.runner.Run(ctx, name, args...)

	status := metrics.StatusCompleted
	if runErr != nil {
		status = metrics.StatusFailed
		failure := errors.ErrScanFailed(req.Target, runErr).WithContext("flag", req.Flag)
		log.ErrorScan("Scanner reported failure", req.Target, failure, "exit_code", res.ExitCode)
	} else {
		log.InfoScan("Scan finished", req.Target, "duration", res.Duration)
	}
	s.metrics.IncrementScansTotal(req.Flag, status)
	s.metrics.RecordScanDuration(req.Flag, res.Duration)

	if err := ctx.Err(); err != nil {
		return stateExit, err
	}

	if err := s.console.pace(ctx, msgScanning); err != nil {
		return stateExit, err
	}

	stderr := res.Stderr
	if runErr != nil && !res.Started() {
		stderr = runErr.Error()
	}
	s.console.println(res.Stdout)
	s.console.println(stderr)

	return stateAwaitingMenuChoice, nil
}

// The summary is raised to warn when a scan failed so it shows at the
// default log level.
func (s *Session) logSummary() {
	sum, err := s.metrics.Summary()
	if err != nil {
		s.log.Debug("Failed to gather session metrics", "error", err)
		return
	}

	level := slog.LevelInfo
	if sum.Failed > 0 {
		level = slog.LevelWarn
	}
	s.log.Log(context.Background(), level, "Session finished",
		"selections", sum.Selections,
		"scans", sum.Scans,
		"failed_scans", sum.Failed,
		"uptime", sum.Uptime)
}
