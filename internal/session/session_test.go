package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Ullaakut/nmap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anstrom/easymap/internal/config"
	"github.com/anstrom/easymap/internal/errors"
	"github.com/anstrom/easymap/internal/logging"
	"github.com/anstrom/easymap/internal/metrics"
	"github.com/anstrom/easymap/internal/runner"
	"github.com/anstrom/easymap/internal/runner/mocks"
	"github.com/anstrom/easymap/internal/scanning"
)

type harness struct {
	session *Session
	runner  *mocks.MockRunner
	metrics *metrics.PrometheusMetrics
	out     *bytes.Buffer
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Session.MessageDelay = 0
	cfg.Session.ShowBanner = false
	return cfg
}

func newHarness(t *testing.T, cfg *config.Config, input string, locate scanning.LocateFunc) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	r := mocks.NewMockRunner(ctrl)
	pm := metrics.NewPrometheusMetrics()
	out := &bytes.Buffer{}

	if locate == nil {
		locate = func(context.Context, string) error { return nil }
	}

	s := New(cfg, strings.NewReader(input), out, r,
		WithLogger(logging.Discard()),
		WithMetrics(pm),
		WithLocator(locate),
		WithVersion("test"),
	)
	return &harness{session: s, runner: r, metrics: pm, out: out}
}

func (h *harness) expectProbe() *gomock.Call {
	return h.runner.EXPECT().Run(gomock.Any(), "nmap", "-V").Return(runner.Result{Stdout: "Nmap version 7.95"}, nil)
}

func notInstalled(context.Context, string) error { return nmap.ErrNmapNotInstalled }

func lines(in ...string) string {
	return strings.Join(in, "\n") + "\n"
}

func TestRun_PingScanWithoutPorts(t *testing.T) {
	h := newHarness(t, testConfig(), lines("1", "y", "10.0.0.5", "", "0"), nil)
	gomock.InOrder(
		h.expectProbe(),
		h.runner.EXPECT().Run(gomock.Any(), "sudo", "nmap", "-sP", "10.0.0.5").
			Return(runner.Result{Stdout: "Host is up (0.0010s latency).", ExitCode: 0}, nil),
	)

	require.NoError(t, h.session.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, msgScannerFound)
	assert.Contains(t, out, menuTitle)
	assert.Contains(t, out, "Option: -sP")
	assert.Contains(t, out, "When to Use: Use when you want to discover live hosts")
	assert.Contains(t, out, promptConfirm)
	assert.Contains(t, out, promptTarget)
	assert.Contains(t, out, promptPorts)
	assert.Contains(t, out, msgScanning)
	assert.Contains(t, out, "Host is up (0.0010s latency).")
	assert.True(t, strings.HasSuffix(out, msgGoodbye+"\n"))

	assert.Less(t, strings.Index(out, msgScanning), strings.Index(out, "Host is up"),
		"scan output follows the scanning message")
}

func TestRun_ScriptScanWithPort(t *testing.T) {
	h := newHarness(t, testConfig(), lines("14", "y", "10.0.0.5", "80", "0"), nil)
	gomock.InOrder(
		h.expectProbe(),
		h.runner.EXPECT().Run(gomock.Any(), "sudo", "nmap", "--script", "10.0.0.5", "-p", "80").
			Return(runner.Result{}, nil),
	)

	require.NoError(t, h.session.Run(context.Background()))
	assert.Contains(t, h.out.String(), "Option: --script")
}

func TestRun_PortListPassedAsOneArgument(t *testing.T) {
	h := newHarness(t, testConfig(), lines("2", "Y", "scanme.example", "80,443", "0"), nil)
	gomock.InOrder(
		h.expectProbe(),
		h.runner.EXPECT().Run(gomock.Any(), "sudo", "nmap", "-sS", "scanme.example", "-p", "80,443").
			Return(runner.Result{}, nil),
	)

	require.NoError(t, h.session.Run(context.Background()))
}

func TestRun_WithoutPrivilegeCommand(t *testing.T) {
	cfg := testConfig()
	cfg.Scanner.PrivilegeCommand = ""
	h := newHarness(t, cfg, lines("4", "y", "10.0.0.5", "", "0"), nil)
	gomock.InOrder(
		h.expectProbe(),
		h.runner.EXPECT().Run(gomock.Any(), "nmap", "-sV", "10.0.0.5").Return(runner.Result{}, nil),
	)

	require.NoError(t, h.session.Run(context.Background()))
}

func TestRun_ScannerMissingDeclined(t *testing.T) {
	h := newHarness(t, testConfig(), lines("n", "1", "y"), notInstalled)

	require.NoError(t, h.session.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, msgInstallPrompt)
	assert.NotContains(t, out, msgScannerFound)
	assert.NotContains(t, out, menuTitle)
	assert.NotContains(t, out, promptMenu)
}

func TestRun_ScannerMissingGarbageThenAccept(t *testing.T) {
	h := newHarness(t, testConfig(), lines("maybe", "y", "0"), notInstalled)

	require.NoError(t, h.session.Run(context.Background()))

	out := h.out.String()
	assert.Equal(t, 1, strings.Count(out, msgInstallInvalid))
	assert.Equal(t, 2, strings.Count(out, msgInstallPrompt))
	assert.Contains(t, out, msgInstalling)
	assert.Contains(t, out, menuTitle)
	assert.Contains(t, out, msgGoodbye)
}

func TestRun_ProbeFailureTriggersInstallPrompt(t *testing.T) {
	h := newHarness(t, testConfig(), lines("N"), nil)
	h.runner.EXPECT().Run(gomock.Any(), "nmap", "-V").
		Return(runner.Result{ExitCode: 127}, fmt.Errorf("exit status 127"))

	require.NoError(t, h.session.Run(context.Background()))
	assert.Contains(t, h.out.String(), msgInstallPrompt)
	assert.NotContains(t, h.out.String(), menuTitle)
}

func TestRun_InstallPromptInputClosed(t *testing.T) {
	h := newHarness(t, testConfig(), "", notInstalled)

	ok, err := h.session.EnsureScannerAvailable(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRun_BannerShownWhenEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Session.ShowBanner = true
	h := newHarness(t, cfg, lines("0"), nil)
	h.expectProbe()

	require.NoError(t, h.session.Run(context.Background()))
	out := h.out.String()
	assert.Contains(t, out, "version test")
	assert.Less(t, strings.Index(out, "version test"), strings.Index(out, menuTitle))
}

func TestLoop_InvalidInputs(t *testing.T) {
	const invalidKey = "Invalid option number. Please try again."

	tests := []struct {
		name       string
		input      string
		notNumbers int
		unknown    int
	}{
		{"not a number", lines("abc", "0"), 1, 0},
		{"empty line", lines("", "0"), 1, 0},
		{"decimal", lines("1.5", "0"), 1, 0},
		{"above range", lines("21", "0"), 0, 1},
		{"negative", lines("-3", "0"), 0, 1},
		{"mixed", lines("x", "99", "y", "-1", "0"), 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testConfig(), tt.input, nil)

			require.NoError(t, h.session.Loop(context.Background()))

			out := h.out.String()
			assert.Equal(t, tt.notNumbers, strings.Count(out, msgNotANumber))
			assert.Equal(t, tt.unknown, strings.Count(out, invalidKey))
			assert.Equal(t, tt.notNumbers+tt.unknown+1, strings.Count(out, promptMenu))
			assert.NotContains(t, out, promptConfirm)
			assert.Contains(t, out, msgGoodbye)

			sum, err := h.metrics.Summary()
			require.NoError(t, err)
			assert.Equal(t, tt.notNumbers+tt.unknown+1, sum.Selections)
			assert.Zero(t, sum.Scans)
		})
	}
}

func TestLoop_ConfirmationDeclined(t *testing.T) {
	for _, answer := range []string{"n", "yes", "", "maybe"} {
		t.Run("answer "+answer, func(t *testing.T) {
			h := newHarness(t, testConfig(), lines("3", answer, "0"), nil)

			require.NoError(t, h.session.Loop(context.Background()))

			out := h.out.String()
			assert.Contains(t, out, "Option: -sU")
			assert.NotContains(t, out, promptTarget)
			assert.NotContains(t, out, msgScanning)
			assert.Equal(t, 2, strings.Count(out, promptMenu))
		})
	}
}

func TestLoop_SharedFlagOptions(t *testing.T) {
	h := newHarness(t, testConfig(), lines("5", "y", "host", "", "16", "y", "host", "", "0"), nil)
	h.runner.EXPECT().Run(gomock.Any(), "sudo", "nmap", "-O", "host").Return(runner.Result{}, nil).Times(2)

	require.NoError(t, h.session.Loop(context.Background()))
	assert.Equal(t, 2, strings.Count(h.out.String(), "Option: -O"))
}

func TestLoop_InputEnds(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no input", ""},
		{"at confirmation", lines("1")},
		{"at target", lines("1", "y")},
		{"at ports", lines("1", "y", "10.0.0.5")},
		{"without trailing newline", "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testConfig(), tt.input, nil)

			require.NoError(t, h.session.Loop(context.Background()))
			assert.NotContains(t, h.out.String(), msgGoodbye)
		})
	}
}

func TestLoop_ScannerFailureKeepsLoopRunning(t *testing.T) {
	h := newHarness(t, testConfig(), lines("8", "y", "10.0.0.5", "", "0"), nil)
	h.runner.EXPECT().Run(gomock.Any(), "sudo", "nmap", "-T1", "10.0.0.5").
		Return(runner.Result{Stderr: "Failed to resolve host", ExitCode: 1},
			errors.ErrScanFailed("10.0.0.5", fmt.Errorf("exit status 1")))

	require.NoError(t, h.session.Loop(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Failed to resolve host")
	assert.NotContains(t, out, "exit status 1")
	assert.Contains(t, out, msgGoodbye)

	sum, err := h.metrics.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Scans)
	assert.Equal(t, 1, sum.Failed)
}

func TestLoop_ScannerNotStartedPrintsError(t *testing.T) {
	h := newHarness(t, testConfig(), lines("1", "y", "10.0.0.5", "", "0"), nil)
	h.runner.EXPECT().Run(gomock.Any(), "sudo", "nmap", "-sP", "10.0.0.5").
		Return(runner.Result{ExitCode: runner.NotStarted}, fmt.Errorf("exec: \"sudo\": executable file not found in $PATH"))

	require.NoError(t, h.session.Loop(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "executable file not found")
	assert.Less(t, strings.Index(out, msgScanning), strings.Index(out, "executable file not found"))
	assert.Contains(t, out, msgGoodbye)
}

func TestLoop_StdoutBeforeStderr(t *testing.T) {
	h := newHarness(t, testConfig(), lines("1", "y", "10.0.0.5", "", "0"), nil)
	h.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(runner.Result{Stdout: "standard output", Stderr: "standard error"}, nil)

	require.NoError(t, h.session.Loop(context.Background()))

	out := h.out.String()
	assert.Less(t, strings.Index(out, "standard output"), strings.Index(out, "standard error"))
}

func TestLoop_ContextCanceled(t *testing.T) {
	h := newHarness(t, testConfig(), lines("1"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.session.Loop(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, h.out.String(), promptMenu)
}

// cancelingRunner cancels the session context while the scan is running.
type cancelingRunner struct {
	cancel context.CancelFunc
	calls  int
}

func (r *cancelingRunner) Run(ctx context.Context, _ string, _ ...string) (runner.Result, error) {
	r.calls++
	r.cancel()
	return runner.Result{ExitCode: -1}, errors.WrapScanError(errors.CodeCanceled, "command canceled", ctx.Err())
}

func TestLoop_CanceledDuringScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &cancelingRunner{cancel: cancel}
	out := &bytes.Buffer{}

	s := New(testConfig(), strings.NewReader(lines("1", "y", "10.0.0.5", "", "0")), out, r,
		WithLogger(logging.Discard()),
		WithMetrics(metrics.NewPrometheusMetrics()),
		WithLocator(func(context.Context, string) error { return nil }),
	)

	err := s.Loop(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, r.calls)
	assert.NotContains(t, out.String(), msgScanning)
	assert.NotContains(t, out.String(), msgGoodbye)
}

func TestParseMenuChoice(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"0", 0, true},
		{"7", 7, true},
		{" 20 ", 20, true},
		{"-3", -3, true},
		{"21", 21, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
		{"1 2", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseMenuChoice(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConsolePace(t *testing.T) {
	t.Run("waits for delay", func(t *testing.T) {
		out := &bytes.Buffer{}
		c := newConsole(strings.NewReader(""), out, 20*time.Millisecond)

		start := time.Now()
		require.NoError(t, c.pace(context.Background(), "hello"))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
		assert.Equal(t, "hello\n", out.String())
	})

	t.Run("canceled early", func(t *testing.T) {
		c := newConsole(strings.NewReader(""), io.Discard, time.Hour)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, c.pace(ctx, "hello"), context.Canceled)
	})
}

func TestConsoleReadLine(t *testing.T) {
	c := newConsole(strings.NewReader("  spaced  \r\nnext"), io.Discard, 0)

	ctx := context.Background()

	line, err := c.readLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "spaced", line)

	line, err = c.readLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "next", line)

	_, err = c.readLine(ctx)
	assert.ErrorIs(t, err, io.EOF)

	_, err = c.readLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestConsoleReadLine_CanceledWhileBlocked(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	c := newConsole(pr, io.Discard, 0)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := c.readLine(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// waitForLoop fails the test when the session does not return in time.
func waitForLoop(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("session did not return after cancellation")
		return nil
	}
}

func TestLoop_CanceledAtMenuPrompt(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	out := &bytes.Buffer{}
	s := New(testConfig(), pr, out, mocks.NewMockRunner(gomock.NewController(t)),
		WithLogger(logging.Discard()),
		WithMetrics(metrics.NewPrometheusMetrics()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Loop(ctx) }()

	// The write returns once the input reader is running.
	_, err := pw.Write([]byte("abc\n"))
	require.NoError(t, err)
	cancel()

	assert.ErrorIs(t, waitForLoop(t, done), context.Canceled)
	assert.Contains(t, out.String(), promptMenu)
	assert.NotContains(t, out.String(), msgGoodbye)
}

func TestRun_CanceledAtInstallPrompt(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	s := New(testConfig(), pr, io.Discard, mocks.NewMockRunner(gomock.NewController(t)),
		WithLogger(logging.Discard()),
		WithMetrics(metrics.NewPrometheusMetrics()),
		WithLocator(notInstalled),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	_, err := pw.Write([]byte("maybe\n"))
	require.NoError(t, err)
	cancel()

	assert.ErrorIs(t, waitForLoop(t, done), context.Canceled)
}

func TestLoop_LongLines(t *testing.T) {
	long := strings.Repeat("x", 70*1024)

	t.Run("menu answer", func(t *testing.T) {
		h := newHarness(t, testConfig(), lines(long, "0"), nil)

		require.NoError(t, h.session.Loop(context.Background()))
		assert.Equal(t, 1, strings.Count(h.out.String(), msgNotANumber))
		assert.Contains(t, h.out.String(), msgGoodbye)
	})

	t.Run("target", func(t *testing.T) {
		target := strings.Repeat("a", 70*1024)
		h := newHarness(t, testConfig(), lines("1", "y", target, "", "0"), nil)
		h.runner.EXPECT().Run(gomock.Any(), "sudo", "nmap", "-sP", target).
			Return(runner.Result{Stderr: "Failed to resolve"}, nil)

		require.NoError(t, h.session.Loop(context.Background()))
		assert.Contains(t, h.out.String(), msgGoodbye)
	})
}

func TestLoop_SummaryLevel(t *testing.T) {
	tests := []struct {
		name    string
		runErr  error
		visible bool
	}{
		{"all scans completed", nil, false},
		{"a scan failed", fmt.Errorf("exit status 1"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mocks.NewMockRunner(gomock.NewController(t))
			r.EXPECT().Run(gomock.Any(), "sudo", "nmap", "-sP", "10.0.0.5").
				Return(runner.Result{ExitCode: 1}, tt.runErr)

			var logs bytes.Buffer
			log := logging.NewWithWriter(logging.DefaultConfig(), &logs)
			s := New(testConfig(), strings.NewReader(lines("1", "y", "10.0.0.5", "", "0")), io.Discard, r,
				WithLogger(log),
				WithMetrics(metrics.NewPrometheusMetrics()),
			)

			require.NoError(t, s.Loop(context.Background()))
			assert.Equal(t, tt.visible, strings.Contains(logs.String(), "Session finished"))
			if tt.visible {
				assert.Contains(t, logs.String(), "failed_scans=1")
			}
		})
	}
}
