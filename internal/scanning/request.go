package scanning

import (
	"strings"

	"github.com/google/uuid"

	"github.com/anstrom/easymap/internal/config"
)

// portFlag is the nmap flag that restricts the scan to specific ports.
const portFlag = "-p"

// Request is a single confirmed scan. It lives for one loop iteration.
type Request struct {
	// ID correlates log lines for this scan
	ID string
	// Flag is the catalogue flag passed verbatim to nmap
	Flag string
	// Target is the host as typed by the user, not validated
	Target string
	// Ports is an optional port list; empty means all ports
	Ports string
}

// NewRequest creates a scan request with a fresh ID.
func NewRequest(flag, target, ports string) Request {
	return Request{
		ID:     uuid.NewString(),
		Flag:   flag,
		Target: target,
		Ports:  ports,
	}
}

// Args returns the scanner arguments: flag, target and, when ports were
// given, the port flag followed by the port list.
func (r Request) Args() []string {
	args := []string{r.Flag, r.Target}
	if r.Ports != "" {
		args = append(args, portFlag, r.Ports)
	}
	return args
}

// Command returns the program to execute and its arguments. With a
// privilege command configured the scanner binary becomes its first argument.
func (r Request) Command(cfg config.ScannerConfig) (string, []string) {
	binary := cfg.Binary
	if binary == "" {
		binary = config.DefaultBinary
	}

	if cfg.PrivilegeCommand == "" {
		return binary, r.Args()
	}
	return cfg.PrivilegeCommand, append([]string{binary}, r.Args()...)
}

// CommandLine renders the command for display and logging.
func (r Request) CommandLine(cfg config.ScannerConfig) string {
	name, args := r.Command(cfg)
	return strings.Join(append([]string{name}, args...), " ")
}
