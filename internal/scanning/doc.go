// Package scanning builds nmap invocations from user selections and checks
// that the nmap binary can be run at all.
//
// # Requests
//
// A Request pairs one catalogue flag with the target and port list typed by
// the user. Both are passed through verbatim: no address, hostname or port
// syntax is checked here, and malformed values surface as nmap's own
// diagnostics. The argument vector is always
//
//	<flag> <target> [-p <ports>]
//
// with -p present only when ports is non-empty. Command prefixes the vector
// with the scanner binary and, unless disabled, the privilege command:
//
//	req := scanning.NewRequest("-sS", "10.0.0.5", "80,443")
//	name, args := req.Command(cfg.Scanner)
//	// name = "sudo", args = ["nmap", "-sS", "10.0.0.5", "-p", "80,443"]
//
// Every request carries a random ID so that log lines for one invocation can
// be correlated.
//
// # Dependency check
//
// Checker answers one question: can the scanner be invoked? It first locates
// the binary through the nmap library, then runs the configured probe
// arguments (by default -V) without the privilege command. Either failure is
// reported as a *errors.ScanError with code SCANNER_MISSING or SCAN_FAILED.
// The probe output is discarded.
//
// Scan output is never parsed. Callers print stdout and stderr as they are.
package scanning
