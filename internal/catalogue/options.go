package catalogue

// options is the literal catalogue. Keys 5 and 16 both use -O; the second
// entry describes the IP protocol scan and is kept as published.
var options = []Option{
	{
		Key:         1,
		Flag:        "-sP",
		Description: "Ping Scan - Determines which hosts are up.",
		UseCase:     "Use when you want to discover live hosts without scanning for open ports.",
		Example:     "nmap -sP 192.168.1.0/24",
	},
	{
		Key:         2,
		Flag:        "-sS",
		Description: "TCP SYN Scan - Fast and stealthy scan.",
		UseCase:     "Use for fast and stealthy scans on large networks or to avoid detection by firewalls.",
		Example:     "nmap -sS 192.168.1.1",
	},
	{
		Key:         3,
		Flag:        "-sU",
		Description: "UDP Scan - Scans for open UDP ports.",
		UseCase:     "Use to discover open UDP ports, though it is slower and more resource-intensive.",
		Example:     "nmap -sU 192.168.1.1",
	},
	{
		Key:         4,
		Flag:        "-sV",
		Description: "Version Detection - Determines service version.",
		UseCase:     "Use to identify the version of services running on open ports.",
		Example:     "nmap -sV 192.168.1.1",
	},
	{
		Key:         5,
		Flag:        "-O",
		Description: "OS Detection - Identifies the operating system.",
		UseCase:     "Use to determine the OS running on a host for tailored attacks or defenses.",
		Example:     "nmap -O 192.168.1.1",
	},
	{
		Key:         6,
		Flag:        "-A",
		Description: "Aggressive Scan - Comprehensive scan including OS detection and more.",
		UseCase: "Use for a detailed scan including OS detection, version detection, and script scanning. " +
			"This scan is more intrusive.",
		Example: "nmap -A 192.168.1.1",
	},
	{
		Key:         7,
		Flag:        "-T0",
		Description: "Paranoid Timing Template - Very slow scan speed.",
		UseCase:     "Use when you want to avoid detection and have plenty of time for the scan.",
		Example:     "nmap -T0 192.168.1.1",
	},
	{
		Key:         8,
		Flag:        "-T1",
		Description: "Sneaky Timing Template - Slower scan speed.",
		UseCase:     "Use when you want to slow down the scan to reduce network traffic and increase stealth.",
		Example:     "nmap -T1 192.168.1.1",
	},
	{
		Key:         9,
		Flag:        "-T2",
		Description: "Polite Timing Template - Normal scan speed.",
		UseCase:     "Use as a default timing template for normal network scanning.",
		Example:     "nmap -T2 192.168.1.1",
	},
	{
		Key:         10,
		Flag:        "-T3",
		Description: "Normal Timing Template - Faster scan speed.",
		UseCase:     "Use when you want a faster scan but still want to avoid causing too much network disruption.",
		Example:     "nmap -T3 192.168.1.1",
	},
	{
		Key:         11,
		Flag:        "-T4",
		Description: "Aggressive Timing Template - Faster scan speed.",
		UseCase:     "Use for faster scans where speed is prioritized over stealth.",
		Example:     "nmap -T4 192.168.1.1",
	},
	{
		Key:         12,
		Flag:        "-T5",
		Description: "Insane Timing Template - Very fast scan speed.",
		UseCase:     "Use when you need the fastest scan possible, even if it may cause significant network disruption.",
		Example:     "nmap -T5 192.168.1.1",
	},
	{
		Key:         13,
		Flag:        "-p",
		Description: "Port Specification - Scans specific ports.",
		UseCase:     "Use to scan specific ports, useful for targeting known services or reducing scan time.",
		Example:     "nmap -p 80,443 192.168.1.1",
	},
	{
		Key:         14,
		Flag:        "--script",
		Description: "Script Scan - Runs specific Nmap scripts.",
		UseCase:     "Use to run specific Nmap scripts for vulnerability checks, service enumeration, and more.",
		Example:     "nmap --script=vuln 192.168.1.1",
	},
	{
		Key:         15,
		Flag:        "-oN",
		Description: "Output Normal - Saves scan results to a file.",
		UseCase:     "Use to save scan results in a human-readable format for documentation and analysis.",
		Example:     "nmap -oN scan_results.txt 192.168.1.1",
	},
	{
		Key:  16,
		Flag: "-O",
		Description: "IP Protocol Scan - Determines which IP protocols (TCP, UDP, ICMP, etc.) " +
			"are supported by hosts.",
		UseCase: "Use when you need to determine which IP protocols are supported by hosts on a network.",
		Example: "nmap -O 192.168.1.1",
	},
	{
		Key:         17,
		Flag:        "-sC",
		Description: "Default Script Scan - Runs a default set of Nmap scripts.",
		UseCase: "Use when you want to run the default set of Nmap scripts for basic service enumeration " +
			"and vulnerability detection.",
		Example: "nmap -sC 192.168.1.1",
	},
	{
		Key:         18,
		Flag:        "-sW",
		Description: "TCP Window Scan - Determines open ports by examining TCP window size.",
		UseCase:     "Use when you want to detect open ports by analyzing TCP window size.",
		Example:     "nmap -sW 192.168.1.1",
	},
	{
		Key:         19,
		Flag:        "-sN",
		Description: "TCP Null Scan - Attempts to open a TCP connection without setting any flags.",
		UseCase: "Use when you want to test how firewalls or intrusion detection systems (IDS) handle " +
			"TCP connections with no flags set.",
		Example: "nmap -sN 192.168.1.1",
	},
	{
		Key:         20,
		Flag:        "-sF",
		Description: "TCP FIN Scan - Attempts to open a TCP connection by sending a TCP FIN flag.",
		UseCase: "Use when you want to test how firewalls or IDS handle TCP connections closed by " +
			"sending a TCP FIN flag.",
		Example: "nmap -sF 192.168.1.1",
	},
}
