package session

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/anstrom/easymap/internal/catalogue"
)

const (
	menuTitle     = "|EASYMAP Options Guide"
	menuSeparator = "------------------"
)

const banner = `
███████  █████  ███████ ██    ██     ███    ███  █████  ██████
██      ██   ██ ██       ██  ██      ████  ████ ██   ██ ██   ██
█████   ███████ ███████   ████       ██ ████ ██ ███████ ██████
██      ██   ██      ██    ██        ██  ██  ██ ██   ██ ██
███████ ██   ██ ███████    ██        ██      ██ ██   ██ ██
`

// Presenter renders the banner, the menu and option details.
type Presenter struct {
	out   io.Writer
	title *color.Color
}

// NewPresenter creates a presenter writing to out.
// Colour is applied only when the process writes to a terminal.
func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{
		out:   out,
		title: color.New(color.FgCyan, color.Bold),
	}
}

// Banner prints the ASCII banner followed by the version line.
func (p *Presenter) Banner(version string) {
	_, _ = p.title.Fprint(p.out, banner)
	if version != "" {
		_, _ = fmt.Fprintf(p.out, "version %s\n", version)
	}
	_, _ = fmt.Fprintln(p.out)
}

// Menu prints the numbered list of options and the exit entry.
func (p *Presenter) Menu() {
	_, _ = fmt.Fprintln(p.out, menuTitle)
	_, _ = fmt.Fprintln(p.out, menuSeparator)
	for _, opt := range catalogue.All() {
		_, _ = fmt.Fprintf(p.out, "%d. %s\n", opt.Key, opt.MenuLabel())
	}
	_, _ = fmt.Fprintln(p.out, "0. Exit")
	_, _ = fmt.Fprintln(p.out, menuSeparator)
}

// DescribeOption prints the details of the option under key and returns it.
// For an unknown key it prints a notice and returns false; that is not an error.
func (p *Presenter) DescribeOption(key int) (catalogue.Option, bool) {
	opt, ok := catalogue.Lookup(key)
	if !ok {
		_, _ = fmt.Fprintln(p.out, "Invalid option number. Please try again.")
		return catalogue.Option{}, false
	}
	p.Option(opt)
	return opt, true
}

// Option prints one option in the detail layout.
func (p *Presenter) Option(opt catalogue.Option) {
	_, _ = fmt.Fprintf(p.out, "\nOption: %s\n", opt.Flag)
	_, _ = fmt.Fprintf(p.out, "Description: %s\n", opt.Description)
	_, _ = fmt.Fprintf(p.out, "When to Use: %s\n", opt.UseCase)
	_, _ = fmt.Fprintf(p.out, "Example: %s\n\n", opt.Example)
}
