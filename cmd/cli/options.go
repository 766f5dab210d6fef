package cli

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/anstrom/easymap/internal/catalogue"
	"github.com/anstrom/easymap/internal/session"
)

// optionsCmd represents the options command.
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Browse the nmap option catalogue",
	Long: `Print the catalogue of nmap options without starting the interactive
menu. Nothing is scanned.`,
	Example: `  easymap options list
  easymap options show 14`,
}

// optionsListCmd represents the options list command.
var optionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all options",
	Args:  cobra.NoArgs,
	RunE:  runOptionsList,
}

// optionsShowCmd represents the options show command.
var optionsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show details of one option",
	Long: `Display the description, typical use and an example command for the
option with the given menu number.`,
	Args: cobra.ExactArgs(1),
	RunE: runOptionsShow,
}

func init() {
	rootCmd.AddCommand(optionsCmd)
	optionsCmd.AddCommand(optionsListCmd)
	optionsCmd.AddCommand(optionsShowCmd)
}

func runOptionsList(cmd *cobra.Command, _ []string) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Key", "Flag", "Name", "Example")

	for _, opt := range catalogue.All() {
		_ = table.Append([]string{
			strconv.Itoa(opt.Key),
			opt.Flag,
			opt.Name(),
			opt.Example,
		})
	}

	return table.Render()
}

func runOptionsShow(cmd *cobra.Command, args []string) error {
	key, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid option key %q: must be a number", args[0])
	}

	opt, ok := catalogue.Lookup(key)
	if !ok {
		return fmt.Errorf("unknown option key %d: valid keys are %d-%d", key, catalogue.MinKey, catalogue.MaxKey)
	}

	session.NewPresenter(cmd.OutOrStdout()).Option(opt)
	return nil
}
