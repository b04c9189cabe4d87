package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tagmedic/internal/rules"
)

var rulesListQuiet bool
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List audit strategies",
	Long: `Inspect the audit strategies built into TagMedic.

Lookup rule tables reference a strategy by its audit-type discriminator; this
command group shows what each discriminator checks. Rules with an unrecognized
discriminator always fail.

Examples:
  # List all audit strategies
  tagmedic rules list
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available audit strategies",
	Long: `List all audit strategies registered in this build.

Strategies are sorted by audit-type discriminator.

Examples:
  tagmedic rules list

Output:
  A vertical list of strategies:
    ----------------------------------------
    STRATEGY: {AUDIT TYPE}
    ----------------------------------------
    {TITLE}
    {DESCRIPTION}
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, s := range rules.List() {
			if rulesListQuiet {
				fmt.Fprintln(cmd.OutOrStdout(), s.ID())
			} else {
				printStrategy(cmd.OutOrStdout(), s)
			}
		}
		return nil
	},
}

func printStrategy(w io.Writer, s rules.Strategy) {
	bold := color.New(color.Bold)
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "STRATEGY: %s\n", s.ID())
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, s.Title())
	fmt.Fprintln(w, s.Description())
	fmt.Fprintln(w)
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesListCmd.Flags().BoolVarP(&rulesListQuiet, "quiet", "q", false, "Only print audit-type discriminators")
}
