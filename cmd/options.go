package cmd

import (
	"encoding/json"
	"os"

	"github.com/mpvkit/mpvkit/bridge"
	"github.com/mpvkit/mpvkit/color"
	"github.com/mpvkit/mpvkit/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(optionsCmd)
	optionsCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	optionsCmd.Flags().Bool("args", false, "Print the options as command line arguments")
	optionsCmd.MarkFlagsMutuallyExclusive("json", "args")
	optionsCmd.SetOut(os.Stdout)
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Print the engine options applied before initialization",
	Long: "Print the engine options applied before initialization, in order.\n" +
		"The embedded backend additionally sets vo=libmpv first.",
	Run: func(cmd *cobra.Command, args []string) {
		options, err := bridge.ConfiguredOptions()
		handleErr(err)

		switch {
		case lo.Must(cmd.Flags().GetBool("json")):
			pairs := lo.Map(options, func(o bridge.Option, _ int) [2]string {
				return [2]string{o.Name, o.Value}
			})
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(pairs))
		case lo.Must(cmd.Flags().GetBool("args")):
			for _, o := range options {
				cmd.Println(o.String())
			}
		default:
			name := style.Fg(color.Purple)
			value := style.Fg(color.Yellow)
			for _, o := range options {
				cmd.Printf("%s=%s\n", name(o.Name), value(o.Value))
			}
		}
	},
}
