package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/mpvkit/mpvkit/color"
	"github.com/mpvkit/mpvkit/history"
	"github.com/mpvkit/mpvkit/icon"
	"github.com/mpvkit/mpvkit/style"
	"github.com/mpvkit/mpvkit/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.Flags().StringP("remove", "d", "", "Forget the saved position of a file or url")
	historyCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved playback positions",
	Run: func(cmd *cobra.Command, args []string) {
		if uri := lo.Must(cmd.Flags().GetString("remove")); uri != "" {
			handleErr(history.Remove(uri))
			fmt.Printf("%s forgot %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), history.Key(uri))
			return
		}

		saved, err := history.Get()
		handleErr(err)

		positions := lo.Values(saved)
		sort.Slice(positions, func(i, j int) bool {
			return positions[i].UpdatedAt.After(positions[j].UpdatedAt)
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(positions))
			return
		}

		if len(positions) == 0 {
			cmd.Println(style.Faint("No saved positions"))
			return
		}

		for _, p := range positions {
			marker := icon.Get(icon.Success)
			if p.Resumable() {
				marker = icon.Get(icon.Resume)
			}
			cmd.Printf("%s %s\n", marker, p.URI)
			cmd.Printf("  %s %s\n",
				style.Fg(color.Yellow)(fmt.Sprintf("%s / %s", util.FormatDuration(p.TimePos), util.FormatDuration(p.Duration))),
				style.Faint(p.UpdatedAt.Format("2006-01-02 15:04")),
			)
		}
	},
}
