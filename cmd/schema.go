package cmd

import (
	"encoding/json"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/mpvkit/mpvkit/history"
	"github.com/mpvkit/mpvkit/state"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().Bool("history", false, "Generate the schema of history entries instead")
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema of the lines printed by play --json",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			return t.Name()
		}

		var schema *jsonschema.Schema
		if lo.Must(cmd.Flags().GetBool("history")) {
			schema = reflector.Reflect(map[string]*history.Position{})
		} else {
			schema = reflector.Reflect(&state.Snapshot{})
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
