package commands

import (
	"fmt"
	"os"

	"personagen/internal/persona"
	"personagen/internal/render"
	"personagen/lib/serviceutil"

	"github.com/spf13/cobra"
)

var renderFormat *string

func init() {
	renderFormat = renderCmd.Flags().String("format", "text", "Output format: text, json or html.")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render <persona.json>",
	Short: "Re-renders a previously saved persona JSON document.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format, err := render.ParseFormat(*renderFormat)
		if err != nil {
			serviceutil.Fatal("parse flags", err)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			serviceutil.Fatal("read persona file", err)
		}
		p, err := persona.Load(data)
		if err != nil {
			serviceutil.Fatal("parse persona file", err)
		}

		out, err := render.Render(p, format)
		if err != nil {
			serviceutil.Fatal("render persona", err)
		}
		fmt.Print(string(out))
	},
}
