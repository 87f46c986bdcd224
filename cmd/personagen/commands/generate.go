package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"personagen/internal/genai"
	"personagen/internal/pipeline"
	"personagen/internal/render"
	"personagen/lib/configutil"
	"personagen/lib/restyutil"
	"personagen/lib/scrapers/reddit"
	"personagen/lib/serviceutil"

	"github.com/spf13/cobra"
)

type Config struct {
	// Gemini API key, may also come from --api-key or GEMINI_API_KEY
	ApiKey string `json:"api_key"`
	// generation models to try in order
	Models []string `json:"models"`
}

var (
	generateLimit  *int
	generateFormat *string
	generateOutput *string
	generateApiKey *string
)

func init() {
	generateLimit = generateCmd.Flags().Int("limit", 100, "Number of posts/comments to analyze.")
	generateFormat = generateCmd.Flags().String("format", "text", "Output format: text, json or html.")
	generateOutput = generateCmd.Flags().String("output", "", "Output file path, defaults to persona_output.<format>.")
	generateApiKey = generateCmd.Flags().String("api-key", "", "Generation service API key, overrides config and GEMINI_API_KEY.")
	rootCmd.AddCommand(generateCmd)
}

func resolveApiKey(cfg Config) string {
	if *generateApiKey != "" {
		return *generateApiKey
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return cfg.ApiKey
}

var generateCmd = &cobra.Command{
	Use:   "generate <profile url or handle>",
	Short: "Scrapes a reddit profile and synthesizes a persona document.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format, err := render.ParseFormat(*generateFormat)
		if err != nil {
			serviceutil.Fatal("parse flags", err)
		}

		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil && !configutil.IsNotExist(err) {
			serviceutil.Fatal("read config", err)
		}

		apiKey := resolveApiKey(cfg)
		if apiKey == "" {
			serviceutil.Fatal(
				"missing credentials",
				fmt.Errorf("provide a generation service API key via --api-key, GEMINI_API_KEY or config.json5"),
			)
		}

		if *verbose {
			reddit.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/reddit"))
		}

		source, err := reddit.NewClient(reddit.ClientOptions{})
		if err != nil {
			serviceutil.Fatal("initialize reddit client", err)
		}
		generator, err := genai.NewClient(genai.ClientOptions{
			ApiKey: apiKey,
			Models: cfg.Models,
		})
		if err != nil {
			serviceutil.Fatal("initialize generation client", err)
		}

		t1 := time.Now()
		result, err := pipeline.Run(cmd.Context(), pipeline.Options{
			Source:     source,
			Generator:  generator,
			ProfileRef: args[0],
			Limit:      *generateLimit,
			Format:     format,
		})
		if err != nil {
			serviceutil.Fatal("pipeline failed", err)
		}
		slog.Info("pipeline finished", "seconds", time.Since(t1).Seconds(), "warnings", len(result.Persona.Warnings))

		outputPath := *generateOutput
		if outputPath == "" {
			outputPath = defaultOutputPath(format)
		}
		err = os.WriteFile(outputPath, result.Output, 0644)
		if err != nil {
			serviceutil.Fatal("write output", err)
		}
		slog.Info("persona saved", "path", outputPath)
	},
}

func defaultOutputPath(format render.Format) string {
	switch format {
	case render.FormatJson:
		return "persona_output.json"
	case render.FormatHtml:
		return "persona_output.html"
	}
	return "persona_output.txt"
}
