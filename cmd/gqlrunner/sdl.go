package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	schema "github.com/hanpama/serverlessgql/internal/schema"
)

func newSDLCmd() *cobra.Command {
	var schemaFile, outFile string
	cmd := &cobra.Command{
		Use:   "sdl",
		Short: "Validate a schema and print it in normalized form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(schemaFile)
			if err != nil {
				return err
			}
			sch, err := schema.BuildFromSDL(schemaFile, string(src))
			if err != nil {
				return fmt.Errorf("build schema: %w", err)
			}
			sdl := schema.Render(sch)
			if outFile == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), sdl)
				return err
			}
			return os.WriteFile(outFile, []byte(sdl), 0644)
		},
	}
	cmd.Flags().StringVar(&schemaFile, "schema", "", "SDL file to compile (required)")
	cmd.Flags().StringVar(&outFile, "out", "", "write the SDL to this file instead of stdout")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}
