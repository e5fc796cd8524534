package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctxengine/ctxengine/internal/registry"
)

var (
	discoverQuery    string
	discoverCategory string
	discoverFormat   string
	discoverLoad     bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List the tool catalog, optionally filtered by query/category",
	RunE:  runDiscover,
}

func init() {
	discoverCmd.Flags().StringVarP(&discoverQuery, "query", "q", "", "Case-insensitive substring filter against name/description")
	discoverCmd.Flags().StringVar(&discoverCategory, "category", "", "compress, analyze, logs, code, or pipeline")
	discoverCmd.Flags().StringVar(&discoverFormat, "format", "list", "list, toon, or toon-tabular")
	discoverCmd.Flags().BoolVar(&discoverLoad, "load", false, "Mount the executable form for every matched tool")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	result := eng.registry.Discover(registry.DiscoverOptions{
		Query:    discoverQuery,
		Category: registry.Category(discoverCategory),
		Load:     discoverLoad,
		Format:   registry.Format(discoverFormat),
	})

	if result.TOON != "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.TOON)
		return nil
	}
	out, err := json.MarshalIndent(result.Tools, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
