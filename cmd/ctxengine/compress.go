package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	compressFile string
	compressHint string
)

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Compress a file or stdin blob through compress_auto",
	RunE:  runCompress,
}

func init() {
	compressCmd.Flags().StringVarP(&compressFile, "file", "f", "", "File to compress; reads stdin when omitted")
	compressCmd.Flags().StringVar(&compressHint, "hint", "", "Content-type override (logs, diff, stacktrace, config, code, generic)")
}

func runCompress(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	var content []byte
	if compressFile != "" {
		content, err = os.ReadFile(compressFile)
	} else {
		content, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	result := eng.registry.Dispatch(context.Background(), "compress_auto", map[string]any{
		"content": string(content),
		"hint":    compressHint,
	})
	fmt.Fprintln(cmd.OutOrStdout(), result.Text())
	if result.IsError {
		return fmt.Errorf("compress_auto failed")
	}
	eng.logger.Info("compressed", "tokens_in", result.TokensIn, "tokens_out", result.TokensOut, "tokens_saved", result.TokensSaved)
	return nil
}
