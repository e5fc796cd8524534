package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a line-delimited JSON dispatch loop over stdin/stdout",
	Long: "serve reads one {\"tool\": \"<name>\", \"args\": {...}} object per stdin line and " +
		"writes the dispatched ToolResult as one JSON line to stdout. It is a minimal local " +
		"harness for exercising the registry — the tool-protocol transport itself is an external " +
		"collaborator this engine does not implement.",
	RunE: runServe,
}

type serveRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}
	defer eng.logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng.logger.Info("ctxengine serve starting", "working_dir", eng.cfg.WorkingDir)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	out := cmd.OutOrStdout()

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req serveRequest
		if err := json.Unmarshal(line, &req); err != nil {
			fmt.Fprintf(out, "{\"is_error\":true,\"content\":[{\"type\":\"text\",\"text\":%q}]}\n", "invalid request: "+err.Error())
			continue
		}

		result := eng.registry.Dispatch(ctx, req.Tool, req.Args)
		encoded, err := json.Marshal(result)
		if err != nil {
			eng.logger.Error("encoding dispatch result", "tool", req.Tool, "err", err)
			continue
		}
		fmt.Fprintln(out, string(encoded))
	}

	eng.logger.Info("ctxengine serve stopped")
	return scanner.Err()
}
