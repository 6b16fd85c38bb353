package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"agent-bridge/internal/agent"
	"agent-bridge/pkg/api"
)

var sendArgs []string

var sendCmd = &cobra.Command{
	Use:   "send <batch-json | command-type>",
	Short: "Write a command batch for the bridge",
	Long: `Writes one batch to the command file. The argument is either a full batch
document ({"commands":[...]}) or a single command type with --arg key=value pairs.
Values are parsed as JSON and fall back to plain strings.`,
	Example: `  bridge send move_to --arg tile=12345
  bridge send look_at --arg object_id='"4294967297"'
  bridge send '{"commands":[{"type":"skip"}]}'`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringArrayVar(&sendArgs, "arg", nil, "Command argument as key=value (repeatable)")
}

func runSend(cmd *cobra.Command, args []string) error {
	client := agent.NewClient(exchangeDir)

	input := strings.TrimSpace(args[0])
	if strings.HasPrefix(input, "{") {
		if len(sendArgs) > 0 {
			return errors.New("--arg cannot be combined with a batch document")
		}
		batch, err := api.ParseBatch([]byte(input))
		if err != nil {
			return err
		}
		if err := client.Send(batch.Commands...); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent %d command(s)\n", len(batch.Commands))
		return nil
	}

	payload, err := parseArgs(sendArgs)
	if err != nil {
		return err
	}
	var p any
	if len(payload) > 0 {
		p = payload
	}
	c, err := api.NewCommand(input, p)
	if err != nil {
		return err
	}
	if err := client.Send(c); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", input)
	return nil
}

// parseArgs разбирает key=value. Значение сначала пробуется как JSON.
func parseArgs(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("bad --arg %q: want key=value", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out[key] = v
	}
	return out, nil
}
