package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"agent-bridge/internal/agent"
)

var (
	watchState    bool
	watchInterval time.Duration
	stateSummary  bool
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the current state snapshot",
	RunE:  runState,
}

func init() {
	stateCmd.Flags().BoolVarP(&watchState, "watch", "w", false, "Keep printing on every new tick")
	stateCmd.Flags().DurationVar(&watchInterval, "interval", 200*time.Millisecond, "Poll interval for --watch")
	stateCmd.Flags().BoolVar(&stateSummary, "summary", false, "Print one line per snapshot instead of full JSON")
}

func runState(cmd *cobra.Command, args []string) error {
	client := agent.NewClient(exchangeDir)
	out := cmd.OutOrStdout()

	if !watchState {
		return printState(out, client)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	var lastTick uint64
	for {
		st, err := client.State()
		switch {
		case errors.Is(err, agent.ErrNoState):
		case err != nil:
			// Файл мог быть пойман между rename, просто ждём следующий опрос
		case st.Tick != lastTick:
			lastTick = st.Tick
			if err := printState(out, client); err != nil && !errors.Is(err, agent.ErrNoState) {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func printState(w io.Writer, client *agent.Client) error {
	if stateSummary {
		st, err := client.State()
		if err != nil {
			return err
		}
		failing := 0
		for _, n := range st.CommandFailures {
			if n > 0 {
				failing++
			}
		}
		line := fmt.Sprintf("tick=%d context=%s failing_types=%d", st.Tick, st.Context, failing)
		if st.LastCommandDebug != "" {
			line += fmt.Sprintf(" last=%q", st.LastCommandDebug)
		}
		_, err = fmt.Fprintln(w, line)
		return err
	}

	data, err := client.Raw()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("state file is not valid JSON: %w", err)
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}
