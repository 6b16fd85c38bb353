// Package agent - сторона агента в файловом протоколе: запись батчей
// команд и чтение состояния. Bot поверх Client - простейший автопилот.
package agent

import (
	"encoding/json"
	"errors"
	"fmt"

	"agent-bridge/internal/transport"
	"agent-bridge/pkg/api"
)

// ErrPending - прошлый батч ещё не забран мостом. Новый батч его бы
// затёр, поэтому отправка откладывается.
var ErrPending = errors.New("previous batch not consumed yet")

// ErrNoState - мост ещё не записал ни одного состояния.
var ErrNoState = errors.New("no state file")

type Client struct {
	channel *transport.Channel
}

func NewClient(dir string) *Client {
	return &Client{channel: transport.NewChannel(dir)}
}

func (c *Client) Channel() *transport.Channel { return c.channel }

// Send атомарно пишет батч. Пустой батч не пишется.
func (c *Client) Send(cmds ...api.Command) error {
	if len(cmds) == 0 {
		return nil
	}
	if c.channel.PendingCommands() {
		return ErrPending
	}
	doc, err := api.EncodeBatch(cmds...)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	return c.channel.WriteCommands(doc)
}

// Raw читает состояние как есть.
func (c *Client) Raw() ([]byte, error) {
	data, ok, err := c.channel.ReadState()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoState
	}
	return data, nil
}

// State читает и разбирает текущее состояние.
func (c *Client) State() (api.StateSnapshot, error) {
	data, err := c.Raw()
	if err != nil {
		return api.StateSnapshot{}, err
	}
	var st api.StateSnapshot
	if err := json.Unmarshal(data, &st); err != nil {
		return api.StateSnapshot{}, fmt.Errorf("decode state: %w", err)
	}
	return st, nil
}
