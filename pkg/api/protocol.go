package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// --- АГЕНТ -> МОСТ ---

// ErrMalformedBatch - файл команд не разобрался как {"commands":[...]}.
// Такой батч отбрасывается целиком.
var ErrMalformedBatch = errors.New("malformed command batch")

// CommandBatch - корневой объект файла команд.
type CommandBatch struct {
	Commands []Command `json:"commands"`
}

// Command - одна команда батча. Type извлекается при разборе, остальные поля
// остаются в Raw: каждый хендлер сам распаковывает свой payload.
//
// Если у записи нет строкового поля "type", Type пустой. Диспетчер такие
// записи пропускает.
type Command struct {
	Type string
	Raw  json.RawMessage
}

// NewCommand собирает команду из типа и произвольной структуры аргументов.
// payload должен сериализоваться в JSON-объект (или быть nil).
func NewCommand(cmdType string, payload any) (Command, error) {
	fields := map[string]json.RawMessage{}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Command{}, fmt.Errorf("marshal %s payload: %w", cmdType, err)
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return Command{}, fmt.Errorf("%s payload is not an object: %w", cmdType, err)
		}
	}

	typeJSON, _ := json.Marshal(cmdType)
	fields["type"] = typeJSON

	raw, err := json.Marshal(fields)
	if err != nil {
		return Command{}, err
	}
	return Command{Type: cmdType, Raw: raw}, nil
}

// UnmarshalJSON никогда не падает на отдельной записи: кривая запись
// становится командой без типа, а остальной батч выполняется.
func (c *Command) UnmarshalJSON(data []byte) error {
	c.Raw = append(c.Raw[:0], data...)
	c.Type = ""

	var head struct {
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil
	}

	var s string
	if err := json.Unmarshal(head.Type, &s); err == nil {
		c.Type = s
	}
	return nil
}

func (c Command) MarshalJSON() ([]byte, error) {
	if len(c.Raw) > 0 {
		return c.Raw, nil
	}
	return json.Marshal(map[string]string{"type": c.Type})
}

// ParseBatch разбирает содержимое файла команд.
func ParseBatch(data []byte) (CommandBatch, error) {
	var probe struct {
		Commands json.RawMessage `json:"commands"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return CommandBatch{}, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}

	trimmed := bytes.TrimSpace(probe.Commands)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return CommandBatch{}, fmt.Errorf("%w: \"commands\" must be an array", ErrMalformedBatch)
	}

	var batch CommandBatch
	if err := json.Unmarshal(trimmed, &batch.Commands); err != nil {
		return CommandBatch{}, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}
	return batch, nil
}

// EncodeBatch - обратная операция для агента.
func EncodeBatch(cmds ...Command) ([]byte, error) {
	if cmds == nil {
		cmds = []Command{}
	}
	return json.Marshal(CommandBatch{Commands: cmds})
}

// ContainsType проверяет, есть ли в батче команда указанного типа.
// Используется при подглядывании в файл во время ролика.
func (b CommandBatch) ContainsType(cmdType string) bool {
	for _, c := range b.Commands {
		if c.Type == cmdType {
			return true
		}
	}
	return false
}
