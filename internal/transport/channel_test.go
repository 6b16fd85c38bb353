package transport

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPollCommands_Missing(t *testing.T) {
	ch := NewChannel(t.TempDir())

	data, ok, err := ch.PollCommands()
	if err != nil || ok || data != nil {
		t.Fatalf("PollCommands on empty dir = (%q, %v, %v)", data, ok, err)
	}
}

func TestPollCommands_DeletesBeforeParse(t *testing.T) {
	dir := t.TempDir()
	ch := NewChannel(dir)

	// Битый JSON всё равно потребляется.
	if err := os.WriteFile(filepath.Join(dir, CommandFile), []byte(`{"commands":[`), 0o644); err != nil {
		t.Fatal(err)
	}

	data, ok, err := ch.PollCommands()
	if err != nil || !ok {
		t.Fatalf("PollCommands = (%v, %v)", ok, err)
	}
	if string(data) != `{"commands":[` {
		t.Errorf("data = %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, CommandFile)); !os.IsNotExist(err) {
		t.Errorf("command file still present: %v", err)
	}

	if _, ok, _ := ch.PollCommands(); ok {
		t.Error("batch consumed twice")
	}
}

func TestWriteState_Atomic(t *testing.T) {
	dir := t.TempDir()
	ch := NewChannel(dir)

	for _, doc := range []string{`{"tick":1}`, `{"tick":2}`} {
		if err := ch.WriteState([]byte(doc)); err != nil {
			t.Fatalf("WriteState: %v", err)
		}
		got, ok, err := ch.ReadState()
		if err != nil || !ok || string(got) != doc {
			t.Errorf("ReadState = (%q, %v, %v), want %q", got, ok, err, doc)
		}
		if _, err := os.Stat(filepath.Join(dir, StateTmpFile)); !os.IsNotExist(err) {
			t.Error("tmp file left behind")
		}
	}
}

func TestWriteCommands_PeekAndDiscard(t *testing.T) {
	ch := NewChannel(t.TempDir())

	if ch.PendingCommands() {
		t.Fatal("PendingCommands on empty dir")
	}
	if err := ch.WriteCommands([]byte(`{"commands":[{"type":"skip"}]}`)); err != nil {
		t.Fatalf("WriteCommands: %v", err)
	}
	if !ch.PendingCommands() {
		t.Fatal("batch not visible after WriteCommands")
	}

	if _, ok, err := ch.PeekCommands(); !ok || err != nil {
		t.Fatalf("PeekCommands = (%v, %v)", ok, err)
	}
	if !ch.PendingCommands() {
		t.Fatal("PeekCommands consumed the batch")
	}

	if err := ch.DiscardCommands(); err != nil {
		t.Fatalf("DiscardCommands: %v", err)
	}
	if ch.PendingCommands() {
		t.Error("batch survived DiscardCommands")
	}
	if err := ch.DiscardCommands(); err != nil {
		t.Errorf("second DiscardCommands: %v", err)
	}
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	ch := NewChannel(dir)

	for _, name := range []string{CommandFile, CommandTmpFile, StateFile, StateTmpFile} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := ch.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d files left after Clean", len(entries))
	}

	// Повторная очистка пустого каталога не ошибка.
	if err := ch.Clean(); err != nil {
		t.Errorf("Clean on empty dir: %v", err)
	}
}
