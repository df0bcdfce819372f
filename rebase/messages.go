package rebase

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// The message-editor hook runs once per reword/squash stop, as a
// separate process spawned by git, strictly in replay order. State
// between invocations therefore lives on disk: numbered message files
// plus a counter file. This handshake is an interface contract with
// the external engine, not an implementation convenience.

const counterFile = "counter"

// WriteMessages materializes the numbered message files and the
// counter, initialized to zero, in dir. An empty message reserves its
// slot without a file, so that stop keeps whatever message git
// prepared while later slots stay aligned.
func WriteMessages(dir string, messages []string) error {
	counterPath := filepath.Join(dir, counterFile)
	if err := os.WriteFile(counterPath, []byte("0"), 0600); err != nil {
		return &ScriptError{Path: counterPath, Err: err}
	}

	for i, msg := range messages {
		if msg == "" {
			continue
		}

		path := filepath.Join(dir, messageName(i))
		if err := os.WriteFile(path, []byte(msg), 0600); err != nil {
			return &ScriptError{Path: path, Err: err}
		}
	}

	return nil
}

// ServeNextMessage copies the message at the current counter index to
// dest and increments the counter. An index past the last provided
// message leaves dest untouched; the counter still advances, keeping
// later invocations aligned.
func ServeNextMessage(dir, dest string) error {
	counterPath := filepath.Join(dir, counterFile)

	data, err := os.ReadFile(counterPath)
	if err != nil {
		return fmt.Errorf("cannot read message counter: %w", err)
	}

	idx, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("corrupt message counter %q: %w", data, err)
	}

	msgPath := filepath.Join(dir, messageName(idx))
	if msg, readErr := os.ReadFile(msgPath); readErr == nil {
		if err := os.WriteFile(dest, msg, 0600); err != nil {
			return fmt.Errorf("cannot write message: %w", err)
		}
	}

	next := []byte(strconv.Itoa(idx + 1))
	if err := os.WriteFile(counterPath, next, 0600); err != nil {
		return fmt.Errorf("cannot advance message counter: %w", err)
	}

	return nil
}

// messageName returns the file name for the i-th message.
func messageName(i int) string {
	return "msg_" + strconv.Itoa(i)
}
