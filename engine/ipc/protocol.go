package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/mpvkit/mpvkit/engine"
)

// request is the JSON structure sent to mpv's IPC socket.
type request struct {
	Command []any `json:"command"`
}

// message is any line mpv writes back: a command reply or an event.
type message struct {
	Event     string `json:"event,omitempty"`
	ID        uint64 `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Reason    string `json:"reason,omitempty"`
	FileError string `json:"file_error,omitempty"`
}

func (m *message) isEvent() bool {
	return m.Event != ""
}

const (
	maxRetries    = 3
	retryDelay    = 100 * time.Millisecond
	replyDeadline = time.Second
	maxLine       = 1 << 20
)

// send runs one command over a fresh connection, retrying transient
// connection errors. Engine errors are returned as is.
func send(socketPath string, command []any) (any, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := doSend(socketPath, command)
		if err == nil {
			return result, nil
		}
		var engineErr engine.Error
		if errors.As(err, &engineErr) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

// doSend performs a single command attempt. Events broadcast on the same
// connection before the reply are skipped.
func doSend(socketPath string, command []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := write(conn, command); err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(time.Now().Add(replyDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxLine)

	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}
		if msg.isEvent() {
			continue
		}

		if err := engine.ErrorByMessage(msg.Error); err != nil {
			return nil, err
		}
		return msg.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, fmt.Errorf("read: connection closed before reply")
}

// write sends one newline-delimited command.
func write(conn net.Conn, command []any) error {
	payload, err := json.Marshal(request{Command: command})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
