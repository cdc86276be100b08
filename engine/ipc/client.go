// Package ipc implements engine.Client over mpv's JSON-IPC socket.
//
// The engine runs as a child process with its own video window; render
// contexts are not available through this backend.
package ipc

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/mpvkit/mpvkit/constant"
	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/log"
	"github.com/mpvkit/mpvkit/property"
	"github.com/samber/lo"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

type observer struct {
	id     uint64
	name   string
	format engine.Format
}

// Client drives one mpv process.
type Client struct {
	binary     string
	socketPath string

	mu        sync.Mutex
	options   []string
	observers []observer
	started   bool
	destroyed bool

	cmd    *exec.Cmd
	exited chan struct{}
	conn   net.Conn
	events *engine.Queue
}

// New returns a client that will spawn binary, listening on a fresh socket
// inside socketDir.
func New(binary, socketDir string) (*Client, error) {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("generate socket name: %w", err)
	}

	return &Client{
		binary:     binary,
		socketPath: filepath.Join(socketDir, fmt.Sprintf("%s-%x.sock", constant.App, randomBytes)),
		exited:     make(chan struct{}),
		events:     engine.NewQueue(),
	}, nil
}

// Factory returns an engine.Factory spawning binary.
func Factory(binary, socketDir string) engine.Factory {
	return func() (engine.Client, error) {
		return New(binary, socketDir)
	}
}

// Socket returns the IPC socket path.
func (c *Client) Socket() string {
	return c.socketPath
}

// Args returns the command line the process is started with.
func (c *Client) Args() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	args := []string{
		fmt.Sprintf("--input-ipc-server=%s", c.socketPath),
		"--idle=yes",
	}
	return append(args, c.options...)
}

// SetOptionString records a command line option before Initialize and sets
// the corresponding property afterwards.
func (c *Client) SetOptionString(name, value string) error {
	c.mu.Lock()
	if !c.started {
		c.options = append(c.options, fmt.Sprintf("--%s=%s", name, value))
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	return c.SetPropertyString(name, value)
}

// ObserveProperty registers an observer. Observers are bound to the event
// connection, so before Initialize they are queued until it opens.
func (c *Client) ObserveProperty(replyID uint64, name string, format engine.Format) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	o := observer{id: replyID, name: name, format: format}
	c.observers = append(c.observers, o)

	if c.conn == nil {
		return nil
	}
	return write(c.conn, []any{"observe_property", o.id, o.name})
}

// Initialize starts the process and attaches to its socket.
func (c *Client) Initialize() error {
	c.mu.Lock()
	if c.started || c.destroyed {
		c.mu.Unlock()
		return engine.ErrInvalidParameter
	}
	c.mu.Unlock()

	cmd := exec.Command(c.binary, c.Args()...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.binary, err)
	}

	c.mu.Lock()
	c.cmd = cmd
	c.started = true
	c.mu.Unlock()

	go func() {
		_ = cmd.Wait()
		close(c.exited)
	}()

	if err := c.waitForSocket(); err != nil {
		select {
		case <-c.exited:
		default:
			log.With("ipc").Warn("killing mpv: socket never became ready")
			_ = killProcess(cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	return c.attach()
}

// waitForSocket polls until the socket is accepting connections.
func (c *Client) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-c.exited:
			return errors.New("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", c.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", c.socketPath, socketWaitRetries)
}

// attach opens the persistent event connection, registers the queued
// observers on it and starts reading.
func (c *Client) attach() error {
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("event connection: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, o := range c.observers {
		if err := write(conn, []any{"observe_property", o.id, o.name}); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", o.name, err)
		}
	}

	c.conn = conn
	c.started = true
	go c.readLoop(conn)

	log.With("ipc").Infof("attached to %s", c.socketPath)
	return nil
}

// Command runs a command with string arguments.
func (c *Client) Command(args ...string) error {
	if len(args) == 0 {
		return engine.ErrInvalidParameter
	}
	_, err := c.send(lo.ToAnySlice(args))
	return err
}

// SetPropertyString writes a property with the string-parsing set command.
func (c *Client) SetPropertyString(name, value string) error {
	_, err := c.send([]any{"set", name, value})
	return err
}

// SetProperty writes a property from a binary payload.
func (c *Client) SetProperty(name string, format engine.Format, data []byte) error {
	value, err := property.Decode(format, data)
	if err != nil {
		return engine.ErrPropertyFormat
	}
	_, err = c.send([]any{"set_property", name, value.Interface()})
	return err
}

func (c *Client) send(command []any) (any, error) {
	if !c.running() {
		return nil, engine.ErrUninitialized
	}
	return send(c.socketPath, command)
}

func (c *Client) running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started && !c.destroyed
}

// WaitEvent pops the next event read from the socket.
func (c *Client) WaitEvent(timeout time.Duration) engine.Event {
	return c.events.Pop(timeout)
}

// SetWakeupCallback registers the callback fired for every queued event.
func (c *Client) SetWakeupCallback(cb func()) {
	c.events.SetWakeup(cb)
}

// CreateRenderContext is not supported: the process renders into its own window.
func (c *Client) CreateRenderContext([]engine.RenderParam) (engine.RenderContext, error) {
	return nil, engine.ErrNotImplemented
}

// TerminateDestroy quits the process, killing it if it does not exit in
// time, and removes the socket. Subsequent calls do nothing.
func (c *Client) TerminateDestroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	started := c.started
	cmd := c.cmd
	c.mu.Unlock()

	if started {
		_, _ = send(c.socketPath, []any{"quit"})
	}

	c.mu.Lock()
	c.destroyed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	c.events.Drop()
	if conn != nil {
		conn.Close()
	}

	if cmd != nil {
		select {
		case <-c.exited:
		case <-time.After(quitTimeout):
			_ = killProcess(cmd)
		}
	}

	_ = os.Remove(c.socketPath)
}
