package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/property"
	. "github.com/smartystreets/goconvey/convey"
)

// server is a minimal JSON-IPC endpoint. The connection that registers
// observers becomes the event connection.
type server struct {
	listener net.Listener

	mu       sync.Mutex
	commands [][]any
	events   net.Conn
	replies  map[string]string
	observed chan struct{}
}

func newServer(t *testing.T, path string) *server {
	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}

	s := &server{listener: l, replies: map[string]string{}, observed: make(chan struct{}, 16)}
	go s.serve()
	return s
}

func (s *server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *server) handle(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil || len(req.Command) == 0 {
			continue
		}

		name := fmt.Sprint(req.Command[0])
		s.mu.Lock()
		s.commands = append(s.commands, req.Command)
		reply := s.replies[name]
		if name == "observe_property" {
			s.events = conn
		}
		s.mu.Unlock()

		// events interleaved before replies must be skipped by clients
		fmt.Fprintln(conn, `{"event":"playback-restart"}`)
		if reply == "" {
			reply = "success"
		}
		fmt.Fprintf(conn, `{"data":null,"error":%q}`+"\n", reply)

		if name == "observe_property" {
			s.observed <- struct{}{}
		}
	}
}

func (s *server) emit(line string) {
	s.mu.Lock()
	conn := s.events
	s.mu.Unlock()
	fmt.Fprintln(conn, line)
}

func (s *server) received() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.commands...)
}

func (s *server) close() {
	s.listener.Close()
	s.mu.Lock()
	if s.events != nil {
		s.events.Close()
	}
	s.mu.Unlock()
}

func waitEvent(c *Client) engine.Event {
	return c.WaitEvent(2 * time.Second)
}

func TestClient(t *testing.T) {
	Convey("Given a client attached to a JSON-IPC server", t, func() {
		dir, err := os.MkdirTemp("", "ipc")
		So(err, ShouldBeNil)
		Reset(func() { os.RemoveAll(dir) })

		client, err := New("mpv", dir)
		So(err, ShouldBeNil)
		So(filepath.Dir(client.Socket()), ShouldEqual, dir)

		So(client.SetOptionString("hwdec", "auto-safe"), ShouldBeNil)
		So(client.ObserveProperty(0, property.TimePos, engine.FormatDouble), ShouldBeNil)
		So(client.ObserveProperty(0, property.Pause, engine.FormatFlag), ShouldBeNil)

		srv := newServer(t, client.Socket())
		Reset(srv.close)

		So(client.attach(), ShouldBeNil)
		<-srv.observed
		<-srv.observed

		Convey("Options before start become command line flags", func() {
			So(client.Args(), ShouldContain, "--hwdec=auto-safe")
			So(client.Args(), ShouldContain, "--idle=yes")
			So(client.Args()[0], ShouldEqual, "--input-ipc-server="+client.Socket())
		})

		Convey("Observers are registered on the event connection", func() {
			cmds := srv.received()
			So(cmds[0], ShouldResemble, []any{"observe_property", float64(0), "time-pos"})
			So(cmds[1], ShouldResemble, []any{"observe_property", float64(0), "pause"})
		})

		Convey("Commands are sent as string arrays", func() {
			So(client.Command("seek", "37", "absolute-percent"), ShouldBeNil)
			So(srv.received(), ShouldContain, []any{"seek", "37", "absolute-percent"})
		})

		Convey("Property writes use set and set_property", func() {
			So(client.SetPropertyString("pause", "yes"), ShouldBeNil)
			So(client.SetProperty("volume", engine.FormatDouble, property.EncodeDouble(40)), ShouldBeNil)
			So(client.SetOptionString("start", "12.000"), ShouldBeNil)

			cmds := srv.received()
			So(cmds, ShouldContain, []any{"set", "pause", "yes"})
			So(cmds, ShouldContain, []any{"set_property", "volume", float64(40)})
			So(cmds, ShouldContain, []any{"set", "start", "12.000"})
		})

		Convey("Engine errors come back as codes", func() {
			srv.mu.Lock()
			srv.replies["loadfile"] = "loading failed"
			srv.mu.Unlock()

			So(client.Command("loadfile", "x"), ShouldEqual, engine.ErrLoadingFailed)
		})

		Convey("Property changes are queued in the observed format", func() {
			srv.emit(`{"event":"property-change","id":0,"name":"time-pos","data":12.5}`)
			srv.emit(`{"event":"property-change","id":0,"name":"pause","data":true}`)

			ev := waitEvent(client)
			So(ev.ID, ShouldEqual, engine.EventPropertyChange)
			v, err := property.Decode(ev.Property.Format, ev.Property.Data)
			So(err, ShouldBeNil)
			So(v, ShouldResemble, property.Double(12.5))

			ev = waitEvent(client)
			So(ev.Property.Format, ShouldEqual, engine.FormatFlag)
			flag, _ := property.DecodeFlag(ev.Property.Data)
			So(flag, ShouldBeTrue)
		})

		Convey("Unavailable properties carry no payload", func() {
			srv.emit(`{"event":"property-change","id":0,"name":"time-pos"}`)
			ev := waitEvent(client)
			So(ev.Property.Format, ShouldEqual, engine.FormatNone)
			So(ev.Property.Data, ShouldBeNil)
		})

		Convey("Lifecycle events are mapped, unknown ones dropped", func() {
			srv.emit(`{"event":"seek"}`)
			srv.emit(`{"event":"end-file","reason":"error","file_error":"loading failed"}`)
			srv.emit(`{"event":"file-loaded"}`)

			ev := waitEvent(client)
			So(ev.ID, ShouldEqual, engine.EventEndFile)
			So(ev.Err, ShouldEqual, engine.ErrLoadingFailed)
			So(waitEvent(client).ID, ShouldEqual, engine.EventFileLoaded)
		})

		Convey("Polling an empty queue returns none", func() {
			So(client.WaitEvent(0).ID, ShouldEqual, engine.EventNone)
		})

		Convey("Losing the connection reports shutdown", func() {
			srv.close()
			So(waitEvent(client).ID, ShouldEqual, engine.EventShutdown)
		})

		Convey("TerminateDestroy quits and is idempotent", func() {
			client.TerminateDestroy()
			client.TerminateDestroy()

			So(srv.received(), ShouldContain, []any{"quit"})
			So(client.Command("stop"), ShouldEqual, engine.ErrUninitialized)
			So(client.WaitEvent(0).ID, ShouldEqual, engine.EventNone)
		})

		Convey("Render contexts are unavailable", func() {
			_, err := client.CreateRenderContext([]engine.RenderParam{engine.Sentinel})
			So(err, ShouldEqual, engine.ErrNotImplemented)
		})
	})

	Convey("A client that never started refuses commands", t, func() {
		client, err := New("mpv", os.TempDir())
		So(err, ShouldBeNil)
		So(client.Command("stop"), ShouldEqual, engine.ErrUninitialized)
		So(client.TerminateDestroy, ShouldNotPanic)
	})
}
