package ipc

import (
	"bufio"
	"encoding/json"
	"net"

	"github.com/mpvkit/mpvkit/engine"
	"github.com/mpvkit/mpvkit/log"
	"github.com/mpvkit/mpvkit/property"
)

// readLoop turns newline-delimited messages from the event connection into
// queued events until the connection closes.
func (c *Client) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxLine)

	for scanner.Scan() {
		c.processLine(scanner.Bytes())
	}

	c.mu.Lock()
	destroyed := c.destroyed
	c.mu.Unlock()

	if !destroyed {
		if err := scanner.Err(); err != nil {
			log.With("ipc").WithError(err).Warn("event connection lost")
		}
		c.events.Push(engine.Event{ID: engine.EventShutdown})
	}
}

// processLine parses one message and queues the event it carries, if any.
func (c *Client) processLine(line []byte) {
	logger := log.With("ipc")

	var msg message
	if err := json.Unmarshal(line, &msg); err != nil {
		logger.WithError(err).Debug("skipping unparseable line")
		return
	}

	if !msg.isEvent() {
		if err := engine.ErrorByMessage(msg.Error); err != nil {
			logger.WithError(err).Warn("observer registration")
		}
		return
	}

	if msg.Event == "property-change" {
		c.events.Push(engine.Event{
			ID:            engine.EventPropertyChange,
			ReplyUserdata: msg.ID,
			Property:      c.propertyEvent(msg),
		})
		return
	}

	id, ok := engine.EventByName(msg.Event)
	if !ok {
		logger.Tracef("ignoring %s", msg.Event)
		return
	}

	ev := engine.Event{ID: id}
	if id == engine.EventEndFile && msg.Reason == "error" {
		ev.Err = engine.ErrorByMessage(msg.FileError)
	}
	c.events.Push(ev)
}

// propertyEvent encodes the JSON value in the format the property is
// observed with. Unavailable and unreadable values carry no payload.
func (c *Client) propertyEvent(msg message) *engine.PropertyEvent {
	ev := &engine.PropertyEvent{Name: msg.Name, Format: engine.FormatNone}
	if msg.Data == nil {
		return ev
	}

	format := c.formatOf(msg.Name)
	value, err := property.FromNode(format, msg.Data)
	if err != nil {
		log.With("ipc").WithError(err).Debugf("property %s", msg.Name)
		return ev
	}

	ev.Format = format
	ev.Data = property.Encode(value)
	return ev
}

func (c *Client) formatOf(name string) engine.Format {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, o := range c.observers {
		if o.name == name {
			return o.format
		}
	}
	return engine.FormatString
}
