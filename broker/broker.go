// Package broker fans out cell-recalculation events between sheet-server
// processes over ZeroMQ PUB/SUB, so multiple front ends watching the same
// sheet stay in sync without sharing a single in-process *spreadsheet.Sheet.
// It keeps the socket-lifecycle shape of the teacher's Jupyter kernel
// (bind/dial, a send loop over a channel, graceful Close) with the
// Jupyter wire protocol stripped out.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-zeromq/zmq4"
)

// Event announces that a cell's value changed.
type Event struct {
	Sheet string  `json:"sheet"`
	Cell  string  `json:"cell"`
	Value string  `json:"value"` // Inspect() of the new engine.Value
	Error *string `json:"error,omitempty"`
}

// Announcer publishes recalculation Events to every connected Listener.
type Announcer struct {
	sock   zmq4.Socket
	events chan Event
	done   chan struct{}
}

// NewAnnouncer binds a PUB socket at addr (e.g. "tcp://127.0.0.1:5556")
// and starts its send loop.
func NewAnnouncer(ctx context.Context, addr string) (*Announcer, error) {
	sock := zmq4.NewPub(ctx)
	if err := sock.Listen(addr); err != nil {
		return nil, fmt.Errorf("broker: listen %s: %w", addr, err)
	}
	a := &Announcer{sock: sock, events: make(chan Event, 256), done: make(chan struct{})}
	go a.run()
	return a, nil
}

// Publish enqueues an Event for delivery. Non-blocking: a full queue drops
// the event and logs, since recalculation events are a best-effort live
// view, not a durable log (store.Store is the durable path).
func (a *Announcer) Publish(e Event) {
	select {
	case a.events <- e:
	default:
		log.Printf("broker: dropping event for %s!%s, queue full", e.Sheet, e.Cell)
	}
}

func (a *Announcer) run() {
	for {
		select {
		case e := <-a.events:
			data, err := json.Marshal(e)
			if err != nil {
				log.Printf("broker: marshal event: %v", err)
				continue
			}
			if err := a.sock.Send(zmq4.NewMsg(data)); err != nil {
				log.Printf("broker: send event: %v", err)
			}
		case <-a.done:
			return
		}
	}
}

// Close stops the send loop and closes the underlying socket.
func (a *Announcer) Close() error {
	close(a.done)
	return a.sock.Close()
}

// Listener subscribes to an Announcer's events.
type Listener struct {
	sock zmq4.Socket
}

// NewListener dials addr and subscribes to every event (empty topic
// filter — this broker doesn't partition by sheet at the wire level).
func NewListener(ctx context.Context, addr string) (*Listener, error) {
	sock := zmq4.NewSub(ctx)
	if err := sock.Dial(addr); err != nil {
		return nil, fmt.Errorf("broker: dial %s: %w", addr, err)
	}
	if err := sock.SetOption(zmq4.OptionSubscribe, ""); err != nil {
		return nil, fmt.Errorf("broker: subscribe: %w", err)
	}
	return &Listener{sock: sock}, nil
}

// Next blocks for the next Event.
func (l *Listener) Next() (Event, error) {
	msg, err := l.sock.Recv()
	if err != nil {
		return Event{}, err
	}
	var e Event
	if len(msg.Frames) == 0 {
		return Event{}, fmt.Errorf("broker: empty message")
	}
	if err := json.Unmarshal(msg.Frames[0], &e); err != nil {
		return Event{}, fmt.Errorf("broker: unmarshal event: %w", err)
	}
	return e, nil
}

func (l *Listener) Close() error { return l.sock.Close() }
