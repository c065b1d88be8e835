// Package live serves the websocket through which scripted clients request table
// views and learn about catalog refreshes.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/leapstack-labs/catalognav/internal/catalog"
	"github.com/leapstack-labs/catalognav/internal/tabledata"
	"github.com/leapstack-labs/catalognav/internal/ui/notifier"
	"github.com/leapstack-labs/catalognav/pkg/core"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server only listens for the local UI.
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Inbound actions.
const (
	ActionShowRecords        = "showRecords"
	ActionShowRelatedRecords = "showRelatedRecords"
	ActionRefresh            = "refresh"
)

// Outbound message types.
const (
	TypeTableView        = "tableView"
	TypeError            = "error"
	TypeCatalogRefreshed = string(notifier.CatalogRefreshed)
)

// Inbound is a message sent by a client.
type Inbound struct {
	Action string    `json:"action"`
	Link   core.Link `json:"link"`
}

// Outbound is a message sent to a client.
type Outbound struct {
	Type    string          `json:"type"`
	View    *core.TableView `json:"view,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Handlers provides the websocket handler.
type Handlers struct {
	cache   *catalog.Cache
	fetcher *tabledata.Fetcher
	notify  *notifier.Notifier
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cache *catalog.Cache, fetcher *tabledata.Fetcher, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{cache: cache, fetcher: fetcher, notify: notify, logger: logger}
}

// ServeWS upgrades the connection and runs the message loop until the
// client disconnects or the server shuts down.
func (h *Handlers) ServeWS(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake completes so no broadcast is missed.
	events := h.notify.Subscribe()
	defer h.notify.Unsubscribe(events)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writeCh := make(chan Outbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(ctx, conn, writeCh, events)
	}()

	// Closing the connection unblocks ReadJSON when the server shuts down.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var in Inbound
		if err := conn.ReadJSON(&in); err != nil {
			if isDecodeError(err) {
				push(writeCh, Outbound{Type: TypeError, Message: "malformed message: " + err.Error()})
				continue
			}
			break
		}
		if out, ok := h.handle(ctx, in); ok {
			push(writeCh, out)
		}
	}

	cancel()
	<-writerDone
}

func (h *Handlers) writeLoop(ctx context.Context, conn *websocket.Conn, writeCh <-chan Outbound, events <-chan notifier.Event) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(out Outbound) bool {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return false
		}
		return conn.WriteJSON(out) == nil
	}

	for {
		select {
		case <-ctx.Done():
			return
		case out := <-writeCh:
			if !write(out) {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !write(Outbound{Type: string(ev)}) {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handle answers one inbound message. It reports false when the answer
// reaches the client through the notifier instead.
func (h *Handlers) handle(ctx context.Context, in Inbound) (Outbound, bool) {
	switch in.Action {
	case ActionShowRecords:
		link := core.Link{Database: in.Link.Database, Table: in.Link.Table}
		return h.tableView(ctx, link), true
	case ActionShowRelatedRecords:
		if !in.Link.IsRelated() {
			return Outbound{Type: TypeError, Message: "showRelatedRecords needs link_name and link_row"}, true
		}
		return h.tableView(ctx, in.Link), true
	case ActionRefresh:
		if _, err := h.cache.Refresh(ctx); err != nil {
			return Outbound{Type: TypeError, Message: err.Error()}, true
		}
		h.notify.Broadcast(notifier.CatalogRefreshed)
		return Outbound{}, false
	default:
		return Outbound{Type: TypeError, Message: "unsupported action: " + in.Action}, true
	}
}

func (h *Handlers) tableView(ctx context.Context, link core.Link) Outbound {
	view, err := h.fetcher.GetTableData(ctx, link)
	if err != nil {
		return Outbound{Type: TypeError, Message: err.Error()}
	}
	return Outbound{Type: TypeTableView, View: view}
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// push queues out, dropping the oldest queued message when the queue is full.
func push(writeCh chan Outbound, out Outbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
