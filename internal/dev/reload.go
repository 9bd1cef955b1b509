package dev

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ReloadPath is where the browser's reload socket connects.
const ReloadPath = "/_verso/reload"

// MessageType discriminates reload messages.
type MessageType string

const (
	MessageReload MessageType = "reload"
	MessageCSS    MessageType = "css"
	MessageError  MessageType = "error"
	MessageClear  MessageType = "clear"
)

// Message is one reload instruction sent to browsers.
type Message struct {
	Type  MessageType `json:"type"`
	File  string      `json:"file,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Hub fans reload messages out to every connected browser.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dev-only endpoint, any origin may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the
// browser goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("reload upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.drop(conn)
}

// NotifyReload triggers a full page reload in every browser.
func (h *Hub) NotifyReload() {
	h.broadcast(Message{Type: MessageReload})
}

// NotifyCSS triggers a stylesheet-only refresh.
func (h *Hub) NotifyCSS(file string) {
	h.broadcast(Message{Type: MessageCSS, File: file})
}

// NotifyError shows the error overlay.
func (h *Hub) NotifyError(msg string) {
	h.broadcast(Message{Type: MessageError, Error: msg})
}

// ClearError removes the error overlay.
func (h *Hub) ClearError() {
	h.broadcast(Message{Type: MessageClear})
}

// ClientCount returns how many browsers are connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close disconnects every browser.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(conn)
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

// ClientScript is the hot reload client, injected into pages served in
// development mode.
const ClientScript = `<script>
(function() {
    'use strict';
    var delay = 1000;

    function connect() {
        var proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(proto + '//' + location.host + '` + ReloadPath + `');

        ws.onopen = function() {
            delay = 1000;
            clearOverlay();
        };

        ws.onmessage = function(e) {
            var msg;
            try { msg = JSON.parse(e.data); } catch (err) { return; }
            if (msg.type === 'reload') location.reload();
            else if (msg.type === 'css') refreshCSS();
            else if (msg.type === 'error') showOverlay(msg.error);
            else if (msg.type === 'clear') clearOverlay();
        };

        ws.onclose = function() {
            setTimeout(function() {
                delay = Math.min(delay * 2, 30000);
                connect();
            }, delay);
        };

        ws.onerror = function() { ws.close(); };
    }

    function refreshCSS() {
        document.querySelectorAll('link[rel="stylesheet"]').forEach(function(link) {
            var url = new URL(link.href);
            url.searchParams.set('_reload', Date.now());
            link.href = url.toString();
        });
    }

    function showOverlay(text) {
        clearOverlay();
        var overlay = document.createElement('div');
        overlay.id = 'verso-error-overlay';
        overlay.style.cssText = 'position:fixed;inset:0;background:rgba(0,0,0,0.9);color:#fff;font-family:monospace;padding:24px;overflow:auto;z-index:999999;white-space:pre-wrap;';
        overlay.textContent = text;
        document.body.appendChild(overlay);
    }

    function clearOverlay() {
        var overlay = document.getElementById('verso-error-overlay');
        if (overlay) overlay.remove();
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>
`
