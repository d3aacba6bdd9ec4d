package ws

import (
    "encoding/json"
    "log"
    "time"

    "github.com/gorilla/websocket"
)

type studentNotification struct {
    hash    string
    payload []byte
}

// StudentHub owns the live student connections, grouped by session hash. A
// hash may hold several connections when the policy ceiling allows it.
type StudentHub struct {
    register   chan *studentClient
    unregister chan *studentClient
    notify     chan studentNotification
    closeAll   chan string
    clients    map[string]map[*studentClient]struct{}
}

func NewStudentHub() *StudentHub {
    return &StudentHub{
        register:   make(chan *studentClient),
        unregister: make(chan *studentClient),
        notify:     make(chan studentNotification, 256),
        closeAll:   make(chan string, 16),
        clients:    map[string]map[*studentClient]struct{}{},
    }
}

func (h *StudentHub) Run() {
    for {
        select {
        case client := <-h.register:
            conns := h.clients[client.hash]
            if conns == nil {
                conns = map[*studentClient]struct{}{}
                h.clients[client.hash] = conns
            }
            conns[client] = struct{}{}
        case client := <-h.unregister:
            if conns, ok := h.clients[client.hash]; ok {
                if _, ok := conns[client]; ok {
                    delete(conns, client)
                    close(client.send)
                    client.conn.Close()
                    if len(conns) == 0 {
                        delete(h.clients, client.hash)
                    }
                }
            }
        case msg := <-h.notify:
            conns, ok := h.clients[msg.hash]
            if !ok {
                log.Printf("ws: student %s not connected, dropping notification", msg.hash)
                continue
            }
            for client := range conns {
                select {
                case client.send <- msg.payload:
                default:
                    delete(conns, client)
                    close(client.send)
                    client.conn.Close()
                }
            }
        case hash := <-h.closeAll:
            for client := range h.clients[hash] {
                close(client.send)
                client.conn.Close()
            }
            delete(h.clients, hash)
        }
    }
}

// Notify pushes an event to every connection of a session hash. Best-effort:
// logs and drops when the session has no live connection.
func (h *StudentHub) Notify(hash string, event StudentEvent) {
    if h == nil {
        return
    }
    data, err := json.Marshal(event)
    if err != nil {
        log.Printf("ws: failed to marshal student event: %v", err)
        return
    }
    h.notify <- studentNotification{hash: hash, payload: data}
}

// CloseSession closes every transport for a hash (terminate penalty).
func (h *StudentHub) CloseSession(hash string) {
    if h == nil {
        return
    }
    h.closeAll <- hash
}

type studentClient struct {
    hub    *StudentHub
    conn   *websocket.Conn
    send   chan []byte
    connID string
    hash   string
}

func newStudentClient(hub *StudentHub, conn *websocket.Conn, connID, hash string) *studentClient {
    return &studentClient{
        hub:    hub,
        conn:   conn,
        send:   make(chan []byte, sendBufferSize),
        connID: connID,
        hash:   hash,
    }
}

func (c *studentClient) enqueue(event StudentEvent) {
    data, err := json.Marshal(event)
    if err != nil {
        log.Printf("ws: failed to marshal student event: %v", err)
        return
    }
    select {
    case c.send <- data:
    default:
    }
}

// readPump consumes inbound frames. Only well-formed report-violation events
// reach onViolation; anything else is logged and ignored.
func (c *studentClient) readPump(onViolation func(violationType string)) {
    defer func() {
        c.hub.unregister <- c
    }()
    c.conn.SetReadLimit(maxMessageSize)
    c.conn.SetReadDeadline(time.Now().Add(pongWait))
    c.conn.SetPongHandler(func(string) error {
        c.conn.SetReadDeadline(time.Now().Add(pongWait))
        return nil
    })
    for {
        _, data, err := c.conn.ReadMessage()
        if err != nil {
            break
        }
        var event inboundEvent
        if err := json.Unmarshal(data, &event); err != nil {
            log.Printf("ws: malformed frame from %s, ignored", c.connID)
            continue
        }
        if event.Type != EventReportViolation {
            log.Printf("ws: unexpected event %q from %s, ignored", event.Type, c.connID)
            continue
        }
        if event.ViolationType == "" {
            log.Printf("ws: report-violation without violation_type from %s, ignored", c.connID)
            continue
        }
        onViolation(event.ViolationType)
    }
}

func (c *studentClient) writePump() {
    ticker := time.NewTicker(pingPeriod)
    defer func() {
        ticker.Stop()
        c.conn.Close()
    }()
    for {
        select {
        case msg, ok := <-c.send:
            c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if !ok {
                c.conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }
            w, err := c.conn.NextWriter(websocket.TextMessage)
            if err != nil {
                return
            }
            if _, err := w.Write(msg); err != nil {
                return
            }
            if err := w.Close(); err != nil {
                return
            }
        case <-ticker.C:
            c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}
