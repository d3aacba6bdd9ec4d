package ws

import (
    "encoding/json"
    "log"
    "time"

    "github.com/gorilla/websocket"
)

type evaluatorNotification struct {
    evaluatorID string
    payload     []byte
}

// EvaluatorHub owns the observing evaluator connections, keyed by evaluator
// user id. An evaluator may observe from several dashboards at once.
type EvaluatorHub struct {
    register   chan *evaluatorClient
    unregister chan *evaluatorClient
    notify     chan evaluatorNotification
    clients    map[string]map[*evaluatorClient]struct{}
}

func NewEvaluatorHub() *EvaluatorHub {
    return &EvaluatorHub{
        register:   make(chan *evaluatorClient),
        unregister: make(chan *evaluatorClient),
        notify:     make(chan evaluatorNotification, 256),
        clients:    map[string]map[*evaluatorClient]struct{}{},
    }
}

func (h *EvaluatorHub) Run() {
    for {
        select {
        case client := <-h.register:
            conns := h.clients[client.evaluatorID]
            if conns == nil {
                conns = map[*evaluatorClient]struct{}{}
                h.clients[client.evaluatorID] = conns
            }
            conns[client] = struct{}{}
        case client := <-h.unregister:
            if conns, ok := h.clients[client.evaluatorID]; ok {
                if _, ok := conns[client]; ok {
                    delete(conns, client)
                    close(client.send)
                    client.conn.Close()
                    if len(conns) == 0 {
                        delete(h.clients, client.evaluatorID)
                    }
                }
            }
        case msg := <-h.notify:
            conns, ok := h.clients[msg.evaluatorID]
            if !ok {
                log.Printf("ws: evaluator %s not connected, dropping notice", msg.evaluatorID)
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
        }
    }
}

// Notify pushes an event to one evaluator's connections. Best-effort: logs
// and drops when the evaluator is not observing.
func (h *EvaluatorHub) Notify(evaluatorID string, event EvaluatorEvent) {
    if h == nil {
        return
    }
    data, err := json.Marshal(event)
    if err != nil {
        log.Printf("ws: failed to marshal evaluator event: %v", err)
        return
    }
    h.notify <- evaluatorNotification{evaluatorID: evaluatorID, payload: data}
}

type evaluatorClient struct {
    hub         *EvaluatorHub
    conn        *websocket.Conn
    send        chan []byte
    evaluatorID string
}

func newEvaluatorClient(hub *EvaluatorHub, conn *websocket.Conn, evaluatorID string) *evaluatorClient {
    return &evaluatorClient{
        hub:         hub,
        conn:        conn,
        send:        make(chan []byte, sendBufferSize),
        evaluatorID: evaluatorID,
    }
}

func (c *evaluatorClient) readPump() {
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
        if _, _, err := c.conn.ReadMessage(); err != nil {
            break
        }
    }
}

func (c *evaluatorClient) writePump() {
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
