package ws

import "time"

const (
    writeWait      = 10 * time.Second
    pongWait       = 60 * time.Second
    pingPeriod     = (pongWait * 9) / 10
    maxMessageSize = 1024
    sendBufferSize = 64
)

type Hubs struct {
    Evaluator *EvaluatorHub
    Student   *StudentHub
}

func NewHubs() *Hubs {
    return &Hubs{
        Evaluator: NewEvaluatorHub(),
        Student:   NewStudentHub(),
    }
}

// Start launches both hub loops.
func (h *Hubs) Start() {
    go h.Evaluator.Run()
    go h.Student.Run()
}
