// Package realtime streams fill-job progress over WebSocket. It is a
// monitoring surface, not an interactive editing one: a client subscribes
// to a job ID and receives one event per visited search node until the
// job finishes (spec.md §5's tracer contract; SPEC_FULL.md §12.3).
package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType distinguishes the kinds of frame a job topic emits.
type MessageType string

const (
	MsgFillProgress MessageType = "fill_progress"
	MsgFillDone     MessageType = "fill_done"
	MsgFillFailed   MessageType = "fill_failed"
	MsgError        MessageType = "error"
)

// Message is the envelope every WebSocket frame carries.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// FillEvent is one node visited during an async fill, per spec.md §5's
// tracer contract. internal/api publishes these; internal/realtime relays
// them to every WebSocket subscriber of the job.
type FillEvent struct {
	NodeCount      int    `json:"nodeCount"`
	BestIncomplete string `json:"bestIncomplete,omitempty"`
	Done           bool   `json:"done"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// topic fans out one job's events to every subscribed client.
type topic struct {
	jobID   string
	clients map[*Client]bool
	mutex   sync.RWMutex
}

// Hub tracks one topic per in-flight async fill job. Subscribers register
// by job ID; PublishFillEvent (called from the job's tracer) broadcasts to
// whichever clients are currently attached to that job.
type Hub struct {
	topics     map[string]*topic
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		topics:     make(map[string]*topic),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.attach(client)
		case client := <-h.unregister:
			h.detach(client)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) attach(client *Client) {
	h.mutex.Lock()
	t, exists := h.topics[client.JobID]
	if !exists {
		t = &topic{jobID: client.JobID, clients: make(map[*Client]bool)}
		h.topics[client.JobID] = t
	}
	h.mutex.Unlock()

	t.mutex.Lock()
	t.clients[client] = true
	t.mutex.Unlock()
	log.Printf("fill progress subscriber attached: job=%s", client.JobID)
}

func (h *Hub) detach(client *Client) {
	h.mutex.RLock()
	t, exists := h.topics[client.JobID]
	h.mutex.RUnlock()
	if !exists {
		return
	}

	t.mutex.Lock()
	if _, ok := t.clients[client]; ok {
		delete(t.clients, client)
		close(client.Send)
	}
	empty := len(t.clients) == 0
	t.mutex.Unlock()

	if empty {
		h.mutex.Lock()
		delete(h.topics, client.JobID)
		h.mutex.Unlock()
	}
}

// publish sends a message to every client subscribed to jobID.
func (h *Hub) publish(jobID string, msgType MessageType, payload interface{}) {
	h.mutex.RLock()
	t, exists := h.topics[jobID]
	h.mutex.RUnlock()
	if !exists {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msgData, err := json.Marshal(Message{Type: msgType, Payload: data})
	if err != nil {
		return
	}

	t.mutex.RLock()
	defer t.mutex.RUnlock()
	for client := range t.clients {
		select {
		case client.Send <- msgData:
		default:
			// Subscriber's buffer is full; drop rather than block the fill.
		}
	}
}

// PublishFillEvent implements api.HubInterface: it is invoked from the
// Filler's tracer (spec.md §5) and from the job's final outcome.
func (h *Hub) PublishFillEvent(jobID string, event FillEvent) {
	msgType := MsgFillProgress
	if event.Done {
		msgType = MsgFillDone
	}
	h.publish(jobID, msgType, event)
}

// CloseJobTopic tears down a job's topic once the fill has finished,
// closing every subscriber's send channel.
func (h *Hub) CloseJobTopic(jobID string) {
	h.mutex.Lock()
	t, exists := h.topics[jobID]
	delete(h.topics, jobID)
	h.mutex.Unlock()
	if !exists {
		return
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()
	for client := range t.clients {
		close(client.Send)
		delete(t.clients, client)
	}
}
