package realtime

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMessageTypes(t *testing.T) {
	types := []MessageType{MsgFillProgress, MsgFillDone, MsgFillFailed, MsgError}

	seen := make(map[MessageType]bool)
	for _, msgType := range types {
		if seen[msgType] {
			t.Errorf("duplicate message type: %s", msgType)
		}
		seen[msgType] = true
	}
}

func TestMessageSerialization(t *testing.T) {
	msg := Message{
		Type:    MsgFillProgress,
		Payload: json.RawMessage(`{"nodeCount":4,"done":false}`),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var decoded Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if decoded.Type != msg.Type {
		t.Errorf("Type = %s, want %s", decoded.Type, msg.Type)
	}
}

func TestFillEventSerialization(t *testing.T) {
	event := FillEvent{NodeCount: 42, BestIncomplete: "RAT..DOG", Done: true}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var decoded FillEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if decoded != event {
		t.Errorf("decoded = %+v, want %+v", decoded, event)
	}
}

func newTestClient(jobID string) *Client {
	return &Client{JobID: jobID, Send: make(chan []byte, 4)}
}

func TestHubAttachPublishDetach(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient("job-1")
	hub.Register(client)
	waitForAttach(t, hub, "job-1")

	hub.PublishFillEvent("job-1", FillEvent{NodeCount: 1})

	select {
	case raw := <-client.Send:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("Unmarshal error: %v", err)
		}
		if msg.Type != MsgFillProgress {
			t.Errorf("Type = %s, want %s", msg.Type, MsgFillProgress)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for fill event")
	}

	hub.Unregister(client)
	waitForDetach(t, hub, "job-1")

	if _, ok := <-client.Send; ok {
		t.Error("expected client Send channel to be closed after detach")
	}
}

func TestHubPublishToUnknownJobIsNoop(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// No subscriber exists for this job; publishing must not panic or block.
	hub.PublishFillEvent("no-such-job", FillEvent{NodeCount: 1})
}

func TestHubCloseJobTopicClosesSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient("job-2")
	hub.Register(client)
	waitForAttach(t, hub, "job-2")

	hub.CloseJobTopic("job-2")

	select {
	case _, ok := <-client.Send:
		if ok {
			t.Error("expected Send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func waitForAttach(t *testing.T, hub *Hub, jobID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mutex.RLock()
		_, exists := hub.topics[jobID]
		hub.mutex.RUnlock()
		if exists {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for topic %s to attach", jobID)
}

func waitForDetach(t *testing.T, hub *Hub, jobID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mutex.RLock()
		_, exists := hub.topics[jobID]
		hub.mutex.RUnlock()
		if !exists {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for topic %s to detach", jobID)
}
