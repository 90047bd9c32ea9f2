package domain

import (
	"encoding/json"
	"fmt"
)

const (
	MessageTypeSync          = "sync"
	MessageTypeContentUpdate = "contentUpdate"
)

// Content is an opaque canvas document. The relay stores and forwards it whole.
type Content = json.RawMessage

// InboundMessage is what a producer sends: {"type":"sync","content":...}.
type InboundMessage struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

// ContentUpdate is what consumers receive.
type ContentUpdate struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// DecodeInbound parses one websocket frame. A sync without content is malformed.
func DecodeInbound(data []byte) (InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return InboundMessage{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg.Type == "" {
		return InboundMessage{}, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}
	if msg.Type == MessageTypeSync && len(msg.Content) == 0 {
		return InboundMessage{}, fmt.Errorf("%w: sync without content", ErrMalformedMessage)
	}
	return msg, nil
}

// EncodeContentUpdate builds the frame sent to consumers.
func EncodeContentUpdate(content Content) ([]byte, error) {
	return json.Marshal(ContentUpdate{Type: MessageTypeContentUpdate, Content: content})
}
