// Package chat holds the exported chat message model, the message-type
// classifier and the CSV loader for exported chat records.
package chat

import "time"

// TimeLayout is the timestamp format of exported chat records
const TimeLayout = "2006-01-02 15:04:05"

// MessageType tags the kind of content a message carries
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeEmoji MessageType = "emoji"
	TypeImage MessageType = "image"
	TypeEmpty MessageType = "empty"
	TypeOther MessageType = "other"
)

// MessageTypes lists every tag the classifier can produce
var MessageTypes = []MessageType{TypeText, TypeEmoji, TypeImage, TypeEmpty, TypeOther}

// ParseMessageType maps a stored tag back to a MessageType
func ParseMessageType(s string) (MessageType, bool) {
	for _, t := range MessageTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Message is one classified chat message
type Message struct {
	Text string
	Time time.Time
	User string
	Type MessageType
}

// NewMessage classifies text and returns the message
func NewMessage(text string, ts time.Time, user string) Message {
	return Message{
		Text: text,
		Time: ts,
		User: user,
		Type: Classify(text),
	}
}

// StrTime formats the timestamp the way the export and checkpoint files store it
func (m Message) StrTime() string {
	return m.Time.Format(TimeLayout)
}
