// Package pipeline runs messages through the sentiment client in resumable
// batches and owns the checkpoint file format.
package pipeline

import (
	"time"

	"chat-analyzer/chat"
	"chat-analyzer/sentiment"
)

// RecordKey identifies a message for resume purposes. Two messages sent by
// the same user within the same second share a key.
type RecordKey struct {
	StrTime string
	User    string
}

// Record is one checkpoint row: the message plus its sentiment, if any
type Record struct {
	Text      string
	Time      time.Time
	User      string
	Type      chat.MessageType
	Sentiment *sentiment.Result
}

// NewRecord pairs a message with its classification
func NewRecord(msg chat.Message, res *sentiment.Result) Record {
	return Record{
		Text:      msg.Text,
		Time:      msg.Time,
		User:      msg.User,
		Type:      msg.Type,
		Sentiment: res,
	}
}

// StrTime formats the timestamp as stored in the checkpoint
func (r Record) StrTime() string {
	return r.Time.Format(chat.TimeLayout)
}

// Key returns the resume key of the record
func (r Record) Key() RecordKey {
	return RecordKey{StrTime: r.StrTime(), User: r.User}
}

// KeyOf returns the resume key of a message
func KeyOf(msg chat.Message) RecordKey {
	return RecordKey{StrTime: msg.StrTime(), User: msg.User}
}
