package model

import "time"

// Message is one row of the flat `messages` table. A conversation
// thread is reconstructed by selecting every message where a given
// user is either sender or recipient, ordered by creation time;
// there is no dedicated conversation entity. SenderRole records the
// authenticated role at send time and must never be taken from
// client input. Read is the only mutable field and transitions
// false→true exactly once.
//
// Fields:
//  ID          – primary key identifier.
//  SenderID    – user who sent the message.
//  RecipientID – user the message is addressed to.
//  SenderRole  – PARTICIPANT or ADMIN, fixed at send time.
//  Body        – message text, non-empty after trimming.
//  Read        – whether the recipient has seen the message.
//  CreatedAt   – creation timestamp.
type Message struct {
	ID          uint64    // messages.id
	SenderID    uint64    // messages.sender_id
	RecipientID uint64    // messages.recipient_id
	SenderRole  string    // messages.sender_role
	Body        string    // messages.body
	Read        bool      // messages.read
	CreatedAt   time.Time // messages.created_at
}
