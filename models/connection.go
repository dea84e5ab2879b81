package models

import (
	"sort"
	"strings"
	"time"
)

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
)

type Connection struct {
	ID          string           `bson:"id" json:"id"`
	RequesterID string           `bson:"requesterId" json:"requesterId"`
	AddresseeID string           `bson:"addresseeId" json:"addresseeId"`
	Status      ConnectionStatus `bson:"status" json:"status"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// Other returns the member on the other end of the connection.
func (c *Connection) Other(userID string) string {
	if c.RequesterID == userID {
		return c.AddresseeID
	}
	return c.RequesterID
}

// ConnectionView pairs a connection with the other member's profile.
type ConnectionView struct {
	Connection
	Other PublicProfile `json:"other"`
}

type PendingConnections struct {
	Incoming []ConnectionView `json:"incoming"`
	Outgoing []ConnectionView `json:"outgoing"`
}

type ConnectionStatusResponse struct {
	Status       string `json:"status"` // none, pending_outgoing, pending_incoming, connected
	ConnectionID string `json:"connectionId,omitempty"`
}

type ConnectionRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type RespondConnectionRequest struct {
	Accept bool `json:"accept"`
}

// Conversation is the thread between two members.
type Conversation struct {
	ID            string         `bson:"id" json:"id"`
	Participants  []string       `bson:"participants" json:"participants"`
	LastMessage   string         `bson:"lastMessage" json:"lastMessage"`
	LastSenderID  string         `bson:"lastSenderId" json:"lastSenderId"`
	LastMessageAt time.Time      `bson:"lastMessageAt" json:"lastMessageAt"`
	Unread        map[string]int `bson:"unread" json:"-"`
	CreatedAt     time.Time      `bson:"createdAt" json:"createdAt"`
}

// ConversationID derives the deterministic thread id for a pair of members.
func ConversationID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

type ConversationView struct {
	Conversation
	Other       PublicProfile `json:"other"`
	UnreadCount int           `json:"unreadCount"`
}

type Message struct {
	ID             string    `bson:"id" json:"id"`
	ConversationID string    `bson:"conversationId" json:"conversationId"`
	SenderID       string    `bson:"senderId" json:"senderId"`
	Text           string    `bson:"text" json:"text"`
	ReadBy         []string  `bson:"readBy" json:"readBy"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

type SendMessageRequest struct {
	To   string `json:"to" binding:"required"`
	Text string `json:"text" binding:"required"`
}

// MessagePage is one page of a conversation, newest first. NextBefore is empty on the last page.
type MessagePage struct {
	Messages   []Message `json:"messages"`
	NextBefore string    `json:"nextBefore,omitempty"`
}
