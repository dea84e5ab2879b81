package models

import "time"

type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapAccepted  SwapStatus = "accepted"
	SwapDeclined  SwapStatus = "declined"
	SwapCancelled SwapStatus = "cancelled"
	SwapCompleted SwapStatus = "completed"
)

// Terminal reports whether no further transition is allowed from s.
func (s SwapStatus) Terminal() bool {
	return s == SwapDeclined || s == SwapCancelled || s == SwapCompleted
}

// Swap is a proposed exchange of two members' services.
type Swap struct {
	ID                 string     `bson:"id" json:"id"`
	ProposerID         string     `bson:"proposerId" json:"proposerId"`
	RecipientID        string     `bson:"recipientId" json:"recipientId"`
	OfferedServiceID   string     `bson:"offeredServiceId" json:"offeredServiceId"`
	RequestedServiceID string     `bson:"requestedServiceId" json:"requestedServiceId"`
	Message            string     `bson:"message,omitempty" json:"message,omitempty"`
	Status             SwapStatus `bson:"status" json:"status"`
	ProposerCompleted  bool       `bson:"proposerCompleted" json:"proposerCompleted"`
	RecipientCompleted bool       `bson:"recipientCompleted" json:"recipientCompleted"`
	ReviewedBy         []string   `bson:"reviewedBy" json:"reviewedBy"`
	CreatedAt          time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time  `bson:"updatedAt" json:"updatedAt"`
	RespondedAt        *time.Time `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
	CompletedAt        *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// IsParticipant reports whether userID is one side of the swap.
func (s *Swap) IsParticipant(userID string) bool {
	return s.ProposerID == userID || s.RecipientID == userID
}

// Counterparty returns the other side of the swap from userID's point of view.
func (s *Swap) Counterparty(userID string) string {
	if s.ProposerID == userID {
		return s.RecipientID
	}
	return s.ProposerID
}

type ProposeSwapRequest struct {
	OfferedServiceID   string `json:"offeredServiceId" binding:"required"`
	RequestedServiceID string `json:"requestedServiceId" binding:"required"`
	Message            string `json:"message"`
}

// Review is left by one participant about the other after a completed swap.
type Review struct {
	ID         string    `bson:"id" json:"id"`
	SwapID     string    `bson:"swapId" json:"swapId"`
	ReviewerID string    `bson:"reviewerId" json:"reviewerId"`
	RevieweeID string    `bson:"revieweeId" json:"revieweeId"`
	Rating     int       `bson:"rating" json:"rating"`
	Comment    string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// SwapMatch is a marketplace service suggested to a member, with its match score.
type SwapMatch struct {
	Service Service       `json:"service"`
	Owner   PublicProfile `json:"owner"`
	Score   int           `json:"score"`
	Mutual  bool          `json:"mutual"`
}

// SwapListFilter selects a member's swaps. Role is "sent", "received" or "all".
type SwapListFilter struct {
	Role   string
	Status SwapStatus
}
