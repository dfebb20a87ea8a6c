package api

import (
	"time"

	"github.com/floroz/hammer/internal/domain/auctions"
	"github.com/floroz/hammer/internal/domain/bids"
	"github.com/floroz/hammer/internal/domain/notifications"
)

// Money travels as a decimal string with two fractional digits and
// timestamps as RFC 3339 strings in UTC.

type Bid struct {
	ID        string `json:"id"`
	AuctionID string `json:"auction_id"`
	BidderID  string `json:"bidder_id"`
	Amount    string `json:"amount"`
	BidTime   string `json:"bid_time"`
}

type Auction struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	Status            string `json:"status"`
	StartAt           string `json:"start_at"`
	EndAt             string `json:"end_at"`
	CurrentHighestBid string `json:"current_highest_bid"`
	BidIncrement      string `json:"bid_increment"`
	MinimumNextBid    string `json:"minimum_next_bid"`
	AcceptingBids     bool   `json:"accepting_bids"`
}

type Notification struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	AuctionID string `json:"auction_id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

type PlaceBidRequest struct {
	AuctionID string `json:"auction_id"`
	Amount    string `json:"amount"`
}

type PlaceBidResponse struct {
	Bid *Bid `json:"bid"`
}

type GetAuctionRequest struct {
	ID string `json:"id"`
}

type GetAuctionResponse struct {
	Auction *Auction `json:"auction"`
}

// BidFilter narrows a ledger listing. Empty fields do not filter.
type BidFilter struct {
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	MinAmount string `json:"min_amount,omitempty"`
	MaxAmount string `json:"max_amount,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	Ascending bool   `json:"ascending,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

type ListAuctionBidsRequest struct {
	AuctionID string `json:"auction_id"`
	BidFilter
}

type ListMyBidsRequest struct {
	BidFilter
}

type ListBidsResponse struct {
	Bids []*Bid `json:"bids"`
}

type ListMyNotificationsRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

type ListMyNotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func toBid(b *bids.Bid) *Bid {
	return &Bid{
		ID:        b.ID.String(),
		AuctionID: b.AuctionID.String(),
		BidderID:  b.BidderID.String(),
		Amount:    b.Amount.StringFixed(2),
		BidTime:   formatTime(b.BidTime),
	}
}

func toBids(list []*bids.Bid) []*Bid {
	out := make([]*Bid, len(list))
	for i, b := range list {
		out[i] = toBid(b)
	}
	return out
}

func toAuction(a *auctions.Auction) *Auction {
	return &Auction{
		ID:                a.ID.String(),
		Title:             a.Title,
		Description:       a.Description,
		Status:            a.Status.String(),
		StartAt:           formatTime(a.StartAt),
		EndAt:             formatTime(a.EndAt),
		CurrentHighestBid: a.CurrentHighestBid.StringFixed(2),
		BidIncrement:      a.BidIncrement.StringFixed(2),
		MinimumNextBid:    a.MinimumNextBid().StringFixed(2),
		AcceptingBids:     a.Status.AcceptsBids(),
	}
}

func toNotification(n *notifications.Notification) *Notification {
	return &Notification{
		ID:        n.ID.String(),
		Kind:      string(n.Kind),
		AuctionID: n.AuctionID.String(),
		Message:   n.Message,
		CreatedAt: formatTime(n.CreatedAt),
	}
}
