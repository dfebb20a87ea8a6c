package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floroz/hammer/internal/domain/auctions"
	"github.com/floroz/hammer/internal/domain/bids"
	"github.com/floroz/hammer/internal/domain/notifications"
	"github.com/floroz/hammer/pkg/auth"
)

// NotificationLister reads a user's inbox
type NotificationLister interface {
	ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*notifications.Notification, error)
}

type BidServiceHandler struct {
	coordinator    *bids.Coordinator
	auctionService *auctions.Service
	inbox          NotificationLister
	logger         *slog.Logger
}

func NewBidServiceHandler(coordinator *bids.Coordinator, auctionService *auctions.Service, inbox NotificationLister, logger *slog.Logger) *BidServiceHandler {
	return &BidServiceHandler{
		coordinator:    coordinator,
		auctionService: auctionService,
		inbox:          inbox,
		logger:         logger,
	}
}

// PlaceBid bids on behalf of the authenticated user
func (h *BidServiceHandler) PlaceBid(
	ctx context.Context,
	req *connect.Request[PlaceBidRequest],
) (*connect.Response[PlaceBidResponse], error) {
	// Guaranteed by the auth interceptor
	bidderID := auth.MustGetUserID(ctx)

	auctionID, err := uuid.Parse(req.Msg.AuctionID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid auction_id"))
	}
	amount, err := decimal.NewFromString(req.Msg.Amount)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid amount"))
	}

	bid, err := h.coordinator.PlaceBid(ctx, bids.PlaceBidCommand{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
	})
	if err != nil {
		return nil, h.toConnectError(err)
	}

	return connect.NewResponse(&PlaceBidResponse{Bid: toBid(bid)}), nil
}

// GetAuction returns the public view of an auction
func (h *BidServiceHandler) GetAuction(
	ctx context.Context,
	req *connect.Request[GetAuctionRequest],
) (*connect.Response[GetAuctionResponse], error) {
	auctionID, err := uuid.Parse(req.Msg.ID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid id"))
	}

	auction, err := h.auctionService.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, h.toConnectError(err)
	}

	return connect.NewResponse(&GetAuctionResponse{Auction: toAuction(auction)}), nil
}

// ListAuctionBids pages through the ledger of one auction
func (h *BidServiceHandler) ListAuctionBids(
	ctx context.Context,
	req *connect.Request[ListAuctionBidsRequest],
) (*connect.Response[ListBidsResponse], error) {
	auctionID, err := uuid.Parse(req.Msg.AuctionID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid auction_id"))
	}

	query, err := req.Msg.BidFilter.query()
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	query.AuctionID = auctionID

	return h.listBids(ctx, query)
}

// ListMyBids pages through the authenticated user's bids across auctions
func (h *BidServiceHandler) ListMyBids(
	ctx context.Context,
	req *connect.Request[ListMyBidsRequest],
) (*connect.Response[ListBidsResponse], error) {
	query, err := req.Msg.BidFilter.query()
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	query.BidderID = auth.MustGetUserID(ctx)

	return h.listBids(ctx, query)
}

func (h *BidServiceHandler) listBids(ctx context.Context, query bids.ListBidsQuery) (*connect.Response[ListBidsResponse], error) {
	list, err := h.coordinator.ListBids(ctx, query)
	if err != nil {
		return nil, h.toConnectError(err)
	}
	return connect.NewResponse(&ListBidsResponse{Bids: toBids(list)}), nil
}

// ListMyNotifications returns the authenticated user's inbox, newest first
func (h *BidServiceHandler) ListMyNotifications(
	ctx context.Context,
	req *connect.Request[ListMyNotificationsRequest],
) (*connect.Response[ListMyNotificationsResponse], error) {
	userID := auth.MustGetUserID(ctx)

	list, err := h.inbox.ListNotifications(ctx, userID, req.Msg.Limit, req.Msg.Offset)
	if err != nil {
		return nil, h.toConnectError(err)
	}

	out := make([]*Notification, len(list))
	for i, n := range list {
		out[i] = toNotification(n)
	}
	return connect.NewResponse(&ListMyNotificationsResponse{Notifications: out}), nil
}

func (f BidFilter) query() (bids.ListBidsQuery, error) {
	q := bids.ListBidsQuery{
		SortBy:    bids.SortField(f.SortBy),
		Ascending: f.Ascending,
		Limit:     f.Limit,
		Offset:    f.Offset,
	}

	var err error
	if f.From != "" {
		if q.From, err = time.Parse(time.RFC3339, f.From); err != nil {
			return q, errors.New("invalid from")
		}
	}
	if f.To != "" {
		if q.To, err = time.Parse(time.RFC3339, f.To); err != nil {
			return q, errors.New("invalid to")
		}
	}
	if f.MinAmount != "" {
		if q.MinAmount, err = parseAmount(f.MinAmount); err != nil {
			return q, errors.New("invalid min_amount")
		}
	}
	if f.MaxAmount != "" {
		if q.MaxAmount, err = parseAmount(f.MaxAmount); err != nil {
			return q, errors.New("invalid max_amount")
		}
	}
	return q, nil
}

func parseAmount(s string) (decimal.NullDecimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// toConnectError maps domain errors to Connect codes
func (h *BidServiceHandler) toConnectError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, bids.ErrNotFound),
		errors.Is(err, bids.ErrBidNotFound),
		errors.Is(err, auctions.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, bids.ErrInvalidState), errors.Is(err, bids.ErrBidTooLow):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, bids.ErrInvalidAmount), errors.Is(err, bids.ErrInvalidQuery):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, bids.ErrConcurrencyTimeout):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		h.logger.Error("Request failed", "error", err)
		return connect.NewError(connect.CodeInternal, fmt.Errorf("internal error"))
	}
}
