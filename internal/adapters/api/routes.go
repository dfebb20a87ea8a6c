package api

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/floroz/hammer/pkg/auth"
)

// BidServiceName is the fully-qualified name of the bid service
const BidServiceName = "hammer.bids.v1.BidService"

const (
	PlaceBidProcedure            = "/" + BidServiceName + "/PlaceBid"
	GetAuctionProcedure          = "/" + BidServiceName + "/GetAuction"
	ListAuctionBidsProcedure     = "/" + BidServiceName + "/ListAuctionBids"
	ListMyBidsProcedure          = "/" + BidServiceName + "/ListMyBids"
	ListMyNotificationsProcedure = "/" + BidServiceName + "/ListMyNotifications"
)

// NewHTTPHandler builds the HTTP handler for every procedure and returns
// the path to mount it on. Procedures acting on behalf of a user go through the
// auth interceptor; auction reads are public.
func NewHTTPHandler(h *BidServiceHandler, verifier *auth.Verifier, opts ...connect.HandlerOption) (string, http.Handler) {
	public := append([]connect.HandlerOption{WithCodecs()}, opts...)
	private := append(append([]connect.HandlerOption{}, public...),
		connect.WithInterceptors(auth.NewAuthInterceptor(verifier)),
	)

	mux := http.NewServeMux()
	mux.Handle(PlaceBidProcedure, connect.NewUnaryHandler(PlaceBidProcedure, h.PlaceBid, private...))
	mux.Handle(GetAuctionProcedure, connect.NewUnaryHandler(GetAuctionProcedure, h.GetAuction, public...))
	mux.Handle(ListAuctionBidsProcedure, connect.NewUnaryHandler(ListAuctionBidsProcedure, h.ListAuctionBids, public...))
	mux.Handle(ListMyBidsProcedure, connect.NewUnaryHandler(ListMyBidsProcedure, h.ListMyBids, private...))
	mux.Handle(ListMyNotificationsProcedure, connect.NewUnaryHandler(ListMyNotificationsProcedure, h.ListMyNotifications, private...))

	return "/" + BidServiceName + "/", mux
}
