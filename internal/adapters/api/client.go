package api

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// BidServiceClient calls the bid service over Connect. Messages travel as
// binary protobuf unless WithJSON is passed.
type BidServiceClient struct {
	placeBid            *connect.Client[PlaceBidRequest, PlaceBidResponse]
	getAuction          *connect.Client[GetAuctionRequest, GetAuctionResponse]
	listAuctionBids     *connect.Client[ListAuctionBidsRequest, ListBidsResponse]
	listMyBids          *connect.Client[ListMyBidsRequest, ListBidsResponse]
	listMyNotifications *connect.Client[ListMyNotificationsRequest, ListMyNotificationsResponse]
}

func NewBidServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BidServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithProto()}, opts...)
	return &BidServiceClient{
		placeBid:            connect.NewClient[PlaceBidRequest, PlaceBidResponse](httpClient, baseURL+PlaceBidProcedure, opts...),
		getAuction:          connect.NewClient[GetAuctionRequest, GetAuctionResponse](httpClient, baseURL+GetAuctionProcedure, opts...),
		listAuctionBids:     connect.NewClient[ListAuctionBidsRequest, ListBidsResponse](httpClient, baseURL+ListAuctionBidsProcedure, opts...),
		listMyBids:          connect.NewClient[ListMyBidsRequest, ListBidsResponse](httpClient, baseURL+ListMyBidsProcedure, opts...),
		listMyNotifications: connect.NewClient[ListMyNotificationsRequest, ListMyNotificationsResponse](httpClient, baseURL+ListMyNotificationsProcedure, opts...),
	}
}

func (c *BidServiceClient) PlaceBid(ctx context.Context, req *connect.Request[PlaceBidRequest]) (*connect.Response[PlaceBidResponse], error) {
	return c.placeBid.CallUnary(ctx, req)
}

func (c *BidServiceClient) GetAuction(ctx context.Context, req *connect.Request[GetAuctionRequest]) (*connect.Response[GetAuctionResponse], error) {
	return c.getAuction.CallUnary(ctx, req)
}

func (c *BidServiceClient) ListAuctionBids(ctx context.Context, req *connect.Request[ListAuctionBidsRequest]) (*connect.Response[ListBidsResponse], error) {
	return c.listAuctionBids.CallUnary(ctx, req)
}

func (c *BidServiceClient) ListMyBids(ctx context.Context, req *connect.Request[ListMyBidsRequest]) (*connect.Response[ListBidsResponse], error) {
	return c.listMyBids.CallUnary(ctx, req)
}

func (c *BidServiceClient) ListMyNotifications(ctx context.Context, req *connect.Request[ListMyNotificationsRequest]) (*connect.Response[ListMyNotificationsResponse], error) {
	return c.listMyNotifications.CallUnary(ctx, req)
}
