package grpcserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"stayhub/internal/app/dto"
	quoteapp "stayhub/internal/app/handlers/quotes"
	"stayhub/internal/app/queries"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
)

const (
	quoteServiceName = "stayhub.quotes.v1.QuoteService"
	quoteMethod      = "/" + quoteServiceName + "/Quote"
)

// QuoteRequest mirrors the HTTP quote body. Dates accept RFC 3339 or
// YYYY-MM-DD; Timezone is an IANA zone used for the past-date check.
type QuoteRequest struct {
	ListingID string `json:"listing_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Adults    int    `json:"adults"`
	Children  int    `json:"children"`
	Infants   int    `json:"infants"`
	Timezone  string `json:"timezone,omitempty"`
	// AllowPast permits check-ins before today, for historical quotes.
	AllowPast bool `json:"allow_past,omitempty"`
}

type QuoteServiceServer interface {
	Quote(ctx context.Context, req *QuoteRequest) (*dto.Quote, error)
}

// QuoteServer answers quote requests for internal callers such as the
// checkout service. Invalid stays are returned as quotes, not errors.
type QuoteServer struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (s *QuoteServer) Quote(ctx context.Context, req *QuoteRequest) (*dto.Quote, error) {
	if s.Queries == nil {
		return nil, status.Error(codes.Unavailable, "quote service unavailable")
	}
	query, err := queryFromRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := queries.Ask[quoteapp.GetQuoteQuery, dto.Quote](ctx, s.Queries, query)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &res, nil
}

func queryFromRequest(req *QuoteRequest) (quoteapp.GetQuoteQuery, error) {
	if req == nil || strings.TrimSpace(req.ListingID) == "" {
		return quoteapp.GetQuoteQuery{}, errors.New("listing_id is required")
	}
	checkIn, err := daterange.Parse(req.CheckIn)
	if err != nil {
		return quoteapp.GetQuoteQuery{}, errors.New("check_in must be RFC3339 or YYYY-MM-DD")
	}
	checkOut, err := daterange.Parse(req.CheckOut)
	if err != nil {
		return quoteapp.GetQuoteQuery{}, errors.New("check_out must be RFC3339 or YYYY-MM-DD")
	}
	loc := time.UTC
	if tz := strings.TrimSpace(req.Timezone); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return quoteapp.GetQuoteQuery{}, errors.New("unknown timezone")
		}
	}
	return quoteapp.GetQuoteQuery{
		ListingID: strings.TrimSpace(req.ListingID),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Adults:    req.Adults,
		Children:  req.Children,
		Infants:   req.Infants,
		AllowPast: req.AllowPast,
		Location:  loc,
	}, nil
}

func (s *QuoteServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domainlistings.ErrNotFound):
		return status.Error(codes.NotFound, "listing not found")
	case errors.Is(err, quoteapp.ErrListingRequired):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domainbooking.ErrListingUnavailable):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	if s.Logger != nil {
		s.Logger.ErrorContext(ctx, "quote failed", "error", err)
	}
	return status.Error(codes.Internal, "internal error")
}

func quoteHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(QuoteRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QuoteServiceServer).Quote(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: quoteMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(QuoteServiceServer).Quote(ctx, req.(*QuoteRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// QuoteServiceDesc is registered by hand; messages travel through the JSON codec.
var QuoteServiceDesc = grpc.ServiceDesc{
	ServiceName: quoteServiceName,
	HandlerType: (*QuoteServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Quote", Handler: quoteHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stayhub/quotes/v1/quote_service",
}

func RegisterQuoteServiceServer(s grpc.ServiceRegistrar, srv QuoteServiceServer) {
	s.RegisterService(&QuoteServiceDesc, srv)
}

// QuoteClient calls the quote service with the JSON content subtype.
type QuoteClient struct {
	cc grpc.ClientConnInterface
}

func NewQuoteClient(cc grpc.ClientConnInterface) *QuoteClient {
	return &QuoteClient{cc: cc}
}

func (c *QuoteClient) Quote(ctx context.Context, req *QuoteRequest, opts ...grpc.CallOption) (*dto.Quote, error) {
	out := new(dto.Quote)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, quoteMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
