package listings

import (
	"context"

	"stayhub/internal/app/dto"
	handlersupport "stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainlistings "stayhub/internal/domain/listings"
)

const searchCatalogKey = "listings.catalog"

type SearchCatalogQuery struct {
	City      string
	MinGuests int
	Limit     int
	Offset    int
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

// SearchCatalogHandler lists active listings with their pricing profiles.
type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.ListingCatalog, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	params := domainlistings.SearchParams{
		City:       q.City,
		MinGuests:  q.MinGuests,
		Limit:      q.Limit,
		Offset:     q.Offset,
		OnlyActive: true,
	}.Normalized()
	result, err := unit.Listings().Search(execCtx, params)
	if err != nil {
		return dto.ListingCatalog{}, err
	}

	items := make([]dto.ListingCard, 0, len(result.Items))
	for _, l := range result.Items {
		items = append(items, dto.MapListingCard(l))
	}
	return dto.ListingCatalog{Items: items, Total: result.Total, Limit: params.Limit, Offset: params.Offset}, nil
}

var _ queries.Handler[SearchCatalogQuery, dto.ListingCatalog] = (*SearchCatalogHandler)(nil)
