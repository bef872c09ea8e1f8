package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/partscout/models"
)

// Searcher runs product searches. *aggregator.Aggregator satisfies it.
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
	SearchSource(ctx context.Context, req models.SearchRequest, src models.Source) (*models.SearchResponse, error)
	Sources() []models.Source
}

// Search returns a handler for GET /api/search.
//
// Flow:
//  1. Bind query, seller and limit from the query string.
//  2. Aggregate across the selected sources.
//  3. 200 with the merged listings, or the mapped error status.
func Search(s Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			respondError(c, models.NewSearchError(models.ErrCodeInvalidInput, "invalid search parameters", err), req)
			return
		}

		resp, err := s.Search(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, req)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// BingSearch returns a handler for GET /api/bing-search. It queries Bing
// Shopping alone and ignores any seller parameter.
func BingSearch(s Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			respondError(c, models.NewSearchError(models.ErrCodeInvalidInput, "invalid search parameters", err), req)
			return
		}
		req.Seller = string(models.SourceBing)

		resp, err := s.SearchSource(c.Request.Context(), req, models.SourceBing)
		if err != nil {
			respondError(c, err, req)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps a SearchError to the correct HTTP status code and writes
// the flat error envelope. Not-found responses echo the query and seller.
func respondError(c *gin.Context, err error, req models.SearchRequest) {
	var searchErr *models.SearchError
	if !errors.As(err, &searchErr) {
		searchErr = models.NewSearchError(models.ErrCodeInternal, "search failed", err)
	}

	body := models.SearchResponse{
		Success: false,
		Results: []models.ProductListing{},
		Error:   searchErr.Message,
		Code:    searchErr.Code,
	}

	status := mapErrorToStatus(searchErr)
	switch {
	case status == http.StatusNotFound:
		body.Query = req.Query
		body.Seller = req.Seller
		if body.Seller == "" {
			body.Seller = models.SellerAll
		}
	case status >= http.StatusInternalServerError && searchErr.Err != nil:
		body.Details = searchErr.Err.Error()
	case searchErr.Code == models.ErrCodeInvalidInput && searchErr.Err != nil:
		body.Details = searchErr.Err.Error()
	}

	c.JSON(status, body)
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.SearchError) int {
	switch e.Code {
	case models.ErrCodeQueryTooShort, models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeNoResults, models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
