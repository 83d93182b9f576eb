package opsserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	quoteshttpmapper "github.com/Apurer/reseller-ops-api/internal/domains/quotes/adapters/http/mapper"
	quotesports "github.com/Apurer/reseller-ops-api/internal/domains/quotes/ports"
	apierrors "github.com/Apurer/reseller-ops-api/internal/shared/errors"
)

// QuotesAPI wires HTTP transport with the quote calculator.
type QuotesAPI struct {
	service quotesports.Service
}

func NewQuotesAPI(service quotesports.Service) QuotesAPI {
	return QuotesAPI{service: service}
}

// Get /api/quotes/catalog
func (api *QuotesAPI) Catalog(c *gin.Context) {
	products, err := api.service.Catalog(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteshttpmapper.FromProducts(products))
}

// Post /api/quotes
// Opens a quote session; the customer body is optional
func (api *QuotesAPI) CreateQuote(c *gin.Context) {
	var payload quoteshttpmapper.Customer
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondBindingError(c, err)
			return
		}
	}
	quote, err := api.service.Create(c.Request.Context(), payload.ToInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quoteshttpmapper.FromView(quote))
}

// Get /api/quotes/:quoteId
func (api *QuotesAPI) GetQuote(c *gin.Context) {
	quote, err := api.service.Get(c.Request.Context(), c.Param("quoteId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteshttpmapper.FromView(quote))
}

// Delete /api/quotes/:quoteId
func (api *QuotesAPI) DiscardQuote(c *gin.Context) {
	if err := api.service.Discard(c.Request.Context(), c.Param("quoteId")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /api/quotes/:quoteId/items
// Adds one unit of a product, capped at its availability
func (api *QuotesAPI) AddItem(c *gin.Context) {
	var payload quoteshttpmapper.AddItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	quote, err := api.service.Add(c.Request.Context(), c.Param("quoteId"), payload.ProductID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteshttpmapper.FromView(quote))
}

// Put /api/quotes/:quoteId/items/:productId
func (api *QuotesAPI) SetItemQuantity(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	var payload quoteshttpmapper.SetQuantity
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	quote, err := api.service.SetQuantity(c.Request.Context(), c.Param("quoteId"), productID, *payload.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteshttpmapper.FromView(quote))
}

// Post /api/quotes/:quoteId/submit
// Finalizes the quote, records it in the audit log and closes the session
func (api *QuotesAPI) SubmitQuote(c *gin.Context) {
	var payload quoteshttpmapper.Customer
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondBindingError(c, err)
			return
		}
	}
	result, err := api.service.Submit(c.Request.Context(), quotesports.SubmitInput{
		QuoteID:  c.Param("quoteId"),
		Customer: payload.ToInput(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteshttpmapper.FromSubmitResult(result))
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}
