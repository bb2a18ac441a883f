package catalog

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const (
	ApiBaseUrl = "https://api.carretaoautopecas.com.br"
)

type productsResponse struct {
	Products []Product `json:"products"`
}

type attributesResponse struct {
	Attributes AttributeMap `json:"attributes"`
}

type categoryTreeResponse struct {
	Categories []CategoryNode `json:"categories"`
}

type currentCategoriesResponse struct {
	Current map[string]string `json:"current"`
}

type submitBatchRequest struct {
	Items []CategoryAssignment `json:"items"`
}

type ClientOpts struct {
	BaseURL string
	Auth    string
}

// Client talks to the catalog service's admin API. No request timeout is
// set: a stalled call is interrupted only by context cancellation or the
// operator retrying.
type Client struct {
	httpClient *resty.Client
	baseURL    string
	auth       string
}

func NewClient(opts ClientOpts) *Client {
	c := Client{baseURL: ApiBaseUrl}
	if opts.BaseURL != "" {
		c.baseURL = opts.BaseURL
	}
	if opts.Auth != "" {
		c.auth = opts.Auth
	}
	c.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(c.baseURL).
		SetHeaders(
			map[string]string{
				"Accept":     "application/json",
				"User-Agent": "carretao-autocateg/1.0",
			},
		)

	return &c
}

func (c *Client) req(ctx context.Context, result any) *resty.Request {
	request := c.httpClient.
		NewRequest().
		SetContext(ctx).
		SetHeader("Authorization", c.auth)

	if result != nil {
		request.SetResult(result)
	}

	return request
}

// GetProducts fetches the full product list {sku, titulo}.
func (c *Client) GetProducts(ctx context.Context) ([]Product, error) {
	result := &productsResponse{}

	_, err := handleError(c.req(ctx, result).
		Get("/v1/products"))

	return result.Products, err
}

// GetProductAttributes fetches the technical attribute map for all products.
func (c *Client) GetProductAttributes(ctx context.Context) (AttributeMap, error) {
	result := &attributesResponse{}

	_, err := handleError(c.req(ctx, result).
		Get("/v1/products/attributes"))

	return result.Attributes, err
}

// GetCategoryTree fetches the store's category tree.
func (c *Client) GetCategoryTree(ctx context.Context) ([]CategoryNode, error) {
	result := &categoryTreeResponse{}

	_, err := handleError(c.req(ctx, result).
		Get("/v1/categories/tree"))

	return result.Categories, err
}

// GetCurrentCategories fetches the sku -> category slug map as currently
// persisted in the catalog.
func (c *Client) GetCurrentCategories(ctx context.Context) (map[string]string, error) {
	result := &currentCategoriesResponse{}

	_, err := handleError(c.req(ctx, result).
		Get("/v1/products/categories"))

	return result.Current, err
}

// SubmitCategoryBatch persists one batch of category assignments and
// returns the catalog's acknowledgment.
func (c *Client) SubmitCategoryBatch(ctx context.Context, batch []CategoryAssignment) (*BatchAck, error) {
	result := &BatchAck{}

	_, err := handleError(c.req(ctx, result).
		SetBody(submitBatchRequest{Items: batch}).
		Post("/v1/products/categories/batch"))
	if err != nil {
		return nil, err
	}

	return result, nil
}

// handleError is a generic error handler for failing response (>399 status
// code). Without this, failing responses would have nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, fmt.Errorf("request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}

	return res, nil
}
