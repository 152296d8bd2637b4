// Package remote mirrors local writes to the hosted PostgREST backend.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Simplici0/spicebooks/internal/config"
	"github.com/Simplici0/spicebooks/internal/costing"
	"github.com/Simplici0/spicebooks/internal/ledger"
)

const (
	tableIngredients = "master_ingredients"
	tableRecipes     = "recipes"
	tableEntries     = "stock_entries"
)

// Client is a resty-backed PostgREST client.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a mirror client. The base URL is the REST root, e.g.
// https://project.example.co/rest/v1.
func NewClient(cfg config.RemoteConfig) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.URL, "/")).
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &Client{httpClient: restyClient}
}

// apiError is the PostgREST error payload.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

type ingredientRow struct {
	Name       string  `json:"name"`
	PricePerKg float64 `json:"price_per_kg"`
}

type recipeRow struct {
	ID           int64                    `json:"id"`
	Name         string                   `json:"name"`
	Ingredients  []costing.IngredientLine `json:"ingredients"`
	Overheads    float64                  `json:"overheads"`
	SellingPrice float64                  `json:"selling_price"`
	Preparation  string                   `json:"preparation"`
	Nutrition    costing.Nutrition        `json:"nutrition"`
	ShelfLife    string                   `json:"shelf_life"`
	Storage      string                   `json:"storage"`
	IsHidden     bool                     `json:"is_hidden"`
}

type entryRow struct {
	ID       int64   `json:"id"`
	Register string  `json:"register"`
	ItemName string  `json:"item_name"`
	Date     string  `json:"date"`
	Opening  float64 `json:"opening"`
	Inbound  float64 `json:"inbound"`
	Outbound float64 `json:"outbound"`
	Wastage  float64 `json:"wastage"`
	Closing  float64 `json:"closing"`
}

// UpsertIngredient writes a catalog row keyed by name.
func (c *Client) UpsertIngredient(ctx context.Context, ing costing.MasterIngredient) error {
	return c.upsert(ctx, tableIngredients, "name", ingredientRow{Name: ing.Name, PricePerKg: ing.PricePerKg})
}

// UpsertRecipe writes a recipe row keyed by id. Ingredient lines travel as a JSON column.
func (c *Client) UpsertRecipe(ctx context.Context, r costing.Recipe) error {
	return c.upsert(ctx, tableRecipes, "id", recipeRow{
		ID:           r.ID,
		Name:         r.Name,
		Ingredients:  r.Ingredients,
		Overheads:    r.Overheads,
		SellingPrice: r.SellingPrice,
		Preparation:  r.Preparation,
		Nutrition:    r.Nutrition,
		ShelfLife:    r.ShelfLife,
		Storage:      r.Storage,
		IsHidden:     r.IsHidden,
	})
}

// UpsertEntry writes a stock entry keyed by register and id.
func (c *Client) UpsertEntry(ctx context.Context, e ledger.Entry) error {
	return c.upsert(ctx, tableEntries, "register,id", entryRow{
		ID:       e.ID,
		Register: string(e.Register),
		ItemName: e.ItemName,
		Date:     ledger.FormatDay(e.Date),
		Opening:  e.Opening,
		Inbound:  e.Inbound,
		Outbound: e.Outbound,
		Wastage:  e.Wastage,
		Closing:  e.Closing,
	})
}

// DeleteEntry removes a stock entry.
func (c *Client) DeleteEntry(ctx context.Context, register ledger.Register, id int64) error {
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("id", fmt.Sprintf("eq.%d", id)).
		SetQueryParam("register", fmt.Sprintf("eq.%s", register)).
		SetError(apiErr).
		Delete(tableEntries)
	if err != nil {
		return fmt.Errorf("delete remote %s entry %d: %w", register, id, err)
	}
	return checkResponse(resp, apiErr)
}

func (c *Client) upsert(ctx context.Context, table, conflict string, row any) error {
	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetQueryParam("on_conflict", conflict).
		SetBody([]any{row}).
		SetError(apiErr).
		Post(table)
	if err != nil {
		return fmt.Errorf("upsert remote %s: %w", table, err)
	}
	return checkResponse(resp, apiErr)
}

func checkResponse(resp *resty.Response, apiErr *apiError) error {
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}
	message := apiErr.Message
	if message == "" {
		message = strings.TrimSpace(resp.String())
	}
	return fmt.Errorf("remote api error: status=%d, code=%s, message=%s", resp.StatusCode(), apiErr.Code, message)
}
