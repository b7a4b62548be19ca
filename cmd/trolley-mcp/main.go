package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// searchResponse mirrors the Trolley search API response model.
type searchResponse struct {
	Query         string                   `json:"query"`
	Results       map[string][]productJSON `json:"results"`
	TotalProducts int                      `json:"totalProducts"`
	Errors        []struct {
		Retailer string `json:"retailer"`
		Message  string `json:"message"`
	} `json:"errors"`
}

type productJSON struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	URL   string  `json:"url"`
}

// basketResult mirrors one retailer's entry in the basket comparison response.
type basketResult struct {
	TotalPrice float64 `json:"totalPrice"`
	FoundItems []struct {
		ItemQuery string  `json:"itemQuery"`
		Price     float64 `json:"price"`
	} `json:"foundItems"`
	MissingItems    []string `json:"missingItems"`
	PotentialErrors []struct {
		ItemQuery string `json:"itemQuery"`
		Message   string `json:"message"`
	} `json:"potentialErrors"`
	ItemCount int `json:"itemCount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func main() {
	apiURL := os.Getenv("TROLLEY_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("TROLLEY_API_KEY")

	s := server.NewMCPServer(
		"trolley",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	searchTool := mcp.NewTool("search_products",
		mcp.WithDescription("Search South African grocery retailers for a product and return prices grouped by retailer. Slow retailers are scraped live; expect the call to take up to a minute."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The product to search for, e.g. 'full cream milk 2l'"),
		),
		mcp.WithString("retailers",
			mcp.Description("Optional comma-separated retailer keys to search (e.g. 'checkers,makro'). Default: all retailers."),
		),
	)
	s.AddTool(searchTool, handleSearch(apiURL, apiKey))

	basketTool := mcp.NewTool("compare_basket",
		mcp.WithDescription("Price a whole shopping list at every supported retailer and return the total per retailer, including which items could not be found."),
		mcp.WithArray("items",
			mcp.Required(),
			mcp.Description("List of shopping list items, e.g. ['milk', 'brown bread', 'rice 2kg']"),
		),
	)
	s.AddTool(basketTool, handleCompareBasket(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiGet sends a GET request to the Trolley API and returns the body.
func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	return body, resp.StatusCode, err
}

// apiPost sends a POST request to the Trolley API and returns the body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return respBody, resp.StatusCode, err
}

func apiError(body []byte, status int) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	return fmt.Sprintf("API returned status %d", status)
}

func handleSearch(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		path := "/api/v1/search?q=" + url.QueryEscape(query)
		if retailerFilter := request.GetString("retailers", ""); retailerFilter != "" {
			path += "&retailers=" + url.QueryEscape(retailerFilter)
		}

		body, status, err := apiGet(ctx, client, apiURL, apiKey, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(apiError(body, status)), nil
		}

		var resp searchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		return mcp.NewToolResultText(formatSearch(&resp)), nil
	}
}

func handleCompareBasket(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawItems, err := request.RequireStringSlice("items")
		if err != nil {
			return mcp.NewToolResultError("items is required and must be a list of strings"), nil
		}

		body, status, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/basket/compare",
			map[string][]string{"items": rawItems})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if status != http.StatusOK {
			return mcp.NewToolResultError(apiError(body, status)), nil
		}

		var resp map[string]basketResult
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		return mcp.NewToolResultText(formatBasket(resp)), nil
	}
}

// formatSearch renders a search response as readable text for the model.
func formatSearch(resp *searchResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q (%d products)\n", resp.Query, resp.TotalProducts)
	for retailer, products := range resp.Results {
		fmt.Fprintf(&b, "\n%s:\n", retailer)
		if len(products) == 0 {
			b.WriteString("  no results\n")
			continue
		}
		for _, p := range products {
			fmt.Fprintf(&b, "  R%.2f  %s\n", p.Price, p.Name)
		}
	}
	for _, e := range resp.Errors {
		fmt.Fprintf(&b, "\n%s failed: %s\n", e.Retailer, e.Message)
	}
	return b.String()
}

// formatBasket renders a basket comparison as readable text for the model.
func formatBasket(results map[string]basketResult) string {
	var b strings.Builder
	b.WriteString("Basket comparison:\n")
	for retailer, r := range results {
		fmt.Fprintf(&b, "\n%s: total R%.2f (%d of %d items found)\n",
			retailer, r.TotalPrice, r.ItemCount, r.ItemCount+len(r.MissingItems))
		for _, item := range r.FoundItems {
			fmt.Fprintf(&b, "  R%.2f  %s\n", item.Price, item.ItemQuery)
		}
		for _, missing := range r.MissingItems {
			fmt.Fprintf(&b, "  missing: %s\n", missing)
		}
		for _, e := range r.PotentialErrors {
			fmt.Fprintf(&b, "  error on %q: %s\n", e.ItemQuery, e.Message)
		}
	}
	return b.String()
}
