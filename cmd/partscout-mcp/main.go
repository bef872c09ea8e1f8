package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// listing mirrors the partscout API listing model. Price is a number or
// the string "unavailable".
type listing struct {
	Title    string          `json:"title"`
	Price    json.RawMessage `json:"price"`
	Link     string          `json:"link"`
	Site     string          `json:"site"`
	Brand    string          `json:"brand"`
	Seller   string          `json:"seller"`
	Category string          `json:"category"`
}

// searchResponse mirrors the partscout search envelope.
type searchResponse struct {
	Success bool      `json:"success"`
	Count   int       `json:"count"`
	Results []listing `json:"results"`
	Error   string    `json:"error"`
	Code    string    `json:"code"`
}

// component mirrors a saved catalog entry.
type component struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Warranty string  `json:"warranty"`
}

type componentsResponse struct {
	Success    bool        `json:"success"`
	Count      int         `json:"count"`
	Components []component `json:"components"`
	Error      string      `json:"error"`
}

func main() {
	apiURL := os.Getenv("PARTSCOUT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:5000"
	}
	apiURL = strings.TrimRight(apiURL, "/")
	apiKey := os.Getenv("PARTSCOUT_API_KEY")

	s := server.NewMCPServer(
		"partscout",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	searchTool := mcp.NewTool("search_products",
		mcp.WithDescription("Search Indian storefronts (Amazon, Flipkart, MD Computers, Bing Shopping) for PC components. Returns titles, prices in INR, links and a component category for each listing."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Product search text, at least 2 characters, e.g. 'ryzen 5 5600x'"),
		),
		mcp.WithString("seller",
			mcp.Description("Restrict to one source (default: all)"),
			mcp.Enum("all", "amazon", "flipkart", "mdcomputers", "bing"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum listings per source (default: 50, max: 200)"),
		),
	)
	s.AddTool(searchTool, handleSearchProducts(apiURL, apiKey))

	componentsTool := mcp.NewTool("list_components",
		mcp.WithDescription("List components saved in the local catalog, optionally filtered by category."),
		mcp.WithString("category",
			mcp.Description("Category filter, e.g. CPU, GPU, RAM, Storage (case-insensitive)"),
		),
	)
	s.AddTool(componentsTool, handleListComponents(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiGet sends a GET request to the partscout API and returns the response body.
func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string, params url.Values) ([]byte, error) {
	target := apiURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleSearchProducts(apiURL, apiKey string) server.ToolHandlerFunc {
	// A full search renders three storefronts in one browser.
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		params := url.Values{"query": {query}}
		if seller := request.GetString("seller", ""); seller != "" {
			params.Set("seller", seller)
		}
		if limit := request.GetInt("limit", 0); limit > 0 {
			params.Set("limit", strconv.Itoa(limit))
		}

		body, err := apiGet(ctx, client, apiURL, apiKey, "/api/search", params)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp searchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", resp.Code, resp.Error)), nil
		}

		return mcp.NewToolResultText(formatListings(query, resp)), nil
	}
}

func formatListings(query string, resp searchResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d listings for %q\n\n", resp.Count, query)
	for i, l := range resp.Results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, l.Title)
		fmt.Fprintf(&b, "   Price: %s | Site: %s | Category: %s\n", formatPrice(l.Price), l.Site, l.Category)
		if l.Seller != "" {
			fmt.Fprintf(&b, "   Seller: %s\n", l.Seller)
		}
		if l.Brand != "" {
			fmt.Fprintf(&b, "   Brand: %s\n", l.Brand)
		}
		fmt.Fprintf(&b, "   %s\n", l.Link)
	}
	return b.String()
}

func formatPrice(raw json.RawMessage) string {
	var amount float64
	if err := json.Unmarshal(raw, &amount); err == nil {
		return "₹" + strconv.FormatFloat(amount, 'f', -1, 64)
	}
	return "unavailable"
}

func handleListComponents(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := url.Values{}
		if category := request.GetString("category", ""); category != "" {
			params.Set("category", category)
		}

		body, err := apiGet(ctx, client, apiURL, apiKey, "/api/components", params)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp componentsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			return mcp.NewToolResultError(resp.Error), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%d components\n\n", resp.Count)
		for _, c := range resp.Components {
			fmt.Fprintf(&b, "- [%s] %s %s: ₹%.2f", c.Category, c.Brand, c.Name, c.Price)
			if c.Warranty != "" {
				fmt.Fprintf(&b, " (%s warranty)", c.Warranty)
			}
			b.WriteString("\n")
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}
