package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// runRequest mirrors the expograb API request model.
type runRequest struct {
	MaxPages int `json:"max_pages,omitempty"`
	Timeout  int `json:"timeout,omitempty"`
}

// runResponse mirrors the expograb API response model.
type runResponse struct {
	Success bool `json:"success"`
	Result  *struct {
		Exhibitors []struct {
			Name             string `json:"exhibitor_name"`
			StandNumber      string `json:"stand_no"`
			Country          string `json:"country"`
			Sector           string `json:"sector"`
			BusinessActivity string `json:"business_activity"`
			Hall             string `json:"hall"`
		} `json:"exhibitors"`
		TotalPages   int    `json:"total_pages"`
		PagesScraped int    `json:"pages_scraped"`
		Status       string `json:"status"`
	} `json:"result"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("EXPOGRAB_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("EXPOGRAB_API_KEY")

	s := server.NewMCPServer(
		"expograb",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape_exhibitors",
		mcp.WithDescription("Scrape the exhibition's paginated exhibitor listing and return the collected records. Drives a real browser; a full run can take several minutes."),
		mcp.WithNumber("max_pages",
			mcp.Description("Cap on the number of listing pages to scrape (default: all pages)"),
		),
	)
	s.AddTool(scrapeTool, handleScrapeExhibitors(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleScrapeExhibitors(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Minute}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		maxPages := request.GetInt("max_pages", 0)

		body, err := json.Marshal(runRequest{MaxPages: maxPages})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/runs", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var runResp runResponse
		if err := json.Unmarshal(respBody, &runResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !runResp.Success || runResp.Result == nil {
			errMsg := "scrape run failed"
			if runResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", runResp.Error.Code, runResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		r := runResp.Result
		var b strings.Builder
		fmt.Fprintf(&b, "Status: %s | Pages: %d/%d | Exhibitors: %d\n\n",
			r.Status, r.PagesScraped, r.TotalPages, len(r.Exhibitors))
		fmt.Fprintf(&b, "| Exhibitor Name | Stand No | Country | Sector | Business Activity | Hall |\n")
		fmt.Fprintf(&b, "| --- | --- | --- | --- | --- | --- |\n")
		for _, e := range r.Exhibitors {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				e.Name, e.StandNumber, e.Country, e.Sector, e.BusinessActivity, e.Hall)
		}

		return mcp.NewToolResultText(b.String()), nil
	}
}
