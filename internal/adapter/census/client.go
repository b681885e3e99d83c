// Package census fetches county population estimates from the US Census
// PEP (Population Estimates Program) API, used to overlay newer figures
// onto the CenPop base populations at startup.
package census

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client reads the PEP county population table.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a PEP API client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// FetchPopulations returns the latest population per county, keyed by
// 5-digit FIPS. The PEP response is a JSON array of rows where the first
// row is a header; column positions are resolved by name, not assumed.
func (c *Client) FetchPopulations(ctx context.Context) (map[string]int, error) {
	u := c.baseURL + "?get=NAME,POP,STATE,COUNTY&for=county:*"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pep request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pep API error: status %d: %s", resp.StatusCode, body)
	}

	var rows [][]string
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("pep response has no data rows")
	}

	header := rows[0]
	col := func(name string) int {
		for i, h := range header {
			if strings.EqualFold(h, name) {
				return i
			}
		}
		return -1
	}
	popCol, stateCol, countyCol := col("POP"), col("STATE"), col("COUNTY")
	if popCol < 0 || stateCol < 0 || countyCol < 0 {
		return nil, fmt.Errorf("pep response has unexpected header %v", header)
	}

	out := make(map[string]int, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) <= popCol || len(row) <= stateCol || len(row) <= countyCol {
			continue
		}
		pop, err := strconv.Atoi(row[popCol])
		if err != nil || pop < 0 {
			continue
		}
		out[row[stateCol]+row[countyCol]] = pop
	}
	return out, nil
}
