package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/xhzhu1024/docqa/internal/retrieval"
)

// Tool names used by the orchestrator to classify sources.
const (
	NameDestinationSearch = "destination_search"
	NameWebSearch         = "web_search"
	NameConvertTimezone   = "convert_timezone"
	NameGeocode           = "maps_geocode"
)

// NewDestinationSearchTool retrieves destination information from the local
// document index.
func NewDestinationSearchTool(r retrieval.LocalRetriever, k int) Tool {
	return Tool{
		Definition: Definition{
			Name:        NameDestinationSearch,
			Description: "Search indexed destination documents for information about attractions, culture, food and travel logistics. Use this for questions about a specific destination.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The destination search query",
					},
				},
				"required": []string{"query"},
			},
		},
		Execute: func(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
			var in struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
			snippets, err := r.Search(ctx, in.Query, k)
			if err != nil {
				return nil, fmt.Errorf("destination search failed: %w", err)
			}
			return json.Marshal(map[string]any{"results": snippets})
		},
	}
}

// NewWebSearchTool exposes the web-search capability as a tool.
func NewWebSearchTool(w retrieval.WebRetriever, maxResults int) Tool {
	return Tool{
		Definition: Definition{
			Name:        NameWebSearch,
			Description: "Search the web for current information. Use this for questions that need up-to-date facts.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The web search query",
					},
				},
				"required": []string{"query"},
			},
		},
		Execute: func(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
			var in struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}
			results, err := w.Search(ctx, in.Query, retrieval.WebSearchOptions{MaxResults: maxResults})
			if err != nil {
				return nil, fmt.Errorf("web search failed: %w", err)
			}
			return json.Marshal(map[string]any{"results": results})
		},
	}
}

// NewTimezoneTool converts a timestamp between IANA time zones.
func NewTimezoneTool() Tool {
	return Tool{
		Definition: Definition{
			Name:        NameConvertTimezone,
			Description: "Convert a date-time between time zones. Expects date_time as 'YYYY-MM-DD HH:MM:SS' and IANA zone names such as 'UTC', 'Asia/Shanghai' or 'America/New_York'.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"date_time":       map[string]any{"type": "string"},
					"source_timezone": map[string]any{"type": "string"},
					"target_timezone": map[string]any{"type": "string"},
				},
				"required": []string{"date_time", "source_timezone", "target_timezone"},
			},
		},
		Execute: func(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
			var in struct {
				DateTime       string `json:"date_time"`
				SourceTimezone string `json:"source_timezone"`
				TargetTimezone string `json:"target_timezone"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}

			const layout = "2006-01-02 15:04:05"
			src, err := time.LoadLocation(in.SourceTimezone)
			if err != nil {
				return nil, fmt.Errorf("unknown source timezone: %w", err)
			}
			dst, err := time.LoadLocation(in.TargetTimezone)
			if err != nil {
				return nil, fmt.Errorf("unknown target timezone: %w", err)
			}
			t, err := time.ParseInLocation(layout, in.DateTime, src)
			if err != nil {
				return nil, fmt.Errorf("invalid date_time: %w", err)
			}
			return json.Marshal(map[string]string{
				"date_time": t.In(dst).Format(layout),
				"timezone":  in.TargetTimezone,
			})
		},
	}
}

const amapGeocodeURL = "https://restapi.amap.com/v3/geocode/geo"

// NewGeocodeTool resolves an address to coordinates through the Amap geocode
// API.
func NewGeocodeTool(apiKey string, timeout time.Duration) Tool {
	client := &http.Client{Timeout: timeout}
	return Tool{
		Definition: Definition{
			Name:        NameGeocode,
			Description: "Resolve a place name or address to geographic coordinates. Use this when the user asks where something is or needs location data for route planning.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"address": map[string]any{
						"type":        "string",
						"description": "The place name or address to resolve",
					},
				},
				"required": []string{"address"},
			},
		},
		Execute: func(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
			var in struct {
				Address string `json:"address"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, fmt.Errorf("invalid arguments: %w", err)
			}

			q := url.Values{}
			q.Set("key", apiKey)
			q.Set("address", in.Address)

			httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, amapGeocodeURL+"?"+q.Encode(), nil)
			if err != nil {
				return nil, fmt.Errorf("failed to create geocode request: %w", err)
			}
			resp, err := client.Do(httpReq)
			if err != nil {
				return nil, fmt.Errorf("failed to call geocode API: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				return nil, fmt.Errorf("geocode API returned status %d: %s", resp.StatusCode, string(body))
			}

			var parsed struct {
				Status   string `json:"status"`
				Geocodes []struct {
					FormattedAddress string `json:"formatted_address"`
					Location         string `json:"location"`
				} `json:"geocodes"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
				return nil, fmt.Errorf("failed to decode geocode response: %w", err)
			}
			if parsed.Status != "1" || len(parsed.Geocodes) == 0 {
				return json.Marshal(map[string]string{"error": "address not found"})
			}
			return json.Marshal(map[string]string{
				"address":  parsed.Geocodes[0].FormattedAddress,
				"location": parsed.Geocodes[0].Location,
			})
		},
	}
}
