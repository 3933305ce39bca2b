package wikimedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// WikidataClient handles Wikidata Action API interactions.
type WikidataClient struct {
	request     *Requester
	APIEndpoint string
}

// NewWikidataClient creates a new Wikidata client.
func NewWikidataClient(r *Requester, endpoint string) *WikidataClient {
	return &WikidataClient{request: r, APIEndpoint: endpoint}
}

// EntityResult is one wbsearchentities match.
type EntityResult struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// SearchEntities searches for items in Wikidata by name/label.
func (c *WikidataClient) SearchEntities(ctx context.Context, query string, limit int) ([]EntityResult, error) {
	u, err := url.Parse(c.APIEndpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	q := u.Query()
	q.Add("action", "wbsearchentities")
	q.Add("search", query)
	q.Add("language", "en")
	q.Add("format", "json")
	q.Add("type", "item")
	q.Add("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	body, err := c.request.Get(ctx, u.String())
	if err != nil {
		return nil, err
	}

	var result struct {
		Search []EntityResult `json:"search"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}

	return result.Search, nil
}

// ResolveEntity returns the best match for a query, or nil when nothing matches.
func (c *WikidataClient) ResolveEntity(ctx context.Context, query string) (*EntityResult, error) {
	results, err := c.SearchEntities(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// GetLabels fetches English labels for multiple entities in chunks.
// Entities without an English label are absent from the result map.
func (c *WikidataClient) GetLabels(ctx context.Context, qids []string) (map[string]string, error) {
	labels := make(map[string]string)
	if len(qids) == 0 {
		return labels, nil
	}

	// Sort for deterministic request composition; work on a copy.
	sortedIDs := make([]string, len(qids))
	copy(sortedIDs, qids)
	sort.Strings(sortedIDs)

	// Wikidata allows max 50 IDs per request
	const batchSize = 50
	for i := 0; i < len(sortedIDs); i += batchSize {
		end := i + batchSize
		if end > len(sortedIDs) {
			end = len(sortedIDs)
		}
		chunk := sortedIDs[i:end]

		u, err := url.Parse(c.APIEndpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint: %w", err)
		}
		q := u.Query()
		q.Add("action", "wbgetentities")
		q.Add("format", "json")
		q.Add("ids", strings.Join(chunk, "|"))
		q.Add("props", "labels")
		q.Add("languages", "en")
		u.RawQuery = q.Encode()

		body, err := c.request.Get(ctx, u.String())
		if err != nil {
			return nil, err
		}

		var result struct {
			Entities map[string]struct {
				Labels map[string]struct {
					Value string `json:"value"`
				} `json:"labels"`
			} `json:"entities"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode json: %w", err)
		}

		for id, ent := range result.Entities {
			if lbl, ok := ent.Labels["en"]; ok {
				labels[id] = lbl.Value
			}
		}
	}

	return labels, nil
}
