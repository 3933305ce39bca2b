package wikimedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DepictsProperty is the "depicts" statement property on Commons structured data.
const DepictsProperty = "P180"

// ErrEntityNotFound is returned when a MediaInfo entity does not exist.
var ErrEntityNotFound = errors.New("mediainfo entity not found")

// CommonsClient handles Commons Action API interactions.
type CommonsClient struct {
	request     *Requester
	APIEndpoint string
}

// NewCommonsClient creates a new Commons client.
func NewCommonsClient(r *Requester, endpoint string) *CommonsClient {
	return &CommonsClient{request: r, APIEndpoint: endpoint}
}

// CategoryMember is one list=categorymembers entry.
type CategoryMember struct {
	PageID int64  `json:"pageid"`
	Title  string `json:"title"`
	Type   string `json:"type"`
}

// CategoryMembers fetches up to limit members of a category.
// memberTypes is the cmtype value, e.g. "file|subcat" or "file".
func (c *CommonsClient) CategoryMembers(ctx context.Context, category string, limit int, memberTypes string) ([]CategoryMember, error) {
	u, err := url.Parse(c.APIEndpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	q := u.Query()
	q.Add("action", "query")
	q.Add("list", "categorymembers")
	q.Add("cmtitle", category)
	q.Add("cmtype", memberTypes)
	q.Add("cmprop", "ids|title|type")
	q.Add("cmlimit", strconv.Itoa(limit))
	q.Add("format", "json")
	u.RawQuery = q.Encode()

	body, err := c.request.Get(ctx, u.String())
	if err != nil {
		return nil, err
	}

	var result struct {
		Query struct {
			CategoryMembers []CategoryMember `json:"categorymembers"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}

	return result.Query.CategoryMembers, nil
}

// FileInfo describes one Commons file page with its image info.
type FileInfo struct {
	PageID      int64
	Title       string
	URL         string
	ThumbURL    string
	Description string
}

type imageInfoResponse struct {
	Continue map[string]json.RawMessage `json:"continue"`
	Query    struct {
		Pages map[string]struct {
			PageID    int64  `json:"pageid"`
			Title     string `json:"title"`
			Index     int    `json:"index"`
			ImageInfo []struct {
				URL         string `json:"url"`
				ThumbURL    string `json:"thumburl"`
				ExtMetadata map[string]struct {
					Value string `json:"value"`
				} `json:"extmetadata"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

func parseFilePages(resp *imageInfoResponse) map[int64]FileInfo {
	files := make(map[int64]FileInfo)
	for _, page := range resp.Query.Pages {
		if len(page.ImageInfo) == 0 {
			continue
		}
		info := page.ImageInfo[0]

		thumb := info.ThumbURL
		if thumb == "" {
			thumb = info.URL
		}

		description := ""
		if meta, ok := info.ExtMetadata["ImageDescription"]; ok {
			description = meta.Value
		}

		files[page.PageID] = FileInfo{
			PageID:      page.PageID,
			Title:       page.Title,
			URL:         info.URL,
			ThumbURL:    thumb,
			Description: description,
		}
	}
	return files
}

// FileInfoBatch fetches image info (url, scaled thumb url, description) for
// the given page ids.
func (c *CommonsClient) FileInfoBatch(ctx context.Context, pageIDs []int64, thumbWidth int) (map[int64]FileInfo, error) {
	if len(pageIDs) == 0 {
		return map[int64]FileInfo{}, nil
	}

	ids := make([]string, len(pageIDs))
	for i, id := range pageIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	u, err := url.Parse(c.APIEndpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Add("action", "query")
	q.Add("pageids", strings.Join(ids, "|"))
	q.Add("prop", "imageinfo")
	q.Add("iiprop", "url|extmetadata")
	q.Add("iiurlwidth", strconv.Itoa(thumbWidth))
	q.Add("format", "json")
	u.RawQuery = q.Encode()

	body, err := c.request.Get(ctx, u.String())
	if err != nil {
		return nil, err
	}

	var result imageInfoResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}

	return parseFilePages(&result), nil
}

// SearchFilesByStatement runs a full-text search restricted to the File
// namespace, e.g. "haswbstatement:P180=Q146". Returns the files found and
// whether the upstream reported a continuation.
func (c *CommonsClient) SearchFilesByStatement(ctx context.Context, search string, limit, offset, thumbWidth int) ([]FileInfo, bool, error) {
	u, err := url.Parse(c.APIEndpoint)
	if err != nil {
		return nil, false, fmt.Errorf("invalid endpoint: %w", err)
	}

	q := u.Query()
	q.Add("action", "query")
	q.Add("generator", "search")
	q.Add("gsrsearch", search)
	q.Add("gsrnamespace", "6")
	q.Add("gsrlimit", strconv.Itoa(limit))
	q.Add("gsroffset", strconv.Itoa(offset))
	q.Add("prop", "imageinfo")
	q.Add("iiprop", "url|extmetadata")
	q.Add("iiurlwidth", strconv.Itoa(thumbWidth))
	q.Add("format", "json")
	u.RawQuery = q.Encode()

	body, err := c.request.Get(ctx, u.String())
	if err != nil {
		return nil, false, err
	}

	var result imageInfoResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, false, fmt.Errorf("failed to decode json: %w", err)
	}

	pages := parseFilePages(&result)

	// generator=search marks the result order via the index field;
	// the pages map itself is unordered.
	indexes := make(map[int64]int, len(result.Query.Pages))
	for _, page := range result.Query.Pages {
		indexes[page.PageID] = page.Index
	}

	files := make([]FileInfo, 0, len(pages))
	for _, f := range pages {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return indexes[files[i].PageID] < indexes[files[j].PageID]
	})

	return files, len(result.Continue) > 0, nil
}

type mediaInfoResponse struct {
	Entities map[string]struct {
		Missing    *string `json:"missing"`
		Statements map[string][]struct {
			Mainsnak struct {
				Snaktype  string `json:"snaktype"`
				Datavalue struct {
					Type  string `json:"type"`
					Value struct {
						ID string `json:"id"`
					} `json:"value"`
				} `json:"datavalue"`
			} `json:"mainsnak"`
		} `json:"statements"`
	} `json:"entities"`
}

// GetDepictsBatch fetches the P180 claim targets for multiple MediaInfo
// entities. Missing entities map to an empty list.
func (c *CommonsClient) GetDepictsBatch(ctx context.Context, mids []string) (map[string][]string, error) {
	depicts := make(map[string][]string)
	if len(mids) == 0 {
		return depicts, nil
	}

	// Same 50-id cap as wbgetentities on Wikidata
	const batchSize = 50
	for i := 0; i < len(mids); i += batchSize {
		end := i + batchSize
		if end > len(mids) {
			end = len(mids)
		}
		chunk := mids[i:end]

		result, err := c.getEntities(ctx, chunk)
		if err != nil {
			return nil, err
		}

		for id, ent := range result.Entities {
			if ent.Missing != nil {
				continue
			}
			depicts[id] = extractDepicts(result, id)
		}
	}

	return depicts, nil
}

// GetDepicts fetches the P180 claim targets for a single MediaInfo entity.
func (c *CommonsClient) GetDepicts(ctx context.Context, mid string) ([]string, error) {
	result, err := c.getEntities(ctx, []string{mid})
	if err != nil {
		return nil, err
	}

	ent, ok := result.Entities[mid]
	if !ok || ent.Missing != nil {
		return nil, ErrEntityNotFound
	}

	return extractDepicts(result, mid), nil
}

func (c *CommonsClient) getEntities(ctx context.Context, mids []string) (*mediaInfoResponse, error) {
	u, err := url.Parse(c.APIEndpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}

	q := u.Query()
	q.Add("action", "wbgetentities")
	q.Add("ids", strings.Join(mids, "|"))
	q.Add("format", "json")
	u.RawQuery = q.Encode()

	body, err := c.request.Get(ctx, u.String())
	if err != nil {
		return nil, err
	}

	var result mediaInfoResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	return &result, nil
}

// extractDepicts pulls the item QIDs out of an entity's P180 statements,
// preserving statement order.
func extractDepicts(resp *mediaInfoResponse, id string) []string {
	var qids []string
	for _, claim := range resp.Entities[id].Statements[DepictsProperty] {
		if claim.Mainsnak.Snaktype != "value" {
			continue
		}
		if claim.Mainsnak.Datavalue.Type != "wikibase-entityid" {
			continue
		}
		if qid := claim.Mainsnak.Datavalue.Value.ID; qid != "" {
			qids = append(qids, qid)
		}
	}
	return qids
}
