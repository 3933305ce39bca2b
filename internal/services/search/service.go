package search

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/anoixa/depicts-editor/internal/wikimedia"
)

const (
	// PageSize 每页文件数
	PageSize = 10

	// WikidataSearchLimit wikidata 实体搜索上限
	WikidataSearchLimit = 10

	thumbWidth        = 320
	maxMembersPerCall = 500
	maxSubcategories  = 5
)

// FileResult 单个文件的搜索结果
type FileResult struct {
	PageID      int64          `json:"pageid"`
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	ThumbURL    string         `json:"thumb_url"`
	Description string         `json:"description"`
	Depicts     []DepictsEntry `json:"depicts"`
}

// DepictsEntry 一条 depicts 声明（QID + 解析出的标签）
type DepictsEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Result 一页搜索结果
type Result struct {
	Results     []FileResult            `json:"results"`
	HasNext     bool                    `json:"has_next"`
	Page        int                     `json:"page"`
	FoundEntity *wikimedia.EntityResult `json:"found_entity"`
}

// Service 搜索服务：分类分页 + depicts 补全
type Service struct {
	commons  *wikimedia.CommonsClient
	wikidata *wikimedia.WikidataClient
}

// NewService 创建搜索服务
func NewService(commons *wikimedia.CommonsClient, wikidata *wikimedia.WikidataClient) *Service {
	return &Service{
		commons:  commons,
		wikidata: wikidata,
	}
}

// Search 返回查询的第 page 页（1 起始）文件结果。
//
// 先按分类成员分页；分类没有任何文件且查询能解析成实体时，
// 退回到 haswbstatement:P180=<QID> 的全文搜索。
func (s *Service) Search(ctx context.Context, query string, page int) (*Result, error) {
	if page < 1 {
		page = 1
	}

	entity, err := s.wikidata.ResolveEntity(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("entity lookup failed: %w", err)
	}

	files, err := s.collectCategoryFiles(ctx, normalizeCategory(query), page*PageSize+1)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 && entity != nil {
		log.Printf("[Search] no category members for %q, falling back to statement search (%s)", query, entity.ID)
		return s.searchByStatement(ctx, entity, page)
	}

	total := len(files)
	start := (page - 1) * PageSize
	end := page * PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	window := files[start:end]

	pageIDs := make([]int64, len(window))
	for i, m := range window {
		pageIDs[i] = m.PageID
	}

	infos, err := s.commons.FileInfoBatch(ctx, pageIDs, thumbWidth)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(window))
	for _, m := range window {
		r := FileResult{PageID: m.PageID, Title: m.Title}
		if info, ok := infos[m.PageID]; ok {
			r.URL = info.URL
			r.ThumbURL = info.ThumbURL
			r.Description = info.Description
		}
		results = append(results, r)
	}

	if err := s.attachDepicts(ctx, results); err != nil {
		return nil, err
	}

	return &Result{
		Results:     results,
		HasNext:     total > page*PageSize,
		Page:        page,
		FoundEntity: entity,
	}, nil
}

// FileDepicts 返回单个文件的 MediaInfo ID 和 depicts 列表。
// 实体不存在时返回 wikimedia.ErrEntityNotFound。
func (s *Service) FileDepicts(ctx context.Context, pageID int64) (string, []DepictsEntry, error) {
	mid := "M" + strconv.FormatInt(pageID, 10)

	qids, err := s.commons.GetDepicts(ctx, mid)
	if err != nil {
		return "", nil, err
	}

	labels, err := s.wikidata.GetLabels(ctx, distinct(qids))
	if err != nil {
		return "", nil, err
	}

	return mid, makeEntries(qids, labels), nil
}

// SearchEntities 按自由文本搜索 wikidata 实体，最多 10 条。
func (s *Service) SearchEntities(ctx context.Context, query string) ([]wikimedia.EntityResult, error) {
	return s.wikidata.SearchEntities(ctx, query, WikidataSearchLimit)
}

// collectCategoryFiles 收集最多 needed 个分类下的文件，去重。
// 主分类不够时遍历前 5 个子分类补齐，每次都从头抓取。
func (s *Service) collectCategoryFiles(ctx context.Context, category string, needed int) ([]wikimedia.CategoryMember, error) {
	limit := needed + 50
	if limit > maxMembersPerCall {
		limit = maxMembersPerCall
	}

	members, err := s.commons.CategoryMembers(ctx, category, limit, "file|subcat")
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var files []wikimedia.CategoryMember
	var subcats []string

	for _, m := range members {
		switch m.Type {
		case "file":
			if !seen[m.PageID] {
				seen[m.PageID] = true
				files = append(files, m)
			}
		case "subcat":
			subcats = append(subcats, m.Title)
		}
	}

	for i := 0; len(files) < needed && i < len(subcats) && i < maxSubcategories; i++ {
		remaining := needed - len(files)
		limit := remaining + 20
		if limit > maxMembersPerCall {
			limit = maxMembersPerCall
		}

		sub, err := s.commons.CategoryMembers(ctx, subcats[i], limit, "file")
		if err != nil {
			return nil, err
		}
		for _, m := range sub {
			if !seen[m.PageID] {
				seen[m.PageID] = true
				files = append(files, m)
			}
		}
	}

	return files, nil
}

// searchByStatement 按 haswbstatement:P180=<QID> 搜索 Commons 文件。
func (s *Service) searchByStatement(ctx context.Context, entity *wikimedia.EntityResult, page int) (*Result, error) {
	offset := (page - 1) * PageSize

	infos, hasMore, err := s.commons.SearchFilesByStatement(ctx,
		"haswbstatement:"+wikimedia.DepictsProperty+"="+entity.ID, PageSize, offset, thumbWidth)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(infos))
	for _, info := range infos {
		results = append(results, FileResult{
			PageID:      info.PageID,
			Title:       info.Title,
			URL:         info.URL,
			ThumbURL:    info.ThumbURL,
			Description: info.Description,
		})
	}

	if err := s.attachDepicts(ctx, results); err != nil {
		return nil, err
	}

	return &Result{
		Results:     results,
		HasNext:     hasMore,
		Page:        page,
		FoundEntity: entity,
	}, nil
}

// attachDepicts 为当前页的文件批量补全 depicts 声明和英文标签。
func (s *Service) attachDepicts(ctx context.Context, results []FileResult) error {
	if len(results) == 0 {
		return nil
	}

	mids := make([]string, len(results))
	for i, r := range results {
		mids[i] = "M" + strconv.FormatInt(r.PageID, 10)
	}

	depicts, err := s.commons.GetDepictsBatch(ctx, mids)
	if err != nil {
		return err
	}

	var allQIDs []string
	for _, qids := range depicts {
		allQIDs = append(allQIDs, qids...)
	}

	labels, err := s.wikidata.GetLabels(ctx, distinct(allQIDs))
	if err != nil {
		return err
	}

	for i := range results {
		results[i].Depicts = makeEntries(depicts[mids[i]], labels)
	}
	return nil
}

// makeEntries 把 QID 列表转成带标签的条目，无英文标签时退回 QID 本身。
func makeEntries(qids []string, labels map[string]string) []DepictsEntry {
	entries := make([]DepictsEntry, 0, len(qids))
	for _, qid := range qids {
		label, ok := labels[qid]
		if !ok {
			label = qid
		}
		entries = append(entries, DepictsEntry{ID: qid, Label: label})
	}
	return entries
}

func normalizeCategory(query string) string {
	if strings.HasPrefix(query, "Category:") {
		return query
	}
	return "Category:" + query
}

func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
