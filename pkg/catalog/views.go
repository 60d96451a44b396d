package catalog

import (
	"sort"
	"strings"

	"cheatsheets/pkg/models"
)

// Filter is the transient search state. An empty Category means no category filter.
type Filter struct {
	Query    string `json:"searchQuery"`
	Category string `json:"activeCategory"`
}

// View is a consistent snapshot of the engine state plus every derived view
type View struct {
	Records          []models.Record `json:"records"`
	CustomCategories []string        `json:"customCategories"`
	SearchQuery      string          `json:"searchQuery"`
	ActiveCategory   string          `json:"activeCategory"`
	IsLoading        bool            `json:"isLoading"`
	FilteredRecords  []models.Record `json:"filteredRecords"`
	Categories       []string        `json:"categories"`
	CategoryCounts   map[string]int  `json:"categoryCounts"`
}

// FilterRecords narrows records to the active category first and then to
// those where any text field contains the query, ignoring case. A query
// that is blank once trimmed matches everything.
func FilterRecords(records []models.Record, f Filter) []models.Record {
	filtered := make([]models.Record, 0, len(records))

	query := ""
	if strings.TrimSpace(f.Query) != "" {
		query = strings.ToLower(f.Query)
	}

	for _, r := range records {
		if f.Category != "" && r.Category != f.Category {
			continue
		}
		if query != "" && !matches(r, query) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func matches(r models.Record, query string) bool {
	return strings.Contains(strings.ToLower(r.Title), query) ||
		strings.Contains(strings.ToLower(r.Description), query) ||
		strings.Contains(strings.ToLower(r.Category), query) ||
		strings.Contains(strings.ToLower(r.Content), query)
}

// Categories returns the sorted union of custom categories and the
// non-blank categories used by records
func Categories(records []models.Record, custom []string) []string {
	seen := make(map[string]bool, len(custom)+len(records))
	out := make([]string, 0, len(custom))

	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, name := range custom {
		add(name)
	}
	for _, r := range records {
		if strings.TrimSpace(r.Category) != "" {
			add(r.Category)
		}
	}

	sort.Strings(out)
	return out
}

// CategoryCounts counts records per category over the whole collection
func CategoryCounts(records []models.Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if r.Category != "" {
			counts[r.Category]++
		}
	}
	return counts
}

// indexOf returns the position of the record with id, or -1
func indexOf(records []models.Record, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func usesCategory(records []models.Record, name string) bool {
	for _, r := range records {
		if r.Category == name {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func withoutCategory(records []models.Record, name string) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if r.Category != name {
			out = append(out, r)
		}
	}
	return out
}

func buildView(records []models.Record, custom []string, f Filter, loading bool) View {
	recs := make([]models.Record, len(records))
	copy(recs, records)
	cats := make([]string, len(custom))
	copy(cats, custom)

	return View{
		Records:          recs,
		CustomCategories: cats,
		SearchQuery:      f.Query,
		ActiveCategory:   f.Category,
		IsLoading:        loading,
		FilteredRecords:  FilterRecords(recs, f),
		Categories:       Categories(recs, cats),
		CategoryCounts:   CategoryCounts(recs),
	}
}
