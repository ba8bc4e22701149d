package mailmap

import (
	"sort"
	"strconv"
	"time"

	"github.com/nhle/mailai/internal/model"
	"github.com/nhle/mailai/internal/textnorm"
)

// FallbackIDPrefix is used for categories whose name slugifies to "".
const FallbackIDPrefix = "category-"

// MapAnalysis maps entries with the default placeholders.
func MapAnalysis(entries []model.AnalysisEntry, now time.Time) []model.Category {
	return defaultMapper.MapAnalysis(entries, now)
}

// MapAnalysis converts the analysis payload into categories ordered by
// descending email count; ties keep the payload order. Identifiers are
// unique and never equal to the general category's.
func (m Mapper) MapAnalysis(entries []model.AnalysisEntry, now time.Time) []model.Category {
	ids := newIDAllocator()

	cats := make([]model.Category, 0, len(entries))
	for _, entry := range entries {
		cats = append(cats, model.Category{
			ID:      ids.allocate(textnorm.Slugify(entry.Name)),
			Name:    entry.Name,
			Summary: textnorm.Trim(entry.Block.GlobalSummary),
			Emails:  m.MapEmails(entry.Block.Emails, now),
		})
	}

	sort.SliceStable(cats, func(i, j int) bool {
		return len(cats[i].Emails) > len(cats[j].Emails)
	})

	return cats
}

// idAllocator hands out unique category identifiers.
type idAllocator struct {
	used      map[string]bool
	fallbacks int
}

func newIDAllocator() *idAllocator {
	return &idAllocator{
		used: map[string]bool{model.GeneralID: true},
	}
}

// allocate returns slug, or a category-N fallback when slug is empty,
// suffixed with -2, -3, ... until it is unused.
func (a *idAllocator) allocate(slug string) string {
	base := slug
	if base == "" {
		for {
			a.fallbacks++
			base = FallbackIDPrefix + strconv.Itoa(a.fallbacks)
			if !a.used[base] {
				break
			}
		}
	}

	id := base
	for n := 2; a.used[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}

	a.used[id] = true
	return id
}
