package catalog

import (
	"strings"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
)

const (
	TabServices = "services"
	TabProducts = "products"
)

// Item is a tab-agnostic view over a catalog entry, returned by Filter so the
// POS front end renders one grid regardless of the active tab.
type Item struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock,omitempty"`
}

// Filter selects the subset of the active tab's list whose name, category or
// description contains the search term (case-insensitive) and whose category
// matches the active category when one is set. Products must additionally be
// active. Pure projection, safe to recompute on every keystroke.
func Filter(activeTab string, searchTerm string, activeCategory string, services []domain.Service, products []domain.Product) []Item {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	category := strings.TrimSpace(activeCategory)

	items := make([]Item, 0, 32)
	switch activeTab {
	case TabProducts:
		for _, p := range products {
			if !p.Active {
				continue
			}
			if !matches(term, category, p.Name, p.Category, p.Description) {
				continue
			}
			items = append(items, Item{
				ID:          p.ID,
				Kind:        domain.KindProduct,
				Name:        p.Name,
				Category:    p.Category,
				Description: p.Description,
				PriceCents:  p.PriceCents,
				Stock:       p.Stock,
			})
		}
	default:
		for _, s := range services {
			if !matches(term, category, s.Name, s.Category, s.Description) {
				continue
			}
			items = append(items, Item{
				ID:          s.ID,
				Kind:        domain.KindService,
				Name:        s.Name,
				Category:    s.Category,
				Description: s.Description,
				PriceCents:  s.PriceCents,
			})
		}
	}
	return items
}

func matches(term string, category string, name string, itemCategory string, description string) bool {
	if category != "" && !strings.EqualFold(category, itemCategory) {
		return false
	}
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), term) ||
		strings.Contains(strings.ToLower(itemCategory), term) ||
		strings.Contains(strings.ToLower(description), term)
}
