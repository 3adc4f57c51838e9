package catalog

import (
	"context"

	"github.com/m3rciful/cinebot/internal/domain"
)

// Order selects the listing order of a page.
type Order int

const (
	ByViews Order = iota
	ByRecency
)

// Page is one slice of a paginated listing. Number is 1-based.
type Page struct {
	Items  []domain.Item
	Number int
	Pages  int
	Total  int
	Size   int
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.Pages }

// Offset is the rank of the first item on the page, minus one.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Page loads page number (clamped into range) of the given listing.
func (s *Service) Page(ctx context.Context, order Order, number, size int) (Page, error) {
	if size <= 0 {
		size = 10
	}
	total, err := s.Count(ctx)
	if err != nil {
		return Page{}, err
	}
	pages := max((total+size-1)/size, 1)
	number = min(max(number, 1), pages)
	p := Page{Number: number, Pages: pages, Total: total, Size: size}
	if total == 0 {
		return p, nil
	}
	if order == ByRecency {
		p.Items, err = s.Recent(ctx, size, p.Offset())
	} else {
		p.Items, err = s.TopByViews(ctx, size, p.Offset())
	}
	if err != nil {
		return Page{}, err
	}
	return p, nil
}
