// Package catalog serves the read-only public view of published pages.
package catalog

import (
	"context"

	"blockdocs/internal/equipment"
	"blockdocs/internal/models"
	"blockdocs/internal/page"
)

// HomeSlug is the page shown above the catalog on the home page. It is
// left out of the listing itself.
const HomeSlug = "home"

// Group is one equipment bucket of the home page. Equipment is nil for
// pages without equipment.
type Group struct {
	Equipment *models.Equipment
	Pages     []models.Page
}

// Service provides the public catalog.
type Service struct {
	Pages      *page.Repository
	Equipments *equipment.Repository
}

// NewService creates a new catalog service.
func NewService(pages *page.Repository, equipments *equipment.Repository) *Service {
	return &Service{Pages: pages, Equipments: equipments}
}

// ListPublished lists published pages by display order.
func (s *Service) ListPublished(ctx context.Context, excludeSlug string) ([]models.Page, error) {
	published := true
	return s.Pages.List(ctx, models.PageFilter{Published: &published, ExcludeSlug: excludeSlug})
}

// GetPublishedBySlug finds a published page with its blocks. Unpublished
// pages are reported as not found.
func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (*models.Page, error) {
	return s.Pages.FindBySlug(ctx, slug, true)
}

// Home returns the published pages grouped by equipment.
func (s *Service) Home(ctx context.Context) ([]Group, error) {
	pages, err := s.ListPublished(ctx, HomeSlug)
	if err != nil {
		return nil, err
	}
	equipments, err := s.Equipments.List(ctx)
	if err != nil {
		return nil, err
	}
	return GroupPages(pages, equipments), nil
}

// GroupPages buckets pages by equipment. Buckets follow the equipment
// order and empty ones are skipped. Pages without equipment come last.
func GroupPages(pages []models.Page, equipments []models.Equipment) []Group {
	byEquipment := make(map[int64][]models.Page)
	var loose []models.Page
	for _, p := range pages {
		if p.EquipmentID == nil {
			loose = append(loose, p)
			continue
		}
		byEquipment[*p.EquipmentID] = append(byEquipment[*p.EquipmentID], p)
	}

	groups := []Group{}
	for i := range equipments {
		e := equipments[i]
		if ps := byEquipment[e.ID]; len(ps) > 0 {
			groups = append(groups, Group{Equipment: &e, Pages: ps})
		}
	}
	if len(loose) > 0 {
		groups = append(groups, Group{Pages: loose})
	}
	return groups
}
