package page

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"blockdocs/internal/apperr"
	"blockdocs/internal/models"
	"blockdocs/internal/paste"
	"blockdocs/internal/schema"
)

// BlockInput is a block as sent by the editor. Data may be the payload
// object itself or its stringified form.
type BlockInput struct {
	ID     int64           `json:"id,omitempty"`
	PageID int64           `json:"pageId,omitempty"`
	Type   schema.Type     `json:"type"`
	Order  *int            `json:"order"`
	Data   json.RawMessage `json:"data"`
}

// OrgConverter turns org-mode source into HTML.
type OrgConverter func(src string) (string, error)

// Service composes pages out of blocks on behalf of an admin.
type Service struct {
	Repo      *Repository
	OrgToHTML OrgConverter
}

// NewService creates a new page service.
func NewService(repo *Repository, org OrgConverter) *Service {
	return &Service{Repo: repo, OrgToHTML: org}
}

func requireAdmin(admin *models.AdminUser) error {
	if admin == nil {
		return fmt.Errorf("%w: admin session required", apperr.ErrUnauthorized)
	}
	return nil
}

// encodeBlock checks the type tag and payload together and returns the
// canonical stored form.
func encodeBlock(t schema.Type, data json.RawMessage) (string, error) {
	if !schema.Known(t) {
		return "", apperr.Validation("unknown block type %q", t)
	}
	p, err := schema.FromJSON(t, data)
	if err != nil {
		return "", apperr.Validation("%v", err)
	}
	if err := schema.Validate(p); err != nil {
		return "", apperr.Validation("%v", err)
	}
	s, err := schema.Encode(p)
	if err != nil {
		return "", apperr.Validation("%v", err)
	}
	return s, nil
}

func toBlocks(inputs []BlockInput) ([]models.Block, error) {
	blocks := make([]models.Block, 0, len(inputs))
	for i, in := range inputs {
		data, err := encodeBlock(in.Type, in.Data)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		order := i
		if in.Order != nil {
			order = *in.Order
		}
		blocks = append(blocks, models.Block{Type: in.Type, Order: order, Data: data})
	}
	return blocks, nil
}

func (s *Service) CreatePage(ctx context.Context, admin *models.AdminUser, f models.PageFields) (*models.Page, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.Repo.Create(ctx, f)
}

func (s *Service) GetPage(ctx context.Context, admin *models.AdminUser, id int64) (*models.Page, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, id)
}

func (s *Service) UpdatePage(ctx context.Context, admin *models.AdminUser, id int64, f models.PageFields) (*models.Page, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.Repo.Update(ctx, id, f)
}

func (s *Service) DeletePage(ctx context.Context, admin *models.AdminUser, id int64) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

// ListPages lists pages newest first for the dashboard, optionally narrowed
// by the filter.
func (s *Service) ListPages(ctx context.Context, admin *models.AdminUser, f models.PageFilter) ([]models.Page, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	f.NewestFirst = true
	return s.Repo.List(ctx, f)
}

func (s *Service) CreateBlock(ctx context.Context, admin *models.AdminUser, in BlockInput) (*models.Block, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if in.PageID == 0 {
		return nil, apperr.Validation("pageId is required")
	}
	data, err := encodeBlock(in.Type, in.Data)
	if err != nil {
		return nil, err
	}
	order := 0
	if in.Order != nil {
		order = *in.Order
	} else if order, err = s.Repo.NextBlockOrder(ctx, in.PageID); err != nil {
		return nil, err
	}
	return s.Repo.CreateBlock(ctx, models.Block{PageID: in.PageID, Type: in.Type, Order: order, Data: data})
}

// UpdateBlock changes the payload and order of a block. When the type is
// omitted the stored type is kept and the payload is checked against it.
func (s *Service) UpdateBlock(ctx context.Context, admin *models.AdminUser, id int64, in BlockInput) (*models.Block, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	current, err := s.Repo.FindBlock(ctx, id)
	if err != nil {
		return nil, err
	}

	f := BlockFields{Order: in.Order}
	t := current.Type
	if in.Type != "" {
		t = in.Type
		f.Type = &t
	}
	if len(in.Data) > 0 || f.Type != nil {
		raw := in.Data
		if len(raw) == 0 {
			raw = json.RawMessage(strings.TrimSpace(current.Data))
			if t == schema.TypeRawHTML {
				raw, _ = json.Marshal(current.Data)
			}
		}
		data, err := encodeBlock(t, raw)
		if err != nil {
			return nil, err
		}
		f.Data = &data
	}
	return s.Repo.UpdateBlock(ctx, id, f)
}

func (s *Service) DeleteBlock(ctx context.Context, admin *models.AdminUser, id int64) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	return s.Repo.DeleteBlock(ctx, id)
}

// SaveBlocks replaces the block list of a page. Every payload is checked
// before anything is written, and the write itself is atomic.
func (s *Service) SaveBlocks(ctx context.Context, admin *models.AdminUser, pageID int64, inputs []BlockInput) ([]models.Block, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	blocks, err := toBlocks(inputs)
	if err != nil {
		return nil, err
	}
	return s.Repo.ReplaceBlocks(ctx, pageID, blocks)
}

// SavePage stores page metadata and its full block list together.
func (s *Service) SavePage(ctx context.Context, admin *models.AdminUser, id int64, f models.PageFields, inputs []BlockInput) (*models.Page, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	blocks, err := toBlocks(inputs)
	if err != nil {
		return nil, err
	}
	return s.Repo.SavePage(ctx, id, f, blocks)
}

func (s *Service) DuplicatePage(ctx context.Context, admin *models.AdminUser, id int64, equipmentID *int64) (*models.Page, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.Repo.Duplicate(ctx, id, equipmentID)
}

// ImportOrg converts an org-mode document and appends it to the page as a
// raw-html block.
func (s *Service) ImportOrg(ctx context.Context, admin *models.AdminUser, pageID int64, src string) (*models.Block, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(src) == "" {
		return nil, apperr.Validation("org source is empty")
	}
	if s.OrgToHTML == nil {
		return nil, errors.New("org import is not configured")
	}
	if _, err := s.Repo.FindByID(ctx, pageID); err != nil {
		return nil, err
	}
	html, err := s.OrgToHTML(src)
	if err != nil {
		return nil, apperr.Validation("org source could not be parsed: %v", err)
	}
	return s.appendRawHTML(ctx, pageID, html)
}

// ImportHTML appends an HTML document, such as a converted PDF, as a
// raw-html block. Scripts, styles and editor attributes are removed first.
func (s *Service) ImportHTML(ctx context.Context, admin *models.AdminUser, pageID int64, src string) (*models.Block, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(src) == "" {
		return nil, apperr.Validation("html source is empty")
	}
	if _, err := s.Repo.FindByID(ctx, pageID); err != nil {
		return nil, err
	}
	clean, err := paste.CleanHTML(src)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	if strings.TrimSpace(clean) == "" {
		return nil, apperr.Validation("html source has no content")
	}
	return s.appendRawHTML(ctx, pageID, clean)
}

func (s *Service) appendRawHTML(ctx context.Context, pageID int64, html string) (*models.Block, error) {
	order, err := s.Repo.NextBlockOrder(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return s.Repo.CreateBlock(ctx, models.Block{PageID: pageID, Type: schema.TypeRawHTML, Order: order, Data: html})
}
