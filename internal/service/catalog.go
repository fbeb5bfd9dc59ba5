package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/internal/validate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

const ItemsPerPage = 2

type ImageStore interface {
	Save(name string, r io.Reader) (string, error)
	Delete(url string) error
}

type Indexer interface {
	IndexProduct(ctx context.Context, prod *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error)
}

// Image is an uploaded file attached to a product form.
type Image struct {
	Name string
	Body io.Reader
}

type Page struct {
	Products        []models.Product `json:"prods"`
	CurrentPage     int              `json:"currentPage"`
	HasNextPage     bool             `json:"hasNextPage"`
	HasPreviousPage bool             `json:"hasPreviousPage"`
	NextPage        int              `json:"nextPage"`
	PreviousPage    int              `json:"previousPage"`
	LastPage        int              `json:"lastPage"`
	TotalProducts   int64            `json:"totalProducts"`
}

func newPage(items []models.Product, page int, total int64) *Page {
	if items == nil {
		items = []models.Product{}
	}
	meta := util.PageMeta(page, ItemsPerPage, total)
	return &Page{
		Products:        items,
		CurrentPage:     meta.Current,
		HasNextPage:     meta.HasNext,
		HasPreviousPage: meta.HasPrevious,
		NextPage:        meta.Next,
		PreviousPage:    meta.Previous,
		LastPage:        meta.Last,
		TotalProducts:   total,
	}
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Images ImageStore
	Index  Indexer
	Events mykafka.Publisher
}

func (s *CatalogService) ListProducts(ctx context.Context, page int) (*Page, error) {
	page, offset := util.Calculate(page, ItemsPerPage)
	total, items, err := s.Repo.ListProducts(ctx, offset, ItemsPerPage)
	if err != nil {
		return nil, storeErr("list products", err)
	}
	return newPage(items, page, total), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, storeErr("get product", err)
	}
	return prod, nil
}

func (s *CatalogService) ListOwnProducts(ctx context.Context, owner uuid.UUID) ([]models.Product, error) {
	items, err := s.Repo.ListProductsByOwner(ctx, owner)
	if err != nil {
		return nil, storeErr("list own products", err)
	}
	return items, nil
}

const imageRequired = "Attached file is not an image."

func (s *CatalogService) CreateProduct(ctx context.Context, owner session.Identity, in transport.ProductInput, img *Image) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	in.Normalize()
	var extra []validate.FieldError
	if img == nil {
		extra = append(extra, validate.FieldError{Field: "image", Message: imageRequired})
	}
	if err := collect(&in, extra...); err != nil {
		return nil, err
	}

	imageURL, err := s.Images.Save(img.Name, img.Body)
	if err != nil {
		return nil, fmt.Errorf("save image: %w", errors.Join(ErrPersistence, err))
	}

	prod := &models.Product{
		Title:       in.Title,
		Price:       decimal.RequireFromString(in.Price).Round(2),
		Description: in.Description,
		ImageURL:    imageURL,
		UserID:      owner.UserID,
	}
	if _, err := s.Repo.CreateProduct(ctx, prod); err != nil {
		if delErr := s.Images.Delete(imageURL); delErr != nil {
			l.Error("image_cleanup_failed", "image", imageURL, "error", delErr)
		}
		return nil, storeErr("create product", err)
	}

	s.indexProduct(ctx, prod)
	publish(ctx, s.Events, mykafka.TopicProduct, event("product_created", owner.UserID, prod.ID, map[string]any{
		"title": prod.Title,
		"price": prod.Price.StringFixed(2),
	}))
	return prod, nil
}

// UpdateProduct replaces the editable fields; a new image replaces and deletes the old file.
func (s *CatalogService) UpdateProduct(ctx context.Context, owner session.Identity, id uuid.UUID, in transport.ProductInput, img *Image) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product")

	in.Normalize()
	if err := collect(&in); err != nil {
		return nil, err
	}

	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, storeErr("get product", err)
	}
	if !owner.Owns(prod.UserID) {
		return nil, fmt.Errorf("update product %s: %w", id, ErrForbidden)
	}

	prod.Title = in.Title
	prod.Price = decimal.RequireFromString(in.Price).Round(2)
	prod.Description = in.Description

	oldImage, newImage := "", ""
	if img != nil {
		url, err := s.Images.Save(img.Name, img.Body)
		if err != nil {
			return nil, fmt.Errorf("save image: %w", errors.Join(ErrPersistence, err))
		}
		oldImage, newImage, prod.ImageURL = prod.ImageURL, url, url
	}

	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		if newImage != "" {
			if delErr := s.Images.Delete(newImage); delErr != nil {
				l.Error("image_cleanup_failed", "image", newImage, "error", delErr)
			}
		}
		return nil, storeErr("save product", err)
	}
	if oldImage != "" {
		if err := s.Images.Delete(oldImage); err != nil {
			l.Error("old_image_delete_failed", "image", oldImage, "error", err)
		}
	}

	s.indexProduct(ctx, prod)
	publish(ctx, s.Events, mykafka.TopicProduct, event("product_updated", owner.UserID, prod.ID, map[string]any{
		"title": prod.Title,
		"price": prod.Price.StringFixed(2),
	}))
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, owner session.Identity, id uuid.UUID) error {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return storeErr("get product", err)
	}
	if !owner.Owns(prod.UserID) {
		return fmt.Errorf("delete product %s: %w", id, ErrForbidden)
	}

	if err := s.Repo.DeleteProduct(ctx, id, owner.UserID); err != nil {
		return storeErr("delete product", err)
	}
	if err := s.Images.Delete(prod.ImageURL); err != nil {
		return fmt.Errorf("delete image: %w", errors.Join(ErrPersistence, err))
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("unindex_product_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProduct, event("product_deleted", owner.UserID, id, nil))
	return nil
}

// SearchProducts uses the search index when configured and falls back to a
// substring match when it is absent or failing.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, page int) (*Page, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")
	page, offset := util.Calculate(page, ItemsPerPage)

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, offset, ItemsPerPage)
		if err == nil {
			found, err := s.Repo.GetProductsByIDs(ctx, ids)
			if err != nil {
				return nil, storeErr("load search hits", err)
			}
			items := make([]models.Product, 0, len(ids))
			for _, id := range ids {
				if p, ok := found[id]; ok {
					items = append(items, p)
				}
			}
			return newPage(items, page, total), nil
		}
		l.Warn("index_search_failed", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, q, offset, ItemsPerPage)
	if err != nil {
		return nil, storeErr("search products", err)
	}
	return newPage(items, page, total), nil
}

// ExportOwnProducts writes the owner's products as an xlsx workbook.
func (s *CatalogService) ExportOwnProducts(ctx context.Context, owner uuid.UUID, w io.Writer) error {
	products, err := s.ListOwnProducts(ctx, owner)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range []string{"ID", "Title", "Price", "Description", "ImageURL", "CreatedAt", "UpdatedAt"} {
		headerRow.AddCell().SetValue(h)
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID.String())
		row.AddCell().SetValue(p.Title)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.ImageURL)
		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (s *CatalogService) indexProduct(ctx context.Context, prod *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, prod); err != nil {
		logging.FromContext(ctx).Error("index_product_failed", "product_id", prod.ID, "error", err)
	}
}
