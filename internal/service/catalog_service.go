package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/repository"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

const (
	catalogCacheVersionKey = "catalog:version"
	catalogCachePrefix     = "catalog:page"
)

// ServiceCreateInput describes a new listing.
type ServiceCreateInput struct {
	Title        string
	Description  string
	Category     domain.ServiceCategory
	Price        int64
	DeliveryDays int
	Images       []string
	Tags         []string
}

// ServiceUpdateInput carries a partial update; nil fields stay untouched.
type ServiceUpdateInput struct {
	Title        *string
	Description  *string
	Price        *int64
	DeliveryDays *int
	Status       *domain.ServiceStatus
	Tags         []string
}

// CatalogQuery describes the public browse parameters.
type CatalogQuery struct {
	Category   *domain.ServiceCategory
	MinPrice   *int64
	MaxPrice   *int64
	SearchTerm *string
	SortBy     string
	SortDesc   bool
	Page       int
	Limit      int
}

// CatalogPage is one page of the public catalog.
type CatalogPage struct {
	Services []domain.Service `json:"services"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	Limit    int              `json:"limit"`
}

// CatalogService coordinates listing workflows and the public catalog.
type CatalogService struct {
	services repository.ServiceRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService builds the service. The cache client may be nil, in which
// case every browse goes straight to Postgres.
func NewCatalogService(services repository.ServiceRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		services: services,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// CreateService publishes a new listing for the seller.
func (s *CatalogService) CreateService(ctx context.Context, sellerID string, input ServiceCreateInput) (*domain.Service, error) {
	if !domain.ValidServiceCategory(input.Category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{
			"category": string(input.Category),
		})
	}
	svc := &domain.Service{
		SellerID:     sellerID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Category:     input.Category,
		Price:        input.Price,
		DeliveryDays: input.DeliveryDays,
		Images:       input.Images,
		Status:       domain.ServiceStatusActive,
		Tags:         input.Tags,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return svc, nil
}

// UpdateService applies a partial update to a listing the seller owns. A
// listing owned by someone else is reported as not found, not forbidden.
func (s *CatalogService) UpdateService(ctx context.Context, sellerID, serviceID string, input ServiceUpdateInput) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"id": serviceID})
		}
		return nil, err
	}
	if svc.SellerID != sellerID {
		return nil, apperrors.NewNotFound("service", map[string]any{"id": serviceID})
	}

	if input.Title != nil {
		svc.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		svc.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		svc.Price = *input.Price
	}
	if input.DeliveryDays != nil {
		svc.DeliveryDays = *input.DeliveryDays
	}
	if input.Status != nil {
		if !domain.ValidServiceStatus(*input.Status) {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{
				"status": string(*input.Status),
			})
		}
		svc.Status = *input.Status
	}
	if input.Tags != nil {
		svc.Tags = input.Tags
	}

	if err := s.services.UpdateOwned(ctx, svc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"id": serviceID})
		}
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return svc, nil
}

// DeleteService removes a listing the seller owns.
func (s *CatalogService) DeleteService(ctx context.Context, sellerID, serviceID string) error {
	if err := s.services.DeleteOwned(ctx, serviceID, sellerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("service", map[string]any{"id": serviceID})
		}
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

// GetService fetches one listing by id.
func (s *CatalogService) GetService(ctx context.Context, serviceID string) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"id": serviceID})
		}
		return nil, err
	}
	return svc, nil
}

// MyServices lists every listing owned by the seller, regardless of status.
func (s *CatalogService) MyServices(ctx context.Context, sellerID string) ([]domain.Service, error) {
	return s.services.ListWithFilter(ctx, repository.ServiceFilter{
		SellerID: &sellerID,
		SortBy:   "createdAt",
		SortDesc: true,
		Limit:    100,
	})
}

// ListPublic returns one page of active listings, served from the read-through
// cache when the same query was answered recently.
func (s *CatalogService) ListPublic(ctx context.Context, query CatalogQuery) (*CatalogPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	cacheKey := s.catalogCacheKey(ctx, query, page, limit)
	if cacheKey != "" {
		if cached := s.readCachedPage(ctx, cacheKey); cached != nil {
			return cached, nil
		}
	}

	active := domain.ServiceStatusActive
	filter := repository.ServiceFilter{
		Status:     &active,
		Category:   query.Category,
		MinPrice:   query.MinPrice,
		MaxPrice:   query.MaxPrice,
		SearchTerm: query.SearchTerm,
		SortBy:     query.SortBy,
		SortDesc:   query.SortDesc,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}
	if filter.SortBy == "" {
		filter.SortBy = "createdAt"
		filter.SortDesc = true
	}

	services, err := s.services.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.services.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}

	result := &CatalogPage{
		Services: services,
		Total:    total,
		Page:     page,
		Pages:    pages,
		Limit:    limit,
	}
	if cacheKey != "" {
		s.writeCachedPage(ctx, cacheKey, result)
	}
	return result, nil
}

// catalogCacheKey derives a cache key from the query and the current catalog
// version. Bumping the version on every write orphans stale pages, which then
// age out through the TTL. Returns "" when caching is unavailable.
func (s *CatalogService) catalogCacheKey(ctx context.Context, query CatalogQuery, page, limit int) string {
	if s.cache == nil || s.cacheTTL <= 0 {
		return ""
	}
	version, err := s.cache.Get(ctx, catalogCacheVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Debug("catalog cache version unavailable", zap.Error(err))
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:v%d:p%d:l%d", catalogCachePrefix, version, page, limit)
	if query.Category != nil {
		fmt.Fprintf(&sb, ":c=%s", *query.Category)
	}
	if query.MinPrice != nil {
		fmt.Fprintf(&sb, ":min=%d", *query.MinPrice)
	}
	if query.MaxPrice != nil {
		fmt.Fprintf(&sb, ":max=%d", *query.MaxPrice)
	}
	if query.SearchTerm != nil {
		fmt.Fprintf(&sb, ":q=%s", strings.ToLower(strings.TrimSpace(*query.SearchTerm)))
	}
	fmt.Fprintf(&sb, ":s=%s:d=%t", query.SortBy, query.SortDesc)
	return sb.String()
}

func (s *CatalogService) readCachedPage(ctx context.Context, key string) *CatalogPage {
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("catalog cache read failed", zap.Error(err))
		}
		return nil
	}
	var page CatalogPage
	if err := json.Unmarshal(raw, &page); err != nil {
		s.logger.Debug("catalog cache entry corrupt", zap.Error(err))
		return nil
	}
	return &page
}

func (s *CatalogService) writeCachedPage(ctx context.Context, key string, page *CatalogPage) {
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("catalog cache write failed", zap.Error(err))
	}
}

// invalidateCatalog bumps the version key so cached pages stop matching.
func (s *CatalogService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, catalogCacheVersionKey).Err(); err != nil {
		s.logger.Debug("catalog cache invalidation failed", zap.Error(err))
	}
}
