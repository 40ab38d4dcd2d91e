package repository

import (
	"time"

	"github.com/tripmate/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegionCodeRepositoryImpl implements RegionCodeRepository
type RegionCodeRepositoryImpl struct {
	db *gorm.DB
}

func NewRegionCodeRepository(db *gorm.DB) models.RegionCodeRepository {
	return &RegionCodeRepositoryImpl{db: db}
}

func (r *RegionCodeRepositoryImpl) Upsert(codes []models.RegionCode) error {
	if len(codes) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "area_code"}, {Name: "sigungu_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "sort_order", "updated_at"}),
	}).CreateInBatches(codes, 100).Error
}

func (r *RegionCodeRepositoryImpl) ListByArea(areaCode string) ([]models.RegionCode, error) {
	var codes []models.RegionCode
	err := r.db.Where("area_code = ?", areaCode).
		Order("sort_order, sigungu_code").
		Find(&codes).Error
	return codes, err
}

// SearchLogRepositoryImpl implements SearchLogRepository
type SearchLogRepositoryImpl struct {
	db *gorm.DB
}

func NewSearchLogRepository(db *gorm.DB) models.SearchLogRepository {
	return &SearchLogRepositoryImpl{db: db}
}

func (r *SearchLogRepositoryImpl) Create(log *models.SearchLog) error {
	return r.db.Create(log).Error
}

func (r *SearchLogRepositoryImpl) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.SearchLog{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// PopularKeywordRepositoryImpl implements PopularKeywordRepository
type PopularKeywordRepositoryImpl struct {
	db *gorm.DB
}

func NewPopularKeywordRepository(db *gorm.DB) models.PopularKeywordRepository {
	return &PopularKeywordRepositoryImpl{db: db}
}

func (r *PopularKeywordRepositoryImpl) IncrementCount(keyword string) error {
	return r.db.Exec(`
		INSERT INTO popular_keywords (keyword, search_count, last_searched, created_at, updated_at)
		VALUES (?, 1, NOW(), NOW(), NOW())
		ON CONFLICT (keyword)
		DO UPDATE SET
			search_count = popular_keywords.search_count + 1,
			last_searched = NOW(),
			updated_at = NOW()
	`, keyword).Error
}

func (r *PopularKeywordRepositoryImpl) GetTop(limit int) ([]models.PopularKeyword, error) {
	var keywords []models.PopularKeyword
	err := r.db.Order("search_count DESC").
		Limit(limit).
		Find(&keywords).Error
	return keywords, err
}

func (r *PopularKeywordRepositoryImpl) Suggest(fragment string, limit int) ([]models.PopularKeyword, error) {
	var keywords []models.PopularKeyword
	err := r.db.Where("keyword ILIKE ?", "%"+escapeLike(fragment)+"%").
		Order("search_count DESC").
		Limit(limit).
		Find(&keywords).Error
	return keywords, err
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.Exec(`
		INSERT INTO system_health (service_name, status, response_time_ms, error_message, checked_at)
		VALUES (?, ?, ?, ?, NOW())
	`, serviceName, status, responseTime, errorMsg).Error
}

func (r *SystemHealthRepositoryImpl) GetServiceHealth(serviceName string) (*models.SystemHealth, error) {
	var health models.SystemHealth
	err := r.db.Where("service_name = ?", serviceName).
		Order("checked_at DESC").
		First(&health).Error
	if err != nil {
		return nil, err
	}
	return &health, nil
}

func (r *SystemHealthRepositoryImpl) GetAllServicesHealth() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Raw(`
		SELECT DISTINCT ON (service_name) *
		FROM system_health
		ORDER BY service_name, checked_at DESC
	`).Scan(&health).Error
	return health, err
}

func (r *SystemHealthRepositoryImpl) GetUnhealthyServices() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Raw(`
		SELECT DISTINCT ON (service_name) *
		FROM system_health
		WHERE status != 'healthy'
		ORDER BY service_name, checked_at DESC
	`).Scan(&health).Error
	return health, err
}
