package services

import (
	"context"
	"errors"

	"newsdesk/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModerationService kümmert sich um die Admin-Seite der Plattform:
// Freigabe, Ablehnung und Löschung von Artikeln sowie die Kennzahlen des
// Dashboards. Löschen ist ein Status-Übergang, keine Zeilenlöschung.
type ModerationService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewModerationService erstellt einen neuen ModerationService.
func NewModerationService(db *gorm.DB, logger *zap.Logger) *ModerationService {
	return &ModerationService{DB: db, Logger: logger}
}

// Pending liefert alle Artikel in der Moderationswarteschlange, älteste zuerst.
func (s *ModerationService) Pending(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := s.DB.WithContext(ctx).Preload("Author").
		Where("status = ?", models.StatusPending).
		Order("created_at asc").
		Find(&articles).Error
	return articles, err
}

// Approved liefert alle freigegebenen Artikel, neueste zuerst.
func (s *ModerationService) Approved(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := s.DB.WithContext(ctx).Preload("Author").
		Where("status = ?", models.StatusPublished).
		Order("created_at desc").
		Find(&articles).Error
	return articles, err
}

// setStatus führt einen Moderations-Übergang auf genau einem Artikel aus.
func (s *ModerationService) setStatus(ctx context.Context, id, status string, published bool) error {
	res := s.DB.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "published": published})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrArticleNotFound
	}
	s.Logger.Info("Moderationsentscheidung", zap.String("article_id", id), zap.String("status", status))
	return nil
}

// Approve gibt einen Artikel frei.
func (s *ModerationService) Approve(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.StatusPublished, true)
}

// Reject lehnt einen Artikel ab.
func (s *ModerationService) Reject(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.StatusRejected, false)
}

// Delete nimmt einen Artikel von der Plattform.
func (s *ModerationService) Delete(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, models.StatusDeleted, false)
}

// BulkApprove gibt mehrere Artikel frei und liefert die Zahl der Erfolge.
// Ein unbekannter Artikel bricht den Stapel nicht ab.
func (s *ModerationService) BulkApprove(ctx context.Context, ids []string) (int, error) {
	approved := 0
	for _, id := range ids {
		if err := s.Approve(ctx, id); err != nil {
			if errors.Is(err, ErrArticleNotFound) {
				s.Logger.Warn("Stapel-Freigabe: Artikel unbekannt", zap.String("article_id", id))
				continue
			}
			return approved, err
		}
		approved++
	}
	return approved, nil
}

// DashboardCounts sind die Kennzahlen des Admin-Dashboards.
type DashboardCounts struct {
	Readers     int64 `json:"readers_count"`
	Journalists int64 `json:"journalists_count"`
	Pending     int64 `json:"pending_count"`
}

// Counts liefert die Kennzahlen des Admin-Dashboards.
func (s *ModerationService) Counts(ctx context.Context) (DashboardCounts, error) {
	var c DashboardCounts
	db := s.DB.WithContext(ctx)
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleReader).Count(&c.Readers).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleJournalist).Count(&c.Journalists).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.Article{}).Where("status = ?", models.StatusPending).Count(&c.Pending).Error; err != nil {
		return c, err
	}
	return c, nil
}
