package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"newsdesk/editor"
	"newsdesk/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrArticleNotFound  = errors.New("article not found")
	ErrForbidden        = errors.New("you are not allowed to perform this action")
	ErrTitleRequired    = errors.New("please provide an article title")
	ErrCategoryRequired = errors.New("please provide a category")
)

// CreateArticleInput ist die Übermittlungsform eines neuen Artikels,
// wie sie der Editor zusammenstellt.
type CreateArticleInput struct {
	Title     string         `json:"title"`
	Content   []editor.Block `json:"content"`
	Category  string         `json:"category"`
	Tags      []string       `json:"tags"`
	Author    string         `json:"author"`
	Status    string         `json:"status"`
	Published *bool          `json:"published"`
}

// UpdateArticleInput trägt eine vollständige Überarbeitung eines Artikels.
// Der letzte Schreiber gewinnt; es gibt keine Zusammenführung.
type UpdateArticleInput struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   []editor.Block `json:"content"`
	Category  string         `json:"category"`
	Published bool           `json:"published"`
	Status    string         `json:"status"`
}

// ArticleService kümmert sich um Anlegen, Überarbeiten und Lesen von Artikeln.
type ArticleService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewArticleService erstellt einen neuen ArticleService.
func NewArticleService(db *gorm.DB, logger *zap.Logger) *ArticleService {
	return &ArticleService{DB: db, Logger: logger}
}

// Create legt einen Artikel an. Nur Journalisten (und Admins) schreiben.
// Ein als veröffentlicht übermittelter Artikel landet zunächst in der
// Moderationswarteschlange (Status pending) und wird erst durch eine
// Freigabe sichtbar; Entwürfe bleiben Entwürfe.
func (s *ArticleService) Create(ctx context.Context, sess SessionContext, in CreateArticleInput) (*models.Article, error) {
	if !sess.CanWrite() {
		return nil, ErrForbidden
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	category := strings.TrimSpace(in.Category)

	wantsPublish := in.Status == models.StatusPublished || (in.Published != nil && *in.Published)
	if wantsPublish && category == "" {
		return nil, ErrCategoryRequired
	}
	if category == "" {
		category = "General"
	}

	status := models.StatusDraft
	if wantsPublish {
		status = models.StatusPending
	}

	content, err := json.Marshal(editor.Normalize(in.Content))
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	article := &models.Article{
		ID:       uuid.New().String(),
		Title:    title,
		Content:  datatypes.JSON(content),
		AuthorID: sess.UserID,
		Category: category,
		Tags:     datatypes.JSON(tagsJSON),
		Status:   status,
		// published wird erst bei der Freigabe true
		Published: false,
	}
	if err := s.DB.WithContext(ctx).Create(article).Error; err != nil {
		s.Logger.Error("Artikel anlegen fehlgeschlagen", zap.String("author_id", sess.UserID), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, article.ID)
}

// Update überarbeitet einen Artikel vollständig. Nur der Autor selbst oder
// ein Admin darf schreiben. Eine erneute Veröffentlichung eines bereits
// freigegebenen Artikels bleibt freigegeben; alles andere durchläuft wieder
// die Moderation.
func (s *ArticleService) Update(ctx context.Context, sess SessionContext, in UpdateArticleInput) (*models.Article, error) {
	var article models.Article
	err := s.DB.WithContext(ctx).First(&article, "id = ?", in.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	if article.AuthorID != sess.UserID && !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	content, err := json.Marshal(editor.Normalize(in.Content))
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}

	status := models.StatusDraft
	published := false
	if in.Published || in.Status == models.StatusPublished {
		if article.Status == models.StatusPublished {
			status = models.StatusPublished
			published = true
		} else {
			status = models.StatusPending
		}
	}

	updates := map[string]interface{}{
		"title":     title,
		"content":   datatypes.JSON(content),
		"category":  strings.TrimSpace(in.Category),
		"published": published,
		"status":    status,
	}
	if err := s.DB.WithContext(ctx).Model(&article).Updates(updates).Error; err != nil {
		s.Logger.Error("Artikel aktualisieren fehlgeschlagen", zap.String("id", in.ID), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, in.ID)
}

// GetByID liefert einen Artikel samt Autor.
func (s *ArticleService) GetByID(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	err := s.DB.WithContext(ctx).Preload("Author").First(&article, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// ListPublished liefert freigegebene Artikel, optional nach Kategorie
// gefiltert, neueste zuerst.
func (s *ArticleService) ListPublished(ctx context.Context, category string, limit int) ([]models.Article, int64, error) {
	query := s.DB.WithContext(ctx).Model(&models.Article{}).
		Where("status = ?", models.StatusPublished).
		Preload("Author")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var articles []models.Article
	if err := query.Order("created_at desc").Find(&articles).Error; err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// ListByAuthor liefert alle Artikel eines Autors, auch Entwürfe.
func (s *ArticleService) ListByAuthor(ctx context.Context, authorID string) ([]models.Article, error) {
	var articles []models.Article
	err := s.DB.WithContext(ctx).Preload("Author").
		Where("author_id = ?", authorID).
		Order("updated_at desc").
		Find(&articles).Error
	return articles, err
}
