package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsdesk/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrEmptyComment = errors.New("comment must not be empty")

// articleCounts ist der Cache-Eintrag für die heißen Zähler eines
// Artikels. Quelle der Wahrheit bleibt immer die Datenbank.
type articleCounts struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// countsCache hält die Zähler eines Artikels unter TTL vor. Ein Fehlschlag
// im Cache darf einen Request nie scheitern lassen; die Implementierungen
// protokollieren nur.
type countsCache interface {
	GetCounts(ctx context.Context, articleID string) (articleCounts, bool)
	SetCounts(ctx context.Context, articleID string, c articleCounts)
	DelCounts(ctx context.Context, articleID string)
}

// redisCounts ist die Redis-Ausprägung des Zähler-Caches.
type redisCounts struct {
	rdb    *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

func countsKey(articleID string) string {
	return fmt.Sprintf("article:%s:counts", articleID)
}

func (r *redisCounts) GetCounts(ctx context.Context, articleID string) (articleCounts, bool) {
	raw, err := r.rdb.Get(ctx, countsKey(articleID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("Zähler-Cache nicht lesbar", zap.String("article_id", articleID), zap.Error(err))
		}
		return articleCounts{}, false
	}
	var c articleCounts
	if json.Unmarshal([]byte(raw), &c) != nil {
		return articleCounts{}, false
	}
	return c, true
}

func (r *redisCounts) SetCounts(ctx context.Context, articleID string, c articleCounts) {
	raw, _ := json.Marshal(c)
	if err := r.rdb.Set(ctx, countsKey(articleID), raw, r.ttl).Err(); err != nil {
		r.logger.Warn("Zähler-Cache nicht schreibbar", zap.String("article_id", articleID), zap.Error(err))
	}
}

func (r *redisCounts) DelCounts(ctx context.Context, articleID string) {
	if err := r.rdb.Del(ctx, countsKey(articleID)).Err(); err != nil {
		r.logger.Warn("Zähler-Cache nicht invalidierbar", zap.String("article_id", articleID), zap.Error(err))
	}
}

// InteractionService kümmert sich um Likes, gemerkte Artikel und Kommentare
// samt der denormalisierten Zähler auf dem Artikel.
type InteractionService struct {
	DB     *gorm.DB
	Cache  countsCache
	Logger *zap.Logger
}

// NewInteractionService erstellt einen neuen InteractionService. Ohne Redis
// (rdb nil) laufen alle Zähler-Lesezugriffe direkt gegen die Datenbank.
func NewInteractionService(db *gorm.DB, rdb *redis.Client, logger *zap.Logger, cacheTTL time.Duration) *InteractionService {
	s := &InteractionService{DB: db, Logger: logger}
	if rdb != nil {
		s.Cache = &redisCounts{rdb: rdb, logger: logger, ttl: cacheTTL}
	}
	return s
}

// ToggleLike setzt oder entfernt das Like eines Benutzers und hält den
// Zähler auf dem Artikel transaktional konsistent.
func (s *InteractionService) ToggleLike(ctx context.Context, articleID, userID string) (liked bool, likes int, err error) {
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if e := tx.First(&article, "id = ?", articleID).Error; e != nil {
			if errors.Is(e, gorm.ErrRecordNotFound) {
				return ErrArticleNotFound
			}
			return e
		}

		var existing models.Like
		e := tx.Where("article_id = ? AND user_id = ?", articleID, userID).First(&existing).Error
		switch {
		case e == nil:
			if e := tx.Delete(&existing).Error; e != nil {
				return e
			}
			liked = false
		case errors.Is(e, gorm.ErrRecordNotFound):
			if e := tx.Create(&models.Like{ArticleID: articleID, UserID: userID}).Error; e != nil {
				return e
			}
			liked = true
		default:
			return e
		}

		var total int64
		if e := tx.Model(&models.Like{}).Where("article_id = ?", articleID).Count(&total).Error; e != nil {
			return e
		}
		likes = int(total)
		return tx.Model(&models.Article{}).Where("id = ?", articleID).
			Update("likes_count", likes).Error
	})
	if err != nil {
		return false, 0, err
	}
	s.invalidateCounts(ctx, articleID)
	return liked, likes, nil
}

// ToggleSave merkt einen Artikel für den Benutzer vor oder hebt das wieder auf.
func (s *InteractionService) ToggleSave(ctx context.Context, articleID, userID string) (saved bool, err error) {
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if e := tx.First(&article, "id = ?", articleID).Error; e != nil {
			if errors.Is(e, gorm.ErrRecordNotFound) {
				return ErrArticleNotFound
			}
			return e
		}

		var existing models.SavedArticle
		e := tx.Where("article_id = ? AND user_id = ?", articleID, userID).First(&existing).Error
		switch {
		case e == nil:
			saved = false
			return tx.Delete(&existing).Error
		case errors.Is(e, gorm.ErrRecordNotFound):
			saved = true
			return tx.Create(&models.SavedArticle{ArticleID: articleID, UserID: userID}).Error
		default:
			return e
		}
	})
	if err != nil {
		return false, err
	}
	return saved, nil
}

// AddComment hängt einen Kommentar an und aktualisiert den Zähler.
func (s *InteractionService) AddComment(ctx context.Context, articleID, userID, text string) (*models.Comment, int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, 0, ErrEmptyComment
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		UserID:    userID,
		Comment:   text,
	}
	var comments int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if e := tx.First(&article, "id = ?", articleID).Error; e != nil {
			if errors.Is(e, gorm.ErrRecordNotFound) {
				return ErrArticleNotFound
			}
			return e
		}
		if e := tx.Create(comment).Error; e != nil {
			return e
		}
		var total int64
		if e := tx.Model(&models.Comment{}).Where("article_id = ?", articleID).Count(&total).Error; e != nil {
			return e
		}
		comments = int(total)
		return tx.Model(&models.Article{}).Where("id = ?", articleID).
			Update("comments_count", comments).Error
	})
	if err != nil {
		return nil, 0, err
	}
	s.invalidateCounts(ctx, articleID)

	if e := s.DB.WithContext(ctx).Preload("User").First(comment, "id = ?", comment.ID).Error; e != nil {
		s.Logger.Warn("Kommentar nach Anlegen nicht nachladbar", zap.String("id", comment.ID), zap.Error(e))
	}
	return comment, comments, nil
}

// GetComments liefert alle Kommentare eines Artikels, neueste zuerst.
func (s *InteractionService) GetComments(ctx context.Context, articleID string) ([]models.CommentView, int, error) {
	var comments []models.Comment
	err := s.DB.WithContext(ctx).Preload("User").
		Where("article_id = ?", articleID).
		Order("created_at desc").
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	views := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, comments[i].View())
	}
	return views, len(views), nil
}

// UserInteraction meldet, ob der Benutzer den Artikel geliked bzw. gemerkt hat.
func (s *InteractionService) UserInteraction(ctx context.Context, articleID, userID string) (liked, saved bool, err error) {
	var likeCount int64
	if err = s.DB.WithContext(ctx).Model(&models.Like{}).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		Count(&likeCount).Error; err != nil {
		return false, false, err
	}
	var saveCount int64
	if err = s.DB.WithContext(ctx).Model(&models.SavedArticle{}).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		Count(&saveCount).Error; err != nil {
		return false, false, err
	}
	return likeCount > 0, saveCount > 0, nil
}

// Counts liefert die Zähler eines Artikels, read-through über den Cache.
// Cache-Fehler werden nur protokolliert; die Datenbank entscheidet.
func (s *InteractionService) Counts(ctx context.Context, articleID string) (int, int, error) {
	if s.Cache != nil {
		if c, ok := s.Cache.GetCounts(ctx, articleID); ok {
			return c.Likes, c.Comments, nil
		}
	}

	var article models.Article
	if err := s.DB.WithContext(ctx).Select("likes_count", "comments_count").
		First(&article, "id = ?", articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, ErrArticleNotFound
		}
		return 0, 0, err
	}

	if s.Cache != nil {
		s.Cache.SetCounts(ctx, articleID, articleCounts{Likes: article.LikesCount, Comments: article.CommentsCount})
	}
	return article.LikesCount, article.CommentsCount, nil
}

func (s *InteractionService) invalidateCounts(ctx context.Context, articleID string) {
	if s.Cache != nil {
		s.Cache.DelCounts(ctx, articleID)
	}
}

// Reconcile rechnet die denormalisierten Zähler aller Artikel aus den
// Relationstabellen neu und liefert die Zahl der korrigierten Artikel.
// Läuft periodisch per Cron und einmalig über cmd/reconcile.
func (s *InteractionService) Reconcile(ctx context.Context) (int, error) {
	var articles []models.Article
	if err := s.DB.WithContext(ctx).Select("id", "likes_count", "comments_count").Find(&articles).Error; err != nil {
		return 0, err
	}

	fixed := 0
	for _, a := range articles {
		var likes, comments int64
		if err := s.DB.WithContext(ctx).Model(&models.Like{}).Where("article_id = ?", a.ID).Count(&likes).Error; err != nil {
			return fixed, err
		}
		if err := s.DB.WithContext(ctx).Model(&models.Comment{}).Where("article_id = ?", a.ID).Count(&comments).Error; err != nil {
			return fixed, err
		}
		if int(likes) == a.LikesCount && int(comments) == a.CommentsCount {
			continue
		}
		err := s.DB.WithContext(ctx).Model(&models.Article{}).Where("id = ?", a.ID).
			Updates(map[string]interface{}{"likes_count": likes, "comments_count": comments}).Error
		if err != nil {
			return fixed, err
		}
		s.invalidateCounts(ctx, a.ID)
		fixed++
	}
	return fixed, nil
}
