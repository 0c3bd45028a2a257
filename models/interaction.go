package models

import "time"

// Like ist die Relation "Benutzer gefällt Artikel". Ein Paar existiert
// höchstens einmal; erneutes Liken entfernt den Eintrag (Toggle).
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ArticleID string `json:"article_id" gorm:"type:uuid;uniqueIndex:idx_like_pair;not null"`
	UserID    string `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_like_pair;not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (Like) TableName() string {
	return "likes"
}

// SavedArticle ist die Relation "Benutzer hat Artikel gemerkt".
type SavedArticle struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ArticleID string `json:"article_id" gorm:"type:uuid;uniqueIndex:idx_save_pair;not null"`
	UserID    string `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_save_pair;not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (SavedArticle) TableName() string {
	return "saved_articles"
}
