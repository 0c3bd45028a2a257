package models

import (
	"time"

	"gorm.io/datatypes"
)

// Artikel-Status. "deleted" ist ein Status-Übergang, keine Zeilenlöschung,
// damit Moderationsentscheidungen nachvollziehbar bleiben.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusRejected  = "rejected"
	StatusDeleted   = "deleted"
)

// Article repräsentiert einen Artikel samt Blockinhalt und denormalisierten Zählern.
type Article struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title string `json:"title" gorm:"not null"`

	// Geordnete Blockfolge als JSON-Spalte, Form [{type, value, caption?}, ...].
	// Die Reihenfolge ist semantisch: sie rendert von oben nach unten.
	Content datatypes.JSON `json:"content" gorm:"type:jsonb"`

	AuthorID string `json:"-" gorm:"type:uuid;index;not null"`
	Author   *User  `json:"-" gorm:"foreignKey:AuthorID"`

	Category string         `json:"category" gorm:"index"`
	Tags     datatypes.JSON `json:"tags,omitempty" gorm:"type:jsonb"`

	Published bool   `json:"published" gorm:"default:false"`
	Status    string `json:"status" gorm:"index;default:'draft'"`

	// Zähler-Cache; Quelle der Wahrheit sind die Relationstabellen.
	LikesCount    int `json:"likes_count" gorm:"default:0"`
	CommentsCount int `json:"comments_count" gorm:"default:0"`
}

// TableName gibt explizit den Tabellennamen an.
func (Article) TableName() string {
	return "articles"
}

// ArticleView ist die API-Darstellung eines Artikels mit eingebettetem Autor.
type ArticleView struct {
	Article
	AuthorView Author `json:"author"`
}

// View bettet den Autor in die API-Darstellung ein. Ohne geladenen Autor
// bleibt nur die ID erhalten.
func (a *Article) View() ArticleView {
	v := ArticleView{Article: *a}
	if a.Author != nil {
		v.AuthorView = a.Author.AsAuthor()
	} else {
		v.AuthorView = Author{ID: a.AuthorID}
	}
	return v
}
