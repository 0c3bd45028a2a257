package models

import "time"

// Comment ist ein Leserkommentar zu einem Artikel.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`

	ArticleID string `json:"article_id" gorm:"type:uuid;index;not null"`
	UserID    string `json:"-" gorm:"type:uuid;index;not null"`
	User      *User  `json:"-" gorm:"foreignKey:UserID"`

	Comment string `json:"comment" gorm:"type:text;not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (Comment) TableName() string {
	return "comments"
}

// CommentView ist die API-Darstellung eines Kommentars mit eingebettetem Autor.
type CommentView struct {
	Comment
	AuthorView Author `json:"author"`
}

// View bettet den Autor ein.
func (c *Comment) View() CommentView {
	v := CommentView{Comment: *c}
	if c.User != nil {
		v.AuthorView = c.User.AsAuthor()
	} else {
		v.AuthorView = Author{ID: c.UserID}
	}
	return v
}
