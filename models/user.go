package models

import "time"

// Rollen im System. Leser interagieren, Journalisten schreiben, Admins moderieren.
const (
	RoleReader     = "reader"
	RoleJournalist = "journalist"
	RoleAdmin      = "admin"
)

// User repräsentiert ein Konto auf der Plattform.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`

	// Bcrypt-Hash, niemals im JSON ausgeben.
	PasswordHash string `json:"-" gorm:"not null"`

	Role string `json:"role" gorm:"index;default:'reader'"`
}

// TableName gibt explizit den Tabellennamen an.
func (User) TableName() string {
	return "users"
}

// Author ist die öffentliche Sicht auf einen Benutzer, wie sie in
// Artikel-Antworten eingebettet wird.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AsAuthor reduziert den Benutzer auf die eingebettete Autoren-Sicht.
func (u *User) AsAuthor() Author {
	return Author{ID: u.ID, Username: u.Username, Email: u.Email}
}
