package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsdesk/config"
	"newsdesk/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserExists         = errors.New("username or email already taken")
)

// SessionContext ist die explizite, injizierte Sitzung eines Requests:
// wer ruft auf, mit welcher Rolle. Handler bekommen sie gereicht statt
// irgendwo nach Schlüsseln zu suchen.
type SessionContext struct {
	UserID   string
	Username string
	Role     string
}

// IsAdmin meldet, ob die Sitzung Moderationsrechte hat.
func (s SessionContext) IsAdmin() bool { return s.Role == models.RoleAdmin }

// CanWrite meldet, ob die Sitzung Artikel anlegen darf.
func (s SessionContext) CanWrite() bool {
	return s.Role == models.RoleJournalist || s.Role == models.RoleAdmin
}

type sessionClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService kümmert sich um Konten, Anmeldung und Bearer-Tokens.
type AuthService struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewAuthService erstellt einen neuen AuthService.
func NewAuthService(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *AuthService {
	return &AuthService{Config: cfg, DB: db, Logger: logger}
}

// Register legt ein neues Konto an. Über die öffentliche Registrierung sind
// nur die Rollen reader und journalist erreichbar.
func (a *AuthService) Register(ctx context.Context, username, email, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || len(password) < 8 {
		return nil, errors.New("username, email and a password of at least 8 characters are required")
	}
	if role != models.RoleReader && role != models.RoleJournalist {
		role = models.RoleReader
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := a.DB.WithContext(ctx).Create(user).Error; err != nil {
		// Unique-Verletzung auf username oder email
		a.Logger.Warn("Registrierung fehlgeschlagen", zap.String("email", email), zap.Error(err))
		return nil, ErrUserExists
	}
	return user, nil
}

// Login prüft die Zugangsdaten und stellt ein Bearer-Token aus.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := a.DB.WithContext(ctx).Where("email = ? OR username = ?", email, email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := sessionClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(a.Config.JWTTTLHours) * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.Config.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, &user, nil
}

// ParseToken validiert ein Bearer-Token und baut daraus die SessionContext.
func (a *AuthService) ParseToken(tokenString string) (SessionContext, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.Config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return SessionContext{}, ErrInvalidToken
	}
	return SessionContext{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// Profile liefert das Konto zur Sitzung.
func (a *AuthService) Profile(ctx context.Context, sess SessionContext) (*models.User, error) {
	var user models.User
	if err := a.DB.WithContext(ctx).First(&user, "id = ?", sess.UserID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureAdmin legt das Admin-Konto aus der Konfiguration an, falls es fehlt.
// Ohne konfiguriertes Passwort passiert nichts.
func (a *AuthService) EnsureAdmin(ctx context.Context) error {
	if a.Config.AdminPassword == "" {
		return nil
	}
	var count int64
	if err := a.DB.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(a.Config.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		ID:           uuid.New().String(),
		Username:     a.Config.AdminUsername,
		Email:        strings.ToLower(a.Config.AdminEmail),
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := a.DB.WithContext(ctx).Create(admin).Error; err != nil {
		return err
	}
	a.Logger.Info("Admin-Konto angelegt", zap.String("email", admin.Email))
	return nil
}
