// Package client ist der typisierte HTTP-Client für die newsdesk-API. Er
// übernimmt die Pflichten der Oberfläche gegenüber dem Backend: Bearer-
// Token mitführen, Antwort-Umschläge auspacken und Fehlermeldungen des
// Servers wörtlich weiterreichen. Es gibt bewusst keine automatischen
// Wiederholungen und keine Abbruchlogik über context hinaus; gleichzeitig
// gestartete Requests laufen unabhängig voneinander.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"newsdesk/editor"
	"newsdesk/models"

	"go.uber.org/zap"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// envelope ist der Antwort-Umschlag der API: {success, message?, data}.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError ist ein fachlicher Fehler des Backends (success:false bzw.
// Nicht-2xx mit Meldung). Die Meldung stammt wörtlich vom Server, soweit
// vorhanden.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Client kapselt Basis-URL und Sitzung für alle API-Aufrufe.
type Client struct {
	BaseURL string
	Token   string
	Logger  *zap.Logger
}

// New erstellt einen Client. Das Token kann leer bleiben und wird bei
// Login gesetzt.
func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Logger: logger}
}

// doJSON schickt einen Request mit JSON-Körper und packt data in out aus.
// Transportfehler und fachliche Fehler bleiben unterscheidbar: erstere als
// eingewickelter Netzwerkfehler, letztere als *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		c.Logger.Warn("Request nicht zustellbar", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	return c.decode(resp, out)
}

func (c *Client) decode(resp *http.Response, out interface{}) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Unlesbarer Körper zählt als Transportfehler, generische Meldung.
		return &APIError{StatusCode: resp.StatusCode, Message: "Something went wrong. Try again."}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// LoginResult ist die Antwort auf eine erfolgreiche Anmeldung.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login meldet den Benutzer an und merkt sich das Token für alle weiteren
// Aufrufe dieses Clients.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	err := c.doJSON(ctx, http.MethodPost, "/auth/login/", map[string]string{
		"email":    email,
		"password": password,
	}, &res)
	if err != nil {
		return LoginResult{}, err
	}
	c.Token = res.Token
	return res, nil
}

// Profile holt das Konto zur aktuellen Sitzung.
func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var res struct {
		User models.User `json:"user"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/auth/profile/", nil, &res)
	return res.User, err
}

// GetArticle lädt einen Artikel samt Blockinhalt.
func (c *Client) GetArticle(ctx context.Context, id string) (models.ArticleView, error) {
	var res struct {
		Article models.ArticleView `json:"article"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/articles/get-by-id/?id="+url.QueryEscape(id), nil, &res)
	return res.Article, err
}

// ListArticles lädt alle freigegebenen Artikel.
func (c *Client) ListArticles(ctx context.Context) ([]models.ArticleView, error) {
	var res struct {
		Articles []models.ArticleView `json:"articles"`
		Total    int64                `json:"total"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/articles/get/", nil, &res)
	return res.Articles, err
}

// CreateArticle übermittelt einen zusammengestellten Entwurf.
func (c *Client) CreateArticle(ctx context.Context, sub editor.Submission) (models.ArticleView, error) {
	var res struct {
		Article models.ArticleView `json:"article"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/articles/create/", sub, &res)
	return res.Article, err
}

// UpdateArticle überschreibt einen Artikel vollständig (letzter Schreiber
// gewinnt).
func (c *Client) UpdateArticle(ctx context.Context, id string, sub editor.Submission) (models.ArticleView, error) {
	payload := struct {
		ID string `json:"id"`
		editor.Submission
	}{ID: id, Submission: sub}
	var res struct {
		Article models.ArticleView `json:"article"`
	}
	err := c.doJSON(ctx, http.MethodPut, "/api/articles/update/", payload, &res)
	return res.Article, err
}

// Upload schickt eine Bilddatei als Multipart-Request an den Upload-Endpunkt.
// Damit erfüllt der Client das Uploader-Interface des Editors; eine Session
// kann ihn direkt als Ziel ihrer Bildblöcke verwenden.
func (c *Client) Upload(ctx context.Context, file editor.ImageFile) (editor.UploadedImage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, file.Name))
	header.Set("Content-Type", file.ContentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return editor.UploadedImage{}, err
	}
	if _, err := io.Copy(part, file.Data); err != nil {
		return editor.UploadedImage{}, fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return editor.UploadedImage{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/articles/upload-image/", &buf)
	if err != nil {
		return editor.UploadedImage{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		c.Logger.Warn("Request nicht zustellbar", zap.String("path", "/api/articles/upload-image/"), zap.Error(err))
		return editor.UploadedImage{}, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	var res struct {
		URL      string `json:"url"`
		PublicID string `json:"public_id"`
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		Format   string `json:"format"`
	}
	if err := c.decode(resp, &res); err != nil {
		return editor.UploadedImage{}, err
	}
	return editor.UploadedImage{
		URL:      res.URL,
		PublicID: res.PublicID,
		Width:    res.Width,
		Height:   res.Height,
		Format:   res.Format,
	}, nil
}

// AddLike schaltet das Like des Benutzers um und liefert den Serverstand.
func (c *Client) AddLike(ctx context.Context, articleID, userID string) (bool, int, error) {
	var res struct {
		Liked      bool `json:"liked"`
		LikesCount int  `json:"likes_count"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/articles/add-like/", map[string]string{
		"article_id": articleID,
		"user_id":    userID,
	}, &res)
	return res.Liked, res.LikesCount, err
}

// ToggleSaveArticle merkt den Artikel vor bzw. hebt das wieder auf.
func (c *Client) ToggleSaveArticle(ctx context.Context, articleID, userID string) (bool, error) {
	var res struct {
		Saved bool `json:"saved"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/articles/toggle-save-article/", map[string]string{
		"article_id": articleID,
		"user_id":    userID,
	}, &res)
	return res.Saved, err
}

// AddCommentResult ist die Antwort auf einen neuen Kommentar.
type AddCommentResult struct {
	CommentID     string `json:"comment_id"`
	Comment       string `json:"comment"`
	CommentsCount int    `json:"comments_count"`
}

// AddComment hängt einen Kommentar an den Artikel.
func (c *Client) AddComment(ctx context.Context, articleID, userID, text string) (AddCommentResult, error) {
	var res AddCommentResult
	err := c.doJSON(ctx, http.MethodPost, "/api/articles/add-comment/", map[string]string{
		"article_id": articleID,
		"user_id":    userID,
		"comment":    text,
	}, &res)
	return res, err
}

// GetComments lädt die Kommentare eines Artikels.
func (c *Client) GetComments(ctx context.Context, articleID string) ([]models.CommentView, int, error) {
	var res struct {
		Comments      []models.CommentView `json:"comments"`
		CommentsCount int                  `json:"comments_count"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/api/articles/get-comments/?article_id="+url.QueryEscape(articleID), nil, &res)
	return res.Comments, res.CommentsCount, err
}

// UserInteraction meldet Like- und Merk-Status des Benutzers.
func (c *Client) UserInteraction(ctx context.Context, articleID, userID string) (liked, saved bool, err error) {
	var res struct {
		Liked bool `json:"liked"`
		Saved bool `json:"saved"`
	}
	q := url.Values{"article_id": {articleID}, "user_id": {userID}}
	err = c.doJSON(ctx, http.MethodGet, "/api/articles/user-interaction/?"+q.Encode(), nil, &res)
	return res.Liked, res.Saved, err
}
