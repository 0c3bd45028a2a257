package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"newsdesk/config"
	"newsdesk/editor"
	"newsdesk/models"
	"newsdesk/services"
	"newsdesk/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	articlesCreatedCounter prometheus.Counter
	imagesUploadedCounter  prometheus.Counter
	moderationCounter      *prometheus.CounterVec
)

func init() {
	articlesCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_created_total",
			Help: "Total number of articles created.",
		},
	)
	imagesUploadedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "images_uploaded_total",
			Help: "Total number of images stored in the media store.",
		},
	)
	moderationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_decisions_total",
			Help: "Total number of moderation decisions, by outcome.",
		},
		[]string{"decision"},
	)
	prometheus.MustRegister(articlesCreatedCounter, imagesUploadedCounter, moderationCounter)
}

const sessionKey = "session"

// authMiddleware liest das Bearer-Token und legt die SessionContext in den
// Gin-Kontext. Ohne gültiges Token wird der Request abgewiesen.
func authMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authenticated. Please login."})
			return
		}
		sess, err := auth.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired session."})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// adminOnly verlangt zusätzlich zur Anmeldung die Admin-Rolle.
func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Admin access required."})
			return
		}
		c.Next()
	}
}

func session(c *gin.Context) services.SessionContext {
	v, _ := c.Get(sessionKey)
	sess, _ := v.(services.SessionContext)
	return sess
}

// fail schreibt die Fehlerantwort im Format {success:false, message} und
// bildet die bekannten Fehler auf HTTP-Status ab. Unbekannte Fehler bleiben
// eine generische 500er-Meldung; Details landen nur im Log.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrArticleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrCategoryRequired),
		errors.Is(err, services.ErrEmptyComment),
		errors.Is(err, services.ErrUserExists),
		errors.Is(err, editor.ErrInvalidImageFormat),
		errors.Is(err, editor.ErrImageTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong. Try again."})
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	logging.Info("Running database auto-migration...")
	if err := db.AutoMigrate(
		&models.User{}, &models.Article{}, &models.Comment{},
		&models.Like{}, &models.SavedArticle{},
	); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Redis ist reiner Zähler-Cache; ohne Redis läuft alles gegen die DB.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logging.Warn("Redis nicht erreichbar, Zähler-Cache deaktiviert", zap.Error(err))
		rdb = nil
	}
	cancel()

	s3Client, err := storage.NewS3Client(cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}

	authService := services.NewAuthService(cfg, db, logging)
	if err := authService.EnsureAdmin(context.Background()); err != nil {
		logging.Fatal("Admin seeding failed", zap.Error(err))
	}
	articleService := services.NewArticleService(db, logging)
	uploadService := services.NewUploadService(cfg, s3Client, logging)
	interactionService := services.NewInteractionService(db, rdb, logging, time.Duration(cfg.CountCacheTTL)*time.Second)
	moderationService := services.NewModerationService(db, logging)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	setupAuthRoutes(router, authService)
	setupArticleRoutes(router, cfg, authService, articleService, uploadService, interactionService)
	setupAdminRoutes(router, authService, moderationService)

	// Die denormalisierten Zähler driften bei Fehlern zwischen Relations-
	// Schreibzugriff und Artikel-Update; der Abgleich zieht sie regelmäßig gerade.
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.ReconcileSchedule, func() {
		logging.Info("Running scheduled count reconciliation...")
		fixed, err := interactionService.Reconcile(context.Background())
		if err != nil {
			logging.Error("Count reconciliation failed", zap.Error(err))
		} else {
			logging.Info("Count reconciliation completed", zap.Int("fixed_articles", fixed))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupAuthRoutes(router *gin.Engine, auth *services.AuthService) {
	rg := router.Group("/auth")

	rg.POST("/register/", func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}
		user, err := auth.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.Role)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"user": user}})
	})

	rg.POST("/login/", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}
		token, user, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"token": token,
			"user":  user,
		}})
	})

	rg.GET("/profile/", authMiddleware(auth), func(c *gin.Context) {
		user, err := auth.Profile(c.Request.Context(), session(c))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"user": user}})
	})
}

func setupArticleRoutes(
	router *gin.Engine,
	cfg *config.Config,
	auth *services.AuthService,
	articles *services.ArticleService,
	uploads *services.UploadService,
	interactions *services.InteractionService,
) {
	rg := router.Group("/api/articles")

	rg.GET("/get/", func(c *gin.Context) {
		list, total, err := articles.ListPublished(c.Request.Context(), c.Query("category"), 0)
		if err != nil {
			fail(c, err)
			return
		}
		views := make([]models.ArticleView, 0, len(list))
		for i := range list {
			views = append(views, list[i].View())
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"articles": views, "total": total}})
	})

	rg.GET("/get-by-id/", func(c *gin.Context) {
		id := c.Query("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing id parameter"})
			return
		}
		article, err := articles.GetByID(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		view := article.View()
		// Zähler kommen read-through aus dem Cache; scheitert der Abgleich,
		// bleiben die denormalisierten Spalten des Artikels stehen.
		if likes, comments, cerr := interactions.Counts(c.Request.Context(), id); cerr == nil {
			view.LikesCount = likes
			view.CommentsCount = comments
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"article": view}})
	})

	rg.GET("/by-author/", authMiddleware(auth), func(c *gin.Context) {
		list, err := articles.ListByAuthor(c.Request.Context(), session(c).UserID)
		if err != nil {
			fail(c, err)
			return
		}
		views := make([]models.ArticleView, 0, len(list))
		for i := range list {
			views = append(views, list[i].View())
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"articles": views, "total": len(views)}})
	})

	rg.POST("/create/", authMiddleware(auth), func(c *gin.Context) {
		var in services.CreateArticleInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}
		article, err := articles.Create(c.Request.Context(), session(c), in)
		if err != nil {
			fail(c, err)
			return
		}
		articlesCreatedCounter.Inc()
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"article": article.View()}})
	})

	rg.PUT("/update/", authMiddleware(auth), func(c *gin.Context) {
		var in services.UpdateArticleInput
		if err := c.ShouldBindJSON(&in); err != nil || in.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}
		article, err := articles.Update(c.Request.Context(), session(c), in)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"article": article.View()}})
	})

	rg.POST("/upload-image/", authMiddleware(auth), func(c *gin.Context) {
		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing image file"})
			return
		}
		src, err := file.Open()
		if err != nil {
			fail(c, err)
			return
		}
		defer src.Close()

		img, err := uploads.UploadImage(c.Request.Context(), file.Header.Get("Content-Type"), file.Size, src)
		if err != nil {
			fail(c, err)
			return
		}
		imagesUploadedCounter.Inc()
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"url":       img.URL,
			"public_id": img.PublicID,
			"width":     img.Width,
			"height":    img.Height,
			"format":    img.Format,
		}})
	})

	// Server-seitige Vorschau aus der Blockfolge; ob das HTML durch den
	// Sanitizer läuft, entscheidet die Konfiguration.
	rg.POST("/preview/", func(c *gin.Context) {
		var req struct {
			Content []editor.Block `json:"content"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}
		html := editor.RenderBlocks(req.Content)
		if cfg.SanitizePreview {
			html = editor.SanitizeHTML(html)
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"html": html}})
	})

	rg.POST("/add-like/", func(c *gin.Context) {
		var req struct {
			ArticleID string `json:"article_id"`
			UserID    string `json:"user_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.ArticleID == "" || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "article_id and user_id are required"})
			return
		}
		liked, likes, err := interactions.ToggleLike(c.Request.Context(), req.ArticleID, req.UserID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"liked": liked, "likes_count": likes}})
	})

	rg.POST("/toggle-save-article/", func(c *gin.Context) {
		var req struct {
			ArticleID string `json:"article_id"`
			UserID    string `json:"user_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.ArticleID == "" || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "article_id and user_id are required"})
			return
		}
		saved, err := interactions.ToggleSave(c.Request.Context(), req.ArticleID, req.UserID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"saved": saved}})
	})

	rg.POST("/add-comment/", func(c *gin.Context) {
		var req struct {
			ArticleID string `json:"article_id"`
			UserID    string `json:"user_id"`
			Comment   string `json:"comment"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.ArticleID == "" || req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "article_id and user_id are required"})
			return
		}
		comment, count, err := interactions.AddComment(c.Request.Context(), req.ArticleID, req.UserID, req.Comment)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"comment_id":     comment.ID,
			"comment":        comment.Comment,
			"comments_count": count,
		}})
	})

	rg.GET("/get-comments/", func(c *gin.Context) {
		articleID := c.Query("article_id")
		if articleID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing article_id parameter"})
			return
		}
		comments, count, err := interactions.GetComments(c.Request.Context(), articleID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"comments": comments, "comments_count": count}})
	})

	rg.GET("/user-interaction/", func(c *gin.Context) {
		articleID := c.Query("article_id")
		userID := c.Query("user_id")
		if articleID == "" || userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "article_id and user_id are required"})
			return
		}
		liked, saved, err := interactions.UserInteraction(c.Request.Context(), articleID, userID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"liked": liked, "saved": saved}})
	})
}

func setupAdminRoutes(router *gin.Engine, auth *services.AuthService, moderation *services.ModerationService) {
	rg := router.Group("/api/admin", authMiddleware(auth), adminOnly())

	rg.GET("/pending/", func(c *gin.Context) {
		list, err := moderation.Pending(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		views := make([]models.ArticleView, 0, len(list))
		for i := range list {
			views = append(views, list[i].View())
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"articles": views}})
	})

	rg.GET("/approved/", func(c *gin.Context) {
		list, err := moderation.Approved(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		views := make([]models.ArticleView, 0, len(list))
		for i := range list {
			views = append(views, list[i].View())
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"articles": views}})
	})

	rg.GET("/counts/", func(c *gin.Context) {
		counts, err := moderation.Counts(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": counts})
	})

	rg.POST("/approve/", func(c *gin.Context) {
		var req struct {
			ID string `json:"id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing article id"})
			return
		}
		if err := moderation.Approve(c.Request.Context(), req.ID); err != nil {
			fail(c, err)
			return
		}
		moderationCounter.WithLabelValues("approve").Inc()
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Article approved."})
	})

	rg.POST("/bulk-approve/", func(c *gin.Context) {
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing article ids"})
			return
		}
		approved, err := moderation.BulkApprove(c.Request.Context(), req.IDs)
		if err != nil {
			fail(c, err)
			return
		}
		moderationCounter.WithLabelValues("approve").Add(float64(approved))
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"approved": approved}})
	})

	rg.POST("/reject/", func(c *gin.Context) {
		var req struct {
			ID string `json:"id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing article id"})
			return
		}
		if err := moderation.Reject(c.Request.Context(), req.ID); err != nil {
			fail(c, err)
			return
		}
		moderationCounter.WithLabelValues("reject").Inc()
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Article rejected."})
	})

	rg.DELETE("/delete/", func(c *gin.Context) {
		id := c.Query("id")
		if id == "" {
			var req struct {
				ID string `json:"id"`
			}
			if err := c.ShouldBindJSON(&req); err == nil {
				id = req.ID
			}
		}
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing article id"})
			return
		}
		if err := moderation.Delete(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		moderationCounter.WithLabelValues("delete").Inc()
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Article deleted."})
	})
}
