package main

import (
	"context"
	"log"
	"time"

	"newsdesk/config"
	"newsdesk/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Einmaliger Abgleich der denormalisierten Like- und Kommentarzähler mit den
// tatsächlichen Beständen. Der Server fährt denselben Abgleich periodisch
// über Cron; dieses Werkzeug ist für den manuellen Lauf nach Importen oder
// Datenreparaturen gedacht.
func main() {
	log.Println("Starte Zähler-Abgleich...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Fehler beim Erstellen des Loggers: %v", err)
	}
	defer logger.Sync()

	// 1. Datenbank verbinden
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Fatalf("Fehler beim Verbinden mit der Datenbank: %v", err)
	}

	// 2. Redis verbinden (optional, nur für die Cache-Invalidierung)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("Redis nicht erreichbar, Abgleich läuft ohne Cache-Invalidierung: %v", err)
		rdb = nil
	}
	cancel()

	// 3. Abgleich laufen lassen
	interactions := services.NewInteractionService(db, rdb, logger, time.Duration(cfg.CountCacheTTL)*time.Second)
	fixed, err := interactions.Reconcile(context.Background())
	if err != nil {
		log.Fatalf("Fehler beim Abgleich der Zähler: %v", err)
	}

	log.Printf("Zähler-Abgleich abgeschlossen, %d Artikel korrigiert", fixed)
}
