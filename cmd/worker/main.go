// Worker consumes audit events from Kafka and persists them to Postgres.
// Used when the gateway runs with publish-only audit: the worker is the
// durable sink. Set KAFKA_BROKERS, AUDIT_KAFKA_TOPIC, KAFKA_GROUP_ID, and
// DATABASE_URL. Inserts are idempotent, so replays are safe.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	auditdomain "storefront-gateway/internal/audit/domain"
	auditrepo "storefront-gateway/internal/audit/repository"
	"storefront-gateway/internal/config"
	"storefront-gateway/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.AuditKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("worker: DATABASE_URL is required")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("worker: database: %v", err)
	}
	defer conn.Close()
	repo := auditrepo.NewPostgresRepository(conn)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.AuditKafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s)", cfg.AuditKafkaTopic, cfg.KafkaGroupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		var entry auditdomain.AuditLog
		if err := json.Unmarshal(msg.Value, &entry); err != nil {
			log.Printf("worker: skipping malformed event at offset %d: %v", msg.Offset, err)
			continue
		}
		if entry.ID == "" {
			log.Printf("worker: skipping event without id at offset %d", msg.Offset)
			continue
		}

		writeCtx, writeCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := repo.Create(writeCtx, &entry); err != nil {
			log.Printf("worker: persist failed for %s: %v", entry.ID, err)
		}
		writeCancel()
	}
}
