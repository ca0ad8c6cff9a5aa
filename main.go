package main

import (
	"log"
	"net/http"
	"time"

	httpapi "resto-pos/internal/api/http"
	"resto-pos/internal/config"
	"resto-pos/internal/service"
	"resto-pos/internal/storage"
)

func main() {
	db := config.MustInitPostgres()
	defer db.Close()

	if err := storage.EnsureSchema(db); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	rdb := config.MustInitRedis()
	defer rdb.Close()

	kafkaWriter := config.NewKafkaWriter("orders")
	defer kafkaWriter.Close()

	repo := storage.NewPostgresRepository(db)
	cache := storage.NewRedisCache(rdb, 5*time.Minute)
	publisher := storage.NewKafkaPublisher(kafkaWriter)
	qrEncoder := service.DefaultQRGenerator{BaseURL: config.QRBaseURL()}

	menuSvc := service.NewMenuService(repo)
	orderSvc := service.NewOrderService(repo, cache, repo, repo, publisher, qrEncoder, config.LoyaltyEarnDivisor())
	cancelSvc := service.NewCancellationService(repo, publisher)

	handler := httpapi.NewHandler(menuSvc, orderSvc, cancelSvc)
	router := httpapi.NewRouter(handler)

	addr := config.ListenAddr()
	log.Println("POS service starting on", addr)
	log.Fatal(http.ListenAndServe(addr, router))
}
