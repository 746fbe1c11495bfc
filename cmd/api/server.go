package main

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	mw "github.com/huanvo/bookverse-api/internal/api/middlewares"
	"github.com/huanvo/bookverse-api/internal/api/router"
	"github.com/huanvo/bookverse-api/internal/repository/sqlconnect"
	"github.com/huanvo/bookverse-api/internal/storage/s3"
	"github.com/huanvo/bookverse-api/internal/validate"
)

func main() {
	_ = godotenv.Load("../../.env")

	if err := validate.Env(); err != nil {
		log.Fatalf("config: %v", err)
	}
	for _, warn := range validate.HardeningWarnings(os.Getenv("APP_ENV")) {
		log.Printf("warning: %s", warn)
	}

	db, err := sqlconnect.ConnectDB()
	if err != nil {
		log.Fatalf("Postgres connection failed: %v", err)
	}
	defer db.Close()

	rdb := newRedisClient()
	if err := validate.PingRedis(rdb, 3*time.Second); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}

	// Object storage is optional; without it the upload routes stay off.
	var s3c *s3.S3Client
	if os.Getenv("AWS_BUCKET_NAME") != "" {
		s3c, err = s3.NewR2Client(context.Background())
		if err != nil {
			log.Fatalf("object storage init failed: %v", err)
		}
	}

	tb := mw.NewRedisTokenBucket(rdb, 5, 20, mw.PerIPKey("tb"))
	sw := mw.NewRedisSlidingWindow(rdb, 3000, 60*time.Minute, mw.PerIPKey("sw"))

	hppOptions := mw.HPPOptions{
		CheckQuery:                  true,
		CheckBody:                   true,
		CheckBodyOnlyForContentType: "application/x-www-form-urlencoded",
		Whitelist: []string{
			// Shared list surface
			"search", "sort", "order", "page", "size",

			// Storefront
			"limit", "status", "province", "district",

			// Accounts
			"email",

			// Admin audit
			"actor_id", "target_id", "action", "since", "until",
		},
	}

	handler := mw.Chain(
		router.Router(db, rdb, s3c),
		mw.RequestID,
		mw.Recovery,
		mw.Cors,
		mw.ResponseTimeMiddleware,
		mw.BodySizeLimit,
		mw.HPP(hppOptions),
		tb.Middleware,
		sw.Middleware,
		mw.Compression,
		mw.SecurityHeaders,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
	}

	log.Printf("listening on :%s", port)
	cert, key := os.Getenv("TLS_CERT_FILE"), os.Getenv("TLS_KEY_FILE")
	if cert != "" && key != "" {
		err = server.ListenAndServeTLS(cert, key)
	} else {
		err = server.ListenAndServe()
	}
	if err != nil {
		log.Fatalln("Error starting server:", err)
	}
}

func newRedisClient() *redis.Client {
	if url := os.Getenv("UPSTASH_REDIS_URL"); url != "" {
		opt, err := redis.ParseURL(url)
		if err != nil {
			log.Fatalf("invalid UPSTASH_REDIS_URL: %v", err)
		}
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		opt.DialTimeout = 5 * time.Second
		opt.ReadTimeout = 1 * time.Second
		opt.WriteTimeout = 1 * time.Second
		return redis.NewClient(opt)
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Fatal("missing Redis config: set UPSTASH_REDIS_URL or REDIS_ADDR")
	}
	opts := &redis.Options{
		Addr:         addr,
		Username:     os.Getenv("REDIS_USER"),
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           0,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}
	if opts.Password != "" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}
