// Package main 商城网关入口
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstore-gateway/internal/config"
	"bookstore-gateway/internal/gateway/server"
	"bookstore-gateway/internal/gateway/session"
	"bookstore-gateway/internal/gateway/toast"
	"bookstore-gateway/internal/shared/chatlog"
	"bookstore-gateway/internal/shared/objstore"
	"bookstore-gateway/internal/shared/storage/dbutil"
	"bookstore-gateway/internal/shared/storage/driver/postgres"
	"bookstore-gateway/internal/shared/storage/driver/sqlite"
	"bookstore-gateway/internal/shared/storage/repository"
	"bookstore-gateway/internal/upstream"
	"bookstore-gateway/web"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换 YAML）
	cfg := config.Load()

	log.Printf("Starting bookstore gateway... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	// 后端 API 客户端
	client, err := upstream.New(cfg.Upstream.URL)
	if err != nil {
		log.Fatalf("Failed to create upstream client: %v", err)
	}
	if cfg.Upstream.Timeout > 0 {
		client.SetTimeout(cfg.Upstream.Timeout)
	}

	// 偏好存储（SQLite 或 PostgreSQL）
	prefsStore, err := openPrefsStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open preferences store: %v", err)
	}
	defer prefsStore.Close()

	// Redis：会话与通知队列
	sessionStore, err := session.NewRedisStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer sessionStore.Close()

	toastStore, err := toast.NewRedisStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer toastStore.Close()

	sessions, err := session.NewManager(sessionStore, session.Config{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	})
	if err != nil {
		log.Fatalf("Failed to create session manager: %v", err)
	}

	// 图片对象存储（MinIO 未配置则关闭上传接口）
	var objects objstore.Store
	if cfg.MinIO.Endpoint != "" {
		minioClient, err := objstore.NewClient(cfg.MinIO)
		if err != nil {
			log.Fatalf("Failed to create minio client: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := minioClient.EnsureBucket(ctx); err != nil {
			log.Printf("WARNING: ensure bucket: %v", err)
		}
		cancel()
		objects = minioClient
	} else {
		log.Println("MinIO not configured, upload endpoint disabled")
	}

	// 咨询转录（MongoDB 可选）
	var recorder chatlog.Recorder = chatlog.NopRecorder{}
	if cfg.Mongo.URI != "" {
		mongoRecorder, err := chatlog.NewMongoRecorder(cfg.Mongo.URI, cfg.Mongo.Name)
		if err != nil {
			// 转录是旁路功能，连不上不阻塞启动
			log.Printf("WARNING: chat transcript store unavailable: %v", err)
		} else {
			defer mongoRecorder.Close()
			recorder = mongoRecorder
		}
	}

	// 内嵌前端
	staticFS, err := web.Assets()
	if err != nil {
		log.Fatalf("Failed to load embedded assets: %v", err)
	}

	h := server.NewHandler(server.Deps{
		Config:   cfg,
		Client:   client,
		Sessions: sessions,
		Toasts:   toastStore,
		Prefs:    prefsStore,
		Objects:  objects,
		Chatlog:  recorder,
		Static:   staticFS,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Gateway listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}

// openPrefsStore 按配置的驱动打开偏好数据库并建表
func openPrefsStore(cfg *config.Config) (*repository.Store, error) {
	var (
		db      *sql.DB
		dialect dbutil.Dialect
		err     error
	)
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.Open(cfg.DatabaseURL)
		dialect = postgres.NewDialect()
	default:
		db, err = sqlite.Open(cfg.DatabaseURL)
		dialect = sqlite.NewDialect()
	}
	if err != nil {
		return nil, err
	}
	if err := dialect.AutoMigrate(db); err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("[prefs/%s] Preferences store ready", cfg.DatabaseDriver)
	return repository.NewStore(db, dialect), nil
}
