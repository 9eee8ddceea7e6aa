package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"messagely/internal/auth"
	"messagely/internal/backup"
	"messagely/internal/config"
	apphttp "messagely/internal/http"
	"messagely/internal/repository"
	"messagely/internal/repository/postgres"
	"messagely/internal/repository/sqlite"
	"messagely/internal/service"
	"messagely/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer stores.close()
	logger.Infof("using %s database", cfg.Database.Driver)

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatalf("setup hasher: %v", err)
	}
	tokens, err := auth.NewJWTManager([]byte(cfg.Auth.JWTSecret), cfg.TokenTTL())
	if err != nil {
		logger.Fatalf("setup tokens: %v", err)
	}
	guard := auth.NewGuard(tokens)

	authService := service.NewAuthService(stores.users, hasher, tokens)
	messageService := service.NewMessageService(stores.messages, stores.users, guard)
	userService := service.NewUserService(stores.users, stores.messages, guard)

	var backups backup.Manager
	if cfg.Backup.Enabled {
		backups, err = buildBackups(ctx, cfg, stores.sqlDB, logger)
		if err != nil {
			logger.Fatalf("setup backups: %v", err)
		}
		if err := backups.Start(ctx); err != nil {
			logger.Fatalf("start backups: %v", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(authService, messageService, userService, guard, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	if backups != nil {
		backups.Shutdown()
	}

	logger.Info("bye")
}

type storeSet struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	sqlDB    *sql.DB
	close    func()
}

func openStores(ctx context.Context, cfg config.Config) (*storeSet, error) {
	s := &storeSet{}
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("postgres handle: %w", err)
		}
		s.users = postgres.NewUserRepository(db)
		s.messages = postgres.NewMessageRepository(db)
		s.close = func() { sqlDB.Close() }
	default:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		s.users = sqlite.NewUserRepository(db)
		s.messages = sqlite.NewMessageRepository(db)
		s.sqlDB = db
		s.close = func() { db.Close() }
	}

	// users first: messages reference them
	if err := s.users.Init(ctx); err != nil {
		s.close()
		return nil, fmt.Errorf("init user repository: %w", err)
	}
	if err := s.messages.Init(ctx); err != nil {
		s.close()
		return nil, fmt.Errorf("init message repository: %w", err)
	}
	return s, nil
}

func buildBackups(ctx context.Context, cfg config.Config, db *sql.DB, logger *logrus.Logger) (backup.Manager, error) {
	if db == nil {
		return nil, fmt.Errorf("backups require the sqlite driver")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)

	return backup.NewManager(backup.Config{
		Dir:       cfg.Backup.Dir,
		Interval:  cfg.Backup.Interval,
		Retain:    cfg.Backup.Retain,
		Bucket:    cfg.Storage.Bucket,
		KeyPrefix: cfg.Storage.KeyPrefix,
		Logger:    logger,
	}, func(ctx context.Context, dest string) error {
		return sqlite.Snapshot(ctx, db, dest)
	}, storage.NewS3Service(client)), nil
}
