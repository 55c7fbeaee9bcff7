package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"notes-app/src/config"
	"notes-app/src/database"
	"notes-app/src/domain"
	"notes-app/src/infrastructure/repository"
	"notes-app/src/interface/handler"
	"notes-app/src/logger"
	"notes-app/src/routes"
	"notes-app/src/service"
	"notes-app/src/storage"
	"notes-app/src/usecase"
	"notes-app/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// stores ドライバーごとに組み立てたリポジトリ
type stores struct {
	notes  domain.NoteRepository
	users  domain.UserRepository
	health routes.HealthChecker
	close  func(ctx context.Context) error
}

func main() {
	// 設定を読み込み
	cfg := config.LoadConfig()

	// ロガーを初期化
	if err := logger.InitLogger(cfg.Log); err != nil {
		panic(fmt.Sprintf("ロガーの初期化に失敗: %v", err))
	}
	defer logger.CloseLogger()

	logger.Log.WithField("driver", cfg.Database.Driver).Info("アプリケーションを開始しています")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg.Database)
	if err != nil {
		logger.Log.WithError(err).Fatal("ストアの初期化に失敗")
	}

	// S3アップローダーを初期化（設定が有効な場合）
	var uploader *storage.LogUploader
	if cfg.Log.UploadEnabled {
		uploader, err = storage.NewLogUploader(cfg.S3, logger.GetCurrentLogFile(), logger.Log)
		if err != nil {
			logger.Log.WithError(err).Error("S3アップローダーの初期化に失敗")
		} else {
			uploader.StartPeriodicUpload(ctx, cfg.Log.Directory, cfg.Log.UploadInterval, cfg.Log.UploadMaxAge)
		}
	}

	// サービスとハンドラーを組み立て
	jwtService := service.NewJWTService(cfg.Auth)
	authService := service.NewAuthService(st.users, jwtService, cfg.Auth.BcryptCost)
	noteUsecase := usecase.NewNoteUsecase(st.notes)
	v := validator.NewCustomValidator()

	r := gin.New()
	r.Use(gin.Recovery())
	r.HandleMethodNotAllowed = true

	r.NoRoute(func(c *gin.Context) {
		logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"uri":       c.Request.RequestURI,
			"client_ip": c.ClientIP(),
		}).Warn("404: ルートが見つかりません")
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"uri":       c.Request.RequestURI,
			"client_ip": c.ClientIP(),
		}).Warn("405: サポートされていないメソッド")
		c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "message": "Method not allowed"})
	})

	routes.SetupRoutes(r, routes.Dependencies{
		Config:      cfg,
		NoteHandler: handler.NewNoteHandler(noteUsecase, v, logger.Log),
		AuthHandler: handler.NewAuthHandler(authService, v, logger.Log),
		AuthService: authService,
		Health:      st.health,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Log.WithField("port", cfg.Server.Port).Info("サーバーを開始します")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Error("サーバーの起動に失敗")
			stop()
		}
	}()

	// グレースフルシャットダウン
	<-ctx.Done()
	logger.Log.Info("シャットダウンシグナルを受信しました")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("サーバーの停止に失敗")
	}
	if err := st.close(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("ストアのクローズに失敗")
	}

	// 最後のログアップロードを実行
	if uploader != nil {
		logger.Log.Info("最後のログアップロードを実行中...")
		if err := logger.Rotate(); err != nil {
			logger.Log.WithError(err).Warn("ログのローテーションに失敗")
		}
		if _, err := uploader.UploadOldLogs(shutdownCtx, cfg.Log.Directory, 0); err != nil {
			logger.Log.WithError(err).Error("最後のログアップロードに失敗")
		}
	}
}

func openStores(ctx context.Context, cfg config.DatabaseConfig) (*stores, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := database.NewDB(&database.Config{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			DBName:   cfg.Name,
			SSLMode:  cfg.SSLMode,
		}, logger.Log)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			notes:  repository.NewPostgresNoteRepository(db, logger.Log),
			users:  repository.NewPostgresUserRepository(db, logger.Log),
			health: db.Health,
			close:  func(context.Context) error { return db.Close() },
		}, nil

	case "mongo":
		m, err := database.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDB, logger.Log)
		if err != nil {
			return nil, err
		}
		notes := repository.NewMongoNoteRepository(m.Database, logger.Log)
		users := repository.NewMongoUserRepository(m.Database)
		if err := notes.EnsureIndexes(ctx); err != nil {
			m.Close(ctx)
			return nil, err
		}
		if err := users.EnsureIndexes(ctx); err != nil {
			m.Close(ctx)
			return nil, err
		}
		return &stores{notes: notes, users: users, health: m.Health, close: m.Close}, nil

	case "memory":
		logger.Log.Warn("インメモリストアを使用します。再起動でデータは消えます")
		return &stores{
			notes: repository.NewMemoryNoteRepository(),
			users: repository.NewMemoryUserRepository(),
			close: func(context.Context) error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q (postgres, mongo, memory)", cfg.Driver)
	}
}
