package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/resitasrav/BookLab-System/config"
	"github.com/resitasrav/BookLab-System/internal/api/handler"
	"github.com/resitasrav/BookLab-System/internal/api/router"
	"github.com/resitasrav/BookLab-System/internal/repository"
	"github.com/resitasrav/BookLab-System/internal/service"
	"github.com/resitasrav/BookLab-System/pkg/database"
	"github.com/resitasrav/BookLab-System/pkg/jwt"
	applogger "github.com/resitasrav/BookLab-System/pkg/logger"
	"github.com/resitasrav/BookLab-System/pkg/mailer"
	"github.com/resitasrav/BookLab-System/pkg/redis"
)

func main() {
	// 0. 读取 .env（不存在时忽略）
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("BOOKLAB_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Booking.Timezone),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	if err := database.RunMigrations(db, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：未配置或连接失败时使用进程内锁，黑名单与限流不可用）
	var (
		rdb       *redis.Client
		locker    service.SlotLocker
		blacklist service.TokenBlacklist
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，降级为单实例模式", zap.Error(err))
			rdb = nil
		}
	}
	if rdb != nil {
		locker = service.NewRedisSlotLocker(rdb, cfg.Booking.LockTTL, cfg.Booking.LockWait)
		blacklist = rdb
	}

	// 5. 邮件通知
	var sender mailer.Sender = mailer.NewLogSender(logger)
	if cfg.Mail.SMTPHost != "" {
		smtpSender, err := mailer.NewSMTPSender(&cfg.Mail)
		if err != nil {
			logger.Fatal("SMTP 配置无效", zap.Error(err))
		}
		sender = smtpSender
	}
	dispatcher := mailer.NewDispatcher(sender, cfg.Mail.SendTimeout, logger)

	// 6. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc, err := service.NewService(service.Deps{
		Config:    cfg,
		Repo:      repo,
		JWT:       jwtMgr,
		Locker:    locker,
		Notifier:  dispatcher,
		Blacklist: blacklist,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("初始化服务失败", zap.Error(err))
	}
	if err := svc.Profile.EnsureAdmins(context.Background(), cfg.Auth.BootstrapAdmins); err != nil {
		logger.Fatal("初始化管理员失败", zap.Error(err))
	}
	h := handler.NewHandler(cfg, svc)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 等待后台邮件投递完成
	dispatcher.Wait()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
