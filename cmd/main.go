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

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelAppointmentHandler "github.com/m04kA/SMC-AppointmentAgent/internal/api/handlers/cancel_appointment"
	chatHandler "github.com/m04kA/SMC-AppointmentAgent/internal/api/handlers/chat"
	getAppointmentsHandler "github.com/m04kA/SMC-AppointmentAgent/internal/api/handlers/get_appointments"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentAgent/internal/api/handlers/get_available_slots"
	handleDecisionHandler "github.com/m04kA/SMC-AppointmentAgent/internal/api/handlers/handle_decision"
	"github.com/m04kA/SMC-AppointmentAgent/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentAgent/internal/config"
	"github.com/m04kA/SMC-AppointmentAgent/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-AppointmentAgent/internal/infra/storage/appointment"
	preferencesRepo "github.com/m04kA/SMC-AppointmentAgent/internal/infra/storage/preferences"
	"github.com/m04kA/SMC-AppointmentAgent/internal/integrations/brain"
	"github.com/m04kA/SMC-AppointmentAgent/internal/integrations/gemini"
	"github.com/m04kA/SMC-AppointmentAgent/internal/integrations/notifier"
	"github.com/m04kA/SMC-AppointmentAgent/internal/integrations/openrouter"
	appointmentsService "github.com/m04kA/SMC-AppointmentAgent/internal/service/appointments"
	getAvailableSlotsUC "github.com/m04kA/SMC-AppointmentAgent/internal/usecase/get_available_slots"
	handleDecisionUC "github.com/m04kA/SMC-AppointmentAgent/internal/usecase/handle_decision"
	processMessageUC "github.com/m04kA/SMC-AppointmentAgent/internal/usecase/process_message"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/logger"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/simpletxmanager"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AppointmentAgent...")

	rules, err := cfg.BusinessRules()
	if err != nil {
		log.Fatal("Invalid business rules: %v", err)
	}
	log.Info("Business rules loaded: business=%q, timezone=%s, work_days=%s, hours=%s-%s, services=%d",
		rules.BusinessName, rules.Location, rules.WorkDays, rules.DayStart, rules.DayEnd, len(rules.Services.All()))

	// Инициализируем метрики (если включены); nil коллектор безопасен
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Репозитории и менеджер транзакций (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		preferencesRepository *preferencesRepo.Repository
		txMgr                 *txmanager.Manager
	)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		preferencesRepository = preferencesRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB).WithRetries(cfg.Database.SerializableRetries)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		preferencesRepository = preferencesRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db).WithRetries(cfg.Database.SerializableRetries)
	}

	// Блокировка дня
	var dayLocker handleDecisionUC.DayLocker
	switch cfg.Lock.Backend {
	case config.LockBackendRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}

		dayLocker = lock.NewRedisLocker(redisClient, cfg.Lock.TTL(), cfg.Lock.MaxWait(), log)
		log.Info("Day lock backend: redis (addr=%s, ttl=%s)", cfg.Redis.Addr, cfg.Lock.TTL())
	default:
		dayLocker = lock.NewMemoryLocker()
		log.Info("Day lock backend: in-process memory")
	}

	// Отправка подтверждений
	emailSender := buildEmailSender(cfg, log)
	confirmationNotifier := notifier.NewNotifier(emailSender, rules.BusinessName, cfg.Business.Location, log)

	// Извлечение намерения: основная стратегия под таймаутом, офлайн как страховка
	primaryResolver, closeResolver := buildPrimaryResolver(cfg, log)
	defer closeResolver()

	offlineResolver := brain.NewOfflineResolver(rules, time.Now)
	resolver := brain.NewFallbackResolver(primaryResolver, offlineResolver, cfg.Brain.Timeout(), metricsCollector, log)

	// Сервисы и use cases
	appointmentSvc := appointmentsService.NewService(appointmentRepository, log)

	handleDecisionUseCase := handleDecisionUC.NewUseCase(
		appointmentRepository,
		preferencesRepository,
		confirmationNotifier,
		txMgr,
		dayLocker,
		rules,
		metricsCollector,
		log,
	)

	processMessageUseCase := processMessageUC.NewUseCase(
		resolver,
		handleDecisionUseCase,
		preferencesRepository,
		appointmentRepository,
		rules,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		rules,
		log,
	)

	// Handlers
	chat := chatHandler.NewHandler(processMessageUseCase, log)
	handleDecision := handleDecisionHandler.NewHandler(handleDecisionUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAppointments := getAppointmentsHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES
	// ============================================================

	api.HandleFunc("/chat", chat.Handle).Methods(http.MethodPost)
	api.HandleFunc("/decisions", handleDecision.Handle).Methods(http.MethodPost)
	api.HandleFunc("/availability", getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES (требуют токен администратора)
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminAuth(cfg.Admin.Token))
	if cfg.Admin.Token == "" {
		log.Warn("Admin token is not configured, admin routes will reject every request")
	}

	admin.HandleFunc("/appointments", getAppointments.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// buildPrimaryResolver создает стратегию на языковой модели по brain.provider
// nil означает, что модель не настроена и работает только офлайн-стратегия
func buildPrimaryResolver(cfg *config.Config, log *logger.Logger) (brain.Resolver, func()) {
	noop := func() {}

	llmCfg := brain.LLMConfig{
		Models:  cfg.Brain.ModelList(),
		Retries: cfg.Brain.Retries,
	}

	switch cfg.Brain.Provider {
	case config.BrainProviderGemini:
		client, err := gemini.NewClient(context.Background(), cfg.Brain.GeminiAPIKey, cfg.Brain.Model)
		if err != nil {
			log.Warn("Gemini client unavailable, using offline resolver only: %v", err)
			return nil, noop
		}
		log.Info("Brain provider: gemini (models=%v, timeout=%s)", llmCfg.Models, cfg.Brain.Timeout())
		return brain.NewLLMResolver(client, llmCfg, log), func() { _ = client.Close() }

	case config.BrainProviderOpenRouter:
		if cfg.Brain.OpenRouterAPIKey == "" {
			log.Warn("OpenRouter API key is not set, using offline resolver only")
			return nil, noop
		}
		client := openrouter.NewClient(openrouter.Config{
			BaseURL: cfg.Brain.OpenRouterURL,
			APIKey:  cfg.Brain.OpenRouterAPIKey,
			Model:   cfg.Brain.Model,
			Title:   cfg.Business.Name,
			Timeout: cfg.Brain.Timeout(),
		}, log)
		log.Info("Brain provider: openrouter (models=%v, timeout=%s)", llmCfg.Models, cfg.Brain.Timeout())
		return brain.NewLLMResolver(client, llmCfg, log), noop

	default:
		log.Info("Brain provider: offline")
		return nil, noop
	}
}

// buildEmailSender выбирает отправителя по email.provider
// Без учетных данных используется stub, запись при этом не страдает
func buildEmailSender(cfg *config.Config, log *logger.Logger) notifier.EmailSender {
	switch cfg.Email.Provider {
	case config.EmailProviderSendGrid:
		sender := notifier.NewSendGridSender(notifier.SendGridConfig{
			APIKey:    cfg.Email.SendGridAPIKey,
			FromEmail: cfg.Email.From,
			FromName:  cfg.Email.FromName,
		})
		if sender != nil {
			log.Info("Email provider: sendgrid (from=%s)", cfg.Email.From)
			return sender
		}
		log.Warn("SendGrid API key is not set, falling back to stub email sender")

	case config.EmailProviderSES:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Email.Region))
		if err != nil {
			log.Warn("Failed to load AWS config, falling back to stub email sender: %v", err)
			break
		}
		log.Info("Email provider: ses (region=%s, from=%s)", cfg.Email.Region, cfg.Email.From)
		return notifier.NewSESSender(sesv2.NewFromConfig(awsCfg), notifier.SESConfig{
			FromEmail: cfg.Email.From,
			FromName:  cfg.Email.FromName,
		})
	}

	log.Info("Email provider: stub")
	return notifier.NewStubEmailSender(log)
}
