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

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attachEvidenceHandler "github.com/salonmate/SM-AppointmentService/internal/api/handlers/attach_evidence"
	cancelAppointmentHandler "github.com/salonmate/SM-AppointmentService/internal/api/handlers/cancel_appointment"
	completeWorkflowHandler "github.com/salonmate/SM-AppointmentService/internal/api/handlers/complete_workflow"
	confirmAppointmentHandler "github.com/salonmate/SM-AppointmentService/internal/api/handlers/confirm_appointment"
	createAppointmentHandler "github.com/salonmate/SM-AppointmentService/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/salonmate/SM-AppointmentService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/salonmate/SM-AppointmentService/internal/api/handlers/get_available_slots"
	getBusinessAppointmentsHandler "github.com/salonmate/SM-AppointmentService/internal/api/handlers/get_business_appointments"
	getClientAppointmentsHandler "github.com/salonmate/SM-AppointmentService/internal/api/handlers/get_client_appointments"
	getSchedulingConfigHandler "github.com/salonmate/SM-AppointmentService/internal/api/handlers/get_scheduling_config"
	startWorkflowHandler "github.com/salonmate/SM-AppointmentService/internal/api/handlers/start_workflow"
	updateSchedulingConfigHandler "github.com/salonmate/SM-AppointmentService/internal/api/handlers/update_scheduling_config"
	"github.com/salonmate/SM-AppointmentService/internal/api/middleware"
	"github.com/salonmate/SM-AppointmentService/internal/config"
	appointmentRepo "github.com/salonmate/SM-AppointmentService/internal/infra/storage/appointment"
	configRepo "github.com/salonmate/SM-AppointmentService/internal/infra/storage/schedulingconfig"
	billingServiceClient "github.com/salonmate/SM-AppointmentService/internal/integrations/billingservice"
	businessServiceClient "github.com/salonmate/SM-AppointmentService/internal/integrations/businessservice"
	consentServiceClient "github.com/salonmate/SM-AppointmentService/internal/integrations/consentservice"
	evidenceServiceClient "github.com/salonmate/SM-AppointmentService/internal/integrations/evidenceservice"
	appointmentsService "github.com/salonmate/SM-AppointmentService/internal/service/appointments"
	schedulingConfigService "github.com/salonmate/SM-AppointmentService/internal/service/schedulingconfig"
	completeAppointmentUC "github.com/salonmate/SM-AppointmentService/internal/usecase/complete_appointment"
	createAppointmentUC "github.com/salonmate/SM-AppointmentService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/salonmate/SM-AppointmentService/internal/usecase/get_available_slots"
	startAppointmentUC "github.com/salonmate/SM-AppointmentService/internal/usecase/start_appointment"
	"github.com/salonmate/SM-AppointmentService/pkg/dbmetrics"
	"github.com/salonmate/SM-AppointmentService/pkg/logger"
	"github.com/salonmate/SM-AppointmentService/pkg/metrics"
	"github.com/salonmate/SM-AppointmentService/pkg/simpletxmanager"
	"github.com/salonmate/SM-AppointmentService/pkg/txmanager"
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

	log.Info("Starting SM-AppointmentService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	businessClient := businessServiceClient.NewClient(
		cfg.BusinessService.URL,
		time.Duration(cfg.BusinessService.Timeout)*time.Second,
		log,
	)
	consentClient := consentServiceClient.NewClient(
		cfg.ConsentService.URL,
		time.Duration(cfg.ConsentService.Timeout)*time.Second,
		log,
	)
	evidenceClient := evidenceServiceClient.NewClient(
		cfg.EvidenceService.URL,
		time.Duration(cfg.EvidenceService.Timeout)*time.Second,
		log,
	)
	billingClient := billingServiceClient.NewClient(
		cfg.BillingService.URL,
		time.Duration(cfg.BillingService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (BusinessService=%s, ConsentService=%s, EvidenceService=%s, BillingService=%s)",
		cfg.BusinessService.URL, cfg.ConsentService.URL, cfg.EvidenceService.URL, cfg.BillingService.URL)

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		configRepository      *configRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		// Инициализируем репозитории с обёрткой метрик
		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		configRepository = configRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		// Инициализируем репозитории без метрик
		appointmentRepository = appointmentRepo.NewRepository(db)
		configRepository = configRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(
		appointmentRepository,
		businessClient,
		evidenceClient,
		log,
	)
	schedulingConfigSvc := schedulingConfigService.NewService(
		configRepository,
		businessClient,
		log,
	)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		configRepository,
		businessClient,
		txMgr,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		configRepository,
		businessClient,
		log,
	)
	startAppointmentUseCase := startAppointmentUC.NewUseCase(
		appointmentRepository,
		businessClient,
		consentClient,
		evidenceClient,
		txMgr,
		log,
	)
	completeAppointmentUseCase := completeAppointmentUC.NewUseCase(
		appointmentRepository,
		businessClient,
		evidenceClient,
		billingClient,
		txMgr,
		log,
	)

	// Инициализируем handlers
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	startWorkflow := startWorkflowHandler.NewHandler(startAppointmentUseCase, log)
	completeWorkflow := completeWorkflowHandler.NewHandler(completeAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	confirmAppointment := confirmAppointmentHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	attachEvidence := attachEvidenceHandler.NewHandler(appointmentsSvc, log)
	getClientAppointments := getClientAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getBusinessAppointments := getBusinessAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getSchedulingConfig := getSchedulingConfigHandler.NewHandler(schedulingConfigSvc, log)
	updateSchedulingConfig := updateSchedulingConfigHandler.NewHandler(schedulingConfigSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Присваиваем request ID каждому запросу
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Получение доступных слотов для записи
	api.HandleFunc("/businesses/{businessId}/branches/{branchId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Получение конфигурации расписания бизнеса
	api.HandleFunc("/businesses/{businessId}/scheduling-config",
		getSchedulingConfig.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	// Создание записи
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)

	// Получение записи по ID
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)

	// Подтверждение записи менеджером
	protected.HandleFunc("/appointments/{appointmentId}/confirm", confirmAppointment.Handle).Methods(http.MethodPatch)

	// Отмена записи
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// --- Процедуры начала и завершения визита ---
	protected.HandleFunc("/appointments/{appointmentId}/start-workflow", startWorkflow.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/complete-workflow", completeWorkflow.Handle).Methods(http.MethodPost)

	// Прикрепление фотофиксации вне процедур
	protected.HandleFunc("/appointments/{appointmentId}/evidence", attachEvidence.Handle).Methods(http.MethodPost)

	// История записей клиента
	protected.HandleFunc("/clients/{clientId}/appointments", getClientAppointments.Handle).Methods(http.MethodGet)

	// --- Управление бизнесом (для менеджеров) ---
	// Список записей бизнеса
	protected.HandleFunc("/businesses/{businessId}/appointments", getBusinessAppointments.Handle).Methods(http.MethodGet)

	// Обновление конфигурации расписания
	protected.HandleFunc("/businesses/{businessId}/scheduling-config", updateSchedulingConfig.Handle).Methods(http.MethodPut)

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

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

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
