package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"guardpost/internal/config"
	accountusecase "guardpost/internal/modules/account/application/usecase"
	accountinfra "guardpost/internal/modules/account/infrastructure"
	accounttransport "guardpost/internal/modules/account/interface"
	escalationusecase "guardpost/internal/modules/escalation/application/usecase"
	escalationinfra "guardpost/internal/modules/escalation/infrastructure"
	escalationtransport "guardpost/internal/modules/escalation/interface"
	listingusecase "guardpost/internal/modules/listing/application/usecase"
	listinginfra "guardpost/internal/modules/listing/infrastructure"
	listingtransport "guardpost/internal/modules/listing/interface"
	operationsusecase "guardpost/internal/modules/operations/application/usecase"
	operationsinfra "guardpost/internal/modules/operations/infrastructure"
	operationstransport "guardpost/internal/modules/operations/interface"
	paymentusecase "guardpost/internal/modules/payment/application/usecase"
	paymentinfra "guardpost/internal/modules/payment/infrastructure"
	paymenttransport "guardpost/internal/modules/payment/interface"
	realtimehandler "guardpost/internal/modules/realtime/application/handler"
	realtimeusecase "guardpost/internal/modules/realtime/application/usecase"
	realtimeinfra "guardpost/internal/modules/realtime/infrastructure"
	realtimetransport "guardpost/internal/modules/realtime/interface"
	sessionusecase "guardpost/internal/modules/session/application/usecase"
	sessioninfra "guardpost/internal/modules/session/infrastructure"
	sessiontransport "guardpost/internal/modules/session/interface"
	sopusecase "guardpost/internal/modules/sop/application/usecase"
	soptransport "guardpost/internal/modules/sop/interface"
	staffusecase "guardpost/internal/modules/staff/application/usecase"
	staffinfra "guardpost/internal/modules/staff/infrastructure"
	stafftransport "guardpost/internal/modules/staff/interface"
	"guardpost/internal/platform/broker"
	"guardpost/internal/shared/auth"
	"guardpost/internal/shared/logging"
)

func main() {
	// Load .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := logging.Setup(cfg.Logging.Directory, logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))
	slog.Info("upstream configured", slog.String("baseUrl", cfg.Upstream.BaseURL), slog.Duration("timeout", cfg.Upstream.Timeout))
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("group", cfg.Kafka.GroupID), slog.Any("topics", cfg.Kafka.Topics))

	// Session module: login against the upstream, cookie sessions, channel
	// tokens for websocket connects.
	sessionStore := sessioninfra.NewSessionStore(cfg.Session.CookieMaxAge)
	authClient := sessioninfra.NewAuthHTTPClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, nil)
	issuer := auth.NewIssuer(cfg.Security.JWTSecret, cfg.Security.ChannelTokenTTL)
	loginUC := sessionusecase.NewLoginUseCase(authClient, sessionStore, issuer)
	passwordUC := sessionusecase.NewPasswordChangeUseCase(authClient)
	sessionHandler := sessiontransport.NewHandler(loginUC, passwordUC, sessionStore, sessiontransport.CookieSettings{
		Name:   cfg.Session.CookieName,
		MaxAge: cfg.Session.CookieMaxAge,
		Secure: cfg.Session.CookieSecure,
	})

	// Listing module: paginated dashboard resources with page caching.
	resourceClient := listinginfra.NewResourceHTTPClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, nil)
	listerUC := listingusecase.NewListResourceUseCase(resourceClient)
	listingHandler := listingtransport.NewHandler(listerUC, cfg.Listing.DefaultPerPage)

	// Remaining proxy modules.
	escalationUC := escalationusecase.NewEscalationUseCase(escalationinfra.NewEscalationHTTPClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, nil))
	escalationHandler := escalationtransport.NewHandler(escalationUC)

	operationsUC := operationsusecase.NewSubmitFormUseCase(operationsinfra.NewOperationsHTTPClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, nil))
	operationsHandler := operationstransport.NewHandler(operationsUC, cfg.Uploads.MaxFileSize)

	paymentUC := paymentusecase.NewPaymentUseCase(paymentinfra.NewPaymentHTTPClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, nil))
	paymentHandler := paymenttransport.NewHandler(paymentUC)

	reviewUC := staffusecase.NewReviewUseCase(staffinfra.NewStaffHTTPClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, nil), listerUC)
	staffHandler := stafftransport.NewHandler(reviewUC)

	sopUC := sopusecase.NewSOPUseCase(listerUC)
	sopHandler := soptransport.NewHandler(sopUC)

	accountUC := accountusecase.NewAccountUseCase(accountinfra.NewAccountHTTPClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, nil))
	accountHandler := accounttransport.NewHandler(accountUC)

	// Realtime module: websocket hub, per-connection list watchers, and the
	// broker handlers that turn upstream events into refreshes.
	hub := realtimeinfra.NewHub()
	broadcastUC := realtimeusecase.NewBroadcastUseCase(hub)
	watchers := realtimeusecase.NewWatchManager(listerUC, cfg.Listing.DebounceWindow)
	validator := auth.NewJWTValidator(cfg.Security.JWTSecret)

	registry := realtimeinfra.NewHandlerRegistry()
	for _, topic := range cfg.Kafka.Topics {
		registry.Register(realtimehandler.NewResourceEventHandler(topic, listerUC, watchers, broadcastUC))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topics)

	resources := listinginfra.SupportedResources()
	sort.Strings(resources)
	wsHandler := realtimetransport.NewWebsocketHandler(hub, validator, sessionStore, watchers, resources, cfg.Websocket.SendBuffer)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())

	e.POST("/auth/login", sessionHandler.HandleLogin)
	e.POST("/auth/logout", sessionHandler.HandleLogout)
	e.GET("/auth/session", sessionHandler.HandleSession, sessionHandler.RequireSession)

	dash := e.Group("/dashboard", sessionHandler.RequireSession)
	dash.POST("/password/request-otp", sessionHandler.HandleRequestOTP)
	dash.POST("/password/verify-otp", sessionHandler.HandleVerifyOTP)
	dash.POST("/password/change", sessionHandler.HandleChangePassword)
	dash.POST("/password/back", sessionHandler.HandleWizardBack)

	dash.GET("/account-info", accountHandler.HandleAccountInfo)
	dash.GET("/overview-data", accountHandler.HandleOverview)
	dash.GET("/escalation-types", accountHandler.HandleEscalationTypes)

	dash.POST("/escalations", escalationHandler.HandleSubmit)
	dash.GET("/escalations/:id", escalationHandler.HandleThread)
	dash.POST("/escalations/:id/reply", escalationHandler.HandleReply)

	dash.POST("/operations/:form", operationsHandler.HandleSubmit)

	dash.POST("/payments/initialize", paymentHandler.HandleInitialize)
	dash.GET("/payments/verify/:reference", paymentHandler.HandleVerify)
	dash.POST("/payments/request-service", paymentHandler.HandleRequestService)

	dash.POST("/staff/reviews", staffHandler.HandleAddReview)

	dash.GET("/sop/:id/preview", sopHandler.HandlePreview)
	dash.GET("/sop/:id/export", sopHandler.HandleExport)

	dash.GET("/:resource", listingHandler.HandleList)
	dash.GET("/:resource/:id", listingHandler.HandleDetail)

	e.GET("/ws/dashboard", wsHandler)
	e.GET("/ws/dashboard/:token", wsHandler)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")
	cancel()
	_ = e.Close()
}
