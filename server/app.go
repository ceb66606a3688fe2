package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"torq/config"
	"torq/internal/authz"
	"torq/internal/db"
	"torq/internal/health"
	"torq/internal/logs"
	"torq/internal/middleware"
	"torq/internal/models"
	"torq/internal/oracle"
	"torq/internal/repo"
	"torq/internal/resource"
	"torq/internal/telemetry"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	Router     *mux.Router
	httpServer *http.Server
	sim        *telemetry.Simulator

	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	/* 1) Логи */
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	/* 2) DB (опционально) */
	if drv := a.cfg.Database.Driver; drv != "" {
		d, err := db.Open(drv, a.cfg.Database.DSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		a.db = d

		if err := a.db.AutoMigrate(&models.Car{},
			&models.AuthCode{},
			&models.FileRecord{},
			&models.UploadRecord{},
			&models.TelemetryRecord{}); err != nil {
			log.Fatalf("db migrate failed: %v", err)
		}
	}

	/* 3) Policy oracle: HTTP-шлюз ledger или in-memory замена */
	var oc oracle.Client
	if a.cfg.Oracle.URL != "" {
		oc = oracle.NewHTTPClient(a.cfg.Oracle.URL, a.cfg.Oracle.Timeout, a.cfg.Oracle.Retries)
	} else {
		logs.Logger.Warn("oracle.url is empty, using in-memory policy ledger")
		oc = oracle.NewMemClient()
	}

	/* 4) Хранилища: gorm или in-memory */
	var (
		authzStore authz.Store
		ts         telemetry.Store
		checker    resource.CredentialChecker
		uploads    resource.UploadIndex
		registry   resource.FileRegistry
	)
	if a.db != nil {
		cars := repo.NewCarStore(a.db)
		codes := repo.NewCodeStore(a.db)
		files := repo.NewFileStore(a.db)
		authzStore = newAuthzStoreAdapter(cars, codes)
		ts = repo.NewTelemetryStore(a.db)
		checker = &carCredChecker{cars: cars}
		uploads = &uploadIndexAdapter{files: files}
		registry = &registryAdapter{files: files}

		a.seedTelemetry(cars, ts)
	} else {
		ms := authz.NewMemStore()
		authzStore = ms
		ts = telemetry.NewMemStore()
		checker = &memCredChecker{ms: ms}
		uploads = resource.NewMemUploads()
		registry = resource.NewMemRegistry()
	}

	signer := authz.NewSigner([]byte(a.cfg.Auth.SigningSecret), a.cfg.Auth.TokenTTL)

	/* 5) Router + middleware */
	a.Router = mux.NewRouter().StrictSlash(true)
	a.Router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.LoggerMW,
	)

	/* 6) Health */
	if a.db != nil {
		health.RegisterRoutesWithDB(a.Router, a.db) // /healthz, /readyz
	} else {
		health.RegisterRoutes(a.Router) // только /healthz
	}

	/* 7) Issuer и ресурсный контур */
	authz.RegisterRoutes(a.Router, authz.NewHandler(authzStore, signer, a.cfg.Auth.CodeTTL))

	rh := resource.NewHandler(ts, oc, a.cfg.Files.Root, checker, uploads, registry)
	resource.RegisterRoutes(a.Router, rh, []byte(a.cfg.Auth.SigningSecret), a.cfg.Auth.AdminSecret)

	/* 8) Фоновый симулятор телеметрии (запускается в Run) */
	a.sim = telemetry.NewSimulator(ts, a.cfg.Telemetry.Interval)

	/* (необязательно) вывести известные маршруты в лог при старте */
	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

// seedTelemetry — стартовые снапшоты для машин, у которых их ещё нет.
func (a *App) seedTelemetry(cars *repo.CarStore, ts telemetry.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	list, err := cars.List(ctx)
	if err != nil {
		logs.Logger.Errorf("telemetry seed: list cars: %v", err)
		return
	}
	seeded := 0
	for i, car := range list {
		if _, err := ts.Get(ctx, car.ClientID); err == nil {
			continue
		} else if !errors.Is(err, telemetry.ErrNoData) {
			logs.Logger.Errorf("telemetry seed %s: %v", car.ClientID, err)
			continue
		}
		if err := ts.Put(ctx, car.ClientID, telemetry.SeedSnapshot(car.Model, car.Year, i+1)); err != nil {
			logs.Logger.Errorf("telemetry seed %s: %v", car.ClientID, err)
			continue
		}
		seeded++
	}
	if seeded > 0 {
		logs.Logger.Infof("telemetry seeded for %d vehicles", seeded)
	}
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}

	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		logs.Logger.Infof("shutdown signal: %s", s)
		a.cancel()
	}()

	// Симулятор живёт под контекстом приложения: cancel — штатная остановка
	go a.sim.Run(a.ctx)

	// Жёсткие таймауты — это важно для production
	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Logger.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	return nil
}
