package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"vet-clinic-api/internal/adapters/storage/postgres"
	"vet-clinic-api/internal/adapters/storage/stoolap"
	"vet-clinic-api/internal/config"
	"vet-clinic-api/internal/dispatch"
	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/auth"
	"vet-clinic-api/internal/domain/cart"
	"vet-clinic-api/internal/domain/catalog"
	"vet-clinic-api/internal/domain/medicalrecords"
	"vet-clinic-api/internal/domain/notifications"
	"vet-clinic-api/internal/domain/orders"
	"vet-clinic-api/internal/domain/pets"
	"vet-clinic-api/internal/domain/products"
	"vet-clinic-api/internal/domain/reports"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/platform/tokens"
	"vet-clinic-api/internal/ports/events"
	"vet-clinic-api/internal/session"
	"vet-clinic-api/internal/upload"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "vet-clinic-api/docs"
)

type Options struct {
	Cfg config.Config

	// Opcional: broker de eventos. Nil = no se publica nada.
	Publisher events.Publisher

	// Opcional: store de sesiones compartido (tests). Nil = uno nuevo.
	Sessions *session.Store

	Log logger.Logger
}

// New arma el grafo completo: store -> repos -> services -> acciones.
// La selección de adapter sigue la config: DB_DSN => Postgres; si no,
// el motor embebido en DB_FILE ("memory://" en tests).
func New(opts Options) (http.Handler, error) {
	cfg := opts.Cfg

	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewStore()
	}

	var (
		usersRepo    users.Repository
		attemptsRepo auth.Repository
		notifRepo    notifications.Repository
		petsRepo     pets.Repository
		catalogRepo  catalog.Repository
		apptRepo     appointments.Repository
		recordsRepo  medicalrecords.Repository
		productsRepo products.Repository
		cartRepo     cart.Repository
		ordersRepo   orders.Repository
	)

	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		usersRepo = postgres.NewUsersRepo(db)
		attemptsRepo = postgres.NewAttemptsRepo(db)
		notifRepo = postgres.NewNotificationsRepo(db)
		petsRepo = postgres.NewPetsRepo(db)
		catalogRepo = postgres.NewCatalogRepo(db)
		apptRepo = postgres.NewAppointmentsRepo(db)
		recordsRepo = postgres.NewMedicalRecordsRepo(db)
		productsRepo = postgres.NewProductsRepo(db)
		cartRepo = postgres.NewCartRepo(db)
		ordersRepo = postgres.NewOrdersRepo(db)
	} else {
		dsn := cfg.DBFile
		if !strings.Contains(dsn, "://") {
			dsn = "file://" + dsn
		}
		db, err := stoolap.Open(dsn)
		if err != nil {
			return nil, fmt.Errorf("open embedded store: %w", err)
		}
		nr, err := stoolap.NewNotificationsRepo(db)
		if err != nil {
			return nil, fmt.Errorf("seed notifications: %w", err)
		}
		usersRepo = stoolap.NewUsersRepo(db)
		attemptsRepo = stoolap.NewAttemptsRepo(db)
		notifRepo = nr
		petsRepo = stoolap.NewPetsRepo(db)
		catalogRepo = stoolap.NewCatalogRepo(db)
		apptRepo = stoolap.NewAppointmentsRepo(db)
		recordsRepo = stoolap.NewMedicalRecordsRepo(db)
		productsRepo = stoolap.NewProductsRepo(db)
		cartRepo = stoolap.NewCartRepo(db)
		ordersRepo = stoolap.NewOrdersRepo(db)
	}

	// Services por módulo. users y notifications se necesitan mutuamente
	// (welcome / directorio de staff): el notifier se engancha después.
	usersSvc := users.NewService(usersRepo, tokens.NewMaker(cfg.JWTSecret), nil, log)
	notifSvc := notifications.NewService(notifRepo, usersSvc, log)
	usersSvc.SetNotifier(notifSvc)

	// Primera cuenta staff: create_staff exige estar logueado como staff,
	// así que el arranque siembra una desde la config si no existe.
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		ctx := context.Background()
		if _, err := usersSvc.GetByEmail(ctx, cfg.AdminEmail); err != nil {
			if _, _, err := usersSvc.Register(ctx, users.RegisterInput{
				Name:     "Admin",
				Email:    cfg.AdminEmail,
				Password: cfg.AdminPassword,
				Role:     users.RoleStaff,
			}); err != nil {
				return nil, fmt.Errorf("seed admin account: %w", err)
			}
		}
	}

	authSvc := auth.NewService(usersRepo, attemptsRepo, sessions, notifSvc, log)
	petsSvc := pets.NewService(petsRepo)
	catalogSvc := catalog.NewCatalog(catalogRepo)
	apptSvc := appointments.NewService(apptRepo, petsSvc, catalogSvc, notifSvc)
	recordsSvc := medicalrecords.NewService(recordsRepo, apptSvc, notifSvc)
	productsSvc := products.NewService(productsRepo)
	cartSvc := cart.NewService(cartRepo, productsSvc)
	ordersSvc := orders.NewService(ordersRepo, cartSvc, productsSvc, notifSvc)
	reportsSvc := reports.NewService(petsSvc, apptSvc, recordsSvc, usersSvc)

	// Acciones por módulo
	d := dispatch.New(opts.Publisher, log)
	users.RegisterActions(d, usersSvc)
	auth.RegisterActions(d, authSvc)
	pets.RegisterActions(d, petsSvc)
	catalog.RegisterActions(d, catalogSvc)
	appointments.RegisterActions(d, apptSvc)
	medicalrecords.RegisterActions(d, recordsSvc)
	products.RegisterActions(d, productsSvc)
	cart.RegisterActions(d, cartSvc)
	orders.RegisterActions(d, ordersSvc)
	notifications.RegisterActions(d, notifSvc)
	reports.RegisterActions(d, reportsSvc)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SessionContext(sessions, usersSvc))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/api", d.ServeHTTP)
	r.Get("/api", d.ServeHTTP)

	r.Get("/api/notifications/stream", notifications.StreamHandler(notifSvc, cfg.StreamPollInterval, log))

	r.Method(http.MethodPost, "/api/upload", upload.NewHandler(cfg.UploadDir, usersSvc, productsSvc, log))

	r.Get("/swagger/*", httpSwagger.Handler())

	// CORS por fuera del mux: el preflight OPTIONS responde 200 para
	// cualquier path sin pasar por el ruteo.
	return middleware.CORS(r), nil
}
