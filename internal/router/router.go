package router

import (
	"context"
	"database/sql"
	"net/http"

	_ "livestock-registry/docs"

	mem "livestock-registry/internal/adapters/storage/memory"
	pg "livestock-registry/internal/adapters/storage/postgres"
	"livestock-registry/internal/domain/growth"
	"livestock-registry/internal/domain/identification"
	"livestock-registry/internal/domain/rebouclage"
	"livestock-registry/internal/middleware"
	"livestock-registry/internal/platform/logger"
	"livestock-registry/internal/platform/metrics"
	"livestock-registry/internal/ports/auth"
	"livestock-registry/internal/ports/directory"
	"livestock-registry/internal/ports/extraction"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcionales: sin extractor el alta automática responde 422; sin
	// directorio no se chequean las refs administrativas.
	Extractor extraction.Extractor
	Directory directory.Directory

	Logger logger.Logger
}

type repos struct {
	identifications identification.Repository
	rebouclages     rebouclage.Repository
	measurements    growth.MeasurementLog
}

func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	rp, err := buildRepos(opts.DB)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(log))
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(middleware.AuthContext(opts.AuthVerifier, log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Services por módulo
	idSvc := identification.NewService(rp.identifications, log)
	growthSvc := growth.NewService(idSvc, rp.measurements, log)
	rbSvc := rebouclage.NewService(rp.rebouclages, opts.Extractor, log)

	// Rutas por módulo
	identification.RegisterRoutes(r, idSvc, opts.Directory)
	growth.RegisterRoutes(r, growthSvc)
	rebouclage.RegisterRoutes(r, rbSvc)

	return r, nil
}

func buildRepos(db *sql.DB) (repos, error) {
	if db == nil {
		return repos{
			identifications: mem.NewIdentificationRepo(),
			rebouclages:     mem.NewRebouclageRepo(),
			measurements:    mem.NewMeasurementLog(),
		}, nil
	}

	if err := pg.EnsureSchema(context.Background(), db); err != nil {
		return repos{}, err
	}
	return repos{
		identifications: pg.NewIdentificationRepo(db),
		rebouclages:     pg.NewRebouclageRepo(db),
		measurements:    pg.NewMeasurementLog(db),
	}, nil
}
