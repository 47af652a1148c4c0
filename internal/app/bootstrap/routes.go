// Package bootstrap loads configuration, connects the backing services and
// assembles the HTTP handler.
package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	attendancefeature "github.com/gsdta/schoolapi/internal/app/features/attendance"
	authapifeature "github.com/gsdta/schoolapi/internal/app/features/authapi"
	calendarfeature "github.com/gsdta/schoolapi/internal/app/features/calendar"
	classesfeature "github.com/gsdta/schoolapi/internal/app/features/classes"
	flashnewsfeature "github.com/gsdta/schoolapi/internal/app/features/flashnews"
	healthfeature "github.com/gsdta/schoolapi/internal/app/features/health"
	newspostsfeature "github.com/gsdta/schoolapi/internal/app/features/newsposts"
	studentsfeature "github.com/gsdta/schoolapi/internal/app/features/students"
	superadminfeature "github.com/gsdta/schoolapi/internal/app/features/superadmin"
	attendancestore "github.com/gsdta/schoolapi/internal/app/store/attendance"
	calendarstore "github.com/gsdta/schoolapi/internal/app/store/calendar"
	classstore "github.com/gsdta/schoolapi/internal/app/store/classes"
	flashnewsstore "github.com/gsdta/schoolapi/internal/app/store/flashnews"
	newspoststore "github.com/gsdta/schoolapi/internal/app/store/newsposts"
	studentstore "github.com/gsdta/schoolapi/internal/app/store/students"
	userstore "github.com/gsdta/schoolapi/internal/app/store/users"
	"github.com/gsdta/schoolapi/internal/app/system/audit"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/cors"
	"github.com/gsdta/schoolapi/internal/app/system/flags"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/metrics"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

// mongoPinger adapts the mongo client to the health probe.
type mongoPinger struct{ deps *Deps }

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.deps.MongoClient.Ping(ctx, readpref.Primary())
}

// BuildHandler wires stores, the request pipeline and every feature router
// into the root handler.
func BuildHandler(cfg *Config, deps *Deps, logger *zap.Logger) http.Handler {
	db := deps.MongoDatabase

	policy := cors.New(cfg.Env, cfg.AllowedOrigins)
	valid := validate.New()
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTTTL)

	users := userstore.New(db)
	studentsStore := studentstore.New(db)
	classesStore := classstore.New(db)
	calendarStore := calendarstore.New(db)
	newsStore := newspoststore.New(db)
	flashStore := flashnewsstore.New(db)
	attendanceStore := attendancestore.New(db)

	guard := auth.NewGuard(tokens, users, logger)
	flagSvc := flags.NewService(flags.NewMongoStore(db), logger, cfg.FlagCacheTTL)
	auditStore := audit.NewMongoStore(db)
	auditLog := audit.NewLogger(auditStore, logger)
	recorder := metrics.NewRecorder()

	authHandler := authapifeature.NewHandler(users, tokens, auditLog, valid, logger)
	calendarHandler := calendarfeature.NewHandler(calendarStore, valid, logger)
	classesHandler := classesfeature.NewHandler(classesStore, studentsStore, users, valid, logger)
	studentsHandler := studentsfeature.NewHandler(studentsStore, classesStore, valid, logger)
	newsHandler := newspostsfeature.NewHandler(newsStore, valid, logger)
	flashHandler := flashnewsfeature.NewHandler(flashStore, valid, logger)
	attendanceHandler := attendancefeature.NewHandler(attendanceStore, classesStore, valid, logger)
	superHandler := superadminfeature.NewHandler(users, flagSvc, auditLog, auditStore, valid, logger)
	healthHandler := healthfeature.NewHandler(mongoPinger{deps}, logger)

	r := chi.NewRouter()
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(httpx.RequestLogger(logger))
	r.Use(httpx.Recoverer(logger))
	r.Use(recorder.Middleware)

	r.Route("/api/v1", func(api chi.Router) {
		// Public surface.
		api.Mount("/auth", authapifeature.Routes(authHandler, policy))
		api.Mount("/calendar", calendarfeature.PublicRoutes(calendarHandler, policy))
		api.Mount("/news-posts", newspostsfeature.PublicRoutes(newsHandler, policy))
		api.Mount("/flash-news", flashnewsfeature.PublicRoutes(flashHandler, policy))

		// Authenticated caller.
		api.Mount("/me", authapifeature.MeRoutes(authHandler, policy, guard))
		api.Mount("/me/students", studentsfeature.MyRoutes(studentsHandler, policy, guard, flagSvc))

		// Admin portal.
		api.Mount("/admin/calendar", calendarfeature.Routes(calendarHandler, policy, guard, flagSvc))
		api.Mount("/admin/classes", classesfeature.Routes(classesHandler, policy, guard, flagSvc))
		api.Mount("/admin/students", studentsfeature.Routes(studentsHandler, policy, guard, flagSvc))
		api.Mount("/admin/news-posts", newspostsfeature.Routes(newsHandler, policy, guard, flagSvc))
		api.Mount("/admin/flash-news", flashnewsfeature.Routes(flashHandler, policy, guard, flagSvc))

		// Teacher portal.
		attendanceRoutes := attendancefeature.Routes(attendanceHandler, flagSvc)
		api.Mount("/teacher/classes", classesfeature.TeacherRoutes(classesHandler, attendanceRoutes, policy, guard, flagSvc))
		api.Mount("/teacher/news-posts", newspostsfeature.TeacherRoutes(newsHandler, policy, guard, flagSvc))

		// Super-admin console.
		api.Mount("/super-admin", superadminfeature.Routes(superHandler, policy, guard))
	})

	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Method(http.MethodGet, "/metrics", recorder.Handler())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.Err(w, req, http.StatusNotFound, "route/not-found", "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.Err(w, req, http.StatusMethodNotAllowed, "route/method-not-allowed", "Method not allowed")
	})

	return r
}
