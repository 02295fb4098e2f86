package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	api "github.com/cs-expo/expograde/internal/api/http"
	auth "github.com/cs-expo/expograde/internal/auth/middleware"
	"github.com/cs-expo/expograde/internal/config"
	"github.com/cs-expo/expograde/internal/db"
	"github.com/cs-expo/expograde/internal/group"
	"github.com/cs-expo/expograde/internal/rbac"
	"github.com/cs-expo/expograde/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := seedAdmin(ctx, dbh, cfg); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	store := group.NewSQLStore(dbh)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Snapshot archive for backups ---
	snaps, err := storage.NewFSStore(cfg.SnapshotDir)
	if err != nil {
		log.Fatalf("snapshot store: %v", err)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → role from DB → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))

		// Groups
		pr.With(rbac.Require("group:list")).
			Get("/groups", api.ListGroupsHandler(store))
		pr.With(rbac.Require("group:view")).
			Get("/groups/{groupID}", api.GetGroupHandler(store))
		pr.With(rbac.Require("group:create")).
			Post("/groups", api.CreateGroupHandler(store))
		pr.With(rbac.Require("group:update")).
			Put("/groups/{groupID}", api.UpdateGroupHandler(store))
		pr.With(rbac.Require("group:delete")).
			Delete("/groups/{groupID}", api.DeleteGroupHandler(store))
		pr.With(rbac.Require("group:delete")).
			Delete("/groups", api.DeleteAllGroupsHandler(store))
		pr.With(rbac.Require("group:create")).
			Post("/groups/bulk", api.BulkCreateGroupsHandler(store))

		// Grading
		pr.With(rbac.Require("grade:submit")).
			Post("/groups/{groupID}/grades", api.SubmitGradeHandler(store))

		// Awards + reports
		pr.With(rbac.Require("awards:view")).
			Get("/awards", api.GetAwardsHandler(store))
		pr.With(rbac.Require("reports:view")).
			Get("/reports/masterlist", api.MasterlistHandler(store, dbh))
		pr.With(rbac.Require("reports:view")).
			Get("/reports/dashboard.csv", api.DashboardCSVHandler(store, dbh))

		// Users
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("users:manage")).
			Post("/users", api.CreateUserHandler(dbh))
		pr.With(rbac.Require("users:manage")).
			Put("/users/{userID}", api.UpdateUserHandler(dbh))
		pr.With(rbac.Require("users:manage")).
			Delete("/users/{userID}", api.DeleteUserHandler(dbh))
		pr.With(rbac.Require("users:manage")).
			Post("/users/bulk", api.BulkCreateUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))

		// System
		pr.With(rbac.Require("system:backup")).
			Get("/system/backup", api.BackupHandler(dbh, snaps))
		pr.With(rbac.Require("system:backup")).
			Get("/system/backup/latest", api.LatestBackupHandler(snaps))
		pr.With(rbac.Require("system:restore")).
			Post("/system/restore", api.RestoreHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// seedAdmin makes sure the admin account exists so a fresh install is usable.
func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) error {
	var exists int
	err := dbh.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email=$1`, cfg.AdminEmail).Scan(&exists)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}
	_, err = dbh.ExecContext(ctx,
		`INSERT INTO users (id,name,email,role,password_hash) VALUES ($1,$2,$3,$4,$5)`,
		"admin", cfg.AdminName, cfg.AdminEmail, rbac.RoleAdmin, cfg.AdminPassHash)
	return err
}
