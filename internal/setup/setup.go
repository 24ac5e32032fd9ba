package setup

import (
	"github.com/easeops/elibrary/internal/config"
	"github.com/easeops/elibrary/internal/email"
	"github.com/easeops/elibrary/internal/handler"
	"github.com/easeops/elibrary/internal/jwt"
	"github.com/easeops/elibrary/internal/middleware"
	"github.com/easeops/elibrary/internal/service"
	"github.com/easeops/elibrary/internal/storage/pg"
)

// Dependencies holds all initialized application dependencies.
type Dependencies struct {
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Jwt            jwt.JwtService
	Config         *config.Config
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	mail := email.New(&cfg.Private.Smtp)
	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	auth := service.NewAuth(storage, mail, jwtService)
	user := service.NewUser(storage)
	library := service.NewLibrary(storage, &cfg.Public)
	bookmark := service.NewBookmark(storage)
	interaction := service.NewInteraction(storage, mail)
	notification := service.NewNotifier(storage, mail)

	h := handler.New(auth, user, library, bookmark, interaction, notification, cfg)
	authMw := middleware.NewAuth(jwtService, storage)

	return &Dependencies{
		Storage:        storage,
		Handler:        h,
		AuthMiddleware: authMw,
		Jwt:            jwtService,
		Config:         cfg,
	}, nil
}
