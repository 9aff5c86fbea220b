package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/wishgifthub/wishgifthub/internal/config"
	"github.com/wishgifthub/wishgifthub/internal/infrastructure/database"
	"github.com/wishgifthub/wishgifthub/internal/infrastructure/gateway"
	"github.com/wishgifthub/wishgifthub/internal/infrastructure/repository"
	"github.com/wishgifthub/wishgifthub/internal/password"
	"github.com/wishgifthub/wishgifthub/internal/present/rest"
	"github.com/wishgifthub/wishgifthub/internal/present/rest/middleware"
	"github.com/wishgifthub/wishgifthub/internal/service"
	"github.com/wishgifthub/wishgifthub/internal/token"
	"github.com/wishgifthub/wishgifthub/internal/tracing"
	"github.com/wishgifthub/wishgifthub/internal/usecase"
)

// set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	shutdownTracer, err := tracing.Setup(ctx, "wishgifthub", cfg.Server)
	if err != nil {
		slog.Error("failed to setup tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(ctx); err != nil {
			slog.Error("failed to flush traces", slog.String("error", err.Error()))
		}
	}()

	db, err := database.NewPostgres(cfg.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(cfg.Server.RedisAddr, "", cfg.Server.RedisDB)

	var mc *memcache.Client
	if cfg.Server.MemcachedAddr != "" {
		mc = database.NewMemcached(cfg.Server.MemcachedAddr)
	}

	codec := token.NewCodec(cfg.Auth.JwtSecret, cfg.Auth.TTL)
	hasher := password.NewHasher()

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	wishRepo := repository.NewWishRepository(db)
	metadataGW := gateway.NewMetadataGateway(mc)

	events := service.NewEventService(rdb)

	authUC := usecase.NewAuthUsecase(userRepo, membershipRepo, hasher, codec)
	groupUC := usecase.NewGroupUsecase(groupRepo, membershipRepo, codec)
	invitationUC := usecase.NewInvitationUsecase(invitationRepo, groupRepo, userRepo, membershipRepo, codec, cfg.Invitation.BaseURL)
	wishUC := usecase.NewWishUsecase(wishRepo, membershipRepo, events)
	userUC := usecase.NewUserUsecase(userRepo)
	metadataUC := usecase.NewMetadataUsecase(metadataGW)

	handler := rest.NewHandler(authUC, groupUC, invitationUC, wishUC, userUC, metadataUC, events, codec, version)
	authMiddleware := middleware.NewAuthMiddleware(codec)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if cfg.Server.EnableTrace {
		e.Use(otelecho.Middleware("wishgifthub"))
	}

	handler.RegisterRoutes(e, authMiddleware)

	slog.Info("starting", slog.String("addr", cfg.Server.ListenAddr), slog.String("version", version))
	e.Logger.Fatal(e.Start(cfg.Server.ListenAddr))
}
