package http

import (
	"strings"

	"github.com/desmin2102/HostelApp/pkg/internal/http/admin"
	"github.com/desmin2102/HostelApp/pkg/internal/http/api"
	"github.com/desmin2102/HostelApp/pkg/internal/http/exts"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type HTTPApp struct {
	app *fiber.App
}

func NewServer() *HTTPApp {
	app := NewApp()

	app.Use(cors.New(cors.Config{
		AllowCredentials: true,
		AllowMethods: strings.Join([]string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodHead,
			fiber.MethodOptions,
			fiber.MethodPut,
			fiber.MethodDelete,
			fiber.MethodPatch,
		}, ","),
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
	}))

	app.Use(logger.New(logger.Config{
		Format: "${status} | ${latency} | ${method} ${path}\n",
		Output: log.Logger,
	}))

	MapRoutes(app)

	return &HTTPApp{app}
}

// NewApp builds the bare fiber app with the shared encoder and error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		DisableStartupMessage: true,
		EnableIPValidation:    true,
		ServerHeader:          "HostelApp",
		AppName:               "HostelApp",
		ProxyHeader:           fiber.HeaderXForwardedFor,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		ErrorHandler:          exts.ErrorHandler,
		BodyLimit:             viper.GetInt("rentals.body_limit_mb") * 1024 * 1024,
		EnablePrintRoutes:     viper.GetBool("debug.print_routes"),
	})
}

func MapRoutes(app *fiber.App) {
	app.Use(exts.ContextMiddleware)

	admin.MapControllers(app, "/api/admin")
	api.MapAPIs(app, "/api")
}

func (v *HTTPApp) Listen() {
	if err := v.app.Listen(viper.GetString("bind")); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when starting server...")
	}
}

func (v *HTTPApp) Shutdown() {
	if err := v.app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("An error occurred when shutting down server...")
	}
}
