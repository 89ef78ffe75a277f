package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	pkg "github.com/desmin2102/HostelApp/pkg/internal"
	"github.com/desmin2102/HostelApp/pkg/internal/cache"
	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/desmin2102/HostelApp/pkg/internal/grpc"
	"github.com/desmin2102/HostelApp/pkg/internal/http"
	"github.com/desmin2102/HostelApp/pkg/internal/queue"
	"github.com/desmin2102/HostelApp/pkg/internal/services"
	"github.com/desmin2102/HostelApp/pkg/internal/services/gomaps"
	"github.com/desmin2102/HostelApp/pkg/internal/services/mailer"
	"github.com/desmin2102/HostelApp/pkg/internal/storage"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" _   _           _       _\n| | | | ___  ___| |_ ___| |\n| |_| |/ _ \\/ __| __/ _ \\ |\n|  _  | (_) \\__ \\ ||  __/ |\n|_| |_|\\___/|___/\\__\\___|_|"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("HostelApp"), pkg.AppVersion)
	fmt.Printf("The rental housing marketplace\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("An error occurred when loading .env file...")
	}
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}
	if ttl := viper.GetDuration("cache.ttl"); ttl > 0 {
		services.LocationCacheTTL = ttl
	}
	if count := viper.GetInt("rentals.min_images"); count > 0 {
		services.MinRentalImages = count
	}

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Initialize cache
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing cache.")
	}

	// Geocoder
	if len(viper.GetString("geocoder.api_key")) == 0 {
		log.Warn().Msg("No geocoder api key configured, rental posts will be saved without coordinates...")
	} else {
		services.Geocoder = gomaps.NewClientFromSettings()
	}

	// Image store
	mongoCtx, cancelMongo := context.WithTimeout(context.Background(), 10*time.Second)
	gridStore, err := storage.NewGridStore(mongoCtx)
	cancelMongo()
	if err != nil {
		log.Error().Err(err).Msg("An error occurred when connecting to mongo, images will be kept in memory...")
		services.Images = storage.NewMemoryStore()
	} else {
		services.Images = gridStore
		log.Info().Msg("Image store connected.")
	}

	// Notifications
	rdb := queue.NewRedisFromSettings()
	notifications := queue.New(rdb, viper.GetString("queue.key"))
	services.Dispatcher = notifications

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go queue.NewWorker(notifications, mailer.NewSMTPSenderFromSettings()).Run(workerCtx)

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", services.DoAutoDatabaseCleanup)
	quartz.AddFunc("@every 30m", services.DoCoordinateBackfill)
	quartz.Start()

	// Server
	server := http.NewServer()
	go server.Listen()

	grpcServer := grpc.NewGrpc()
	go func() {
		if err := grpcServer.Listen(); err != nil {
			log.Fatal().Err(err).Msg("An error occurred when starting grpc server...")
		}
	}()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	server.Shutdown()
	grpcServer.Stop()
	<-quartz.Stop().Done()
	stopWorker()

	closeCtx, cancelClose := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelClose()
	if gridStore != nil {
		_ = gridStore.Close(closeCtx)
	}
	_ = rdb.Close()
}
