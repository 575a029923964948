package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v66/github"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/varchasvakhare2022/Github-Stats-Analyzer/config"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/controller"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/logger"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/service"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/store"
)

func main() {
	// optional .env overlay, mainly for GITHUB_TOKEN during development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("unable to load configuration")
		os.Exit(1)
	}

	// configure logger
	logger.Setup(*cfg)

	// open the preference store, restore a previously saved token from it
	// when the configuration carries none
	preferences, err := store.NewFileStore(cfg.Store.FilePath)
	if err != nil {
		log.WithError(err).Error("unable to open preference store")
		os.Exit(1)
	}

	if cfg.Github.Token == "" {
		if savedToken, found := preferences.Get(store.KeyToken); found {
			log.Debug("restoring github token from preference store")
			cfg.Github.Token = savedToken
		}
	}

	// setup github client
	// built here and passed to the service to easily improve tests with a mock client
	githubClient := github.NewClient(nil)

	// setup local rate limiter seeded from the current github quota
	// consuming the already spent tokens keeps it aligned even if external
	// requests were made with the same credential
	rateLimiter := seedRateLimiter(githubClient, cfg.Github.Token)

	// setup services, viewer session, poller and handlers
	githubService := service.NewGithubService(*cfg, githubClient, rateLimiter)
	reportService := service.NewReportService(*cfg, githubService)
	viewer := service.NewViewer(reportService)
	poller := service.NewRateLimitPoller(githubService, time.Duration(cfg.Poller.IntervalSeconds)*time.Second)

	pollerCtx, stopPoller := context.WithCancel(context.Background())
	defer stopPoller()
	go poller.Run(pollerCtx)

	apiController := controller.NewAPIController(*cfg, viewer, reportService, githubService, poller, preferences)

	// setup server and define all routes
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	server := &http.Server{
		Addr:    ":" + cfg.API.ListenPort,
		Handler: router,
	}

	// the consumer is a browser, CORS stays wide open
	router.Use(
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PUT"},
			AllowHeaders: []string{"Content-Type, Content-Length, Accept-Encoding, Host, accept, Origin, Cache-Control, X-Requested-With"},
			MaxAge:       12 * time.Hour,
		}),
	)

	api := router.Group("/api")
	{
		api.POST("/query", apiController.SubmitQuery)
		api.GET("/report", apiController.GetReport)
		api.GET("/repos", apiController.GetRepositories)
		api.GET("/rate_limit", apiController.GetRateLimit)
		api.GET("/users/:login/report", apiController.GetUserReport)
		api.GET("/preferences", apiController.GetPreferences)
		api.PUT("/preferences", apiController.PutPreferences)
	}

	// start with configuration
	go func() {
		log.Info("server listening on port " + cfg.API.ListenPort)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("error while starting server")
		}
	}()

	// wait for interrupt signal to gracefully shut down the server
	// kill default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("SIGINT, SIGTERM received, will shut down server ...")
	stopPoller()

	if err := gracefulShutdown(server, 15*time.Second); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	} else {
		log.Info("Application stopped gracefully !")
	}
}

// gracefulShutdown drains in-flight requests, giving up after timeout. The
// deadline starts here, not at process start.
func gracefulShutdown(server *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return server.Shutdown(ctx)
}

// seedRateLimiter asks github for the current quota of the credential and
// preloads a local limiter with it. When the call fails the anonymous
// default applies instead of refusing to start.
func seedRateLimiter(githubClient *github.Client, token string) *rate.Limiter {
	const anonymousHourlyLimit = 60

	client := githubClient
	if token != "" {
		client = githubClient.WithAuthToken(token)
	}

	log.Debug("loading current rate limit from github")
	rateLimits, _, err := client.RateLimit.Get(context.Background())

	if err != nil || rateLimits == nil || rateLimits.Core == nil {
		log.WithError(err).Warn("unable to load current github rate limits. falling back to the anonymous limit")
		return rate.NewLimiter(rate.Every(time.Hour), anonymousHourlyLimit)
	}

	log.WithFields(log.Fields{
		"totalAvailable":    rateLimits.Core.Limit,
		"remainingRequests": rateLimits.Core.Remaining,
	}).Debug("will setup local rate limiter with rate limits infos from github")

	rateLimiter := rate.NewLimiter(rate.Every(time.Hour), rateLimits.Core.Limit)

	if !rateLimiter.AllowN(time.Now(), rateLimits.Core.Limit-rateLimits.Core.Remaining) {
		log.Warn("unable to preload the github rate limiter with the spent quota")
	}

	return rateLimiter
}
