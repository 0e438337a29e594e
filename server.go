package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"civiclens-be/ai"
	"civiclens-be/config"
	"civiclens-be/controllers"
	"civiclens-be/logger"
	"civiclens-be/messaging"
	"civiclens-be/models"
	"civiclens-be/repository"
	"civiclens-be/routes"
	"civiclens-be/services"
	"civiclens-be/storage"
	"civiclens-be/utils"
	"civiclens-be/ws"
)

const shutdownTimeout = 10 * time.Second

// backends holds the external clients that need closing on shutdown.
type backends struct {
	firebase  *config.FirebaseClients
	mongo     *mongo.Database
	redis     *redis.Client
	publisher messaging.Publisher
}

func (b *backends) close() {
	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil {
			logger.Log.Warnf("Closing event publishers: %v", err)
		}
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			logger.Log.Warnf("Closing Redis: %v", err)
		}
	}
	if b.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := b.mongo.Client().Disconnect(ctx); err != nil {
			logger.Log.Warnf("Closing MongoDB: %v", err)
		}
	}
	if b.firebase != nil {
		if err := b.firebase.Close(); err != nil {
			logger.Log.Warnf("Closing Firestore: %v", err)
		}
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())
	utils.RegisterValidators()

	var deps backends
	defer deps.close()

	if cfg.DataBackend == config.BackendFirestore || cfg.PhotoBackend == config.PhotoBackendGCS {
		fb, err := config.NewFirebase(ctx, cfg.Firebase)
		if err != nil {
			if cfg.IsProduction() {
				return err
			}
			logger.Log.Errorf("Firebase initialization failed, continuing without it: %v", err)
		}
		deps.firebase = fb
	}

	status := controllers.BackendStatus{Data: cfg.DataBackend, Photos: cfg.PhotoBackend, Events: cfg.EventsBackend}

	repo, err := openRepository(ctx, cfg, &deps)
	if err != nil {
		if cfg.IsProduction() {
			return err
		}
		logger.Log.Errorf("Datastore unavailable, reads will be empty and writes rejected: %v", err)
		repo = repository.Unconfigured{}
	} else {
		status.DataReady = true
	}

	store, err := openPhotoStore(cfg, deps.firebase)
	if err != nil {
		logger.Log.Errorf("Photo storage unavailable, uploads will be rejected: %v", err)
	}
	var uploader *storage.Uploader
	mediaRoot := ""
	if store != nil {
		uploader = storage.NewUploader(store, cfg.UploadStallTimeout, cfg.UploadAttempts)
		status.PhotosReady = true
		if local, ok := store.(*storage.LocalPhotoStore); ok {
			mediaRoot = local.RootPath()
		}
	}
	photos := services.NewPhotoService(uploader, cfg.MaxUploadBytes)

	var prioritizer ai.Prioritizer = ai.Disabled{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiPrioritizer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Log.Errorf("AI prioritization disabled: %v", err)
		} else {
			prioritizer = gemini
			status.AI = true
		}
	} else {
		logger.Log.Warn("GEMINI_API_KEY not set, new reports get Medium priority")
	}

	if cfg.RedisAddress != "" {
		client, err := config.ConnectRedis(ctx, cfg.RedisAddress, cfg.RedisPassword)
		if err != nil {
			logger.Log.Errorf("Redis unavailable, submission limits and geocode cache disabled: %v", err)
		} else {
			deps.redis = client
			status.RateLimiting = true
		}
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	publisher, err := openPublisher(cfg, hub)
	if err != nil {
		if cfg.IsProduction() {
			return err
		}
		logger.Log.Errorf("Event broker unavailable, only live dashboard updates are sent: %v", err)
		publisher = hub
		status.Events = config.EventsNone
	}
	deps.publisher = publisher

	issues := services.NewIssueService(repo, photos, prioritizer, publisher, services.IssueServiceOptions{
		AITimeout:   cfg.AITimeout,
		FallbackLat: cfg.FallbackLat,
		FallbackLng: cfg.FallbackLng,
	})

	var verifier services.IDTokenVerifier
	if deps.firebase != nil {
		verifier = deps.firebase.Auth
	}
	auth := services.NewAuthService(
		models.AdminAccount{Username: cfg.AdminUsername, PasswordHash: cfg.AdminPassHash},
		cfg.IsProduction(),
		utils.NewSessionSigner(cfg.SessionSecret, cfg.SessionTTL),
		verifier,
	)

	engine := routes.SetupRouter(routes.Dependencies{
		Issues:  controllers.NewIssueController(issues),
		Uploads: controllers.NewUploadController(photos),
		Auth: controllers.NewAuthController(auth, controllers.CookieSettings{
			Domain: cfg.CookieDomain,
			Secure: cfg.IsProduction(),
		}),
		Geocode:              controllers.NewGeocodeController(services.NewGeocoder(cfg.GeocoderURL, deps.redis)),
		Live:                 controllers.NewLiveController(hub, cfg.AllowedOrigins),
		Session:              auth,
		Status:               status,
		AllowedOrigins:       cfg.AllowedOrigins,
		MediaRoot:            mediaRoot,
		Redis:                deps.redis,
		SubmissionDailyLimit: cfg.SubmissionDailyLimit,
		LoginRateLimit:       cfg.LoginRateLimit,
		LoginRatePeriod:      cfg.LoginRatePeriod,
		MaxUploadBytes:       cfg.MaxUploadBytes,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("HTTP server shutdown: %v", err)
		}
	}()

	logger.Log.WithFields(logrus.Fields{
		"port":    cfg.HTTPPort,
		"env":     cfg.Env,
		"backend": status,
	}).Info("CivicLens server started")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Log.Info("Server stopped")
	return nil
}

func openRepository(ctx context.Context, cfg *config.Config, deps *backends) (repository.IssueRepository, error) {
	switch cfg.DataBackend {
	case config.BackendMongo:
		db, err := config.ConnectDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		deps.mongo = db
		repo := repository.NewMongoIssueRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Log.Warnf("Creating MongoDB indexes: %v", err)
		}
		return repo, nil
	case config.BackendMemory:
		repo := repository.NewMemoryIssueRepository()
		if err := repository.Seed(ctx, repo, time.Now()); err != nil {
			return nil, err
		}
		logger.Log.Warn("Using the in-memory datastore with demo reports, nothing is persisted")
		return repo, nil
	default:
		if deps.firebase == nil {
			return nil, errors.New("firestore not initialized")
		}
		return repository.NewFirestoreIssueRepository(deps.firebase.Firestore), nil
	}
}

func openPhotoStore(cfg *config.Config, fb *config.FirebaseClients) (storage.PhotoStore, error) {
	if cfg.PhotoBackend == config.PhotoBackendLocal {
		local, err := storage.NewLocalPhotoStore(cfg.MediaStoragePath, "/media")
		if err != nil {
			return nil, err
		}
		return local, nil
	}
	if fb == nil || fb.Bucket == nil {
		return nil, errors.New("FIREBASE_STORAGE_BUCKET not configured")
	}
	return storage.NewGCSPhotoStore(fb.Bucket), nil
}

// openPublisher always includes the live dashboard hub and adds the configured broker.
func openPublisher(cfg *config.Config, hub *ws.Hub) (messaging.Publisher, error) {
	switch cfg.EventsBackend {
	case config.EventsRabbitMQ:
		rabbit, err := messaging.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return nil, err
		}
		return messaging.FanOut{hub, rabbit}, nil
	case config.EventsKafka:
		return messaging.FanOut{hub, messaging.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)}, nil
	}
	return hub, nil
}
