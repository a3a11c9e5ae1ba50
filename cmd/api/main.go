package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"newsmentor/db"
	"newsmentor/internal/app"
	"newsmentor/internal/audio"
	"newsmentor/internal/config"
	"newsmentor/internal/discussion"
	"newsmentor/internal/handler"
	"newsmentor/internal/middleware"
	"newsmentor/internal/repository"
	"newsmentor/internal/telemetry"
	"newsmentor/pkg/llm"
	"newsmentor/pkg/news"
	"newsmentor/pkg/speech"
)

const version = "1.0.0"

type stores struct {
	discussions interface {
		discussion.Archive
		handler.DiscussionHistory
	}
	bookmarks handler.BookmarkStore
	quizzes   handler.QuizStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	logCloser, err := telemetry.InitLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("error initializing logger: %v", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.TraceFile, version)
	if err != nil {
		log.Fatalf("error initializing tracing: %v", err)
	}
	defer shutdownTracing()

	metrics := telemetry.NewMetrics()
	checks := map[string]handler.Check{}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("error connecting to Redis: %v", err)
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		slog.Warn("REDIS_URL not set, news cache disabled and audio kept in memory")
	}

	st, closeStores := openStores(ctx, cfg, checks)
	defer closeStores()

	var clips audio.Store = audio.NewMemoryStore(cfg.AudioTTL)
	if rdb != nil {
		clips = audio.NewRedisStore(rdb, cfg.AudioTTL)
	}

	generator := newLLMClient(cfg, metrics)

	var synth *speech.OpenAISpeech
	if cfg.OpenAIAPIKey != "" {
		synth = speech.NewOpenAISpeech(cfg.OpenAIAPIKey)
		synth.SetObserver(metrics)
	} else {
		slog.Warn("OPENAI_API_KEY not set, speech synthesis disabled")
	}

	var registry *discussion.Registry
	if generator != nil && synth != nil {
		deps := discussion.Deps{
			Generator:   generator,
			Synthesizer: synth,
			Clips:       clips,
			Observer:    metrics,
		}
		if st.discussions != nil {
			deps.Archive = st.discussions
		}
		if cfg.DeepgramAPIKey != "" {
			deepgram := speech.NewDeepgram(cfg.DeepgramAPIKey)
			deps.Transcriber = discussion.TranscriberFunc(func(ctx context.Context) (discussion.TranscriptStream, error) {
				stream, err := deepgram.Open(ctx)
				if err != nil {
					return nil, err
				}
				return stream, nil
			})
		} else {
			slog.Warn("DEEPGRAM_API_KEY not set, spoken answers disabled")
		}
		registry = discussion.NewRegistry(deps, discussion.WithIdleTimeout(cfg.IdleTimeout))
	}

	allowedOrigins := []string{"http://localhost:3000"}
	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}
	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	newsHandler := handler.NewNewsHandler(app.NewsFeed(cfg, rdb, metrics), news.NewExtractor())
	discussionHandler := handler.NewDiscussionHandler(registry, st.discussions, handler.CaptureConfig{
		ChunkBytes:     cfg.CaptureChunkBytes,
		Cadence:        cfg.CaptureCadence,
		AllowedOrigins: allowedOrigins,
	})
	audioHandler := handler.NewAudioHandler(clips, speechOrNil(synth))
	studyHandler := handler.NewStudyHandler(toolsOrNil(generator))
	progressHandler := handler.NewProgressHandler(st.bookmarks, st.quizzes)
	healthHandler := handler.NewHealthHandler(checks)

	auth := middleware.NewAuthenticator(cfg.JWTSecret)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "X-User-ID"},
	}))
	r.Use(auth.Subject())

	r.GET("/news", newsHandler.GetNews)
	r.GET("/categories", newsHandler.GetCategories)
	r.POST("/articles/extract", newsHandler.ExtractArticle)

	r.GET("/audio/:id", audioHandler.GetClip)
	r.POST("/speech", audioHandler.Speak)

	r.POST("/explain", studyHandler.Explain)
	r.POST("/quiz", studyHandler.Quiz)
	r.POST("/quiz/explain", studyHandler.ExplainQuiz)
	r.POST("/flashcards", studyHandler.Flashcards)
	r.POST("/concepts", studyHandler.Concepts)

	r.GET("/health", healthHandler.GetHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	private := r.Group("/", middleware.RequireSubject())
	private.POST("/discussions", discussionHandler.Create)
	private.GET("/discussions", discussionHandler.ListRecent)
	private.GET("/discussions/:id", discussionHandler.Get)
	private.DELETE("/discussions/:id", discussionHandler.Delete)
	private.POST("/discussions/:id/start", discussionHandler.Start)
	private.POST("/discussions/:id/answer", discussionHandler.Answer)
	private.POST("/discussions/:id/playback", discussionHandler.Playback)
	private.POST("/discussions/:id/reset", discussionHandler.Reset)
	private.GET("/discussions/:id/listen", discussionHandler.Listen)

	private.GET("/bookmarks", progressHandler.ListBookmarks)
	private.POST("/bookmarks", progressHandler.AddBookmark)
	private.GET("/bookmarks/lookup", progressHandler.LookupBookmark)
	private.DELETE("/bookmarks/:id", progressHandler.RemoveBookmark)
	private.POST("/quiz/results", progressHandler.SaveQuizResult)
	private.GET("/progress", progressHandler.GetProgress)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("error starting server: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("error shutting down server", "error", err)
	}
	if registry != nil {
		if err := registry.Close(shutdownCtx); err != nil {
			slog.Error("error archiving open discussions", "error", err)
		}
	}
}

// openStores connects the configured persistence backend. Without
// credentials persistence is disabled and the rest of the API still runs.
func openStores(ctx context.Context, cfg *config.Config, checks map[string]handler.Check) (stores, func()) {
	switch cfg.StoreBackend {
	case config.StoreFirestore:
		if cfg.FirestoreProjectID == "" {
			slog.Warn("FIRESTORE_PROJECT_ID not set, persistence disabled")
			return stores{}, func() {}
		}
		client, err := db.ConnectFirestore(ctx, cfg.FirestoreProjectID)
		if err != nil {
			log.Fatalf("error connecting to Firestore: %v", err)
		}
		store := repository.NewFirestoreStore(client)
		return stores{discussions: store, bookmarks: store, quizzes: store}, closeFirestore(client)

	default:
		if cfg.DatabaseURL == "" {
			slog.Warn("DATABASE_URL not set, persistence disabled")
			return stores{}, func() {}
		}
		conn, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("error connecting to DB: %v", err)
		}
		if err := db.Migrate(ctx, conn); err != nil {
			log.Fatalf("error migrating DB: %v", err)
		}
		checks["database"] = conn.PingContext
		return stores{
			discussions: repository.NewDiscussionRepository(conn),
			bookmarks:   repository.NewBookmarkRepository(conn),
			quizzes:     repository.NewQuizRepository(conn),
		}, closeDB(conn)
	}
}

func closeDB(conn *sql.DB) func() {
	return func() { conn.Close() }
}

func closeFirestore(client *firestore.Client) func() {
	return func() { client.Close() }
}

func newLLMClient(cfg *config.Config, observer llm.Observer) *llm.Client {
	switch cfg.LLMBackend {
	case config.LLMAnthropic:
		if cfg.AnthropicAPIKey == "" {
			slog.Warn("ANTHROPIC_API_KEY not set, generation disabled")
			return nil
		}
		return llm.New(llm.NewAnthropicClient(cfg.AnthropicAPIKey), llm.WithObserver(observer))
	default:
		if cfg.OpenAIAPIKey == "" {
			slog.Warn("OPENAI_API_KEY not set, generation disabled")
			return nil
		}
		return llm.New(llm.NewOpenAIClient(cfg.OpenAIAPIKey), llm.WithObserver(observer))
	}
}

// The handlers test their collaborators against nil; a typed nil pointer
// would slip through.
func speechOrNil(s *speech.OpenAISpeech) handler.Synthesizer {
	if s == nil {
		return nil
	}
	return s
}

func toolsOrNil(c *llm.Client) handler.StudyTools {
	if c == nil {
		return nil
	}
	return c
}
