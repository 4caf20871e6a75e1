package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"partychallenges/internal/challenges"
	"partychallenges/internal/config"
	"partychallenges/internal/db"
	"partychallenges/internal/game"
	"partychallenges/internal/rooms"
)

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pool, err := challenges.LoadFile(cfg.ChallengesFile)
	if err != nil {
		log.Printf("[Pool] Failed to load %s: %v (using built-in challenges)\n", cfg.ChallengesFile, err)
		pool = challenges.Defaults()
	} else {
		log.Printf("[Pool] Loaded %d challenges from %s\n", len(pool), cfg.ChallengesFile)
	}

	gameCfg := game.DefaultConfig()
	if cfg.MaxPlayers > 0 {
		gameCfg.MaxPlayers = cfg.MaxPlayers
	}

	srv := &Server{
		Rooms: rooms.NewStore(pool, gameCfg, cfg.ChallengesPerGame),
	}

	// Optional database connection
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		} else {
			if err := database.Migrate(); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			srv.DB = database
			srv.AnswerBuffer = make(chan db.AnswerEvent, 1000)
			log.Println("[DB] Database connected and migrations applied")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: srv.Routes(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("[Server] Listening on http://localhost:%s\n", cfg.Port)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if srv.AnswerBuffer != nil {
		g.Go(func() error {
			answerBatchWriter(ctx, srv.DB, srv.AnswerBuffer)
			return nil
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if removed := srv.Rooms.CleanupEmptyRooms(); removed > 0 {
					log.Printf("[Rooms] Cleaned up %d empty rooms\n", removed)
				}
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Routes builds the HTTP router. Exposed so tests can mount it on httptest
// servers.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/api/rooms", s.handleCreateRoom)
	r.Get("/api/rooms/{code}", s.handleRoomInfo)
	r.Get("/ws", s.handleWS)
	r.Get("/rooms/{code}/events", s.handleEvents)
	r.Get("/health", s.handleHealth)
	r.Get("/analytics/leaderboard", s.handleAnalyticsLeaderboard)
	r.Get("/analytics/player/{id}", s.handleAnalyticsPlayer)
	r.Get("/analytics/game/{id}", s.handleAnalyticsGame)

	return r
}

// answerBatchWriter drains the answer buffer into the database in batches,
// flushing on size or every 500ms, whichever comes first.
func answerBatchWriter(ctx context.Context, database *db.DB, buffer chan db.AnswerEvent) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	batch := make([]db.AnswerEvent, 0, 50)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := database.BatchRecordAnswers(batch); err != nil {
			log.Printf("[DB] BatchRecordAnswers error: %v\n", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case ev := <-buffer:
			batch = append(batch, ev)
			if len(batch) >= 50 {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
