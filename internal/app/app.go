package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/systemdevart/random-coffee/internal/config"
	"github.com/systemdevart/random-coffee/internal/domain"
	"github.com/systemdevart/random-coffee/internal/scheduler"
	"github.com/systemdevart/random-coffee/internal/slack"
	"github.com/systemdevart/random-coffee/internal/store"
	"github.com/systemdevart/random-coffee/internal/topics"
)

// Directory lists a channel's members. Satisfied by slack.Client; faked in
// tests so the pipeline runs against canned member lists.
type Directory interface {
	ListMembers(ctx context.Context, channel string) ([]domain.Member, error)
}

// Messenger posts announcements and direct messages. Satisfied by
// slack.Client.
type Messenger interface {
	PostMessage(ctx context.Context, channel, text string) error
	SendDirectMessage(ctx context.Context, recipient, text string) error
}

// TopicSource produces optional conversation starters for the announcement.
type TopicSource interface {
	Generate(ctx context.Context) ([]string, error)
}

type App struct {
	cfg       config.Config
	log       *zap.Logger
	directory Directory
	messenger Messenger
	topics    TopicSource
	repo      store.Repo
	httpSrv   *http.Server
	rng       *rand.Rand
	now       func() time.Time
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	client, err := slack.New(cfg.Token, log)
	if err != nil {
		return nil, err
	}

	var topicSource TopicSource
	if cfg.OpenAIKey != "" {
		topicSource = topics.New(cfg.OpenAIKey, log)
	} else {
		log.Info("no OpenAI API key configured; conversation topics disabled")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{
		cfg:       cfg,
		log:       log,
		directory: client,
		messenger: client,
		topics:    topicSource,
		httpSrv:   srv,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:       time.Now,
	}, nil
}

// Run starts the healthz server and the weekly scheduling loop, blocking
// until the context is canceled or a termination signal arrives.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("random-coffee bot started",
		zap.String("channel", a.cfg.Channel),
		zap.String("weekday", a.cfg.Weekday.String()),
		zap.String("time", config.FormatClock(a.cfg.TriggerM)+" UTC"),
	)

	// Pairing history is advisory; a broken database disables repeat
	// avoidance but never stops the bot.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Warn("open sqlite failed; pairing history disabled", zap.Error(err))
	} else {
		a.repo = repo
	}

	sched := scheduler.New(a.log, a.cfg.Weekday, a.cfg.TriggerM, a.runPairing)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.Run(ctx)

	a.log.Info("shutdown signal received")
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shCtx); err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	if a.repo != nil {
		_ = a.repo.Close()
	}
	return nil
}
