package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"music-assistant/config"
	"music-assistant/internal/application"
	"music-assistant/internal/infra/audio"
	"music-assistant/internal/infra/gemini"
	"music-assistant/internal/infra/openai"
	"music-assistant/internal/infra/pushover"
	"music-assistant/internal/infra/roberta"
	"music-assistant/internal/infra/spotify"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	audioSource := createAudioSource(cfg.Audio, logger)

	var stt application.SpeechToText
	if cfg.OpenAI.APIKey != "" {
		stt = openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language)
	} else {
		stt = &application.NoopSTT{}
	}

	classifier := createClassifier(cfg.Intent, logger)

	musicClient := spotify.NewClient(
		cfg.Spotify.ClientID,
		cfg.Spotify.ClientSecret,
		cfg.Spotify.RefreshToken,
	)

	if cfg.Spotify.AutoLaunch {
		launcher := spotify.NewLauncher(logger)
		if err := launcher.EnsureRunning(ctx); err != nil {
			logger.Warn("could not launch spotify app", "error", err)
		}
	}

	remoteTimeout, err := time.ParseDuration(cfg.Dispatch.RemoteTimeout)
	if err != nil {
		logger.Warn("invalid remote timeout, using default", "error", err, "value", cfg.Dispatch.RemoteTimeout)
		remoteTimeout = 30 * time.Second
	}

	dispatcher := application.NewDispatcher(
		classifier,
		musicClient,
		application.NewModeState(),
		remoteTimeout,
		logger,
	)

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.NoopNotifier{}
	}

	assistant := application.NewAssistant(
		audioSource,
		stt,
		dispatcher,
		notifier,
		logger,
	)

	logger.Info("starting music assistant",
		"audio_source", cfg.Audio.Source,
		"intent_provider", cfg.Intent.Provider,
	)

	if err := assistant.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("assistant error", "error", err)
		os.Exit(1)
	}
}

func createAudioSource(cfg config.AudioConfig, logger *slog.Logger) application.AudioSource {
	switch cfg.Source {
	case "http":
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	case "file":
		return audio.NewFileSource(cfg.FileDir)
	case "microphone":
		return audio.NewMicrophoneSource(cfg.SampleRate, logger)
	default:
		logger.Warn("unknown audio source, using http", "source", cfg.Source)
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	}
}

func createClassifier(cfg config.IntentConfig, logger *slog.Logger) application.IntentClassifier {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewClient(cfg.GeminiKey, cfg.GeminiModel)
	case "roberta":
		return roberta.NewClient(cfg.BaseURL)
	default:
		logger.Warn("unknown intent provider, using roberta", "provider", cfg.Provider)
		return roberta.NewClient(cfg.BaseURL)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
