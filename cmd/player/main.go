package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vistasign/vistasign/internal/http/api/tv/packets"
	"github.com/vistasign/vistasign/internal/player"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	_ = godotenv.Load()

	var (
		serverURL = flag.String("server", envOr("PLAYER_SERVER_URL", "http://localhost:8080/api/tv"), "TV API base URL")
		token     = flag.String("token", os.Getenv("PLAYER_TOKEN"), "screen token")
		cacheFile = flag.String("cache", envOr("PLAYER_CACHE_FILE", "manifest.json"), "manifest cache path")
		width     = flag.Int("width", 1920, "viewport width")
		height    = flag.Int("height", 1080, "viewport height")
		display   = flag.String("display", "tv", "display type reported in heartbeats")
	)
	flag.Parse()

	if *token == "" {
		log.Fatal().Msg("a screen token is required (-token or PLAYER_TOKEN)")
	}

	p := player.New(player.Config{
		ServerURL:   *serverURL,
		Token:       *token,
		CacheFile:   *cacheFile,
		Viewport:    &packets.Viewport{Width: *width, Height: *height},
		DisplayType: display,
	})
	p.OnManifest = func(m *packets.ManifestResponse) {
		ev := log.Info().Int64("version", m.RefreshVersion).Str("source", m.Source)
		if m.Media != nil {
			ev = ev.Int("media_id", m.Media.ID).Str("url", m.Media.URL)
		}
		ev.Msg("manifest applied")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("player stopped")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
