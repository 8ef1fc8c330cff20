// Package main loads demo data into the playlist database.
//
// Run it against a fresh database to get something worth browsing:
//
//	MOODTUNE_DB_PATH=data/moodtune.db go run ./cmd/seed
//
// Likes are created through the same paired-transaction path the API
// uses, so the seeded like counts always match the like rows — the seed
// never writes counters directly.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/moodtune/playlist-api/internal/config"
	"github.com/moodtune/playlist-api/internal/model"
	"github.com/moodtune/playlist-api/internal/repository/sqlite"
)

type seedPlaylist struct {
	name        string
	description string
	category    string
	tags        []string
	tracks      []model.Track
	videos      []model.Video
	plays       int
	likedByAll  bool
}

var playlists = []seedPlaylist{
	{
		name:        "Late Night Lo-fi",
		description: "Beats for winding down when the rest of the city is already asleep.",
		category:    "chill",
		tags:        []string{"chill", "lo-fi", "night"},
		tracks: []model.Track{
			{ID: "1", Title: "Snowfall", Artist: "Øneheart", Genre: "Lo-fi"},
			{ID: "2", Title: "My Favourite Clothes", Artist: "Sleepy Fish", Genre: "Lo-fi"},
			{ID: "3", Title: "Quiet", Artist: "Nuages", Genre: "Lo-fi"},
		},
		videos: []model.Video{
			{ID: "0", Title: "lofi hip hop radio - beats to relax/study to", Channel: "Lofi Girl", VideoID: "jfKfPfyJRdk", ThumbnailURL: "https://i.ytimg.com/vi/jfKfPfyJRdk/mqdefault.jpg"},
		},
		plays:      24,
		likedByAll: true,
	},
	{
		name:        "Deep Focus",
		description: "Instrumentals that stay out of the way while you work.",
		category:    "focus",
		tags:        []string{"focus", "study", "instrumental"},
		tracks: []model.Track{
			{ID: "1", Title: "Experience", Artist: "Ludovico Einaudi", Genre: "Classical"},
			{ID: "2", Title: "River Flows in You", Artist: "Yiruma", Genre: "New Age"},
			{ID: "3", Title: "Weightless", Artist: "Marconi Union", Genre: "Ambient"},
		},
		videos: []model.Video{
			{ID: "0", Title: "Deep Focus - Study Music Mix", Channel: "Study Music", VideoID: "WPni755-Krg", ThumbnailURL: "https://i.ytimg.com/vi/WPni755-Krg/mqdefault.jpg"},
		},
		plays:      41,
		likedByAll: true,
	},
	{
		name:        "Pre-Workout Charge",
		description: "Upbeat mix to get moving before you hit the gym.",
		category:    "workout",
		tags:        []string{"workout", "energetic", "gym"},
		tracks: []model.Track{
			{ID: "1", Title: "Till I Collapse", Artist: "Eminem", Genre: "Hip-hop"},
			{ID: "2", Title: "Eye of the Tiger", Artist: "Survivor", Genre: "Rock"},
			{ID: "3", Title: "Stronger", Artist: "Kanye West", Genre: "Hip-hop"},
		},
		plays: 17,
	},
	{
		name:        "Rainy Day Jazz",
		description: "Warm horns and brushed drums for grey afternoons.",
		category:    "jazz",
		tags:        []string{"jazz", "rain", "cozy"},
		tracks: []model.Track{
			{ID: "1", Title: "Autumn Leaves", Artist: "Bill Evans", Genre: "Jazz"},
			{ID: "2", Title: "Misty", Artist: "Erroll Garner", Genre: "Jazz"},
		},
		plays: 8,
	},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Error("failed to create database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	curator := &model.User{
		UID:         "seed-curator-001",
		Email:       "curator@example.com",
		DisplayName: "Seed Curator",
	}
	listeners := []*model.User{
		{UID: "seed-listener-001", Email: "listener1@example.com", DisplayName: "Listener One"},
		{UID: "seed-listener-002", Email: "listener2@example.com", DisplayName: "Listener Two"},
		{UID: "seed-listener-003", Email: "listener3@example.com", DisplayName: "Listener Three"},
	}

	for _, u := range append([]*model.User{curator}, listeners...) {
		if err := db.Upsert(ctx, u); err != nil {
			logger.Error("failed to upsert user", slog.String("uid", u.UID), slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	for _, sp := range playlists {
		p := &model.Playlist{
			UserID:      curator.ID,
			Name:        sp.name,
			Description: sp.description,
			Category:    sp.category,
			Tags:        sp.tags,
			Tracks:      sp.tracks,
			Videos:      sp.videos,
			IsPublic:    true,
		}
		if err := db.Create(ctx, p); err != nil {
			logger.Error("failed to create playlist", slog.String("name", sp.name), slog.String("error", err.Error()))
			os.Exit(1)
		}

		likers := listeners[:1]
		if sp.likedByAll {
			likers = listeners
		}
		for _, u := range likers {
			if err := db.CreateLike(ctx, u.ID, p.ID); err != nil {
				logger.Error("failed to seed like", slog.String("playlist", p.ID), slog.String("error", err.Error()))
				os.Exit(1)
			}
		}

		for i := 0; i < sp.plays; i++ {
			if err := db.IncrementPlayCount(ctx, p.ID); err != nil {
				logger.Error("failed to seed play count", slog.String("playlist", p.ID), slog.String("error", err.Error()))
				os.Exit(1)
			}
		}

		logger.Info("seeded playlist",
			slog.String("id", p.ID),
			slog.String("name", p.Name),
			slog.Int("likes", len(likers)),
			slog.Int("plays", sp.plays),
		)
	}

	logger.Info("seed complete",
		slog.Int("users", 1+len(listeners)),
		slog.Int("playlists", len(playlists)),
	)
}
