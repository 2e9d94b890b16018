package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tubularapp/tubular/internal/domain"
)

const videoRequestTimeout = 30 * time.Second

// newTrendingCommand creates the trending command
func newTrendingCommand(app *appState) *cobra.Command {
	var (
		country  string
		category string
	)

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Show trending videos on the current backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), videoRequestTimeout)
			defer cancel()

			videos, err := app.session.API().Trending(ctx, country, category)
			if err != nil {
				return err
			}
			printVideos(app, videos)
			return nil
		},
	}

	cmd.Flags().StringVar(&country, "country", "US", "Country code")
	cmd.Flags().StringVar(&category, "category", "default", "Category: default|music|gaming|news|movies")

	return cmd
}

// newSearchCommand creates the search command
func newSearchCommand(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search videos on the current backend",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), videoRequestTimeout)
			defer cancel()

			videos, err := app.session.API().SearchVideos(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printVideos(app, videos)
			return nil
		},
	}
}

// printVideos writes one line per video, with a share link when the
// backend can produce one.
func printVideos(app *appState, videos []domain.Video) {
	if len(videos) == 0 {
		fmt.Println("No videos found.")
		return
	}
	api := app.session.API()
	for _, video := range videos {
		v := video
		line := fmt.Sprintf("%-14s %s - %s", v.ID, v.Title, v.Author)
		if u := api.ShareURL(domain.VideoItem(&v), domain.ShareOptions{}); u != nil {
			line += "  " + u.String()
		}
		fmt.Println(line)
	}
}
