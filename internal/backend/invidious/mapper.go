package invidious

import (
	"time"

	"github.com/tubularapp/tubular/internal/domain"
)

// mapVideo converts an Invidious video object to a domain video
func mapVideo(dto videoDTO) domain.Video {
	video := domain.Video{
		ID:          dto.VideoID,
		Title:       dto.Title,
		Author:      dto.Author,
		AuthorID:    dto.AuthorID,
		Description: dto.Description,
		Length:      time.Duration(dto.LengthSeconds) * time.Second,
		Views:       dto.ViewCount,
		Live:        dto.LiveNow,
	}
	if dto.Published > 0 {
		video.Published = time.Unix(dto.Published, 0).UTC()
	}
	if len(dto.VideoThumbnails) > 0 {
		video.Thumbnail = pickThumbnail(dto.VideoThumbnails)
	}
	return video
}

// mapVideos converts a list response, skipping non-video entries that
// Invidious mixes into search results
func mapVideos(dtos []videoDTO) []domain.Video {
	videos := make([]domain.Video, 0, len(dtos))
	for _, dto := range dtos {
		if dto.Type != "" && dto.Type != "video" && dto.Type != "shortVideo" {
			continue
		}
		if dto.VideoID == "" {
			continue
		}
		videos = append(videos, mapVideo(dto))
	}
	return videos
}

// pickThumbnail prefers the medium rendition, falling back to the first
func pickThumbnail(thumbs []thumbnailDTO) string {
	for _, t := range thumbs {
		if t.Quality == "medium" {
			return t.URL
		}
	}
	return thumbs[0].URL
}
