package piped

import (
	"net/url"
	"strings"
	"time"

	"github.com/tubularapp/tubular/internal/domain"
)

// mapStream converts a /streams response to a domain video. Piped does not
// echo the video id back, so the caller supplies it.
func mapStream(id string, dto streamDTO) domain.Video {
	video := domain.Video{
		ID:          id,
		Title:       dto.Title,
		Author:      dto.Uploader,
		AuthorID:    channelID(dto.UploaderURL),
		Description: dto.Description,
		Length:      time.Duration(dto.Duration) * time.Second,
		Views:       dto.Views,
		Thumbnail:   dto.ThumbnailURL,
		Live:        dto.Livestream,
	}
	if dto.UploadDate != "" {
		if t, err := time.Parse("2006-01-02", dto.UploadDate); err == nil {
			video.Published = t.UTC()
		}
	}
	return video
}

// mapItems converts list entries, skipping ones without a parseable video id
func mapItems(dtos []itemDTO) []domain.Video {
	videos := make([]domain.Video, 0, len(dtos))
	for _, dto := range dtos {
		id := videoID(dto.URL)
		if id == "" {
			continue
		}
		video := domain.Video{
			ID:        id,
			Title:     dto.Title,
			Author:    dto.UploaderName,
			AuthorID:  channelID(dto.UploaderURL),
			Length:    time.Duration(dto.Duration) * time.Second,
			Views:     dto.Views,
			Thumbnail: dto.Thumbnail,
		}
		if dto.Uploaded > 0 {
			video.Published = time.UnixMilli(dto.Uploaded).UTC()
		}
		videos = append(videos, video)
	}
	return videos
}

// videoID extracts the id from a relative watch URL like "/watch?v=abc"
func videoID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Query().Get("v")
}

// channelID extracts the id from a relative channel URL like "/channel/UC123"
func channelID(raw string) string {
	const prefix = "/channel/"
	if !strings.HasPrefix(raw, prefix) {
		return ""
	}
	return strings.TrimPrefix(raw, prefix)
}
