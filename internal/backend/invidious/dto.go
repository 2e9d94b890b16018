package invidious

// videoDTO represents a video object as returned by the Invidious API,
// both from /videos/{id} and inside trending/search lists
type videoDTO struct {
	Type            string         `json:"type,omitempty"`
	VideoID         string         `json:"videoId"`
	Title           string         `json:"title"`
	Author          string         `json:"author,omitempty"`
	AuthorID        string         `json:"authorId,omitempty"`
	Description     string         `json:"description,omitempty"`
	LengthSeconds   int            `json:"lengthSeconds,omitempty"`
	ViewCount       int64          `json:"viewCount,omitempty"`
	Published       int64          `json:"published,omitempty"` // Unix seconds
	LiveNow         bool           `json:"liveNow,omitempty"`
	VideoThumbnails []thumbnailDTO `json:"videoThumbnails,omitempty"`
}

// thumbnailDTO is a single thumbnail rendition
type thumbnailDTO struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}
