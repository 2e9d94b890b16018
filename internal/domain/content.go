package domain

import "time"

// ContentType distinguishes shareable content kinds
type ContentType int

const (
	ContentTypeVideo ContentType = iota
	ContentTypeChannel
	ContentTypePlaylist
)

// Video is a single playable item as reported by a backend.
type Video struct {
	ID          string
	Title       string
	Author      string
	AuthorID    string
	Description string
	Length      time.Duration
	Views       int64
	Published   time.Time
	Thumbnail   string
	Live        bool
}

// Channel is a content author.
type Channel struct {
	ID   string
	Name string
}

// Playlist is an ordered collection of videos.
type Playlist struct {
	ID    string
	Title string
}

// ContentItem is the polymorphic unit passed to share-link generation.
// Exactly one of Video, Channel, Playlist is set, matching Type.
type ContentItem struct {
	Type     ContentType
	Video    *Video
	Channel  *Channel
	Playlist *Playlist
}

// VideoItem wraps a video as a ContentItem.
func VideoItem(v *Video) ContentItem {
	return ContentItem{Type: ContentTypeVideo, Video: v}
}

// ChannelItem wraps a channel as a ContentItem.
func ChannelItem(c *Channel) ContentItem {
	return ContentItem{Type: ContentTypeChannel, Channel: c}
}

// PlaylistItem wraps a playlist as a ContentItem.
func PlaylistItem(p *Playlist) ContentItem {
	return ContentItem{Type: ContentTypePlaylist, Playlist: p}
}
