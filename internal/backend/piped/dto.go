package piped

// loginRequest is the POST /login body
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the POST /login result
type loginResponse struct {
	Token string `json:"token"`
}

// streamDTO represents the /streams/{id} response
type streamDTO struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Uploader     string `json:"uploader,omitempty"`
	UploaderURL  string `json:"uploaderUrl,omitempty"` // "/channel/{id}"
	Duration     int    `json:"duration,omitempty"`    // Seconds
	Views        int64  `json:"views,omitempty"`
	UploadDate   string `json:"uploadDate,omitempty"` // "2006-01-02"
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Livestream   bool   `json:"livestream,omitempty"`
}

// itemDTO represents a list entry from /trending and /search
type itemDTO struct {
	URL          string `json:"url"` // "/watch?v={id}"
	Title        string `json:"title"`
	UploaderName string `json:"uploaderName,omitempty"`
	UploaderURL  string `json:"uploaderUrl,omitempty"`
	Duration     int    `json:"duration,omitempty"`
	Views        int64  `json:"views,omitempty"`
	Uploaded     int64  `json:"uploaded,omitempty"` // Unix milliseconds
	Thumbnail    string `json:"thumbnail,omitempty"`
}

// searchPageDTO wraps paginated search results
type searchPageDTO struct {
	Items    []itemDTO `json:"items"`
	Nextpage string    `json:"nextpage,omitempty"`
}
