package models

// UploadError describes a file that failed during a batch upload
type UploadError struct {
	FileName string `json:"fileName"`
	Error    string `json:"error"`
}

// BatchUploadResponse is returned by POST /admin/stickers/batch
type BatchUploadResponse struct {
	Created  []Sticker     `json:"created"`
	Errors   []UploadError `json:"errors"`
	Canceled []string      `json:"canceled,omitempty"`
	Total    int           `json:"total"`
}

// UploadResponse is returned by POST /admin/uploads
type UploadResponse struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Bytes    int    `json:"bytes"`
}
