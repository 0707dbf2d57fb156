// Package models holds the records exchanged with the docadmin backend.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is how timestamps are shown in tables.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is an epoch time in milliseconds as sent by the backend.
type Timestamp int64

// Time converts t to local time. The zero Timestamp gives the zero time.
func (t Timestamp) Time() time.Time {
	if t == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(t))
}

// String renders t with TimestampLayout, or "--" when unset.
func (t Timestamp) String() string {
	if t == 0 {
		return "--"
	}
	return t.Time().Format(TimestampLayout)
}

// UnmarshalJSON accepts a number, a numeric string or null.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case nil:
		*t = 0
	case float64:
		*t = Timestamp(int64(value))
	case string:
		if value == "" {
			*t = 0
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", value, err)
		}
		*t = Timestamp(n)
	default:
		return fmt.Errorf("invalid timestamp %s", string(b))
	}
	return nil
}

type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

type PdfArticle struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	AccessCount int64     `json:"access_count"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

type File struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt Timestamp `json:"created_at"`
}

type Log struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
}

type PdfArticleAccessLog struct {
	ID           int64     `json:"id"`
	ArticleID    int64     `json:"article_id"`
	ArticleTitle string    `json:"article_title"`
	SrcIP        string    `json:"src_ip"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    Timestamp `json:"created_at"`
}

// DailyAccessStat is one point of the dashboard access series.
type DailyAccessStat struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// HomeStat is the dashboard payload.
type HomeStat struct {
	PdfArticleCount          int64             `json:"pdf_article_count"`
	PdfArticleAccessLogCount int64             `json:"pdf_article_access_log_count"`
	DailyAccessStats         []DailyAccessStat `json:"daily_access_stats"`
}

// UploadResult is returned by the upload endpoints.
type UploadResult struct {
	FileIDs []int64 `json:"file_ids"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

const (
	TransferUpload   = "upload"
	TransferDownload = "download"

	TransferCompleted = "completed"
	TransferFailed    = "failed"
)

// Transfer is a local record of one upload or download. It is never sent
// to the backend.
type Transfer struct {
	ID        int64
	Direction string
	Resource  string
	// RemoteID is the file id on the server, 0 when unknown.
	RemoteID  int64
	Name      string
	LocalPath string
	// Size is -1 when unknown.
	Size      int64
	Status    string
	Error     string
	CreatedAt time.Time
}
