package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"study_mentor_backend/internal/config"
	"study_mentor_backend/pkg/logger"
	"study_mentor_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// Video is one provider-confirmed, embeddable search result.
type Video struct {
	ID          string
	Title       string
	URL         string
	WatchURL    string
	Views       int64
	Likes       int64
	Duration    int
	Uploader    string
	ValidatedAt time.Time
}

// videoEntry mirrors the search sidecar's response shape.
type videoEntry struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ViewCount    int64  `json:"view_count"`
	LikeCount    int64  `json:"like_count"`
	Duration     int    `json:"duration"`
	Uploader     string `json:"uploader"`
	Availability string `json:"availability"`
	IsLive       bool   `json:"is_live"`
	WasLive      bool   `json:"was_live"`
	Embeddable   *bool  `json:"embeddable"`
}

type videoSearchResponse struct {
	Entries []videoEntry `json:"entries"`
}

// YouTubeService queries the video search sidecar and filters its results
// down to public, non-live, embeddable videos.
type YouTubeService struct {
	config config.YouTubeConfig
	client *http.Client
}

func NewYouTubeService(cfg config.YouTubeConfig) *YouTubeService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YouTubeService{
		config: cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Search asks the provider for limit*2 candidates and keeps the first limit
// that survive validation. Malformed or disqualified entries are dropped
// silently; only transport-level failures surface as errors.
func (s *YouTubeService) Search(ctx context.Context, query string, limit int) ([]Video, error) {
	if limit <= 0 {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&limit=%s",
		s.config.BaseURL, url.QueryEscape(query), strconv.Itoa(limit*2))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.client.Do(req)
	monitoring.ObserveProviderCall("youtube", "search", err)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("video search error (status %d): %s", resp.StatusCode, string(body))
	}

	var result videoSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, limit)
	for _, entry := range result.Entries {
		video, ok := validateVideo(entry)
		if !ok {
			continue
		}
		videos = append(videos, video)
		if len(videos) >= limit {
			break
		}
	}

	logger.Log.Debug("video search finished",
		zap.String("query", query),
		zap.Int("candidates", len(result.Entries)),
		zap.Int("accepted", len(videos)))

	return videos, nil
}

// validateVideo applies the acceptance rules: 11-char id, public (or
// unreported) availability, not a live stream, not flagged non-embeddable.
func validateVideo(entry videoEntry) (Video, bool) {
	if len(entry.ID) != 11 {
		return Video{}, false
	}
	if entry.Availability != "" && entry.Availability != "public" {
		return Video{}, false
	}
	if entry.IsLive || entry.WasLive {
		return Video{}, false
	}
	if entry.Embeddable != nil && !*entry.Embeddable {
		return Video{}, false
	}

	title := entry.Title
	if title == "" {
		title = "Untitled Video"
	}

	return Video{
		ID:          entry.ID,
		Title:       title,
		URL:         "https://www.youtube.com/embed/" + entry.ID,
		WatchURL:    "https://www.youtube.com/watch?v=" + entry.ID,
		Views:       entry.ViewCount,
		Likes:       entry.LikeCount,
		Duration:    entry.Duration,
		Uploader:    entry.Uploader,
		ValidatedAt: time.Now().UTC(),
	}, true
}

// FallbackSearchURL builds the generic search-listing link used when no
// embeddable video survives validation.
func (s *YouTubeService) FallbackSearchURL(query string) string {
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
}
