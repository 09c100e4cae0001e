package service

import (
	"context"
	"fmt"

	"study_mentor_backend/internal/model"
	"study_mentor_backend/pkg/logger"

	"go.uber.org/zap"
)

// VideoSearcher is the slice of YouTubeService the resolver depends on.
type VideoSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]Video, error)
	FallbackSearchURL(query string) string
}

// ArticleCurator is the slice of MentorService the resolver depends on.
type ArticleCurator interface {
	CurateArticles(ctx context.Context, subject, topic string, level model.ProficiencyLevel, goalContext string, count int) ([]CuratedResource, bool)
}

const maxVideoResults = 2

// ResourceService assembles the ordered resource list for a task: validated
// videos first, a synthesized search link when none validate, then AI-curated
// supplements up to the limit. It never returns an empty list for limit >= 1;
// total provider failure still yields the search link.
type ResourceService struct {
	videos  VideoSearcher
	curator ArticleCurator
}

func NewResourceService(videos VideoSearcher, curator ArticleCurator) *ResourceService {
	return &ResourceService{videos: videos, curator: curator}
}

func (s *ResourceService) Resolve(ctx context.Context, subject, topic string, level model.ProficiencyLevel, goalContext string, limit int) []model.TaskResource {
	if limit <= 0 {
		return nil
	}

	query := fmt.Sprintf("%s %s tutorial %s", subject, topic, level)

	resources := make([]model.TaskResource, 0, limit)

	found, err := s.videos.Search(ctx, query, maxVideoResults)
	if err != nil {
		logger.Log.Warn("video search unavailable, falling back to search link",
			zap.String("query", query),
			zap.Error(err))
	}
	for _, video := range found {
		resources = append(resources, videoResource(video))
	}

	if len(resources) == 0 {
		resources = append(resources, s.fallbackResource(topic, query))
	}

	if remaining := limit - len(resources); remaining > 0 {
		curated, ok := s.curator.CurateArticles(ctx, subject, topic, level, goalContext, remaining)
		if !ok {
			logger.Log.Warn("resource curation unavailable, serving videos only",
				zap.String("topic", topic))
		}
		if len(curated) > remaining {
			curated = curated[:remaining]
		}
		for _, c := range curated {
			resources = append(resources, curatedResource(c))
		}
	}

	if len(resources) > limit {
		resources = resources[:limit]
	}
	return resources
}

func videoResource(video Video) model.TaskResource {
	validatedAt := video.ValidatedAt
	return model.TaskResource{
		Title:        video.Title,
		URL:          video.URL,
		Platform:     "YouTube",
		ResourceType: "video",
		Rationale:    fmt.Sprintf("Popular tutorial with %d views. Verified embeddable.", video.Views),
		Confidence:   model.ConfidenceHigh,
		Validated:    true,
		FallbackUsed: false,
		VideoID:      video.ID,
		IsEmbeddable: true,
		ValidatedAt:  &validatedAt,
	}
}

// fallbackResource is the one guaranteed entry: a generic search-listing URL,
// never a specific item.
func (s *ResourceService) fallbackResource(topic, query string) model.TaskResource {
	return model.TaskResource{
		Title:        "YouTube Tutorials: " + topic,
		URL:          s.videos.FallbackSearchURL(query),
		Platform:     "YouTube",
		ResourceType: "video",
		Rationale:    "Curated search results updated live from YouTube.",
		Confidence:   model.ConfidenceFallback,
		Validated:    false,
		FallbackUsed: true,
		IsEmbeddable: false,
	}
}

func curatedResource(c CuratedResource) model.TaskResource {
	resourceType := c.ResourceType
	if resourceType == "" {
		resourceType = "article"
	}
	return model.TaskResource{
		Title:        c.Title,
		URL:          c.URL,
		Platform:     c.Platform,
		ResourceType: resourceType,
		Rationale:    c.Rationale,
		Confidence:   model.ConfidenceMedium,
		Validated:    false,
		FallbackUsed: false,
	}
}
