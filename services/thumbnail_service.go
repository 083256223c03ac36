package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"coliseumAPI/internal/docstore"
	"coliseumAPI/internal/metrics"
	"coliseumAPI/internal/objectstore"
	"coliseumAPI/internal/thumbnail"
	"coliseumAPI/internal/types/video"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const coliseumCollection = "coliseum"

type ThumbnailGenerator interface {
	Generate(ctx context.Context, videoURL string) ([]byte, string, error)
}

// ProgressFunc is called once per video of a pass, after it succeeded or failed.
type ProgressFunc func(video.Progress)

type ThumbnailService struct {
	store     docstore.Store
	storage   objectstore.Storage
	generator ThumbnailGenerator
	cache     *thumbnail.Cache
	batchSize int
	delay     time.Duration
	log       *zap.SugaredLogger
	now       func() time.Time

	// running serializes passes started by the scheduler and the HTTP route.
	running sync.Mutex
}

func NewThumbnailService(
	store docstore.Store,
	storage objectstore.Storage,
	generator ThumbnailGenerator,
	cache *thumbnail.Cache,
	batchSize int,
	delay time.Duration,
	log *zap.SugaredLogger,
) *ThumbnailService {
	if batchSize < 1 {
		batchSize = 3
	}
	return &ThumbnailService{
		store:     store,
		storage:   storage,
		generator: generator,
		cache:     cache,
		batchSize: batchSize,
		delay:     delay,
		log:       log,
		now:       time.Now,
	}
}

// Thumbnail is a read-through lookup: the cache first, then the video document.
func (s *ThumbnailService) Thumbnail(ctx context.Context, videoID string) (string, error) {
	if url, ok := s.cache.Get(videoID); ok {
		return url, nil
	}

	snap, err := s.store.Get(ctx, coliseumCollection, videoID)
	if errors.Is(err, docstore.ErrNotFound) {
		return "", ErrVideoNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get video: %w", err)
	}
	v, err := decodeVideo(snap)
	if err != nil {
		return "", err
	}
	if v.ThumbnailURL == "" {
		return "", ErrNoThumbnail
	}

	s.cache.Put(videoID, v.ThumbnailURL)
	return v.ThumbnailURL, nil
}

// ClearCache empties the thumbnail cache and returns the number of dropped entries.
func (s *ThumbnailService) ClearCache() int {
	n := s.cache.Clear()
	s.log.Infow("Thumbnail cache cleared", "entries", n)
	return n
}

func decodeVideo(snap docstore.Snapshot) (*video.ColiseumVideo, error) {
	var v video.ColiseumVideo
	if err := snap.DataTo(&v); err != nil {
		return nil, fmt.Errorf("failed to decode video %s: %w", snap.ID(), err)
	}
	v.ID = snap.ID()
	return &v, nil
}

// EnhancePending generates thumbnails for every video not yet enhanced. Videos run
// concurrently within a batch, with a fixed pause between batches. A failed video
// is logged and left for the next pass.
func (s *ThumbnailService) EnhancePending(ctx context.Context, progress ProgressFunc) (video.EnhanceResult, error) {
	s.running.Lock()
	defer s.running.Unlock()

	snaps, err := s.store.Query(ctx, docstore.Query{
		Collection: coliseumCollection,
		Filters:    []docstore.Filter{docstore.Eq("enhanced", false)},
	})
	if err != nil {
		return video.EnhanceResult{}, fmt.Errorf("failed to list pending videos: %w", err)
	}

	videos := make([]*video.ColiseumVideo, 0, len(snaps))
	for _, snap := range snaps {
		v, err := decodeVideo(snap)
		if err != nil {
			s.log.Warnw("Thumbnail pass: skipping undecodable video", "id", snap.ID(), "error", err)
			continue
		}
		videos = append(videos, v)
	}

	result := video.EnhanceResult{Total: len(videos)}
	var mu sync.Mutex
	done := 0

	for start := 0; start < len(videos); start += s.batchSize {
		if start > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		end := start + s.batchSize
		if end > len(videos) {
			end = len(videos)
		}

		var wg sync.WaitGroup
		for _, v := range videos[start:end] {
			wg.Add(1)
			go func(v *video.ColiseumVideo) {
				defer wg.Done()
				err := s.enhance(ctx, v)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Failed++
					metrics.ThumbnailsProcessed.WithLabelValues("failed").Inc()
					s.log.Warnw("Thumbnail pass: video failed", "id", v.ID, "error", err)
				} else {
					result.Processed++
					metrics.ThumbnailsProcessed.WithLabelValues("processed").Inc()
				}
				done++
				if progress != nil {
					progress(video.Progress{Current: done, Total: result.Total})
				}
			}(v)
		}
		wg.Wait()
	}

	s.log.Infow("Thumbnail pass finished", "processed", result.Processed, "failed", result.Failed, "total", result.Total)
	return result, nil
}

func (s *ThumbnailService) enhance(ctx context.Context, v *video.ColiseumVideo) error {
	if v.VideoURL == "" {
		return fmt.Errorf("video has no url")
	}

	image, contentType, err := s.generator.Generate(ctx, v.VideoURL)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	path := "thumbnails/" + slug.Make(v.ID) + ".jpg"
	if err := s.storage.Upload(ctx, path, bytes.NewReader(image), contentType); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	url := s.storage.PublicURL(path)

	if err := s.store.Update(ctx, coliseumCollection, v.ID, map[string]any{
		"thumbnailUrl": url,
		"enhanced":     true,
		"enhancedAt":   s.now(),
	}); err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	s.cache.Put(v.ID, url)
	return nil
}
