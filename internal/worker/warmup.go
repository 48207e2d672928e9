package worker

import (
	"context"
	"time"

	"decoupage/api-gateway/internal/imagecache"
	"decoupage/api-gateway/models"
)

// WarmupJob prefetches every thumbnail referenced by a script document.
type WarmupJob struct {
	Project      string
	Document     models.Document
	Cache        *imagecache.Cache
	MediaBase    string
	TargetHeight int
	Timeout      time.Duration
}

// ID identifies the job by project.
func (j *WarmupJob) ID() string { return "warmup-" + j.Project }

// Execute collects thumbnail refs across pool and scenes and hands them to
// the cache's bounded prefetch.
func (j *WarmupJob) Execute() error {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var refs []imagecache.Ref
	add := func(tcs []models.Timecode) {
		for _, tc := range tcs {
			if tc.ImageURL == nil || *tc.ImageURL == "" {
				continue
			}
			refs = append(refs, imagecache.Ref{
				ID:           tc.ID,
				RemoteURL:    j.MediaBase + *tc.ImageURL,
				TargetHeight: j.TargetHeight,
			})
		}
	}
	add(j.Document.Timecodes)
	for _, scene := range j.Document.Script {
		add(scene.Timecodes)
		add(scene.Audios)
	}

	j.Cache.Prefetch(ctx, refs)
	return nil
}
