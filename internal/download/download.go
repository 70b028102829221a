// Package download saves generated images to disk. Downloads within a
// group run sequentially with a short pause between them so a burst of
// saves does not hammer the CDN.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/layoutcraft/layoutcraft/internal/security"
	"github.com/layoutcraft/layoutcraft/pkg/models"
)

const (
	defaultTimeout = 60 * time.Second
	defaultDelay   = 300 * time.Millisecond
)

type Options struct {
	// Delay between sequential downloads; defaultDelay when zero.
	Delay time.Duration
	// StrictHosts confines downloads to the known CDN hosts.
	StrictHosts bool
	// SkipValidation bypasses URL checks entirely. Tests only.
	SkipValidation bool
}

type Downloader struct {
	httpClient *http.Client
	opts       Options
}

func New(opts Options) *Downloader {
	if opts.Delay == 0 {
		opts.Delay = defaultDelay
	}
	return &Downloader{
		httpClient: &http.Client{Timeout: defaultTimeout},
		opts:       opts,
	}
}

// Save downloads one image into dir and returns the final path and
// size. The body lands in a temp file first and is renamed into place,
// so an interrupted download never leaves a half-written image behind.
func (d *Downloader) Save(ctx context.Context, img models.GeneratedImage, dir string) (string, int64, error) {
	if img.ImageURL == "" {
		return "", 0, fmt.Errorf("image %s has no URL", img.SizePreset)
	}

	if !d.opts.SkipValidation {
		if err := security.ValidateImageURL(img.ImageURL, d.opts.StrictHosts); err != nil {
			return "", 0, fmt.Errorf("refusing to download %s: %w", img.SizePreset, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, img.ImageURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", 0, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	finalPath := filepath.Join(dir, Filename(img, time.Now()))
	tmpPath := filepath.Join(dir, "."+uuid.New().String()+".tmp")

	tmp, err := os.Create(tmpPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to write image: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to move image into place: %w", err)
	}
	return finalPath, n, nil
}

// SaveAll downloads the selected images one at a time, pausing between
// downloads. A nil selection means the whole group. The first failure
// stops the run and returns the paths saved so far.
func (d *Downloader) SaveAll(ctx context.Context, group *models.GenerationGroup, selection []string, dir string) ([]string, error) {
	images := group.Images
	if selection != nil {
		images = nil
		for _, key := range selection {
			if img, ok := group.Image(key); ok {
				images = append(images, img)
			}
		}
	}

	var paths []string
	for i, img := range images {
		if i > 0 {
			select {
			case <-time.After(d.opts.Delay):
			case <-ctx.Done():
				return paths, ctx.Err()
			}
		}

		path, _, err := d.Save(ctx, img, dir)
		if err != nil {
			return paths, fmt.Errorf("failed to save %s: %w", img.SizePreset, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Filename names a saved image after its preset and fetch time,
// keeping the URL's extension when it has one.
func Filename(img models.GeneratedImage, t time.Time) string {
	ext := path.Ext(img.ImageURL)
	if ext == "" || len(ext) > 5 {
		ext = ".png"
	}
	return fmt.Sprintf("%s-%s%s", img.SizePreset, t.Format("20060102-150405"), ext)
}
