// Package preview shows a generated image inline in the terminal, the
// CLI's stand-in for the full-size preview overlay. It speaks the
// kitty graphics protocol, which kitty, ghostty, WezTerm and iTerm2
// understand.
package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/layoutcraft/layoutcraft/pkg/models"
)

const fetchTimeout = 60 * time.Second

type Previewer struct {
	out        io.Writer
	httpClient *http.Client
}

func New(out io.Writer) *Previewer {
	return &Previewer{
		out:        out,
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

// Show fetches the image and renders it inline.
func (p *Previewer) Show(ctx context.Context, img models.GeneratedImage) error {
	if img.ImageURL == "" {
		return fmt.Errorf("image %s has no URL", img.SizePreset)
	}

	data, err := p.fetch(ctx, img.ImageURL)
	if err != nil {
		return err
	}

	enc := newEncoder(p.out)
	if err := enc.encode(data); err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	fmt.Fprintln(p.out)
	return nil
}

func (p *Previewer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed with status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Supported reports whether the terminal advertises graphics support.
func Supported() bool {
	termProgram := strings.ToLower(os.Getenv("TERM_PROGRAM"))
	for _, prog := range []string{"kitty", "ghostty", "iterm.app", "wezterm"} {
		if termProgram == prog {
			return true
		}
	}

	if os.Getenv("KITTY_WINDOW_ID") != "" || os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}

	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}
