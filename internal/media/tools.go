// Package media wraps the system binaries the extractors depend on:
// pdftoppm (poppler-utils) for PDF page rasters, and ffprobe/ffmpeg for video
// probing and frame capture. Callers hold one Tools instance and treat a
// missing binary as a degraded mode, not a construction error.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Tools locates and runs the external binaries. Zero-value paths fall back
// to PATH lookup of the conventional names.
type Tools struct {
	PdftoppmPath string
	FFprobePath  string
	FFmpegPath   string
}

// New returns Tools with default binary names.
func New() *Tools {
	return &Tools{
		PdftoppmPath: "pdftoppm",
		FFprobePath:  "ffprobe",
		FFmpegPath:   "ffmpeg",
	}
}

func (t *Tools) pdftoppm() string { return nonEmpty(t.PdftoppmPath, "pdftoppm") }
func (t *Tools) ffprobe() string  { return nonEmpty(t.FFprobePath, "ffprobe") }
func (t *Tools) ffmpeg() string   { return nonEmpty(t.FFmpegPath, "ffmpeg") }

// HasPDFRenderer reports whether pdftoppm is runnable.
func (t *Tools) HasPDFRenderer() bool {
	_, err := exec.LookPath(t.pdftoppm())
	return err == nil
}

// HasVideoTools reports whether both ffprobe and ffmpeg are runnable.
func (t *Tools) HasVideoTools() bool {
	if _, err := exec.LookPath(t.ffprobe()); err != nil {
		return false
	}
	_, err := exec.LookPath(t.ffmpeg())
	return err == nil
}

// RenderPDFPages rasterizes pages firstPage..lastPage (1-based, inclusive) of
// the PDF at path into PNG files and returns their paths in page order.
func (t *Tools) RenderPDFPages(ctx context.Context, pdfPath, outDir string, firstPage, lastPage, dpi int) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("media: ensure out dir: %w", err)
	}
	prefix := filepath.Join(outDir, "page")
	args := []string{
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(firstPage),
		"-l", strconv.Itoa(lastPage),
		pdfPath,
		prefix,
	}
	if out, err := runCommand(ctx, t.pdftoppm(), args...); err != nil {
		return nil, fmt.Errorf("media: pdftoppm: %w (%s)", err, firstLine(out))
	}
	matches, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return nil, fmt.Errorf("media: glob rendered pages: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// ProbeDuration returns the container duration in seconds. The ctx deadline
// bounds the probe; a cancelled or expired context surfaces as ctx.Err().
func (t *Tools) ProbeDuration(ctx context.Context, videoPath string) (float64, error) {
	out, err := runCommand(ctx, t.ffprobe(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	if err != nil {
		return 0, fmt.Errorf("media: ffprobe: %w (%s)", err, firstLine(out))
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || dur <= 0 {
		return 0, fmt.Errorf("media: ffprobe reported no usable duration for %s", filepath.Base(videoPath))
	}
	return dur, nil
}

// CaptureFrame seeks to the given timestamp and writes a single PNG frame to
// outPath. Seeks are done one at a time by callers to preserve frame order.
func (t *Tools) CaptureFrame(ctx context.Context, videoPath string, timestampSec float64, outPath string) error {
	args := []string{
		"-y",
		"-ss", formatSeconds(timestampSec),
		"-i", videoPath,
		"-frames:v", "1",
		outPath,
	}
	if out, err := runCommand(ctx, t.ffmpeg(), args...); err != nil {
		return fmt.Errorf("media: ffmpeg frame capture at %.1fs: %w (%s)", timestampSec, err, firstLine(out))
	}
	if fi, err := os.Stat(outPath); err != nil || fi.Size() == 0 {
		return fmt.Errorf("media: ffmpeg produced no frame at %.1fs", timestampSec)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.Bytes(), err
}

func formatSeconds(s float64) string {
	d := time.Duration(s * float64(time.Second))
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func firstLine(out []byte) string {
	text := strings.TrimSpace(string(out))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func nonEmpty(v, fallback string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}
