package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"time"

	xdraw "golang.org/x/image/draw"

	"trainforge/internal/domain"
)

// extractVideo probes the container duration, samples evenly spaced
// timestamps, and captures one downscaled still per timestamp. Frames are
// captured sequentially so their timestamp order is the prompt order.
func (e *Extractor) extractVideo(ctx context.Context, src domain.SourceFile) (domain.ExtractedContent, error) {
	if !e.tools.HasVideoTools() {
		return domain.ExtractedContent{}, extractionErr(src, "ffmpeg/ffprobe not available")
	}

	tmpDir, err := os.MkdirTemp("", "trainforge_video_*")
	if err != nil {
		return domain.ExtractedContent{}, extractionErr(src, "temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	videoPath := filepath.Join(tmpDir, "source"+filepath.Ext(src.Name))
	if err := os.WriteFile(videoPath, src.Data, 0o644); err != nil {
		return domain.ExtractedContent{}, extractionErr(src, "stage video: %v", err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, videoProbeTimeout*time.Second)
	defer cancel()
	duration, err := e.tools.ProbeDuration(probeCtx, videoPath)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.ExtractedContent{}, fmt.Errorf("%w: %s", domain.ErrVideoLoadTimeout, src.Name)
		}
		return domain.ExtractedContent{}, extractionErr(src, "probe duration: %v", err)
	}

	timestamps := frameTimestamps(duration)
	frames := make([]domain.Frame, 0, len(timestamps))
	for i, ts := range timestamps {
		framePath := filepath.Join(tmpDir, fmt.Sprintf("frame_%02d.png", i+1))
		if err := e.tools.CaptureFrame(ctx, videoPath, ts, framePath); err != nil {
			return domain.ExtractedContent{}, extractionErr(src, "capture frame %d: %v", i+1, err)
		}
		raw, err := os.ReadFile(framePath)
		if err != nil {
			return domain.ExtractedContent{}, extractionErr(src, "read frame %d: %v", i+1, err)
		}
		still, err := downscaleToJPEG(raw, maxFrameWidth, maxFrameHeight)
		if err != nil {
			return domain.ExtractedContent{}, extractionErr(src, "encode frame %d: %v", i+1, err)
		}
		frames = append(frames, domain.Frame{TimestampSec: ts, Image: still})
	}

	summary := fmt.Sprintf("Video file: %s\nDuration: %d seconds\nFrames sampled: %d",
		src.Name, int(math.Round(duration)), len(frames))

	return domain.ExtractedContent{
		Kind:        domain.KindFrames,
		Frames:      frames,
		Text:        summary,
		DurationSec: duration,
	}, nil
}

// frameTimestamps samples clamp(ceil(duration/15), 3, 10) timestamps evenly
// spaced across the duration, excluding the very start and end.
func frameTimestamps(duration float64) []float64 {
	n := int(math.Ceil(duration / 15))
	if n < 3 {
		n = 3
	}
	if n > 10 {
		n = 10
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = duration * float64(i+1) / float64(n+1)
	}
	return out
}

// downscaleToJPEG fits the frame inside maxW x maxH and re-encodes it as a
// compressed JPEG still.
func downscaleToJPEG(raw []byte, maxW, maxH int) (domain.InlineImage, error) {
	srcImg, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return domain.InlineImage{}, err
	}
	bounds := srcImg.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxW || h > maxH {
		scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
		dw := int(math.Round(float64(w) * scale))
		dh := int(math.Round(float64(h) * scale))
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), srcImg, bounds, xdraw.Over, nil)
		srcImg = dst
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, srcImg, &jpeg.Options{Quality: 80}); err != nil {
		return domain.InlineImage{}, err
	}
	return domain.InlineImage{MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}
