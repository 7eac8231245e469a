package generate

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"trainforge/internal/domain"
	"trainforge/internal/outputs"
	"trainforge/internal/providers/genai"
)

type fakeClient struct {
	resp     string
	err      error
	lastReq  genai.GenerateRequest
	reqCount int
}

func (f *fakeClient) GenerateContent(_ context.Context, req genai.GenerateRequest) (*genai.GenerateResponse, error) {
	f.lastReq = req
	f.reqCount++
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateResponse{Text: f.resp}, nil
}

func testLog() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func textFile(t *testing.T, name, text string) *domain.ParsedFile {
	t.Helper()
	pf, err := domain.NewParsedFile(
		domain.SourceFile{Name: name, MIME: "text/plain", Data: []byte(text)},
		domain.FileTypeText,
		domain.ExtractedContent{Kind: domain.KindText, Text: text},
	)
	if err != nil {
		t.Fatalf("NewParsedFile: %v", err)
	}
	return pf
}

func TestSelectUsesModelAnswer(t *testing.T) {
	client := &fakeClient{resp: " Quiz \n"}
	sel := NewSelector(client, testLog())

	got := sel.Select(t.Context(), textFile(t, "notes.txt", "alpha beta"))
	if got != outputs.IDQuiz {
		t.Fatalf("Select = %q, want %q", got, outputs.IDQuiz)
	}
	if client.lastReq.Temperature != selectTemperature {
		t.Fatalf("temperature = %v, want %v", client.lastReq.Temperature, selectTemperature)
	}
}

func TestSelectFallsBackOnError(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	sel := NewSelector(client, testLog())

	got := sel.Select(t.Context(), textFile(t, "notes.txt", "alpha"))
	if got != outputs.IDFlashcards {
		t.Fatalf("Select = %q, want fallback %q", got, outputs.IDFlashcards)
	}
}

func TestSelectFallsBackOnGarbageAnswer(t *testing.T) {
	client := &fakeClient{resp: "I think a quiz would be great here."}
	sel := NewSelector(client, testLog())

	got := sel.Select(t.Context(), textFile(t, "notes.txt", "alpha"))
	if !outputs.IsConcrete(got) {
		t.Fatalf("Select = %q, not a concrete output id", got)
	}
	if got == outputs.AutoID {
		t.Fatal("Select returned the synthetic auto id")
	}
}

func TestClassificationPromptKeepsRuneBoundaries(t *testing.T) {
	// Place a multibyte rune across the preview byte limit; the excerpt
	// must back off to the rune start instead of emitting a broken
	// UTF-8 sequence.
	text := strings.Repeat("a", previewTextLimit-1) + "世界"
	prompt := classificationPrompt(textFile(t, "notes.txt", text))
	if !utf8.ValidString(prompt) {
		t.Fatal("classification prompt contains invalid UTF-8")
	}
	if strings.Contains(prompt, "世") {
		t.Fatal("excerpt kept a rune that starts past the byte limit")
	}
}

func TestTruncateAtRune(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"a世", 2, "a"},  // 世 is 3 bytes starting at offset 1
		{"a世", 4, "a世"}, // full string fits
	}
	for _, tt := range tests {
		if got := truncateAtRune(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncateAtRune(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestFallbackOutputCoversEveryFileType(t *testing.T) {
	want := map[domain.FileType]string{
		domain.FileTypeImage:    outputs.IDHotspot,
		domain.FileTypeVideo:    outputs.IDWalkthrough,
		domain.FileTypeCSV:      outputs.IDQuiz,
		domain.FileTypeExcel:    outputs.IDQuiz,
		domain.FileTypePDF:      outputs.IDFlashcards,
		domain.FileTypeText:     outputs.IDFlashcards,
		domain.FileTypeMarkdown: outputs.IDFlashcards,
	}
	for ft, id := range want {
		if got := FallbackOutput(ft); got != id {
			t.Errorf("FallbackOutput(%s) = %q, want %q", ft, got, id)
		}
	}
}

func TestGenerateCleansAndReturnsArtifact(t *testing.T) {
	client := &fakeClient{resp: "```html\n<!DOCTYPE html><html><body>ok</body></html>\n```"}
	orch := NewOrchestrator(client, testLog())

	html, err := orch.Generate(t.Context(), textFile(t, "notes.txt", "alpha"), outputs.IDQuiz, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Fatalf("artifact not cleaned: %q", html)
	}
	if client.lastReq.Temperature != generateTemperature {
		t.Fatalf("temperature = %v, want %v", client.lastReq.Temperature, generateTemperature)
	}
	if client.lastReq.SystemInstruction == "" {
		t.Fatal("generation request missing system instruction")
	}
}

func TestGenerateRejectsUnknownOutput(t *testing.T) {
	orch := NewOrchestrator(&fakeClient{resp: "x"}, testLog())

	_, err := orch.Generate(t.Context(), textFile(t, "notes.txt", "alpha"), "crossword", "")
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}

func TestGenerateRejectsAutoID(t *testing.T) {
	orch := NewOrchestrator(&fakeClient{resp: "x"}, testLog())

	_, err := orch.Generate(t.Context(), textFile(t, "notes.txt", "alpha"), outputs.AutoID, "")
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}

func TestGenerateWrapsModelFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exhausted")}
	orch := NewOrchestrator(client, testLog())

	_, err := orch.Generate(t.Context(), textFile(t, "notes.txt", "alpha"), outputs.IDQuiz, "")
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
	if !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("err = %v, cause missing", err)
	}
	if client.reqCount != 1 {
		t.Fatalf("reqCount = %d, want 1 (no retries)", client.reqCount)
	}
}

func TestRefineEmbedsCurrentArtifact(t *testing.T) {
	client := &fakeClient{resp: "<!DOCTYPE html><html><body>v2</body></html>"}
	orch := NewOrchestrator(client, testLog())

	current := "<!DOCTYPE html><html><body>v1</body></html>"
	html, err := orch.Refine(t.Context(), current, "make the buttons blue", nil)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if html != client.resp {
		t.Fatalf("Refine = %q, want %q", html, client.resp)
	}
	if client.lastReq.Temperature != refineTemperature {
		t.Fatalf("temperature = %v, want %v", client.lastReq.Temperature, refineTemperature)
	}

	var joined strings.Builder
	for _, p := range client.lastReq.Parts {
		joined.WriteString(p.Text)
		joined.WriteString("\n")
	}
	if !strings.Contains(joined.String(), current) {
		t.Fatal("refine prompt does not embed the current artifact")
	}
	if !strings.Contains(joined.String(), "make the buttons blue") {
		t.Fatal("refine prompt does not embed the instruction")
	}
}

func TestRefineAttachesReferenceImage(t *testing.T) {
	client := &fakeClient{resp: "<!DOCTYPE html><html></html>"}
	orch := NewOrchestrator(client, testLog())

	ref := &domain.InlineImage{MIMEType: "image/png", Data: []byte{0x89, 0x50}}
	if _, err := orch.Refine(t.Context(), "<html></html>", "match this style", ref); err != nil {
		t.Fatalf("Refine: %v", err)
	}

	var inline *genai.InlineData
	for _, p := range client.lastReq.Parts {
		if p.Inline != nil {
			inline = p.Inline
		}
	}
	if inline == nil {
		t.Fatal("refine request carries no inline image")
	}
	if inline.MIMEType != "image/png" {
		t.Fatalf("inline mime = %q, want image/png", inline.MIMEType)
	}
}

func TestRefineFailureLeavesNothingBehind(t *testing.T) {
	client := &fakeClient{err: errors.New("timeout")}
	orch := NewOrchestrator(client, testLog())

	html, err := orch.Refine(t.Context(), "<html></html>", "anything", nil)
	if !errors.Is(err, domain.ErrRefinementFailed) {
		t.Fatalf("err = %v, want ErrRefinementFailed", err)
	}
	if html != "" {
		t.Fatalf("Refine returned %q on failure, want empty", html)
	}
}

func TestRefineRejectsEmptyInstruction(t *testing.T) {
	orch := NewOrchestrator(&fakeClient{resp: "x"}, testLog())

	_, err := orch.Refine(t.Context(), "<html></html>", "   ", nil)
	if !errors.Is(err, domain.ErrRefinementFailed) {
		t.Fatalf("err = %v, want ErrRefinementFailed", err)
	}
}

func TestCleanArtifact(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare html untouched", "<!DOCTYPE html><html></html>", "<!DOCTYPE html><html></html>"},
		{"html fence", "```html\n<html></html>\n```", "<html></html>"},
		{"uppercase fence", "```HTML\n<html></html>\n```", "<html></html>"},
		{"anonymous fence", "```\n<html></html>\n```", "<html></html>"},
		{"leading fence only", "```html\n<html></html>", "<html></html>"},
		{"surrounding whitespace", "  \n<html></html>\n\n", "<html></html>"},
		{"empty response", "", emptyArtifact},
		{"fence around nothing", "```html\n```", emptyArtifact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanArtifact(tt.in); got != tt.want {
				t.Fatalf("CleanArtifact(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanArtifactIdempotent(t *testing.T) {
	once := CleanArtifact("```html\n<html></html>\n```")
	if twice := CleanArtifact(once); twice != once {
		t.Fatalf("second clean changed output: %q -> %q", once, twice)
	}
}

func TestSessionHappyPath(t *testing.T) {
	s := NewSession()

	if err := s.Begin(StateExtracting); err != nil {
		t.Fatalf("Begin(extracting): %v", err)
	}
	for _, next := range []State{StateAwaitingOutputChoice, StateAutoSelecting, StateGenerating, StateReady} {
		if err := s.Advance(next); err != nil {
			t.Fatalf("Advance(%s): %v", next, err)
		}
	}
	if s.State() != StateReady {
		t.Fatalf("state = %s, want ready", s.State())
	}

	if err := s.Begin(StateRefining); err != nil {
		t.Fatalf("Begin(refining): %v", err)
	}
	if err := s.Advance(StateReady); err != nil {
		t.Fatalf("Advance(ready): %v", err)
	}
}

func TestSessionRejectsConcurrentFlow(t *testing.T) {
	s := NewSession()
	if err := s.Begin(StateExtracting); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	err := s.Begin(StateExtracting)
	if !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("second Begin err = %v, want ErrBusy", err)
	}
}

func TestSessionFailReturnsToStableState(t *testing.T) {
	s := NewSession()
	if err := s.Begin(StateExtracting); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	s.Fail()
	if s.State() != StateIdle {
		t.Fatalf("state after failed upload = %s, want idle", s.State())
	}

	// Walk to ready, then fail a refinement: the artifact state survives.
	if err := s.Begin(StateExtracting); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	for _, next := range []State{StateAwaitingOutputChoice, StateGenerating, StateReady} {
		if err := s.Advance(next); err != nil {
			t.Fatalf("Advance(%s): %v", next, err)
		}
	}
	if err := s.Begin(StateRefining); err != nil {
		t.Fatalf("Begin(refining): %v", err)
	}
	s.Fail()
	if s.State() != StateReady {
		t.Fatalf("state after failed refine = %s, want ready", s.State())
	}
}

func TestSessionRejectsIllegalTransition(t *testing.T) {
	s := NewSession()
	if err := s.Begin(StateGenerating); err == nil {
		t.Fatal("Begin(generating) from idle succeeded, want error")
	}
}
