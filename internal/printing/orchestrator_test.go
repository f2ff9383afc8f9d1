package printing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-result-api/internal/result"
)

type stubRenderer struct {
	started chan struct{}
	release chan struct{}
}

func (s *stubRenderer) Render(w io.Writer, card result.CardData) error {
	if s.started != nil {
		select {
		case s.started <- struct{}{}:
		default:
		}
	}
	if s.release != nil {
		<-s.release
	}
	_, err := fmt.Fprintf(w, `<section class="report-card" data-student-id="%d">%s</section>`, card.Student.ID, card.Student.Name)
	return err
}

type failingSurface struct{}

func (failingSurface) Open(context.Context) (Sink, error) {
	return nil, errors.New("popup blocked")
}

type stubUploader struct {
	name string
	body string
}

func (s *stubUploader) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.name = name
	s.body = string(data)
	return "https://cdn.example.com/" + name, nil
}

func cards(names ...string) []result.CardData {
	out := make([]result.CardData, 0, len(names))
	for idx, name := range names {
		out = append(out, result.CardData{
			Student:      result.Student{ID: uint(idx + 1), Name: name},
			Term:         result.FirstTerm,
			AcademicYear: "2024/2025",
		})
	}
	return out
}

func TestPrintBatchKeepsOrderAndBreaksBetweenDocuments(t *testing.T) {
	orchestrator := NewOrchestrator(&stubRenderer{}, Options{SettleTimeout: time.Second}, zerolog.Nop())
	surface := &MemorySurface{}

	receipt, err := orchestrator.PrintBatch(context.Background(), "class-1", "Primary 4", surface, cards("Zara", "Ade", "Musa"))
	require.NoError(t, err)
	require.Equal(t, 3, receipt.Cards)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(surface.Document().HTML)))
	require.NoError(t, err)

	names := doc.Find(".print-document .report-card").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	require.Equal(t, []string{"Zara", "Ade", "Musa"}, names)
	require.Equal(t, 2, doc.Find(".page-break").Length())
	require.Equal(t, 0, doc.Find(".print-document").Last().NextAllFiltered(".page-break").Length())
	require.Contains(t, doc.Find("style").Text(), "size: A4")
	require.Contains(t, doc.Find("style").Text(), "print-color-adjust: exact")
	require.False(t, orchestrator.Busy("batch:class-1"))
}

func TestPrintSingleHasNoPageBreak(t *testing.T) {
	orchestrator := NewOrchestrator(&stubRenderer{}, Options{AutoPrint: true}, zerolog.Nop())
	surface := &MemorySurface{}

	_, err := orchestrator.Print(context.Background(), surface, cards("Ade")[0])
	require.NoError(t, err)

	html := string(surface.Document().HTML)
	require.NotContains(t, html, PageBreak)
	require.Contains(t, html, "window.print()")
	require.Contains(t, html, "<title>Ade - First Term 2024/2025</title>")
}

func TestPrintBatchSurfaceFailureResetsState(t *testing.T) {
	orchestrator := NewOrchestrator(&stubRenderer{}, Options{}, zerolog.Nop())

	_, err := orchestrator.PrintBatch(context.Background(), "class-1", "Primary 4", failingSurface{}, cards("Ade"))
	require.ErrorIs(t, err, ErrSurfaceUnavailable)
	require.False(t, orchestrator.Busy("batch:class-1"))

	_, err = orchestrator.PrintBatch(context.Background(), "class-1", "Primary 4", &MemorySurface{}, cards("Ade"))
	require.NoError(t, err)
}

func TestPrintBatchRejectsEmptySelection(t *testing.T) {
	orchestrator := NewOrchestrator(&stubRenderer{}, Options{}, zerolog.Nop())

	_, err := orchestrator.PrintBatch(context.Background(), "class-1", "Primary 4", &MemorySurface{}, nil)
	require.ErrorIs(t, err, ErrEmptySelection)
}

func TestPrintBatchTimesOutWhenRenderDoesNotSettle(t *testing.T) {
	renderer := &stubRenderer{release: make(chan struct{})}
	defer close(renderer.release)
	orchestrator := NewOrchestrator(renderer, Options{SettleTimeout: 20 * time.Millisecond}, zerolog.Nop())

	_, err := orchestrator.PrintBatch(context.Background(), "class-2", "Primary 5", &MemorySurface{}, cards("Ade"))
	require.ErrorIs(t, err, ErrRenderTimeout)
	require.False(t, orchestrator.Busy("batch:class-2"))
}

func TestPrintBatchRejectsConcurrentRunForSameKey(t *testing.T) {
	renderer := &stubRenderer{started: make(chan struct{}, 1), release: make(chan struct{})}
	orchestrator := NewOrchestrator(renderer, Options{SettleTimeout: time.Second}, zerolog.Nop())

	errs := make(chan error, 1)
	go func() {
		_, err := orchestrator.PrintBatch(context.Background(), "class-3", "Primary 6", &MemorySurface{}, cards("Ade"))
		errs <- err
	}()

	<-renderer.started
	require.True(t, orchestrator.Busy("batch:class-3"))

	_, err := orchestrator.PrintBatch(context.Background(), "class-3", "Primary 6", &MemorySurface{}, cards("Bola"))
	require.ErrorIs(t, err, ErrBatchInProgress)

	close(renderer.release)
	require.NoError(t, <-errs)
	require.False(t, orchestrator.Busy("batch:class-3"))
}

func TestRenderJobSignalsCompletion(t *testing.T) {
	orchestrator := NewOrchestrator(&stubRenderer{}, Options{}, zerolog.Nop())

	job := orchestrator.Render(context.Background(), "Batch", cards("Ade", "Bola"))
	select {
	case <-job.Done():
	case <-time.After(time.Second):
		t.Fatal("render did not complete")
	}

	doc, err := job.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, 2, doc.Cards)
}

func TestArchiveSurfaceUploadsDocument(t *testing.T) {
	uploader := &stubUploader{}
	orchestrator := NewOrchestrator(&stubRenderer{}, Options{}, zerolog.Nop())

	receipt, err := orchestrator.PrintBatch(context.Background(), "class-1", "Primary 4", ArchiveSurface{Uploader: uploader, Name: "primary-4.html"}, cards("Ade"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/primary-4.html", receipt.Location)
	require.Contains(t, uploader.body, "Ade")

	_, err = orchestrator.PrintBatch(context.Background(), "class-1", "Primary 4", ArchiveSurface{}, cards("Ade"))
	require.ErrorIs(t, err, ErrSurfaceUnavailable)
}

func TestFileSurfaceWritesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.html")
	orchestrator := NewOrchestrator(&stubRenderer{}, Options{}, zerolog.Nop())

	receipt, err := orchestrator.PrintBatch(context.Background(), "class-1", "Primary 4", FileSurface{Path: path}, cards("Ade", "Bola"))
	require.NoError(t, err)
	require.Equal(t, path, receipt.Location)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), PageBreak))
}

func TestFileSurfaceKeepsPreviousOutputWhenRunFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.html")
	require.NoError(t, os.WriteFile(path, []byte("previous good run"), 0o644))

	renderer := &stubRenderer{release: make(chan struct{})}
	defer close(renderer.release)
	orchestrator := NewOrchestrator(renderer, Options{SettleTimeout: 20 * time.Millisecond}, zerolog.Nop())

	_, err := orchestrator.PrintBatch(context.Background(), "class-3", "Primary 6", FileSurface{Path: path}, cards("Ade"))
	require.ErrorIs(t, err, ErrRenderTimeout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "previous good run", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
