// Package importer brings images and PDFs into a project. PDFs are
// rasterized page by page with go-fitz; every imported image lands in
// the content-addressed asset store before the page is recorded.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/sync/errgroup"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/assets"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/editor"
)

// DefaultDPI is the rasterization density for PDF pages. 150 keeps text
// readable in playback crops without ballooning the asset store.
const DefaultDPI = 150

// Importer commits media into the asset store and registers pages on the
// editor store.
type Importer struct {
	store  *editor.Store
	assets *assets.Store
}

// New creates an Importer.
func New(store *editor.Store, as *assets.Store) *Importer {
	return &Importer{store: store, assets: as}
}

// ImportImage imports a single image file as a new page.
func (im *Importer) ImportImage(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if _, err := im.store.AddPage(ctx, data, path, false); err != nil {
		return err
	}
	slog.Info("Imported image", "path", path, "bytes", len(data))
	return nil
}

// ImportImageBytes imports raw image bytes (drag-and-drop payloads).
func (im *Importer) ImportImageBytes(ctx context.Context, data []byte, hint string) error {
	_, err := im.store.AddPage(ctx, data, hint, false)
	return err
}

// ImportPDF rasterizes every page of a PDF and appends them as pages in
// document order. Rendering runs across workers; each worker opens its
// own fitz document since a document handle is not safe for concurrent
// page rendering.
func (im *Importer) ImportPDF(ctx context.Context, path string, dpi int) error {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	doc, err := fitz.New(path)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	pageCount := doc.NumPage()
	doc.Close()
	if pageCount == 0 {
		return fmt.Errorf("pdf %s has no pages", path)
	}

	started := time.Now()
	assetIDs := make([]string, pageCount)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < pageCount; i++ {
		g.Go(func() error {
			data, err := renderPage(path, i, dpi)
			if err != nil {
				return fmt.Errorf("render pdf page %d: %w", i, err)
			}
			id, err := im.assets.SaveAsset(ctx, data, fmt.Sprintf("page-%d.png", i))
			if err != nil {
				return err
			}
			assetIDs[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Pages append in document order regardless of render completion
	// order.
	for _, id := range assetIDs {
		im.store.AddPageRef(id, true)
	}

	slog.Info("Imported PDF", "path", path, "pages", pageCount,
		"dpi", dpi, "elapsed", time.Since(started))
	return nil
}

func renderPage(path string, index, dpi int) ([]byte, error) {
	workerDoc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()

	img, err := workerDoc.ImageDPI(index, float64(dpi))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
