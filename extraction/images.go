
package extraction

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"qpaper-server/models"
)

// ImageExtractor walks the embedded raster images of a PDF.
type ImageExtractor interface {
	Extract(path string) ([]models.ExtractedImage, error)
}

// PDFImageExtractor extracts raw image objects page by page via pdfcpu.
// No deduplication or relevance filtering: headers and logos come out
// the same as diagrams. A page that fails contributes zero images and
// extraction continues on the remaining pages.
type PDFImageExtractor struct{}

func (PDFImageExtractor) Extract(path string) ([]models.ExtractedImage, error) {
	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page count of %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	var out []models.ExtractedImage
	for page := 1; page <= pageCount; page++ {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			continue
		}
		extracted, err := api.ExtractImagesRaw(f, []string{strconv.Itoa(page)}, conf)
		if err != nil {
			// Failed page: omit its images, keep going.
			continue
		}
		out = append(out, collectPageImages(page, extracted)...)
	}
	return out, nil
}

// collectPageImages flattens pdfcpu's per-page image maps in a stable
// object-number order so the per-page index is deterministic.
func collectPageImages(page int, extracted []map[int]model.Image) []models.ExtractedImage {
	var out []models.ExtractedImage
	index := 0
	for _, byObjNr := range extracted {
		objNrs := make([]int, 0, len(byObjNr))
		for nr := range byObjNr {
			objNrs = append(objNrs, nr)
		}
		sort.Ints(objNrs)
		for _, nr := range objNrs {
			img := byObjNr[nr]
			data, err := io.ReadAll(img)
			if err != nil || len(data) == 0 {
				continue
			}
			out = append(out, models.ExtractedImage{
				Page:   page,
				Index:  index,
				Format: img.FileType,
				Data:   base64.StdEncoding.EncodeToString(data),
				Size:   len(data),
			})
			index++
		}
	}
	return out
}
