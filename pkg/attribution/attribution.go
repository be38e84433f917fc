package attribution

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dsoprea/go-exif/v2"
	exifcommon "github.com/dsoprea/go-exif/v2/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure"
	"unsplashfetch/pkg/unsplash"
)

const copyrightNotice = "Unsplash License (https://unsplash.com/license)"

// Embedder writes photographer attribution into saved JPEG files
type Embedder interface {
	Embed(jpegPath string, photo *unsplash.Photo) error
}

// ExifEmbedder sets IFD0 Artist, Copyright, ImageDescription and DateTime
type ExifEmbedder struct{}

// NewExifEmbedder returns an Embedder backed by go-exif
func NewExifEmbedder() *ExifEmbedder {
	return &ExifEmbedder{}
}

// Artist formats the Artist tag value
func Artist(photo *unsplash.Photo) string {
	name := photo.User.Name
	if name == "" {
		name = photo.User.Username
	}
	return fmt.Sprintf("%s (on Unsplash @%s)", name, photo.User.Username)
}

// Description formats the ImageDescription tag value
func Description(photo *unsplash.Photo) string {
	var lines []string
	if caption := photo.Caption(); caption != "" {
		lines = append(lines, caption)
	}
	if photo.Links.HTML != "" {
		lines = append(lines, photo.Links.HTML)
	}
	return strings.Join(lines, "\n")
}

// Embed rewrites jpegPath in place with attribution tags
func (e *ExifEmbedder) Embed(jpegPath string, photo *unsplash.Photo) error {
	if err := checkJPEG(jpegPath); err != nil {
		return err
	}

	jmp := jpegstructure.NewJpegMediaParser()
	intfc, err := jmp.ParseFile(jpegPath)
	if err != nil {
		return fmt.Errorf("failed to parse jpeg: %w", err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	rootIb, err := exifBuilder(sl)
	if err != nil {
		return fmt.Errorf("failed to build exif: %w", err)
	}

	ifd0Ib, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD0")
	if err != nil {
		return fmt.Errorf("failed to get IFD0: %w", err)
	}

	tags := map[string]string{
		"Artist":    Artist(photo),
		"Copyright": copyrightNotice,
	}
	if desc := Description(photo); desc != "" {
		tags["ImageDescription"] = desc
	}
	if created, err := time.Parse(time.RFC3339, photo.CreatedAt); err == nil {
		tags["DateTime"] = exif.ExifFullTimestampString(created)
	}

	for name, value := range tags {
		if err := ifd0Ib.SetStandardWithName(name, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
	}

	if err := sl.SetExif(rootIb); err != nil {
		return fmt.Errorf("failed to set exif: %w", err)
	}

	b := new(bytes.Buffer)
	if err := sl.Write(b); err != nil {
		return fmt.Errorf("failed to encode jpeg: %w", err)
	}

	tempFile := jpegPath + ".tmp"
	if err := os.WriteFile(tempFile, b.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write jpeg: %w", err)
	}
	if err := os.Rename(tempFile, jpegPath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to replace jpeg: %w", err)
	}
	return nil
}

// exifBuilder returns a builder over the existing EXIF chain, or an empty
// IFD0 builder when the file carries no EXIF segment
func exifBuilder(sl *jpegstructure.SegmentList) (*exif.IfdBuilder, error) {
	if _, _, err := sl.FindExif(); err != nil {
		if !errors.Is(err, exif.ErrNoExif) {
			return nil, err
		}
		return exif.NewIfdBuilder(
			exif.NewIfdMappingWithStandard(),
			exif.NewTagIndex(),
			exifcommon.IfdStandardIfdIdentity,
			exifcommon.EncodeDefaultByteOrder,
		), nil
	}
	return sl.ConstructExifBuilder()
}

// checkJPEG verifies the file starts with the JPEG SOI marker
func checkJPEG(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	header := make([]byte, 2)
	if _, err := io.ReadFull(f, header); err != nil || header[0] != 0xFF || header[1] != 0xD8 {
		return fmt.Errorf("%s is not a JPEG file", path)
	}
	return nil
}

// Nop is an Embedder that does nothing
type Nop struct{}

func (Nop) Embed(string, *unsplash.Photo) error { return nil }
