package watson

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

// mediaTypesByExtension covers the upload formats the services accept, ahead
// of the platform MIME table.
var mediaTypesByExtension = map[string]string{
	".json":  "application/json",
	".pdf":   "application/pdf",
	".html":  "text/html",
	".htm":   "text/html",
	".xhtml": "application/xhtml+xml",
	".doc":   "application/msword",
	".docx":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":   "text/plain",
	".csv":   "text/csv",
	".tmx":   "application/x-tmx+xml",
	".tsv":   "text/tab-separated-values",
	".flac":  "audio/flac",
	".wav":   "audio/wav",
	".ogg":   "audio/ogg",
	".oga":   "audio/ogg",
	".opus":  "audio/ogg;codecs=opus",
	".mp3":   "audio/mp3",
	".mpeg":  "audio/mpeg",
	".webm":  "audio/webm",
	".l16":   "audio/l16",
	".mulaw": "audio/mulaw",
	".basic": "audio/basic",
}

// MediaTypeForFilename returns the media type implied by a filename's
// extension, or an empty string when unknown.
func MediaTypeForFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ""
	}

	if mediaType, ok := mediaTypesByExtension[ext]; ok {
		return mediaType
	}

	return mime.TypeByExtension(ext)
}

// FileSource describes a file parameter: either a path on disk, whose name
// and media type are inferred, or a reader whose name and media type the
// caller supplies.
type FileSource struct {
	path        string
	reader      io.Reader
	filename    string
	contentType string
}

// FileFromPath creates a source backed by a file on disk. The file is opened
// when the request is sent.
func FileFromPath(path string) *FileSource {
	return &FileSource{
		path:     path,
		filename: filepath.Base(path),
	}
}

// FileFromReader creates a source backed by a reader. A reader source must
// carry a filename or a content type; Validate reports ErrFileSourceAmbiguous
// otherwise.
func FileFromReader(r io.Reader, filename, contentType string) *FileSource {
	return &FileSource{
		reader:      r,
		filename:    filename,
		contentType: contentType,
	}
}

// FileFromBytes creates a reader source over an in-memory payload.
func FileFromBytes(data []byte, filename, contentType string) *FileSource {
	return FileFromReader(bytes.NewReader(data), filename, contentType)
}

// WithContentType returns a copy of the source with an explicit media type.
func (f *FileSource) WithContentType(contentType string) *FileSource {
	clone := *f
	clone.contentType = contentType

	return &clone
}

// WithFilename returns a copy of the source with an explicit filename.
func (f *FileSource) WithFilename(filename string) *FileSource {
	clone := *f
	clone.filename = filename

	return &clone
}

// Validate checks that the source is usable.
func (f *FileSource) Validate() error {
	if f == nil {
		return RequiredArgument("file")
	}

	if f.path == "" && f.reader == nil {
		return InvalidArgument("file", "needs a path or a reader")
	}

	if f.reader != nil && f.filename == "" && f.contentType == "" {
		return ErrFileSourceAmbiguous
	}

	return nil
}

// Path returns the path of a disk-backed source.
func (f *FileSource) Path() string {
	return f.path
}

// Filename returns the name sent with multipart parts.
func (f *FileSource) Filename() string {
	return f.filename
}

// ExplicitContentType returns the media type set by the caller, if any.
func (f *FileSource) ExplicitContentType() string {
	return f.contentType
}

// ContentType returns the explicit media type, the one inferred from the
// filename, or application/octet-stream.
func (f *FileSource) ContentType() string {
	if f.contentType != "" {
		return f.contentType
	}

	if inferred := MediaTypeForFilename(f.filename); inferred != "" {
		return inferred
	}

	return constants.MediaTypeOctetStream
}

// Open returns the payload. Disk sources are opened on each call; reader
// sources return the reader itself, so they can be consumed once.
func (f *FileSource) Open() (io.ReadCloser, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	if f.reader != nil {
		if rc, ok := f.reader.(io.ReadCloser); ok {
			return rc, nil
		}

		return io.NopCloser(f.reader), nil
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.path, err)
	}

	return file, nil
}

// Size returns the size of a disk-backed source, or -1 when unknown.
func (f *FileSource) Size() int64 {
	if f.path == "" {
		if sized, ok := f.reader.(interface{ Len() int }); ok {
			return int64(sized.Len())
		}

		return -1
	}

	info, err := os.Stat(f.path)
	if err != nil {
		return -1
	}

	return info.Size()
}
