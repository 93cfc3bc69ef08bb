package http

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/fivetwenty-io/watson-go/internal/constants"
	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

// Part is one multipart/form-data field. File takes precedence over Data.
type Part struct {
	Name        string
	Filename    string
	ContentType string
	Data        []byte
	File        *watson.FileSource
}

// FilePart creates a part from a file source, using its name and media type.
func FilePart(name string, file *watson.FileSource) Part {
	return Part{Name: name, File: file, Filename: file.Filename(), ContentType: file.ContentType()}
}

// JSONPart creates a JSON field.
func JSONPart(name string, data []byte) Part {
	return Part{Name: name, Data: data, ContentType: constants.MediaTypeJSON}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeMultipart(parts []Part) (*bytes.Reader, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	for _, part := range parts {
		err := writePart(writer, part)
		if err != nil {
			return nil, "", err
		}
	}

	err := writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	return bytes.NewReader(buf.Bytes()), writer.FormDataContentType(), nil
}

func writePart(writer *multipart.Writer, part Part) error {
	header := make(textproto.MIMEHeader)

	disposition := fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(part.Name))
	if part.Filename != "" {
		disposition += fmt.Sprintf(`; filename="%s"`, quoteEscaper.Replace(part.Filename))
	}

	header.Set("Content-Disposition", disposition)

	if part.ContentType != "" {
		header.Set(constants.HeaderContentType, part.ContentType)
	}

	dst, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("creating part %s: %w", part.Name, err)
	}

	if part.File == nil {
		_, err = dst.Write(part.Data)
		if err != nil {
			return fmt.Errorf("writing part %s: %w", part.Name, err)
		}

		return nil
	}

	src, err := part.File.Open()
	if err != nil {
		return fmt.Errorf("part %s: %w", part.Name, err)
	}

	defer func() { _ = src.Close() }()

	_, err = io.Copy(dst, src)
	if err != nil {
		return fmt.Errorf("writing part %s: %w", part.Name, err)
	}

	return nil
}
