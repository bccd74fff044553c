package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"penalty-console/internal/domain"
)

const maxUploadBytes = 10 << 20

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// bindRecord reads a record from a JSON body, or from the "payload" field of a multipart
// body that also carries files.
func bindRecord[T any](c echo.Context) (T, error) {
	var item T
	if isMultipart(c) {
		if err := json.Unmarshal([]byte(c.FormValue("payload")), &item); err != nil {
			return item, fmt.Errorf("%w: payload: %v", domain.ErrInvalidInput, err)
		}
		return item, nil
	}
	if err := c.Bind(&item); err != nil {
		return item, fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	return item, nil
}

// attachment reads an uploaded file. A request without the field yields nil.
func attachment(c echo.Context, field string) (*domain.Attachment, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, stdhttp.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if fh.Size > maxUploadBytes {
		return nil, fmt.Errorf("%w: %s exceeds upload limit", domain.ErrInvalidInput, fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		contentType = stdhttp.DetectContentType(data)
	}
	return &domain.Attachment{Field: field, FileName: fh.Filename, ContentType: contentType, Data: data}, nil
}
