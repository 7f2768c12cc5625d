package transport

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"guardpost/internal/modules/operations/application/port"
	"guardpost/internal/modules/operations/application/usecase"
	"guardpost/internal/modules/operations/domain"
	sessiontransport "guardpost/internal/modules/session/interface"
	"guardpost/internal/shared/httputil"
	"guardpost/internal/shared/rest"
	"guardpost/internal/shared/upload"
)

type Handler struct {
	Forms *usecase.SubmitFormUseCase
	// MaxFileSize caps how many bytes of one part are ever buffered.
	MaxFileSize int64
}

func NewHandler(forms *usecase.SubmitFormUseCase, maxFileSize int64) *Handler {
	if maxFileSize <= 0 {
		maxFileSize = domain.MaxUploadSize
	}
	return &Handler{Forms: forms, MaxFileSize: maxFileSize}
}

// HandleSubmit answers POST /dashboard/operations/:form. Text fields travel
// as form values; attachments under the form's file key.
func (h *Handler) HandleSubmit(c echo.Context) error {
	session := sessiontransport.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusUnauthorized, failure("Unauthenticated"))
	}

	formName := c.Param("form")
	spec, err := domain.FormFor(formName)
	if err != nil {
		return c.JSON(http.StatusNotFound, failure("Unknown form"))
	}

	fields, files, oversized, err := collectSubmission(c, spec, h.MaxFileSize)
	if err != nil {
		return c.JSON(http.StatusBadRequest, failure("Invalid request body"))
	}

	// Trace id ties the rejected-file log lines to the upstream submission.
	traceID := uuid.NewString()
	slog.Info("form submission received",
		slog.String("traceId", traceID),
		slog.String("form", formName),
		slog.Int("files", len(files)),
	)

	result, err := h.Forms.Submit(c.Request().Context(), session.Token, formName, fields, files)
	if err != nil {
		slog.Warn("form submission failed", slog.String("traceId", traceID), slog.String("form", formName), slog.Any("error", err))
		return c.JSON(operationsFailure(err))
	}
	allRejected := append(oversized, result.Rejected...)
	for _, rejected := range allRejected {
		slog.Info("file rejected", slog.String("traceId", traceID), slog.String("name", rejected.Name), slog.String("reason", rejected.Reason))
	}

	body := map[string]any{"success": true, "data": result.Data}
	if len(allRejected) > 0 {
		body["rejected_files"] = allRejected
	}
	return c.JSON(http.StatusOK, body)
}

func collectSubmission(c echo.Context, spec domain.FormSpec, maxSize int64) (map[string]string, []upload.File, []upload.Rejected, error) {
	fields := map[string]string{}
	for _, name := range spec.Required {
		fields[name] = c.FormValue(name)
	}
	for _, name := range spec.Optional {
		fields[name] = c.FormValue(name)
	}

	if spec.FileKey == "" {
		return fields, nil, nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		// A form without attachments may arrive urlencoded.
		if errors.Is(err, http.ErrNotMultipart) {
			return fields, nil, nil, nil
		}
		return nil, nil, nil, err
	}
	var files []upload.File
	var rejected []upload.Rejected
	for _, header := range form.File[spec.FileKey] {
		// Oversized parts are refused on the declared size alone, never buffered.
		if header.Size > maxSize {
			rejected = append(rejected, upload.Rejected{Name: header.Filename, Reason: "too large"})
			continue
		}
		file, err := readFormFile(header, maxSize)
		if err != nil {
			return nil, nil, nil, err
		}
		if file == nil {
			rejected = append(rejected, upload.Rejected{Name: header.Filename, Reason: "too large"})
			continue
		}
		files = append(files, *file)
	}
	return fields, files, rejected, nil
}

// readFormFile buffers one part, reading at most maxSize+1 bytes. A nil file
// with nil error means the part's declared size lied and it was over the cap.
func readFormFile(header *multipart.FileHeader, maxSize int64) (*upload.File, error) {
	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	content, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > maxSize {
		return nil, nil
	}
	return &upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(content)),
		Content:     content,
	}, nil
}

var operationsErrors = httputil.NewErrorMapper().
	WithMapping(domain.ErrFormUnsupported, http.StatusNotFound, "Unknown form").
	WithMapping(port.ErrSessionExpired, http.StatusUnauthorized, "Session expired. Please login again.").
	WithMapping(port.ErrNetwork, http.StatusBadGateway, "Network error. Please check your connection and try again.").
	WithDefault(http.StatusBadGateway, "Submission failed. Please try again.")

func operationsFailure(err error) (int, map[string]any) {
	var validation *rest.ValidationError
	if errors.As(err, &validation) {
		return http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"message": validation.Message,
			"errors":  validation.Fields,
		}
	}
	var missing *domain.MissingFieldsError
	if errors.As(err, &missing) {
		return http.StatusUnprocessableEntity, map[string]any{
			"success":        false,
			"message":        "Please fill in all required fields.",
			"missing_fields": missing.Fields,
		}
	}
	info := operationsErrors.Map(err)
	return info.Status, failure(info.Message)
}

func failure(message string) map[string]any {
	return map[string]any{"success": false, "message": message}
}
