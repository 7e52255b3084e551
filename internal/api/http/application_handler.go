package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/repository"
	"clearance-backend/internal/service"
)

// ApplicationHandler serves the student-facing application lifecycle:
// submission with an optional attachment, progress view, certificate
// and attachment downloads.
type ApplicationHandler struct {
	workflow     service.WorkflowService
	storage      service.AttachmentStorage
	certificates service.CertificateRenderer
	studentRepo  repository.StudentRepository

	maxFileBytes int64
	allowedTypes map[string]bool
}

func NewApplicationHandler(
	workflow service.WorkflowService,
	storage service.AttachmentStorage,
	certificates service.CertificateRenderer,
	studentRepo repository.StudentRepository,
	maxFileSizeMB int64,
	allowedTypes []string,
) *ApplicationHandler {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = true
	}
	return &ApplicationHandler{
		workflow:     workflow,
		storage:      storage,
		certificates: certificates,
		studentRepo:  studentRepo,
		maxFileBytes: maxFileSizeMB << 20,
		allowedTypes: allowed,
	}
}

func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())

	if err := r.ParseMultipartForm(h.maxFileBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}
	appType := r.FormValue("type")
	description := r.FormValue("description")

	var attachment *domain.Attachment
	file, header, err := r.FormFile("attachment")
	switch err {
	case nil:
		defer file.Close()
		attachment, err = h.saveAttachment(r, file, header.Filename, header.Header.Get("Content-Type"), header.Size)
		if err != nil {
			writeError(w, err)
			return
		}
	case http.ErrMissingFile:
		// attachment is optional
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid attachment"})
		return
	}

	app, err := h.workflow.CreateApplication(r.Context(), claims.UserID, appType, description, attachment)
	if err != nil {
		if attachment != nil {
			h.storage.Delete(r.Context(), attachment.StorageKey)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *ApplicationHandler) saveAttachment(r *http.Request, file io.Reader, filename, contentType string, size int64) (*domain.Attachment, error) {
	if size > h.maxFileBytes {
		return nil, fmt.Errorf("%w: attachment exceeds the %d MB limit", domain.ErrValidation, h.maxFileBytes>>20)
	}
	if len(h.allowedTypes) > 0 && !h.allowedTypes[contentType] {
		return nil, fmt.Errorf("%w: attachment type %q is not allowed", domain.ErrValidation, contentType)
	}
	key, written, err := h.storage.Save(r.Context(), io.LimitReader(file, h.maxFileBytes), filename)
	if err != nil {
		return nil, err
	}
	return &domain.Attachment{
		StorageKey:  key,
		Filename:    filename,
		ContentType: contentType,
		Size:        written,
		UploadedAt:  time.Now(),
	}, nil
}

func (h *ApplicationHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	view, err := h.workflow.GetStudentApplication(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ApplicationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid application id"})
		return
	}
	view, err := h.workflow.GetApplicationStatus(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ApplicationHandler) DownloadCertificate(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	view, err := h.workflow.GetStudentApplication(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	student, err := h.studentRepo.GetByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	pdf, err := h.certificates.Render(view.Application, student, view.Decisions)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="clearance-%s.pdf"`, student.Number))
	w.Write(pdf)
}

func (h *ApplicationHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	view, err := h.workflow.GetStudentApplication(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	att := view.Application.Attachment
	if att == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "application has no attachment"})
		return
	}

	file, err := h.storage.Open(r.Context(), att.StorageKey)
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", att.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, att.Filename))
	io.Copy(w, file)
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return int32(id), nil
}
