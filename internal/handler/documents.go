package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"pharmacare/internal/apierror"
	"pharmacare/internal/dto"
	"pharmacare/internal/service"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the file size for form fields and boundaries.
const multipartOverhead = 1 << 20

type DocumentsHandler struct {
	svc     service.DocumentService
	maxSize int64
}

func NewDocumentsHandler(svc service.DocumentService, maxSize int64) *DocumentsHandler {
	return &DocumentsHandler{svc: svc, maxSize: maxSize}
}

// Upload godoc
// @Summary Upload a medical document
// @Tags medical-documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Document"
// @Param documentType formData string true "Document type"
// @Param description formData string false "Description"
// @Success 201 {object} dto.DocumentResponse
// @Failure 413 {object} apierror.APIError
// @Failure 415 {object} apierror.APIError
// @Router /api/medical-documents/upload [post]
func (h *DocumentsHandler) Upload(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, apierror.PayloadTooLarge("File exceeds the maximum size of %d bytes", h.maxSize))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New("A multipart file field named 'file' is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	// One byte past the limit is enough for the service to reject it.
	data, err := io.ReadAll(io.LimitReader(f, h.maxSize+1))
	if err != nil {
		respondError(c, err)
		return
	}

	doc := dto.UploadDocument{
		DocumentType: c.PostForm("documentType"),
		FileName:     fh.Filename,
		ContentType:  fh.Header.Get("Content-Type"),
		Data:         data,
	}
	if d := c.PostForm("description"); d != "" {
		doc.Description = &d
	}

	resp, err := h.svc.Upload(c.Request.Context(), p, doc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary List document metadata
// @Tags medical-documents
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.DocumentResponse
// @Router /api/medical-documents [get]
func (h *DocumentsHandler) List(c *gin.Context) {
	h.list(c, "")
}

// ListByType godoc
// @Summary List document metadata of one type
// @Tags medical-documents
// @Produce json
// @Security BearerAuth
// @Param documentType path string true "Document type"
// @Success 200 {array} dto.DocumentResponse
// @Router /api/medical-documents/type/{documentType} [get]
func (h *DocumentsHandler) ListByType(c *gin.Context) {
	h.list(c, c.Param("documentType"))
}

func (h *DocumentsHandler) list(c *gin.Context, documentType string) {
	p, ok := principal(c)
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), p, documentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Download godoc
// @Summary Download a document
// @Tags medical-documents
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Document UUID"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /api/medical-documents/{id} [get]
func (h *DocumentsHandler) Download(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.svc.Download(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	c.Header("X-Checksum-SHA256", doc.Checksum)
	c.Header("Content-Length", strconv.Itoa(len(doc.FileData)))
	c.Data(http.StatusOK, doc.FileType, doc.FileData)
}

func (h *DocumentsHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
