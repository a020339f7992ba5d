package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/scoutindex/scoutindex/pkg/api/middleware"
	"github.com/scoutindex/scoutindex/pkg/api/response"
	"github.com/scoutindex/scoutindex/pkg/engine"
	"github.com/scoutindex/scoutindex/pkg/scouterrors"
)

var documentValidate = validator.New()

// addDocumentRequest is the JSON body accepted on POST /api/v1/documents.
type addDocumentRequest struct {
	DocID   int64  `json:"player_id" validate:"required"`
	Name    string `json:"player_name" validate:"required"`
	Content string `json:"detailed_content"`
}

// DocumentHandler serves /api/v1/documents.
type DocumentHandler struct {
	engine *engine.Engine
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(eng *engine.Engine) *DocumentHandler {
	return &DocumentHandler{engine: eng}
}

// AddDocument handles POST /api/v1/documents: incrementally index one new
// document.
// @Summary Add a document
// @Description Incrementally index a single new document
// @Tags documents
// @Accept json
// @Produce json
// @Success 201 {object} engine.AddDocumentStats
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/v1/documents [post]
func (h *DocumentHandler) AddDocument(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "invalid JSON body", requestID)
		return
	}
	if err := documentValidate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), requestID)
		return
	}

	stats, err := h.engine.AddDocument(engine.Document{
		DocID:   req.DocID,
		Name:    req.Name,
		Content: req.Content,
	})
	if err != nil {
		h.writeEngineError(w, err, requestID)
		return
	}

	response.JSON(w, http.StatusCreated, stats)
}

func (h *DocumentHandler) writeEngineError(w http.ResponseWriter, err error, requestID string) {
	switch e := err.(type) {
	case *scouterrors.MissingFieldError:
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, e.Error(), requestID)
	case *scouterrors.EmptyDocumentError:
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, e.Error(), requestID)
	case *scouterrors.DuplicateDocumentError:
		response.Error(w, http.StatusConflict, response.ErrCodeConflict, e.Error(), requestID)
	case *scouterrors.CorruptShardError, *scouterrors.IOError:
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, err.Error(), requestID)
	default:
		response.Error(w, http.StatusServiceUnavailable, response.ErrCodeServiceUnavailable, err.Error(), requestID)
	}
}
