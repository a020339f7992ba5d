package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/scoutindex/scoutindex/pkg/api/middleware"
	"github.com/scoutindex/scoutindex/pkg/api/response"
	"github.com/scoutindex/scoutindex/pkg/engine"
	"github.com/scoutindex/scoutindex/pkg/scouterrors"
)

const defaultTopK = 20
const maxTopK = 200

var searchValidate = validator.New()

// searchRequest is the JSON body accepted on POST /api/v1/search.
type searchRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k" validate:"omitempty,min=1,max=200"`
}

// SearchHandler serves /api/v1/search, accepting either a GET with a `q`
// query-string parameter or a POST with a JSON body.
type SearchHandler struct {
	engine *engine.Engine
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(eng *engine.Engine) *SearchHandler {
	return &SearchHandler{engine: eng}
}

// Search handles GET and POST /api/v1/search.
// @Summary Search the index
// @Description Run a ranked search query over the indexed documents
// @Tags search
// @Produce json
// @Success 200 {object} query.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/search [get]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	req, err := h.parseRequest(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, err.Error(), requestID)
		return
	}

	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}

	result, err := h.engine.Search(req.Query, req.TopK)
	if err != nil {
		h.writeEngineError(w, err, requestID)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

func (h *SearchHandler) parseRequest(r *http.Request) (searchRequest, error) {
	if r.Method == http.MethodPost {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return searchRequest{}, response.ErrInvalidInput
		}
		if err := searchValidate.Struct(req); err != nil {
			return searchRequest{}, err
		}
		return req, nil
	}

	q := r.URL.Query()
	req := searchRequest{Query: q.Get("q")}
	if req.Query == "" {
		req.Query = q.Get("query")
	}
	if req.Query == "" {
		return searchRequest{}, response.ErrInvalidInput
	}
	if topK := q.Get("top_k"); topK != "" {
		n, err := strconv.Atoi(topK)
		if err != nil || n < 1 || n > maxTopK {
			return searchRequest{}, response.ErrInvalidInput
		}
		req.TopK = n
	}
	return req, nil
}

func (h *SearchHandler) writeEngineError(w http.ResponseWriter, err error, requestID string) {
	if _, ok := err.(*scouterrors.CorruptShardError); ok {
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, err.Error(), requestID)
		return
	}
	if _, ok := err.(*scouterrors.IOError); ok {
		response.Error(w, http.StatusInternalServerError, response.ErrCodeInternalServer, err.Error(), requestID)
		return
	}
	response.Error(w, http.StatusServiceUnavailable, response.ErrCodeServiceUnavailable, err.Error(), requestID)
}
