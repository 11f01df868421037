package api

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/vaani/errors"
	"github.com/skillsenselab/vaani/server"
	"github.com/skillsenselab/vaani/transcription"
)

// transcribeBatch handles POST /api/v1/transcribe/batch. Multipart fields:
//
//	files       repeated audio uploads (required)
//	language    shared language code for all files
//	decoding    shared decoding mode
//	normalize   shared normalization flag
//
// Items are isolated: a file that fails validation or transcription is
// reported in place without affecting its siblings.
func (h *Handler) transcribeBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		server.RespondWithError(c, errors.InvalidInput("files", "invalid multipart form"))
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		server.RespondWithError(c, errors.MissingField("files"))
		return
	}

	items := make([]transcription.BatchItem, len(fileHeaders))
	releases := make([]func(), 0, len(fileHeaders))
	defer func() {
		for _, release := range releases {
			release()
		}
	}()

	for i, fh := range fileHeaders {
		items[i].Filename = fh.Filename

		clip, release, err := h.intake(fh)
		releases = append(releases, release)
		if err != nil {
			items[i].Err = err
			continue
		}

		req, err := h.buildRequest(c, clip)
		if err != nil {
			items[i].Err = err
			continue
		}
		items[i].Request = req
	}

	results, err := h.engine.TranscribeBatch(c.Request.Context(), items)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, buildBatchResponse(results))
}

func buildBatchResponse(results []transcription.BatchResult) BatchResponse {
	resp := BatchResponse{
		Results: make([]BatchItemResponse, len(results)),
		Total:   len(results),
	}
	for i, r := range results {
		item := BatchItemResponse{Filename: r.Filename}
		switch {
		case r.Err != nil:
			resp.Failed++
			body := errorBody(r.Err)
			item.Error = &body
		default:
			resp.Successful++
			item.Result = r.Result
		}
		resp.Results[i] = item
	}
	return resp
}

// errorBody converts any error to the client-safe error shape.
func errorBody(err error) errors.ErrorBody {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.ToResponse().Error
	}
	return errors.Internal(err).ToResponse().Error
}
