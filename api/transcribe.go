package api

import (
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/vaani/audio"
	"github.com/skillsenselab/vaani/errors"
	"github.com/skillsenselab/vaani/server"
	"github.com/skillsenselab/vaani/transcription"
	"github.com/skillsenselab/vaani/validation"
)

// transcribe handles POST /api/v1/transcribe. Multipart fields:
//
//	file        audio upload (required)
//	language    language code, defaults to the engine's default
//	decoding    ctc | rnnt, defaults to the engine's default
//	target_text optional reference for WER and accuracy
//	normalize   optional bool, script-aware transcript normalization
//	hint        optional text used for code-mix routing under auto
func (h *Handler) transcribe(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		server.RespondWithError(c, errors.MissingField("file"))
		return
	}

	clip, release, err := h.intake(fileHeader)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	defer release()

	req, err := h.buildRequest(c, clip)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	result, err := h.engine.Transcribe(c.Request.Context(), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, result)
}

// intake reads, validates, and spools one upload. The returned release
// func removes the spooled file and is always safe to call.
func (h *Handler) intake(fh *multipart.FileHeader) (*audio.Clip, func(), error) {
	noop := func() {}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, errors.InvalidAudio("cannot open upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, noop, errors.InvalidAudio("cannot read upload")
	}

	clip, err := h.validator.Validate(fh.Filename, data)
	if err != nil {
		return nil, noop, err
	}

	// Spool the validated upload for the lifetime of the request so
	// crash-dumps and debugging see the same bytes the backend saw.
	_, release, err := h.store.Save(data, audio.ExtensionOf(fh.Filename))
	if err != nil {
		h.log.Warn("Temp spool failed, continuing from memory", map[string]interface{}{
			"error": err.Error(),
		})
		return clip, noop, nil
	}
	return clip, release, nil
}

// transcribeForm carries the tunable request fields. Language routing is
// left to the engine, which produces the richer UNSUPPORTED_LANGUAGE error
// with the full supported list.
type transcribeForm struct {
	Language   string `form:"language" json:"language" validate:"omitempty,max=16"`
	Decoding   string `form:"decoding" json:"decoding" validate:"omitempty,oneof=ctc rnnt"`
	TargetText string `form:"target_text" json:"target_text" validate:"omitempty,max=5000"`
	Hint       string `form:"hint" json:"hint" validate:"omitempty,max=2000"`
	Normalize  string `form:"normalize" json:"normalize"`
}

// buildRequest binds and validates form fields into a transcription request.
func (h *Handler) buildRequest(c *gin.Context, clip *audio.Clip) (*transcription.Request, error) {
	var form transcribeForm
	if err := c.ShouldBind(&form); err != nil {
		return nil, errors.InvalidInput("form", "malformed request fields")
	}
	if err := validation.Validate(form); err != nil {
		return nil, err
	}

	req := &transcription.Request{
		Clip:       clip,
		Language:   form.Language,
		Decoding:   transcription.DecodingMode(form.Decoding),
		TargetText: form.TargetText,
		Hint:       form.Hint,
	}
	if form.Normalize != "" {
		normalize, err := strconv.ParseBool(form.Normalize)
		if err != nil {
			return nil, errors.InvalidInput("normalize", "must be a boolean")
		}
		req.Normalize = normalize
	}
	return req, nil
}
