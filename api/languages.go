package api

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/vaani/server"
	"github.com/skillsenselab/vaani/transcription"
)

// languages handles GET /api/v1/languages.
func (h *Handler) languages(c *gin.Context) {
	engineCfg := h.engine.Config()
	audioCfg := h.validator.Config()

	server.RespondOK(c, LanguagesResponse{
		Indic:             transcription.IndicLanguages,
		English:           transcription.LanguageEnglish,
		Auto:              transcription.LanguageAuto,
		CodeMixedFamilies: transcription.CodeMixedFamilies,
		DecodingModes: []string{
			string(transcription.DecodingCTC),
			string(transcription.DecodingRNNT),
		},
		DefaultLanguage: engineCfg.DefaultLanguage,
		DefaultDecoding: string(engineCfg.DefaultDecoding),
		AllowedFormats:  audioCfg.AllowedFormats,
		MaxUploadSize:   audioCfg.MaxUploadSize,
	})
}
