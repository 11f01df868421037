package api

import (
	"github.com/skillsenselab/vaani/errors"
	"github.com/skillsenselab/vaani/transcription"
)

// BatchItemResponse is one entry of a batch response, in input order.
// Exactly one of Result or Error is set.
type BatchItemResponse struct {
	Filename string                `json:"filename"`
	Result   *transcription.Result `json:"result,omitempty"`
	Error    *errors.ErrorBody     `json:"error,omitempty"`
}

// BatchResponse is the body of a batch transcription response.
type BatchResponse struct {
	Results    []BatchItemResponse `json:"results"`
	Total      int                 `json:"total"`
	Successful int                 `json:"successful"`
	Failed     int                 `json:"failed"`
}

// LanguagesResponse describes the routing surface for clients.
type LanguagesResponse struct {
	Indic             []string `json:"indic"`
	English           string   `json:"english"`
	Auto              string   `json:"auto"`
	CodeMixedFamilies []string `json:"code_mixed_families"`
	DecodingModes     []string `json:"decoding_modes"`
	DefaultLanguage   string   `json:"default_language"`
	DefaultDecoding   string   `json:"default_decoding"`
	AllowedFormats    []string `json:"allowed_formats"`
	MaxUploadSize     string   `json:"max_upload_size"`
}
