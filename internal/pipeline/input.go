package pipeline

import (
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/joseph-ayodele/schedule-ingest/constants"
	"github.com/joseph-ayodele/schedule-ingest/internal/common"
	"github.com/joseph-ayodele/schedule-ingest/internal/extract"
)

// RawInput is the request body of one parse call. The two required fields are
// pointers so that a missing key can be told apart from an empty value.
type RawInput struct {
	FileContent *string `json:"fileContent"`
	FileName    *string `json:"fileName"`
	FileType    string  `json:"fileType,omitempty"`
	FileBase64  string  `json:"fileBase64,omitempty"`
}

// ValidInput is RawInput after validation, with the PDF payload decoded.
type ValidInput struct {
	FileContent string
	FileName    string
	FileType    string
	PDF         []byte
}

// Document converts the input for the text preparation stage.
func (v ValidInput) Document() extract.Document {
	return extract.Document{
		FileName: v.FileName,
		FileType: v.FileType,
		Content:  v.FileContent,
		PDF:      v.PDF,
	}
}

var pdfMagic = []byte("%PDF-")

// ValidateInput checks a request before any extraction work is done. It has
// no side effects and rejects anything it cannot classify.
func ValidateInput(in RawInput) (ValidInput, error) {
	v := common.NewValidator()
	v.Field("fileContent", in.FileContent, common.Present, common.MaxBytes(constants.MaxFileContentBytes))
	v.Field("fileName", in.FileName, common.Required, common.MaxLength(constants.MaxFileNameLength), common.SafeFileName)

	fileType := strings.ToLower(strings.TrimSpace(in.FileType))
	if in.FileBase64 != "" {
		v.Field("fileType", fileType, common.OneOf(constants.MimePDF))
		v.Field("fileBase64", in.FileBase64, common.Base64)
	}
	if err := v.Err(); err != nil {
		return ValidInput{}, err
	}

	out := ValidInput{
		FileContent: *in.FileContent,
		FileName:    strings.TrimSpace(*in.FileName),
		FileType:    fileType,
	}
	if in.FileBase64 != "" {
		// Decoding cannot fail here; Base64 already accepted the string.
		pdf, _ := base64.StdEncoding.DecodeString(in.FileBase64)
		if !bytes.HasPrefix(pdf, pdfMagic) {
			return ValidInput{}, common.NewAppError("INVALID_INPUT", "fileBase64 is not a PDF document", common.ErrInvalidInput)
		}
		out.PDF = pdf
	}
	return out, nil
}
