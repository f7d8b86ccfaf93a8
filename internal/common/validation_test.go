package common

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestSafeFileName(t *testing.T) {
	ok := []string{"schedule.txt", "Horaire d'été.pdf", "時間割.csv", "fall 2024 (final).txt"}
	for _, name := range ok {
		assert.Nil(t, SafeFileName("fileName", name), name)
	}

	bad := []string{"a/b.txt", `a\b.txt`, "a<b", "a>b", "a:b", `a"b`, "a|b", "a?b", "a*b", "tab\there", "nul\x00"}
	for _, name := range bad {
		assert.NotNil(t, SafeFileName("fileName", name), name)
	}
}

func TestValidatorCollectsFirstFailurePerField(t *testing.T) {
	var missing *string
	long := strings.Repeat("x", 10)

	v := NewValidator().
		Field("fileContent", missing, Present, MaxBytes(5)).
		Field("fileName", long, Required, MaxLength(5), SafeFileName)

	require.True(t, v.HasErrors())
	require.Len(t, v.Errors(), 2)
	assert.Equal(t, "fileContent is required; fileName must be at most 5 characters", v.ErrorMessage())

	err := v.Err()
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.Equal(t, codes.InvalidArgument, status.Code(GRPCStatus(err)))
}

func TestPresentAllowsEmptyString(t *testing.T) {
	empty := ""
	assert.Nil(t, Present("fileContent", &empty))
	assert.NotNil(t, Required("fileContent", &empty))
}

func TestMaxLengthCountsRunes(t *testing.T) {
	name := strings.Repeat("é", 255)
	assert.Nil(t, MaxLength(255)("fileName", name))
	assert.NotNil(t, MaxLength(255)("fileName", name+"é"))
}

func TestBase64Rule(t *testing.T) {
	assert.Nil(t, Base64("fileBase64", "JVBERi0xLjQK"))
	assert.NotNil(t, Base64("fileBase64", "not base64!"))
}

func TestHTTPStatusForExtractionFailure(t *testing.T) {
	err := NewAppError("EXTRACTION_FAILED", "upstream returned 503", ErrExtraction)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	assert.Equal(t, "upstream returned 503", PublicMessage(err))
	assert.Equal(t, codes.Internal, status.Code(GRPCStatus(err)))
}
