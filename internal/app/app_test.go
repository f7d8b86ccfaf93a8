package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/schedule-ingest/internal/common"
	"github.com/joseph-ayodele/schedule-ingest/internal/llm/openai"
	"github.com/joseph-ayodele/schedule-ingest/internal/pipeline"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func strptr(s string) *string { return &s }

func TestNewWithoutCredentialUsesHeuristic(t *testing.T) {
	cfg := common.DefaultConfig()
	cfg.LLM.Models = common.DefaultModels(cfg.LLM.Provider)

	a, err := New(context.Background(), cfg, quiet())
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Sink)

	res, err := a.Processor.ParseSchedule(context.Background(), pipeline.RawInput{
		FileContent: strptr("Biology 101\nTuesday Thursday\n13:00-14:15"),
		FileName:    strptr("bio.txt"),
	})
	require.NoError(t, err)
	require.Len(t, res.Classes, 1)
	assert.Equal(t, []string{pipeline.WarnNotConfigured}, res.Warnings)
}

func TestNewOpensSQLiteSink(t *testing.T) {
	cfg := common.DefaultConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = filepath.Join(t.TempDir(), "classes.db")

	a, err := New(context.Background(), cfg, quiet())
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Sink)

	res, n, err := a.Processor.ImportSchedule(context.Background(), "fall", pipeline.RawInput{
		FileContent: strptr("Chemistry\nMonday\n08:00-09:00"),
		FileName:    strptr("chem.txt"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, res.Classes, 1)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := common.DefaultConfig()
	cfg.LLM.Provider = "acme"
	_, err := New(context.Background(), cfg, quiet())
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestNewExtractorByProvider(t *testing.T) {
	ctx := context.Background()

	ex, err := NewExtractor(ctx, common.LLMConfig{Provider: common.ProviderOpenAI}, quiet())
	require.NoError(t, err)
	assert.Nil(t, ex)

	ex, err = NewExtractor(ctx, common.LLMConfig{
		Provider: common.ProviderOpenAI,
		APIKey:   "sk-test",
		Models:   []string{"gpt-4o"},
	}, quiet())
	require.NoError(t, err)
	require.IsType(t, &openai.Client{}, ex)
	assert.Equal(t, openai.ProviderName, ex.Provider())

	_, err = NewExtractor(ctx, common.LLMConfig{Provider: "acme", APIKey: "k", Models: []string{"m"}}, quiet())
	assert.Error(t, err)
}
