package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel is an llms.Model returning a canned completion.
type fakeModel struct {
	content  string
	err      error
	noChoice bool
	calls    int
	messages []llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	if f.noChoice {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.content}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return f.content, f.err
}

func TestClassifyTerms(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "plain object", content: `{"terms": ["GREEN status", "release gate"]}`, want: []string{"GREEN status", "release gate"}},
		{name: "surrounding prose", content: "Sure! Here you go: {\"terms\": [\"KPI-7\"]} hope it helps", want: []string{"KPI-7"}},
		{name: "code fence", content: "```json\n{\"terms\": [\"blue lane\"]}\n```", want: []string{"blue lane"}},
		{name: "repaired key and trailing comma", content: `{terms": ["orange gate",]}`, want: []string{"orange gate"}},
		{name: "empty list", content: `{"terms": []}`, want: []string{}},
		{name: "missing key", content: `{"candidates": ["x"]}`, want: []string{}},
		{name: "not json", content: "I cannot help with that", want: []string{}},
		{name: "broken json", content: `{"terms": [`, want: []string{}},
		{name: "blank entry fails validation", content: `{"terms": ["ok", ""]}`, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{content: tt.content}
			classifier := newTermClassifierWithModel(model, 0)

			got, err := classifier.ClassifyTerms(context.Background(), "Je to GREEN status pro release gate?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, model.calls)
		})
	}
}

func TestClassifyTerms_SendsQueryAsHumanMessage(t *testing.T) {
	model := &fakeModel{content: `{"terms": ["x1"]}`}
	classifier := newTermClassifierWithModel(model, 0)

	_, err := classifier.ClassifyTerms(context.Background(), "  what is x1  ")
	require.NoError(t, err)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, llms.TextPart("what is x1"), model.messages[1].Parts[0])
}

func TestClassifyTerms_TransportErrorReturned(t *testing.T) {
	boom := errors.New("connection refused")
	classifier := newTermClassifierWithModel(&fakeModel{err: boom}, 0)

	got, err := classifier.ClassifyTerms(context.Background(), "anything")
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

func TestClassifyTerms_NoChoices(t *testing.T) {
	classifier := newTermClassifierWithModel(&fakeModel{noChoice: true}, 0)

	got, err := classifier.ClassifyTerms(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClassifyTerms_EmptyQuerySkipsModel(t *testing.T) {
	model := &fakeModel{}
	classifier := newTermClassifierWithModel(model, 0)

	got, err := classifier.ClassifyTerms(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, model.calls)
}

func TestParseClassification_Limits(t *testing.T) {
	long := "this term is far too long to be a piece of internal slang and should be dropped"
	got, err := parseClassification(`{"terms": ["a1","a1","b2","c3","` + long + `","d4","e5","f6"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b2", "c3", "d4", "e5"}, got)
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := buildSystemPrompt()
	assert.Contains(t, prompt, `"maxItems": 5`)
	assert.Contains(t, prompt, "up to 5 short terms")
	assert.NotContains(t, prompt, "%!")
}
