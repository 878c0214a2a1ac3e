package pipeline

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"adstudio/internal/artifact"
	"adstudio/internal/domain"
	"adstudio/internal/metrics"
	"adstudio/internal/prompt"
	"adstudio/internal/publish"
)

const invokedARN = "arn:aws:lambda:eu-west-1:123456789012:function:Generate"

type fakeText struct {
	reply   string
	err     error
	system  string
	prompts []string
}

func (f *fakeText) GenerateText(_ context.Context, system, p string) (string, error) {
	f.system = system
	f.prompts = append(f.prompts, p)
	return f.reply, f.err
}

func (f *fakeText) ModelID() string { return "anthropic.claude-3-5-sonnet-20240620-v1:0" }

type fakeImage struct {
	err    error
	bodies [][]byte
}

func (f *fakeImage) GenerateImage(_ context.Context, body []byte) (string, error) {
	f.bodies = append(f.bodies, body)
	if f.err != nil {
		return "", f.err
	}
	return base64.StdEncoding.EncodeToString([]byte("png-bytes")), nil
}

func (f *fakeImage) ModelID() string { return "stability.sd3-large-v1:0" }

type fakeStore struct {
	saveErr   error
	linkEmpty bool
	uploads   []string
	saved     []artifact.SaveImageInput
}

func (f *fakeStore) UploadAndLink(_ context.Context, data []byte, key, bucket string, _ bool) string {
	f.uploads = append(f.uploads, bucket+"/"+key)
	if f.linkEmpty {
		return ""
	}
	return "https://cdn.example/" + key
}

func (f *fakeStore) SaveImage(_ context.Context, in artifact.SaveImageInput) (domain.GeneratedAsset, error) {
	if f.saveErr != nil {
		return domain.GeneratedAsset{}, f.saveErr
	}
	f.saved = append(f.saved, in)
	return domain.GeneratedAsset{ID: fmt.Sprintf("asset-%d", len(f.saved)), MoodboardID: in.MoodboardID}, nil
}

type fakePublisher struct {
	err     error
	targets []string
	events  []domain.PublishEvent
}

func (f *fakePublisher) Publish(_ context.Context, target string, event domain.PublishEvent) error {
	if f.err != nil {
		return f.err
	}
	f.targets = append(f.targets, target)
	f.events = append(f.events, event)
	return nil
}

var resolver = publish.Resolver{FunctionName: "PublishResultsViaAppSync"}

const adCopyRequest = `{
  "context": "shoes_watercolor",
  "requestorId": "user-42",
  "rekognitionResults": {
    "Labels": [{"Name": "Shoe", "Confidence": 99.1}, {"Name": "Lace", "Confidence": 80.2}],
    "ImageProperties": {"DominantColors": [{"HexCode": "#112233"}, {"HexCode": "#ABCDEF"}]}
  }
}`

func newAdCopy(t *testing.T, gen *fakeText, pub *fakePublisher) *AdCopyPipeline {
	t.Helper()
	p, err := NewAdCopyPipeline(AdCopyOptions{Generator: gen, Publisher: pub, Resolver: resolver, Metrics: metrics.NewRecorder("pipeline_test")})
	require.NoError(t, err)
	return p
}

func TestAdCopyPipelinePublishesEnrichedAnswer(t *testing.T) {
	gen := &fakeText{reply: "Here you go:\n{\"tagline\":\"Step {up}\",\"font\":\"Lato\",\"pitch\":\"Walk on air.\"}\nAnything else?"}
	pub := &fakePublisher{}
	p := newAdCopy(t, gen, pub)

	ack, err := p.Run(context.Background(), Invocation{FunctionARN: invokedARN}, json.RawMessage(adCopyRequest))
	require.NoError(t, err)
	assert.JSONEq(t, adCopyRequest, string(ack))

	wantPrompt := prompt.BuildTextPrompt("shoes", []string{"Shoe", "Lace"})
	require.Equal(t, []string{wantPrompt}, gen.prompts)
	assert.Equal(t, prompt.SystemInstruction, gen.system)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "arn:aws:lambda:eu-west-1:123456789012:function:PublishResultsViaAppSync", pub.targets[0])

	event := pub.events[0]
	assert.Equal(t, "user-42", event.ID)
	assert.Equal(t, "ad-copy-generation", event.Domain)
	assert.Equal(t, "shoes;watercolor", event.Prompt)
	assert.Equal(t, "bedrock", event.SourceType)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20240620-v1:0", event.SourceID)
	assert.JSONEq(t, `[{"Name": "Shoe", "Confidence": 99.1}, {"Name": "Lace", "Confidence": 80.2}]`, event.Entities)

	content := gjson.Parse(event.Content)
	assert.Equal(t, "Step {up}", content.Get("tagline").String())
	assert.Equal(t, "Lato", content.Get("font").String())
	assert.Equal(t, "Walk on air.", content.Get("pitch").String())
	assert.Equal(t, `["#112233","#ABCDEF"]`, content.Get("domColors").Raw)
	assert.Equal(t, wantPrompt, content.Get("originalPrompt").String())
}

func TestAdCopyPipelineDefaultsStyle(t *testing.T) {
	gen := &fakeText{reply: `{"tagline":"a","font":"b","pitch":"c"}`}
	pub := &fakePublisher{}
	p := newAdCopy(t, gen, pub)

	raw := `{"context":"bakery","requestorId":"r","rekognitionResults":{"Labels":[],"ImageProperties":{"DominantColors":[]}}}`
	_, err := p.Run(context.Background(), Invocation{}, json.RawMessage(raw))
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "bakery;photographic", pub.events[0].Prompt)
	assert.Equal(t, "PublishResultsViaAppSync", pub.targets[0])
}

func TestAdCopyPipelineFailures(t *testing.T) {
	cases := []struct {
		name    string
		request string
		gen     *fakeText
		pub     *fakePublisher
		want    error
	}{
		{name: "malformed request", request: `{"context":1}`, gen: &fakeText{}, pub: &fakePublisher{}, want: domain.ErrMalformedInput},
		{name: "backend down", request: adCopyRequest, gen: &fakeText{err: fmt.Errorf("converse: %w", domain.ErrBackendUnavailable)}, pub: &fakePublisher{}, want: domain.ErrBackendUnavailable},
		{name: "no json in reply", request: adCopyRequest, gen: &fakeText{reply: "I cannot help with that."}, pub: &fakePublisher{}, want: domain.ErrResponseParse},
		{name: "publish fails", request: adCopyRequest, gen: &fakeText{reply: `{"tagline":"x"}`}, pub: &fakePublisher{err: fmt.Errorf("invoke: %w", domain.ErrDispatch)}, want: domain.ErrDispatch},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			p := newAdCopy(t, tc.gen, tc.pub)
			ack, err := p.Run(context.Background(), Invocation{FunctionARN: invokedARN}, json.RawMessage(tc.request))
			require.ErrorIs(t, err, tc.want)
			assert.Nil(t, ack)
			assert.Empty(t, tc.pub.events)
		})
	}
}

func newImagePipeline(t *testing.T, gen *fakeImage, store *fakeStore, pub *fakePublisher, schema prompt.Schema) *ImagePipeline {
	t.Helper()
	p, err := NewImagePipeline(ImageOptions{
		Generator: gen,
		Store:     store,
		Publisher: pub,
		Resolver:  resolver,
		Bucket:    "moodboard-images",
		Schema:    schema,
		Metrics:   metrics.NewRecorder("pipeline_test"),
	})
	require.NoError(t, err)
	return p
}

const twoTermRequest = `{"type":"generated","terms":["red sneaker","blue sneaker"],"spec":"summer sale","id":"board-1"}`

func TestImagePipelineReturnsLastPayload(t *testing.T) {
	gen, store, pub := &fakeImage{}, &fakeStore{}, &fakePublisher{}
	p := newImagePipeline(t, gen, store, pub, prompt.SchemaLegacy)

	resp, err := p.Run(context.Background(), Invocation{FunctionARN: invokedARN}, json.RawMessage(twoTermRequest))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.NotNil(t, resp.Body)
	require.Len(t, pub.events, 2)
	assert.Equal(t, pub.events[1], *resp.Body)
	assert.Equal(t, "blue sneaker", resp.Body.Prompt)

	assert.Equal(t, []string{
		"moodboard-images/red_sneaker__summer_saleboard-1.png",
		"moodboard-images/blue_sneaker__summer_saleboard-1.png",
	}, store.uploads)

	event := pub.events[0]
	assert.Equal(t, "board-1", event.ID)
	assert.Equal(t, "advertising-moodboard", event.Domain)
	assert.Equal(t, "stability.sd3-large-v1:0", event.SourceID)
	assert.JSONEq(t, `["red sneaker","blue sneaker"]`, event.Entities)

	var content domain.ImageContent
	require.NoError(t, json.Unmarshal([]byte(event.Content), &content))
	require.Len(t, content.Results, 1)
	result := content.Results[0]
	assert.Equal(t, "generated", content.Type)
	assert.Equal(t, "https://cdn.example/red_sneaker__summer_saleboard-1.png", result.Original)
	assert.Equal(t, result.Original, result.Thumbnail)
	assert.Equal(t, "", result.Base64)
	assert.Equal(t, "SUCCESS", result.FinishReason)
	assert.Equal(t, "asset-1", result.AssetPartID)
	assert.Equal(t, "board-1", result.AssetID)
	assert.Equal(t, []domain.TextPrompt{{Text: "red sneaker"}}, result.FullPrompt.TextPrompts)

	require.Len(t, store.saved, 2)
	saved := store.saved[0]
	assert.Equal(t, "photographic", saved.Style)
	assert.Equal(t, "red_sneaker__summer_saleboard-1.png", saved.Key)
	assert.Equal(t, string(gen.bodies[0]), saved.FullPrompt)
	assert.Equal(t, "photographic-style image of red sneaker", gjson.Get(saved.FullPrompt, "prompt").String())
}

func TestImagePipelinePersistenceFailureStopsRun(t *testing.T) {
	gen := &fakeImage{}
	store := &fakeStore{saveErr: fmt.Errorf("put item: %w", domain.ErrPersistence)}
	pub := &fakePublisher{}
	p := newImagePipeline(t, gen, store, pub, prompt.SchemaLegacy)

	resp, err := p.Run(context.Background(), Invocation{FunctionARN: invokedARN}, json.RawMessage(twoTermRequest))
	require.NoError(t, err)
	assert.Equal(t, domain.ImageResponse{StatusCode: 400, Message: "Failed to generate image"}, resp)
	assert.Len(t, gen.bodies, 1, "second term must not be attempted")
	assert.Empty(t, pub.events)
}

func TestImagePipelinePublishFailureStopsRun(t *testing.T) {
	gen, store := &fakeImage{}, &fakeStore{}
	pub := &fakePublisher{err: fmt.Errorf("invoke: %w", domain.ErrDispatch)}
	p := newImagePipeline(t, gen, store, pub, prompt.SchemaLegacy)

	resp, err := p.Run(context.Background(), Invocation{FunctionARN: invokedARN}, json.RawMessage(twoTermRequest))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Len(t, store.saved, 1)
	assert.Len(t, gen.bodies, 1)
}

func TestImagePipelineGenerationFailureIsFatal(t *testing.T) {
	gen := &fakeImage{err: fmt.Errorf("invoke model: %w", domain.ErrBackendUnavailable)}
	store, pub := &fakeStore{}, &fakePublisher{}
	p := newImagePipeline(t, gen, store, pub, prompt.SchemaLegacy)

	_, err := p.Run(context.Background(), Invocation{FunctionARN: invokedARN}, json.RawMessage(twoTermRequest))
	require.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Empty(t, store.uploads)
	assert.Empty(t, pub.events)
}

func TestImagePipelineRewritesGoogleImages(t *testing.T) {
	gen, store, pub := &fakeImage{}, &fakeStore{}, &fakePublisher{}
	p := newImagePipeline(t, gen, store, pub, prompt.SchemaLegacy)

	raw := `{"type":"google_images","terms":["tea","coffee"],"spec":"menu","id":"b"}`
	resp, err := p.Run(context.Background(), Invocation{}, json.RawMessage(raw))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	first := gjson.Parse(pub.events[0].Content)
	assert.Equal(t, "imagery", first.Get("type").String())
	assert.Equal(t, "google_images", first.Get("results.0.partType").String())
	assert.Equal(t, "google_images", store.saved[0].PartType)

	second := gjson.Parse(pub.events[1].Content)
	assert.Equal(t, "imagery", second.Get("type").String())
	assert.Equal(t, "imagery", second.Get("results.0.partType").String())
	assert.Equal(t, "imagery", store.saved[1].PartType)
}

func TestImagePipelineStructuredSchema(t *testing.T) {
	gen, store, pub := &fakeImage{}, &fakeStore{}, &fakePublisher{}
	p := newImagePipeline(t, gen, store, pub, prompt.SchemaColorGuided)

	raw := `{"type":"generated","assetType":"feature-image","color_scheme":"[\"#FF0000\"]","terms":["loft"],"spec":"s","id":"b"}`
	_, err := p.Run(context.Background(), Invocation{}, json.RawMessage(raw))
	require.NoError(t, err)
	require.Len(t, gen.bodies, 1)

	body := gjson.ParseBytes(gen.bodies[0])
	assert.Equal(t, "COLOR_GUIDED_GENERATION", body.Get("taskType").String())
	assert.Equal(t, `["#FF0000"]`, body.Get("colorGuidedGenerationParams.colors").Raw)
	assert.EqualValues(t, 1152, body.Get("imageGenerationConfig.height").Int())
	assert.Equal(t, "feature-image", pub.events[0].Domain)
}

func TestImagePipelineMalformedRequest(t *testing.T) {
	p := newImagePipeline(t, &fakeImage{}, &fakeStore{}, &fakePublisher{}, prompt.SchemaLegacy)
	_, err := p.Run(context.Background(), Invocation{}, json.RawMessage(`{"type":"x","terms":[],"spec":"s","id":"i"}`))
	require.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestImagePipelineEmptyLinkStillPersistsAndPublishes(t *testing.T) {
	gen, store, pub := &fakeImage{}, &fakeStore{linkEmpty: true}, &fakePublisher{}
	p := newImagePipeline(t, gen, store, pub, prompt.SchemaLegacy)

	resp, err := p.Run(context.Background(), Invocation{FunctionARN: invokedARN}, json.RawMessage(twoTermRequest))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Len(t, store.saved, 2)
	assert.Equal(t, "", store.saved[0].Original)
	assert.Equal(t, "", store.saved[0].Thumbnail)
	require.Len(t, pub.events, 2)

	var content domain.ImageContent
	require.NoError(t, json.Unmarshal([]byte(pub.events[0].Content), &content))
	require.Len(t, content.Results, 1)
	assert.Equal(t, "", content.Results[0].Original)
	assert.Equal(t, "", content.Results[0].Thumbnail)
}
