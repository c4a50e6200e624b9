package emotion

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/agenthands/persona/internal/core/common"
	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/llm"
)

const responsesInstructions = "You label the emotional content of Reddit posts and comments. " +
	"Score each of sadness, joy, love, anger, fear and surprise between 0 and 1."

// Responder sends one Responses API request and returns the output text.
type Responder interface {
	Respond(ctx context.Context, params responses.ResponseNewParams) (string, error)
}

type openAIResponder struct {
	client *openai.Client
}

// NewOpenAIResponder talks to the OpenAI Responses API.
func NewOpenAIResponder(apiKey string) Responder {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openAIResponder{client: &client}
}

func (r *openAIResponder) Respond(ctx context.Context, params responses.ResponseNewParams) (string, error) {
	resp, err := r.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}

// ResponsesClassifier requests strict structured output so every label is present.
type ResponsesClassifier struct {
	responder Responder
	model     string
	retry     llm.RetryConfig
	schema    map[string]any
	opts      options
}

func NewResponsesClassifier(responder Responder, modelName string, retry llm.RetryConfig, opts ...Option) *ResponsesClassifier {
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	return &ResponsesClassifier{
		responder: responder,
		model:     modelName,
		retry:     retry,
		schema:    GenerateSchema[labelScores](),
		opts:      buildOptions(opts),
	}
}

func (c *ResponsesClassifier) Classify(ctx context.Context, text string) (model.EmotionDistribution, error) {
	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(200),
		Instructions:    openai.String(responsesInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(c.opts.truncate(text), responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "EmotionScores",
					Schema:      c.schema,
					Strict:      openai.Bool(true),
					Description: openai.String("Per-label emotion scores"),
					Type:        "json_schema",
				},
			},
		},
	}

	out, err := llm.Call(ctx, c.retry, llm.CapabilityGenerate, func(ctx context.Context) (string, error) {
		return c.responder.Respond(ctx, params)
	})
	if err != nil {
		return model.EmotionDistribution{}, err
	}

	var scores labelScores
	if err := json.Unmarshal([]byte(out), &scores); err != nil {
		return model.EmotionDistribution{}, fmt.Errorf("unmarshal emotion scores: %w (model_output_prefix=%q)", err, common.Truncate(out, 200))
	}
	return Normalize(scores.raw())
}

// GenerateSchema reflects T into a JSON schema accepted by strict structured output.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	ensureStrict(m)
	return m
}

// ensureStrict marks every object closed with all properties required.
func ensureStrict(schema map[string]any) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok && len(props) > 0 {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			sort.Strings(required)
			schema["required"] = required
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				ensureStrict(pm)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		ensureStrict(items)
	}
}
