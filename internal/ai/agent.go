package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"quote-to-cash/internal/core"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// Drafter turns a free-text quote request into a structured draft.
type Drafter interface {
	DraftQuote(ctx context.Context, request string, customers []core.Customer, products []core.Product) (*core.DraftRequest, error)
}

type Agent struct {
	client *openai.Client
	model  string
}

var _ Drafter = (*Agent)(nil)

func NewAgent(apiKey, model string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	if model == "" {
		model = string(shared.ChatModelGPT4o)
	}
	return &Agent{client: &client, model: model}
}

func (a *Agent) DraftQuote(ctx context.Context, request string, customers []core.Customer, products []core.Product) (*core.DraftRequest, error) {
	if strings.TrimSpace(request) == "" {
		return nil, fmt.Errorf("%w: empty quote request", core.ErrInvalidInput)
	}

	schemaMap, err := draftSchema()
	if err != nil {
		return nil, err
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(a.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(buildPrompt(request, customers, products)),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "quote_draft",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A sales quote drafted from a customer request"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}
	return ParseDraft(content)
}

// ParseDraft decodes, normalizes and validates model output.
func ParseDraft(content string) (*core.DraftRequest, error) {
	var draft core.DraftRequest
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("draft validation failed: %w", err)
	}
	return &draft, nil
}
