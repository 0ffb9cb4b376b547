package responder

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `Você é o Junior, atendente virtual de uma loja online brasileira.
Responda em português, de forma curta e cordial.
Você pode informar: prazo de entrega de 3 a 5 dias úteis após a confirmação do pagamento;
formas de pagamento aceitas: cartão de crédito, boleto bancário e PIX;
tamanhos disponíveis: P, M, G e GG.
Se não souber a resposta, peça para o cliente aguardar um atendente humano.`

// OpenAI is a reply engine backed by a chat-completion model. It satisfies
// the same Engine contract as the keyword matcher, so the pipeline does
// not care which one is wired.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates the engine. An empty model selects GPT-4o mini.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (o *OpenAI) Reply(ctx context.Context, text, contact string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
