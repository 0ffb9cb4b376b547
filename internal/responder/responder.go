// Package responder generates automated replies to customer messages.
package responder

import (
	"context"
	"fmt"
	"strings"
)

// Engine produces a reply for a customer message. text is the raw message
// body; contact is the sender's phone number, available for engines that
// keep per-contact context. Implementations must be safe for concurrent use.
type Engine interface {
	Reply(ctx context.Context, text, contact string) (string, error)
}

// Rule maps a set of trigger substrings to a canned response. Matching is
// case-insensitive; the first rule with any matching trigger wins.
type Rule struct {
	Triggers []string
	Response string
}

// DefaultRules returns the stock rule set for the store attendant.
func DefaultRules() []Rule {
	return []Rule{
		{
			Triggers: []string{"olá", "oi", "bom dia", "boa tarde"},
			Response: "Olá! Como posso ajudar você hoje?",
		},
		{
			Triggers: []string{"preço", "valor", "custo"},
			Response: "Temos vários produtos com diferentes preços. Poderia me dizer qual produto específico você está interessado?",
		},
		{
			Triggers: []string{"entrega", "prazo"},
			Response: "Nosso prazo de entrega é de 3 a 5 dias úteis após a confirmação do pagamento.",
		},
		{
			Triggers: []string{"pagamento", "pagar"},
			Response: "Aceitamos cartão de crédito, boleto bancário e PIX. Qual forma de pagamento você prefere?",
		},
		{
			Triggers: []string{"tamanho", "medida"},
			Response: "Temos tamanhos P, M, G e GG disponíveis. Qual tamanho você precisa?",
		},
	}
}

// Keyword is the deterministic rule-based engine.
type Keyword struct {
	rules []Rule
}

// NewKeyword creates a keyword engine. With no rules it uses DefaultRules.
func NewKeyword(rules ...Rule) *Keyword {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Keyword{rules: rules}
}

// Reply matches text against the ordered rules and falls back to a
// default response that echoes the original message.
func (k *Keyword) Reply(_ context.Context, text, _ string) (string, error) {
	lower := strings.ToLower(text)

	for _, rule := range k.rules {
		for _, trigger := range rule.Triggers {
			if strings.Contains(lower, trigger) {
				return rule.Response, nil
			}
		}
	}

	return fmt.Sprintf("Obrigado pelo seu contato. Como posso ajudar com sua dúvida sobre \"%s\"?", text), nil
}
