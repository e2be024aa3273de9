package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/repository"
)

// Completer is the external text-completion collaborator. The session id
// keys conversational state on the collaborator's side.
type Completer interface {
	Complete(ctx context.Context, sessionID, system, user string) (string, error)
}

// FallbackReply is returned whenever the collaborator fails or times out.
// This is the one place errors are swallowed instead of surfaced.
const FallbackReply = "I apologize, but I'm having trouble processing your request right now. Please try again later or contact support."

const completionTimeout = 30 * time.Second

type AssistantService struct {
	completer Completer
	products  repository.ProductRepo
	orders    repository.OrderRepo
}

func NewAssistantService(completer Completer, products repository.ProductRepo, orders repository.OrderRepo) *AssistantService {
	return &AssistantService{completer: completer, products: products, orders: orders}
}

// Answer builds a bounded context block (catalog, credit summary, recent
// orders) and forwards the question. Any failure, including the context
// reads, degrades to the fixed fallback message.
func (s *AssistantService) Answer(ctx context.Context, dealer *domain.Dealer, question string) string {
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	system, err := s.buildContext(ctx, dealer)
	if err != nil {
		slog.Error("assistant context build failed", "dealer_id", dealer.ID, "err", err)
		return FallbackReply
	}

	reply, err := s.completer.Complete(ctx, "dealer_"+dealer.ID, system, question)
	if err != nil {
		slog.Error("assistant completion failed", "dealer_id", dealer.ID, "err", err)
		return FallbackReply
	}
	return reply
}

func (s *AssistantService) buildContext(ctx context.Context, dealer *domain.Dealer) (string, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return "", err
	}
	orders, err := s.orders.ListByDealer(ctx, dealer.ID)
	if err != nil {
		return "", err
	}
	if len(orders) > 5 {
		orders = orders[:5]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI assistant for HumSafar Cement, helping dealer %s from %s.\n\n", dealer.Name, dealer.BusinessName)

	b.WriteString("Available Products:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s: %s per %s (Grade: %s, Stock: %d)\n",
			p.Name, domain.Rupees(p.Price), p.Packaging, p.Grade, p.Stock)
	}

	fmt.Fprintf(&b, "\nDealer Information:\n- Credit Limit: %s\n- Outstanding Balance: %s\n- Available Credit: %s\n",
		domain.Rupees(dealer.CreditLimit), domain.Rupees(dealer.Outstanding), domain.Rupees(dealer.AvailableCredit()))

	if len(orders) > 0 {
		b.WriteString("\nRecent orders:\n")
		for i, o := range orders {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "- Order %s: %s, Status: %s\n", o.OrderNumber, domain.Rupees(o.TotalAmount), o.OrderStatus)
		}
	}

	b.WriteString(`
Help the dealer with:
1. Product information and recommendations
2. Order status and history
3. Credit and payment information
4. General support and queries

Be helpful, professional, and provide accurate information based on the context above.`)

	return b.String(), nil
}
