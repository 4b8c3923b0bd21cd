// Package prompt assembles the model-input message sequence from catalog
// data, store persona fields, and bounded conversation history.
package prompt

import (
	"fmt"
	"strings"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

// BuildSystemPrompt renders the grounding instruction block: the assistant
// persona bound to the store, one enumerated line per product in catalog
// order, and the fixed policy guidelines. It is regenerated per request
// because catalog state may change between turns.
func BuildSystemPrompt(products []contractx.Product, store contractx.Store) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a helpful customer support assistant for %s.\n", store.DisplayName(), storeLabel(store))
	if store.Tone != "" {
		fmt.Fprintf(&b, "Keep a %s tone.\n", store.Tone)
	}
	if store.Language != "" {
		fmt.Fprintf(&b, "Answer in %s.\n", store.Language)
	}
	b.WriteString("ONLY recommend products from the catalog below.\n")

	b.WriteString("\nPRODUCT CATALOG:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "• %s - %s (%s): %s\n", p.Name, p.Price, p.Category, p.Description)
	}

	b.WriteString("\nGUIDELINES:\n")
	b.WriteString("- Do not invent or suggest items not listed above; recommend products by name and price.\n")
	b.WriteString("- When asked about shipping or returns, refer the customer to the store's shipping and returns policy.\n")
	b.WriteString("- If you do not know the answer, say so and offer to connect the customer with human support.\n")
	b.WriteString("- Check the catalog's inventory before claiming an item is available.\n")

	return b.String()
}

// BuildMessages produces the full sequence presented to the model: one
// system message, at most historyLimit history turns (most recent, order
// preserved), then the new user message.
func BuildMessages(products []contractx.Product, store contractx.Store, history []contractx.Message, userMessage string, historyLimit int) []contractx.Turn {
	if historyLimit > 0 && len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	turns := make([]contractx.Turn, 0, len(history)+2)
	turns = append(turns, contractx.Turn{
		Role:    contractx.RoleSystem,
		Content: BuildSystemPrompt(products, store),
	})
	for _, msg := range history {
		turns = append(turns, contractx.Turn{Role: msg.Role, Content: msg.Content})
	}
	turns = append(turns, contractx.Turn{Role: contractx.RoleUser, Content: userMessage})
	return turns
}

func storeLabel(store contractx.Store) string {
	if store.Name != "" {
		return store.Name
	}
	return "this store"
}
