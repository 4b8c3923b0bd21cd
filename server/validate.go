package server

import (
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

const maxInputLength = 1000

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// sanitizeString strips HTML tags and caps length before user input reaches
// the model or a platform API.
func sanitizeString(value string) string {
	sanitized := htmlTagPattern.ReplaceAllString(value, "")
	if len(sanitized) > maxInputLength {
		sanitized = sanitized[:maxInputLength]
	}
	return sanitized
}

func validateOrderRequest(order contractx.OrderRequest) []string {
	var errs []string

	if len(order.Items) == 0 {
		errs = append(errs, "order must contain at least one item")
	}
	for i, item := range order.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			errs = append(errs, fmt.Sprintf("item at index %d is missing product_id", i))
		}
		if item.Quantity < 1 {
			errs = append(errs, fmt.Sprintf("item at index %d has invalid quantity", i))
		}
	}

	customer := order.Customer
	if strings.TrimSpace(customer.FirstName) == "" {
		errs = append(errs, "customer first_name is required")
	}
	if strings.TrimSpace(customer.LastName) == "" {
		errs = append(errs, "customer last_name is required")
	}
	switch {
	case strings.TrimSpace(customer.Email) == "":
		errs = append(errs, "customer email is required")
	case !emailPattern.MatchString(customer.Email):
		errs = append(errs, "customer email is invalid")
	}

	return errs
}
