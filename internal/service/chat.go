package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ironabhi05/scatch-backend/internal/repository"
	apperrors "github.com/ironabhi05/scatch-backend/pkg/errors"
)

// Chat intents, matched in priority order.
const (
	intentGreet          = "greet"
	intentCheckPrice     = "check_price"
	intentProductDetails = "product_details"
	intentCheckStock     = "check_stock"
	intentForgotPassword = "forgot_password"
	intentOrderStatus    = "order_status"
	intentAddToCart      = "add_to_cart"
	intentRemoveFromCart = "remove_from_cart"
	intentViewCart       = "view_cart"
	intentCheckout       = "checkout"
	intentListCatalog    = "list_catalog"
	intentListOffers     = "list_offers"
	intentDeliveryInfo   = "delivery_info"
	intentReturnPolicy   = "return_policy"
	intentContactSupport = "contact_support"
	intentRegister       = "register"
	intentLogin          = "login"
	intentLogout         = "logout"
	intentSearchProduct  = "search_product"
	intentUnknown        = "unknown"
)

// intentRules pair an intent with the keyword pattern that triggers it. The
// slice order is the match priority, so "price of bag" resolves to a price
// check even though it also mentions a product.
var intentRules = []struct {
	intent  string
	pattern *regexp.Regexp
}{
	{intentGreet, regexp.MustCompile(`\b(hi|hello|hey|good morning|good afternoon|good evening)\b`)},
	{intentCheckPrice, regexp.MustCompile(`\b(price|cost|how much|rate|charges)\b`)},
	{intentProductDetails, regexp.MustCompile(`\b(details|description|info|information|tell me about|specs|features)\b`)},
	{intentCheckStock, regexp.MustCompile(`\b(stock|available|availability|in stock|out of stock|inventory|left)\b`)},
	{intentForgotPassword, regexp.MustCompile(`\b(reset|forget|forgot)\b.*\bpassword\b|\bpassword\b.*\b(reset|forget|forgot)\b`)},
	{intentOrderStatus, regexp.MustCompile(`\b(order status|track|tracking|where is my order|my order)\b`)},
	{intentAddToCart, regexp.MustCompile(`\b(add to cart|add item|put in cart)\b`)},
	{intentRemoveFromCart, regexp.MustCompile(`\b(remove|delete)\b.*\bcart\b`)},
	{intentViewCart, regexp.MustCompile(`\b(view cart|show cart|my cart|cart items)\b`)},
	{intentCheckout, regexp.MustCompile(`\b(checkout|place order|buy now|payment)\b`)},
	{intentListCatalog, regexp.MustCompile(`\b(categories|category|collection|collections|catalog)\b`)},
	{intentListOffers, regexp.MustCompile(`\b(offer|offers|discount|discounts|deal|deals|sale)\b`)},
	{intentDeliveryInfo, regexp.MustCompile(`\b(delivery|shipping|ship|deliver)\b`)},
	{intentReturnPolicy, regexp.MustCompile(`\b(return|refund|exchange|replacement)\b`)},
	{intentContactSupport, regexp.MustCompile(`\b(help|support|contact|customer care|assist|problem|issue)\b`)},
	{intentRegister, regexp.MustCompile(`\b(register|sign up|signup|create account)\b`)},
	{intentLogin, regexp.MustCompile(`\b(login|log in|signin|sign in)\b`)},
	{intentLogout, regexp.MustCompile(`\b(logout|log out|sign out)\b`)},
	{intentSearchProduct, regexp.MustCompile(`\b(search|find|looking for|show me|do you have)\b`)},
}

// productNamePattern pulls the product name out of phrases like
// "price of the classic tote" or "tell me about leather wallet".
var productNamePattern = regexp.MustCompile(`(?i)(?:of|for|about)\s+([a-zA-Z0-9\s\-]+)`)

// detectIntent classifies a chat message by keyword, first match wins.
func detectIntent(message string) string {
	normalized := strings.ToLower(strings.TrimSpace(message))
	for _, rule := range intentRules {
		if rule.pattern.MatchString(normalized) {
			return rule.intent
		}
	}
	return intentUnknown
}

// extractProductName returns the product name mentioned in the message, or
// an empty string when none is present.
func extractProductName(message string) string {
	match := productNamePattern.FindStringSubmatch(message)
	if len(match) < 2 {
		return ""
	}
	name := strings.TrimSpace(match[1])
	name = strings.TrimPrefix(name, "the ")
	return strings.TrimSpace(name)
}

// Canned chat replies.
const (
	chatReplyGreet          = "Hi, this is Scatchy! 👋 Welcome to Scatch Mart. Ask me about products, prices, orders, or anything else."
	chatReplyForgotPassword = "No worries! Use the forgot-password option on the login page and we will email you a one-time code to reset it."
	chatReplyOrderStatus    = "You can track your orders from the My Orders section of your account. Each item shows its current status there."
	chatReplyAddToCart      = "Open the product you like and tap Add to Cart. The item stays in your cart until you check out."
	chatReplyRemoveFromCart = "Open your cart and tap the remove button next to the item you no longer want."
	chatReplyViewCart       = "Your cart is available from the cart icon at the top of the page, with up-to-date prices for every item."
	chatReplyCheckout       = "Head to your cart and tap Place Order. We support cash on delivery and online payment."
	chatReplyListCatalog    = "You can browse our full catalog on the shop page. New arrivals land at the top."
	chatReplyListOffers     = "Discounted products show their offer price right on the product card. Keep an eye on the shop page for new deals."
	chatReplyDeliveryInfo   = "We deliver across the country, usually within 3 to 5 business days of confirmation."
	chatReplyReturnPolicy   = "Items can be returned within 7 days of delivery as long as they are unused and in original packaging."
	chatReplyContactSupport = "Our support team is happy to help. Reach us at support@scatchmart.example and we will get back to you within a day."
	chatReplyRegister       = "Tap Sign Up on the home page, fill in your name, email, and a password, and you are all set."
	chatReplyLogin          = "Use the Login option with your registered email and password to access your account."
	chatReplyLogout         = "You can log out anytime from your account menu."
	chatReplyAskName        = "Could you please tell me the product name you're interested in?"
	chatReplyFallback       = "I'm here to help with anything related to Scatch Mart products, orders, and support. Could you rephrase that for me?"
	chatReplyError          = "Sorry, something went wrong. Please try again later."
)

// ChatService answers customer messages with keyword intent detection and
// catalog lookups. It never fails toward the caller; lookup errors are
// logged and turned into a friendly reply.
type ChatService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewChatService creates a new chat service.
func NewChatService(products repository.ProductRepository, logger *slog.Logger) *ChatService {
	return &ChatService{
		products: products,
		logger:   logger,
	}
}

// Reply produces the assistant's answer to a single chat message.
func (s *ChatService) Reply(ctx context.Context, message string) string {
	intent := detectIntent(message)

	switch intent {
	case intentGreet:
		return chatReplyGreet
	case intentForgotPassword:
		return chatReplyForgotPassword
	case intentOrderStatus:
		return chatReplyOrderStatus
	case intentAddToCart:
		return chatReplyAddToCart
	case intentRemoveFromCart:
		return chatReplyRemoveFromCart
	case intentViewCart:
		return chatReplyViewCart
	case intentCheckout:
		return chatReplyCheckout
	case intentListCatalog:
		return chatReplyListCatalog
	case intentListOffers:
		return chatReplyListOffers
	case intentDeliveryInfo:
		return chatReplyDeliveryInfo
	case intentReturnPolicy:
		return chatReplyReturnPolicy
	case intentContactSupport:
		return chatReplyContactSupport
	case intentRegister:
		return chatReplyRegister
	case intentLogin:
		return chatReplyLogin
	case intentLogout:
		return chatReplyLogout
	case intentCheckPrice, intentProductDetails, intentCheckStock, intentSearchProduct:
		return s.productReply(ctx, intent, message)
	default:
		return chatReplyFallback
	}
}

// productReply handles the intents that need a catalog lookup.
func (s *ChatService) productReply(ctx context.Context, intent, message string) string {
	name := extractProductName(message)
	if name == "" {
		return chatReplyAskName
	}

	product, err := s.products.SearchByName(ctx, name)
	if err != nil {
		if apperrors.HTTPStatus(err) == 404 {
			return fmt.Sprintf("Sorry, I couldn't find %q in our store. Please check the product name or try searching for another item.", name)
		}
		s.logger.ErrorContext(ctx, "chat product lookup failed",
			slog.String("intent", intent),
			slog.String("product_name", name),
			slog.String("error", err.Error()),
		)
		return chatReplyError
	}

	switch intent {
	case intentCheckPrice:
		if product.Discount > 0 {
			return fmt.Sprintf("%s costs %s after a %d%% discount (regular price %s).",
				product.Name, formatPrice(product.DiscountedPrice()), product.Discount, formatPrice(product.Price))
		}
		return fmt.Sprintf("%s costs %s.", product.Name, formatPrice(product.Price))
	case intentProductDetails:
		if product.Discount > 0 {
			return fmt.Sprintf("%s is priced at %s with a %d%% discount, bringing it down to %s. You can see photos and add it to your cart from its product page.",
				product.Name, formatPrice(product.Price), product.Discount, formatPrice(product.DiscountedPrice()))
		}
		return fmt.Sprintf("%s is priced at %s. You can see photos and add it to your cart from its product page.",
			product.Name, formatPrice(product.Price))
	case intentCheckStock:
		return fmt.Sprintf("Good news! %s is available in our store right now.", product.Name)
	default:
		return fmt.Sprintf("We have %s in our store for %s. Open its product page for more details.",
			product.Name, formatPrice(product.DiscountedPrice()))
	}
}

// formatPrice renders a price stored in paise as rupees.
func formatPrice(price int64) string {
	return fmt.Sprintf("₹%d.%02d", price/100, price%100)
}
