package dto

// CheckoutRequest is the buyer's purchase intent.
type CheckoutRequest struct {
	BookID string `json:"bookId" binding:"required"`
	Email  string `json:"email" binding:"required"`
}

// CheckoutResponse points the buyer to the payment page.
type CheckoutResponse struct {
	RedirectURL string `json:"redirectUrl"`
	OrderID     string `json:"orderId"`
	Message     string `json:"message"`
}

// ErrorResponse is the JSON body of every failed JSON endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
