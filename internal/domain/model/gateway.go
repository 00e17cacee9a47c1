package model

// GatewayState is the gateway's own view of an invoice.
type GatewayState struct {
	InvoiceID   int64
	ResultCode  int
	StateCode   int
	Description string
}

// Paid reports whether the gateway considers the invoice paid.
func (s GatewayState) Paid() bool {
	return s.ResultCode == 0 && s.StateCode == 100
}
