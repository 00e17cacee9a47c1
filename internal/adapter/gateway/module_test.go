package gateway

import (
	"testing"

	"github.com/polkiloo/pdfshop/internal/config"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{
		GatewayStateURL: "https://gateway.example.com/OpStateExt",
		MerchantLogin:   "demo",
		MerchantPass2:   "pass2",
	}
	client, err := newClient(clientParams{Config: cfg, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	httpClient, ok := client.(*HTTPClient)
	if !ok {
		t.Fatalf("expected *HTTPClient, got %T", client)
	}
	if httpClient.merchantLogin != "demo" || httpClient.password2 != "pass2" {
		t.Fatalf("unexpected credentials: %+v", httpClient)
	}
}
