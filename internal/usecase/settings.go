package usecase

import (
	"time"

	"github.com/polkiloo/pdfshop/internal/config"
)

// PaymentSettings carries merchant credentials and public URLs used by the
// payment flows.
type PaymentSettings struct {
	MerchantLogin string
	Password1     string
	Password2     string
	PaymentURL    string
	Culture       string
	TestMode      bool
	PublicBaseURL string
	SiteURL       string
	TokenTTL      time.Duration
	BlobURLTTL    time.Duration
}

// NewPaymentSettings extracts payment settings from config.
func NewPaymentSettings(cfg *config.Config) PaymentSettings {
	return PaymentSettings{
		MerchantLogin: cfg.MerchantLogin,
		Password1:     cfg.MerchantPass1,
		Password2:     cfg.MerchantPass2,
		PaymentURL:    cfg.PaymentURL,
		Culture:       cfg.PaymentCulture,
		TestMode:      cfg.PaymentTestMode,
		PublicBaseURL: cfg.PublicBaseURL,
		SiteURL:       cfg.SiteURL,
		TokenTTL:      cfg.DownloadTokenTTL,
		BlobURLTTL:    cfg.BlobURLTTL,
	}
}
