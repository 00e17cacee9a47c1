package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/pdfshop/internal/config"
	pkgAuth "github.com/polkiloo/pdfshop/internal/pkg/auth"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewPaymentSettings,
	newAuthUseCase,
	NewCheckoutUseCase,
	NewCallbackUseCase,
	NewDownloadUseCase,
	NewAdminUseCase,
)

func newAuthUseCase(cfg *config.Config, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return NewAuthUseCase(cfg.AdminPasswordHash, hasher, strategy)
}
