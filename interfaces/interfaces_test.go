package interfaces_test

import (
	"github.com/medverify/medverify-api/catalog"
	"github.com/medverify/medverify-api/gateway"
	"github.com/medverify/medverify-api/interfaces"
	"github.com/medverify/medverify-api/validation"
)

// Compile-time checks that the concrete implementations satisfy their contracts
var (
	_ interfaces.CatalogStore  = (*catalog.Container)(nil)
	_ interfaces.CatalogReader = (*catalog.Reader)(nil)
	_ interfaces.Importer      = (*catalog.Importer)(nil)
	_ interfaces.TextGateway   = (*gateway.Client)(nil)
	_ interfaces.Validator     = (*validation.InputValidator)(nil)
)
