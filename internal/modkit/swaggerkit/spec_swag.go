//go:build swag

package swaggerkit

import docs "stealthbridge/internal/services/api/docs"

func init() {
	docReader = func() string { return docs.SwaggerInfo.ReadDoc() }
}
