package modkit

import (
	"stealthbridge/internal/modkit/repokit"
	"stealthbridge/internal/platform/config"
	"stealthbridge/internal/platform/logger"
	"stealthbridge/internal/platform/store"
)

// Deps are the shared handles every module constructor receives.
// PG and CH are nil when their backend is not configured.
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}
