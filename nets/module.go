package nets

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taistep/configs"
	"github.com/reusee/taistep/logs"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}
