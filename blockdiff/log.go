package blockdiff

import (
	"github.com/lunchact/Waves/logger"
)

var log = logger.RegisterSubSystem("BDIF")
