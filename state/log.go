package state

import (
	"github.com/lunchact/Waves/logger"
)

var log = logger.RegisterSubSystem("STAT")
