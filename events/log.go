package events

import (
	"github.com/lunchact/Waves/logger"
)

var log = logger.RegisterSubSystem("EVNT")
