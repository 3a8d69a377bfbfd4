package main

import (
	"github.com/lunchact/Waves/logger"
)

var log = logger.RegisterSubSystem("WVSD")
