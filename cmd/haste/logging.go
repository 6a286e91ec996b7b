package main

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.RootLogger("haste", "github.com/benblamey/HasteStorageClient/cmd/haste")

func init() {
	logging.InstantiateLoggers(logging.WithSwitcherServerAutoStart())
}
