package triage

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("triage", "github.com/benblamey/HasteStorageClient/triage")
