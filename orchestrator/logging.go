package orchestrator

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("orchestrator", "github.com/benblamey/HasteStorageClient/orchestrator")
