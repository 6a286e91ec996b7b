package interest

import (
	"github.com/streamingfast/logging"
)

var zlog, _ = logging.PackageLogger("interest", "github.com/benblamey/HasteStorageClient/interest")
