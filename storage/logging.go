package storage

import (
	"github.com/streamingfast/logging"
)

var zlog, _ = logging.PackageLogger("storage", "github.com/benblamey/HasteStorageClient/storage")
