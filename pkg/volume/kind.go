package volume

import (
	"os"

	"github.com/JMARyA/shfs/pkg/wire"
)

func kindOf(mode os.FileMode) wire.Kind {
	switch {
	case mode&os.ModeNamedPipe != 0:
		return wire.KindNamedPipe
	case mode&os.ModeCharDevice != 0:
		return wire.KindCharDevice
	case mode&os.ModeDevice != 0:
		return wire.KindBlockDevice
	case mode.IsDir():
		return wire.KindDirectory
	case mode&os.ModeSymlink != 0:
		return wire.KindSymlink
	case mode&os.ModeSocket != 0:
		return wire.KindSocket
	default:
		return wire.KindRegularFile
	}
}
