package cmd

import "fmt"

func humanizeBitRate(bitsPerSec float64) string {
	if bitsPerSec < 1e3 {
		return fmt.Sprintf("%.0f bit/s", bitsPerSec)
	}
	bitsPerSec /= 1e3
	if bitsPerSec < 1e3 {
		return fmt.Sprintf("%.1f kbit/s", bitsPerSec)
	}
	bitsPerSec /= 1e3
	if bitsPerSec < 1e3 {
		return fmt.Sprintf("%.1f Mbit/s", bitsPerSec)
	}
	bitsPerSec /= 1e3
	return fmt.Sprintf("%.1f Gbit/s", bitsPerSec)
}
