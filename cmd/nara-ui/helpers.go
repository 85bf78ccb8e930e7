package main

import (
	"fmt"

	"github.com/NARAProtocol/nara-simple-ui/pkg/types"
)

// formatWeiString renders a stored base-10 wei string as decimal NARA.
// Corrupt records render as "0" rather than surfacing raw bytes.
func formatWeiString(s string) string {
	wei, err := types.ParseWei(s)
	if err != nil {
		return "0"
	}
	return types.FormatNara(wei)
}

// formatCountdown renders epoch seconds remaining as m:ss.
func formatCountdown(seconds uint64) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
