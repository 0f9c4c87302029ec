package types

import "strings"

// ReceiptMode defines how receipts are awaited on an RPC endpoint.
type ReceiptMode int

const (
	// NewHeadMode checks for the receipt on every new block header (WebSocket endpoints).
	NewHeadMode ReceiptMode = iota
	// PollingMode checks for the receipt on a fixed interval (HTTP endpoints).
	PollingMode
)

// GetReceiptMode returns the receipt mode based on the RPC URL scheme.
func GetReceiptMode(rpcURL string) ReceiptMode {
	if strings.HasPrefix(rpcURL, "wss://") || strings.HasPrefix(rpcURL, "ws://") {
		return NewHeadMode
	}
	return PollingMode
}

func (m ReceiptMode) String() string {
	switch m {
	case NewHeadMode:
		return "NewHead"
	case PollingMode:
		return "Polling"
	default:
		return "Unknown"
	}
}
