package evm

import (
	"context"

	"github.com/ClipFinance/testnet-bridge/connectionmonitor"
	"github.com/pkg/errors"
)

// evmConnectionManager implements the BlockchainClient interface and manages the connection to the node.
type evmConnectionManager struct {
	chain *evm // Reference to the EVM chain instance.
}

// initMonitor initializes and starts the connection monitor for the node.
//
// Parameters:
// - ctx: the context for managing the monitor lifetime.
//
// Returns:
// - error: an error if there is an issue starting the connection monitor.
func (e *evm) initMonitor(ctx context.Context) error {
	e.monitorMutex.Lock()
	defer e.monitorMutex.Unlock()

	connectionManager := &evmConnectionManager{chain: e}
	e.monitor = connectionmonitor.NewConnectionMonitor(connectionManager, e.logger, e.config.Name, connectionmonitor.DefaultOptions())
	return e.monitor.Start(ctx)
}

// CheckConnection checks the connection by retrieving the current block number.
//
// Parameters:
// - ctx: the context for managing the connection check.
//
// Returns:
// - error: an error if the client is not initialized or if there is an issue retrieving the block number.
func (w *evmConnectionManager) CheckConnection(ctx context.Context) error {
	client, err := w.chain.getClient()
	if err != nil {
		return err
	}

	_, err = client.BlockNumber(ctx)
	return err
}

// Reconnect dials the same RPC endpoint again and swaps the client in.
// The old client is closed only after the new one is connected.
//
// Parameters:
// - ctx: the context for managing the reconnection process.
//
// Returns:
// - error: an error if there is an issue dialing the new client.
func (w *evmConnectionManager) Reconnect(ctx context.Context) error {
	client, err := w.chain.dial(ctx, w.chain.config.RpcUrl)
	if err != nil {
		return errors.Wrap(err, "failed to dial rpc")
	}

	w.chain.clientMutex.Lock()
	old := w.chain.client
	w.chain.client = client
	w.chain.clientMutex.Unlock()

	if old != nil {
		old.Close()
	}

	return nil
}
