package logs

import logging "github.com/ipfs/go-log/v2"

// SetAllLoggers sets the level of every logger, keeping the chattiest dependencies quieter.
func SetAllLoggers(level logging.LogLevel) {
	logging.SetAllLoggers(level)
	// go-jsonrpc internals
	_ = logging.SetLogLevel("rpc", "WARN")
	_ = logging.SetLogLevel("badger", "WARN")
}
