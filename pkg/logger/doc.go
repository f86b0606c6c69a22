// Package logger provides structured logging for rblxlocate on top of zerolog.
//
// Log output goes to stderr (and optionally a file) so that standard output
// carries only join scripts. The level defaults to warn.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("place_id", placeID)
//	log.DebugWithFields("Instance page scanned", map[string]interface{}{
//	    "start_index": "20",
//	    "players":     37,
//	})
//
// Tests use NewTestLogger to capture messages or NewNopLogger to discard them.
package logger
