package datastore

import "strings"

// redactDSN hides the credential portion of a MySQL DSN so it can be logged.
// Input shape: user:pass@tcp(host:port)/dbname?params
func redactDSN(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return dsn
	}
	return "[REDACTED]" + dsn[at:]
}
