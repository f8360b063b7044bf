package postgres

// Error message formats for repository failures
const (
	ErrMsgQueryFailed   = "%w: %s query failed: %v"
	ErrMsgScanFailed    = "%w: %s scan failed: %v"
	ErrMsgExecFailed    = "%w: %s exec failed: %v"
	ErrMsgMarshalJSON   = "%w: %s marshal failed: %v"
	ErrMsgBeginTxFailed = "%w: begin transaction failed: %v"
)

// Postgres error code for unique constraint violations
const uniqueViolationCode = "23505"
