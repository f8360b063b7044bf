package wallet

// Log messages
const (
	LogMsgSpendPosted       = "Wallet spend posted"
	LogMsgTransferCreated   = "Transfer created"
	LogMsgTransferCompleted = "Transfer completed"
	LogMsgTransferFailed    = "Transfer marked failed"
	LogMsgTransferCancelled = "Transfer cancelled"
)

// Error messages
const (
	ErrMsgCategoryNotSpendable = "category is not spendable"
	ErrMsgUnknownCategory      = "unknown point category"
	ErrMsgAmountNotPositive    = "amount must be positive"
)

// DefaultTransactionLimit bounds transaction listings when no limit is given.
const DefaultTransactionLimit = 50
