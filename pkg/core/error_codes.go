package core

// Bitkub numeric error codes that callers are expected to branch on.
const (
	CodeOK                 = 0
	CodeAmountTooLow       = 15
	CodeInsufficientFunds  = 18
	CodeInvalidCancelOrder = 21
)

var codeMessages = map[int]string{
	1:  "invalid JSON payload",
	2:  "missing X-BTK-APIKEY",
	3:  "invalid API key",
	4:  "API pending for activation",
	5:  "IP not allowed",
	6:  "missing or invalid signature",
	7:  "missing timestamp",
	8:  "invalid timestamp",
	9:  "invalid user",
	10: "invalid parameter",
	11: "invalid symbol",
	12: "invalid amount",
	13: "invalid rate",
	14: "improper rate",
	15: "amount too low",
	16: "failed to get balance",
	17: "wallet is empty",
	18: "insufficient balance",
	19: "failed to insert order into db",
	20: "failed to deduct balance",
	21: "invalid order for cancellation",
	22: "invalid side",
	23: "failed to update order status",
	24: "invalid order for lookup",
	25: "KYC level 1 is required to proceed",
	30: "limit exceeds",
	40: "pending withdrawal exists",
	41: "invalid currency for withdrawal",
	42: "address is not in whitelist",
	43: "failed to deduct crypto",
	44: "failed to create withdrawal record",
	45: "nonce has to be numeric",
	46: "invalid nonce",
	47: "withdrawal limit exceeds",
	48: "invalid bank account",
	49: "bank limit exceeds",
	50: "pending withdrawal exists",
	51: "withdrawal is under maintenance",
	52: "invalid permission",
	53: "invalid internal address",
	54: "address has been deprecated",
	55: "cancel only mode",
	56: "user has been suspended from purchasing",
	57: "user has been suspended from selling",
	90: "server error",
}

// MessageForCode returns the documented description of a server error code.
func MessageForCode(code int) string {
	if msg, ok := codeMessages[code]; ok {
		return msg
	}
	return "unrecognized error code"
}

// ErrorTypeForCode maps a server error code to an ErrorType.
// Codes without a dedicated category map to ErrorTypeUnknown.
func ErrorTypeForCode(code int) ErrorType {
	switch code {
	case CodeAmountTooLow:
		return ErrorTypeAmountTooLow
	case CodeInsufficientFunds:
		return ErrorTypeInsufficientFunds
	case CodeInvalidCancelOrder, 24:
		return ErrorTypeInvalidOrder
	case 2, 3, 4, 5, 6, 7, 8, 9, 52:
		return ErrorTypeAuthentication
	case 1, 10, 11, 12, 13, 14, 22:
		return ErrorTypeBadRequest
	case 16, 19, 20, 23, 90:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}
