package domain

// PaymentMethod is the means by which a transaction was paid.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCard         PaymentMethod = "CARD"
	PaymentBankDeposit  PaymentMethod = "BANK_DEPOSIT"
	PaymentQR           PaymentMethod = "QR"
)

// AllPaymentMethods lists every recognized payment method.
var AllPaymentMethods = []PaymentMethod{
	PaymentCash,
	PaymentBankTransfer,
	PaymentCard,
	PaymentBankDeposit,
	PaymentQR,
}

// paymentMethodRule captures the extra fields a payment method demands.
type paymentMethodRule struct {
	requiresBankName      bool
	requiresReceiptNumber bool
}

var paymentMethodRules = map[PaymentMethod]paymentMethodRule{
	PaymentCash:         {},
	PaymentBankTransfer: {requiresBankName: true, requiresReceiptNumber: true},
	PaymentCard:         {},
	PaymentBankDeposit:  {requiresReceiptNumber: true},
	PaymentQR:           {},
}

// Valid reports whether m is a recognized payment method.
func (m PaymentMethod) Valid() bool {
	_, ok := paymentMethodRules[m]
	return ok
}

// RequiresBankName reports whether the method demands the originating bank.
func (m PaymentMethod) RequiresBankName() bool {
	return paymentMethodRules[m].requiresBankName
}

// RequiresReceiptNumber reports whether the method demands an external
// receipt reference from the payer's bank.
func (m PaymentMethod) RequiresReceiptNumber() bool {
	return paymentMethodRules[m].requiresReceiptNumber
}
