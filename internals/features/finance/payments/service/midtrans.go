package service

import (
	invoiceModel "tutorflow_backend/internals/features/finance/invoices/model"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

var SnapClient snap.Client

// Chamar no bootstrap da aplicação (sandbox).
func InitMidtrans(serverKey string) {
	SnapClient.New(serverKey, midtrans.Sandbox)
}

// Gera token Snap + redirect_url para pagamento de uma fatura.
func GenerateSnapToken(inv *invoiceModel.InvoiceModel, studentName, studentEmail string) (string, string, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  inv.InvoiceOrderID,
			GrossAmt: inv.InvoiceAmountCents / 100,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: studentName,
			Email: studentEmail,
		},
	}

	resp, err := SnapClient.CreateTransaction(req)
	if err != nil {
		return "", "", err
	}

	return resp.Token, resp.RedirectURL, nil
}
