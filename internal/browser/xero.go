package browser

import (
	"context"
	"fmt"
	"strconv"

	"invoiceflow/internal/models"

	"github.com/chromedp/chromedp"
)

// XeroSubmitter files an invoice as a bill in Xero.
type XeroSubmitter struct{}

func (s *XeroSubmitter) Provider() models.Provider { return models.ProviderXero }

func (s *XeroSubmitter) SubmitInvoice(ctx context.Context, page *Page, creds *models.Credentials, inv *models.Invoice, fileName string, fileData []byte) error {
	login := creds.Email
	if login == "" {
		login = creds.Username
	}

	err := page.Run(
		chromedp.Navigate("https://login.xero.com/"),
		chromedp.WaitVisible(`input[name="Username"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="Username"]`, login, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="Password"]`, creds.Password, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("xero login failed: %w", err)
	}

	err = page.Run(
		chromedp.Navigate("https://go.xero.com/AccountsPayable/Edit.aspx?invoiceType=ACCPAY"),
		chromedp.WaitVisible(`input#Contact_Name`, chromedp.ByQuery),
		chromedp.SendKeys(`input#Contact_Name`, inv.Vendor, chromedp.ByQuery),
		chromedp.SendKeys(`input#InvoiceNumber`, inv.InvoiceNumber, chromedp.ByQuery),
		chromedp.SendKeys(`input#InvoiceDate`, inv.IssueDate.Format("2006-01-02"), chromedp.ByQuery),
		chromedp.SendKeys(`input#DueDate`, inv.DueDate.Format("2006-01-02"), chromedp.ByQuery),
		chromedp.SendKeys(`input#TotalAmount`, strconv.FormatFloat(inv.Amount, 'f', 2, 64), chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("xero bill form failed: %w", err)
	}

	if len(fileData) > 0 {
		if err := page.AttachFile(fileName, fileData); err != nil {
			return fmt.Errorf("xero attachment failed: %w", err)
		}
	}

	if err := page.Run(chromedp.Click(`input#save-button`, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("xero save failed: %w", err)
	}

	return nil
}
