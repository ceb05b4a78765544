package browser

import (
	"context"
	"fmt"
	"strconv"

	"invoiceflow/internal/models"

	"github.com/chromedp/chromedp"
)

// QuickbooksSubmitter files an invoice as an expense in QuickBooks Online.
type QuickbooksSubmitter struct{}

func (s *QuickbooksSubmitter) Provider() models.Provider { return models.ProviderQuickbooks }

func (s *QuickbooksSubmitter) SubmitInvoice(ctx context.Context, page *Page, creds *models.Credentials, inv *models.Invoice, fileName string, fileData []byte) error {
	err := page.Run(
		chromedp.Navigate("https://qbo.intuit.com/app/login"),
		chromedp.WaitVisible(`input#ius-userid`, chromedp.ByQuery),
		chromedp.SendKeys(`input#ius-userid`, creds.Login(), chromedp.ByQuery),
		chromedp.SendKeys(`input#ius-password`, creds.Password, chromedp.ByQuery),
		chromedp.Click(`button#ius-sign-in-submit-btn`, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("quickbooks login failed: %w", err)
	}

	err = page.Run(
		chromedp.Navigate("https://qbo.intuit.com/app/expenses"),
		chromedp.WaitVisible(`button[data-testid="add-expense-btn"]`, chromedp.ByQuery),
		chromedp.Click(`button[data-testid="add-expense-btn"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`input[data-testid="vendor-input"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[data-testid="vendor-input"]`, inv.Vendor, chromedp.ByQuery),
		chromedp.SendKeys(`input[data-testid="amount-input"]`, strconv.FormatFloat(inv.Amount, 'f', 2, 64), chromedp.ByQuery),
		chromedp.SendKeys(`input[data-testid="date-input"]`, inv.IssueDate.Format("2006-01-02"), chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("quickbooks expense form failed: %w", err)
	}

	if len(fileData) > 0 {
		if err := page.AttachFile(fileName, fileData); err != nil {
			return fmt.Errorf("quickbooks attachment failed: %w", err)
		}
	}

	if err := page.Run(chromedp.Click(`button[data-testid="expense-save-btn"]`, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("quickbooks save failed: %w", err)
	}

	return nil
}
