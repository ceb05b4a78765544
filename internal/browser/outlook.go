package browser

import (
	"context"
	"fmt"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/models"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// OutlookFetcher pulls invoice attachments out of an Outlook mailbox.
type OutlookFetcher struct{}

func (f *OutlookFetcher) Provider() models.Provider { return models.ProviderOutlook }

func (f *OutlookFetcher) FetchDocuments(ctx context.Context, page *Page, creds *models.Credentials) ([]string, []dto.ItemFailure, error) {
	err := page.Run(
		chromedp.Navigate("https://outlook.office.com/mail/"),
		chromedp.WaitVisible(`input[type="email"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[type="email"]`, creds.Email, chromedp.ByQuery),
		chromedp.Click(`input[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`input[type="password"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[type="password"]`, creds.Password, chromedp.ByQuery),
		chromedp.Click(`input[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`input[placeholder="Search"]`, chromedp.ByQuery),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("outlook login failed: %w", err)
	}

	err = page.Run(
		chromedp.SendKeys(`input[placeholder="Search"]`, "hasattachments:yes subject:invoice OR subject:receipt\n", chromedp.ByQuery),
		chromedp.WaitVisible(`div[role="list"]`, chromedp.ByQuery),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("outlook search failed: %w", err)
	}

	var files []string
	var failures []dto.ItemFailure

	for i := 0; i < maxEmailItems; i++ {
		var items []*cdp.Node
		if err := page.Run(chromedp.Nodes(`div[role="listitem"]`, &items, chromedp.ByQueryAll)); err != nil {
			return files, failures, fmt.Errorf("outlook result list unreadable: %w", err)
		}
		if len(items) <= i {
			break
		}

		item := fmt.Sprintf("email %d", i+1)
		err := page.Run(
			chromedp.MouseClickNode(items[i]),
			chromedp.WaitVisible(`div[role="main"]`, chromedp.ByQuery),
		)
		if err != nil {
			failures = append(failures, dto.ItemFailure{Item: item, Error: err.Error()})
			continue
		}

		files, failures = downloadAttachments(page,
			`div[role="attachment"] button`, item, files, failures)

		err = page.Run(
			chromedp.NavigateBack(),
			chromedp.WaitVisible(`div[role="list"]`, chromedp.ByQuery),
		)
		if err != nil {
			return files, failures, fmt.Errorf("outlook navigation failed after %s: %w", item, err)
		}
	}

	return files, failures, nil
}
