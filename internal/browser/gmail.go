package browser

import (
	"context"
	"fmt"
	"time"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/models"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// GmailFetcher pulls invoice attachments out of a Gmail mailbox.
type GmailFetcher struct{}

func (f *GmailFetcher) Provider() models.Provider { return models.ProviderGmail }

func (f *GmailFetcher) FetchDocuments(ctx context.Context, page *Page, creds *models.Credentials) ([]string, []dto.ItemFailure, error) {
	err := page.Run(
		chromedp.Navigate("https://mail.google.com"),
		chromedp.WaitVisible(`input[type="email"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[type="email"]`, creds.Email, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`input[type="password"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[type="password"]`, creds.Password, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`input[aria-label="Search mail"]`, chromedp.ByQuery),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("gmail login failed: %w", err)
	}

	err = page.Run(
		chromedp.SendKeys(`input[aria-label="Search mail"]`, "has:attachment invoice OR receipt\n", chromedp.ByQuery),
		chromedp.WaitVisible(`div[role="main"]`, chromedp.ByQuery),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("gmail search failed: %w", err)
	}

	var files []string
	var failures []dto.ItemFailure

	for i := 0; i < maxEmailItems; i++ {
		var rows []*cdp.Node
		if err := page.Run(chromedp.Nodes(`tr[role="row"]`, &rows, chromedp.ByQueryAll)); err != nil {
			return files, failures, fmt.Errorf("gmail result list unreadable: %w", err)
		}
		if len(rows) <= i {
			break
		}

		item := fmt.Sprintf("email %d", i+1)
		err := page.Run(
			chromedp.MouseClickNode(rows[i]),
			chromedp.WaitVisible(`div[role="main"]`, chromedp.ByQuery),
		)
		if err != nil {
			failures = append(failures, dto.ItemFailure{Item: item, Error: err.Error()})
			continue
		}

		files, failures = downloadAttachments(page,
			`div[role="listitem"] div[data-tooltip="Download"]`, item, files, failures)

		err = page.Run(
			chromedp.NavigateBack(),
			chromedp.WaitVisible(`div[role="main"]`, chromedp.ByQuery),
		)
		if err != nil {
			return files, failures, fmt.Errorf("gmail navigation failed after %s: %w", item, err)
		}
	}

	return files, failures, nil
}

// downloadAttachments clicks every matching download control on the open
// message and waits for each file to land. Failed items are reported, not
// fatal.
func downloadAttachments(page *Page, selector, item string, files []string, failures []dto.ItemFailure) ([]string, []dto.ItemFailure) {
	var attachments []*cdp.Node
	if err := page.Run(chromedp.Nodes(selector, &attachments, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		failures = append(failures, dto.ItemFailure{Item: item, Error: err.Error()})
		return files, failures
	}

	for n, attachment := range attachments {
		name := fmt.Sprintf("%s attachment %d", item, n+1)
		if err := page.Run(chromedp.MouseClickNode(attachment)); err != nil {
			failures = append(failures, dto.ItemFailure{Item: name, Error: err.Error()})
			continue
		}

		path, err := page.WaitDownload(30 * time.Second)
		if err != nil {
			failures = append(failures, dto.ItemFailure{Item: name, Error: err.Error()})
			continue
		}
		files = append(files, path)
	}

	return files, failures
}
