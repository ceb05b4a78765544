package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/models"
	"invoiceflow/pkg/config"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxEmailItems caps how many search hits a fetcher opens per run.
const maxEmailItems = 5

var ErrUnsupportedProvider = errors.New("provider does not support this operation")

// credentialSource yields decrypted portal logins for a user.
type credentialSource interface {
	CredentialsFor(ctx context.Context, userID uuid.UUID, provider models.Provider) (*models.Credentials, error)
}

// DocumentFetcher logs into a portal and pulls invoice documents down.
// It returns the saved files plus a failure entry for every item it could
// not fetch; a returned error means the run as a whole failed.
type DocumentFetcher interface {
	Provider() models.Provider
	FetchDocuments(ctx context.Context, page *Page, creds *models.Credentials) ([]string, []dto.ItemFailure, error)
}

// RecordSubmitter logs into a portal and files one invoice there.
type RecordSubmitter interface {
	Provider() models.Provider
	SubmitInvoice(ctx context.Context, page *Page, creds *models.Credentials, inv *models.Invoice, fileName string, fileData []byte) error
}

// Driver owns the remote browser session lifecycle and dispatches to the
// registered provider scripts.
type Driver struct {
	sessions    *SessionClient
	credentials credentialSource
	fetchers    map[models.Provider]DocumentFetcher
	submitters  map[models.Provider]RecordSubmitter
	downloadDir string
	timeout     time.Duration
	logger      *zap.Logger
}

func NewDriver(sessions *SessionClient, credentials credentialSource, cfg *config.BrowserConfig, logger *zap.Logger) *Driver {
	if err := os.MkdirAll(cfg.DownloadDir, 0755); err != nil {
		logger.Warn("Failed to create download directory", zap.Error(err))
	}

	d := &Driver{
		sessions:    sessions,
		credentials: credentials,
		fetchers:    make(map[models.Provider]DocumentFetcher),
		submitters:  make(map[models.Provider]RecordSubmitter),
		downloadDir: cfg.DownloadDir,
		timeout:     cfg.ScriptTimeout,
		logger:      logger,
	}

	d.RegisterFetcher(&GmailFetcher{})
	d.RegisterFetcher(&OutlookFetcher{})
	d.RegisterSubmitter(&QuickbooksSubmitter{})
	d.RegisterSubmitter(&XeroSubmitter{})

	return d
}

func (d *Driver) RegisterFetcher(f DocumentFetcher) {
	d.fetchers[f.Provider()] = f
}

func (d *Driver) RegisterSubmitter(s RecordSubmitter) {
	d.submitters[s.Provider()] = s
}

// ImportDocuments fetches invoice documents from the user's email portal.
// Files that were fetched before a later item failed are still returned,
// including alongside a non-nil error when the run as a whole failed.
func (d *Driver) ImportDocuments(ctx context.Context, userID uuid.UUID, provider models.Provider) (*dto.ImportResponse, error) {
	fetcher, ok := d.fetchers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: cannot import documents from %s", ErrUnsupportedProvider, provider)
	}

	creds, err := d.credentials.CredentialsFor(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	resp := &dto.ImportResponse{Provider: string(provider), Files: []string{}}
	err = d.withSession(ctx, func(page *Page) error {
		files, failures, err := fetcher.FetchDocuments(ctx, page, creds)
		resp.Files = append(resp.Files, files...)
		resp.Failures = failures
		return err
	})
	if err != nil {
		// Files fetched before the failure still reach the caller.
		return resp, err
	}

	d.logger.Info("Document import finished",
		zap.String("provider", string(provider)),
		zap.Int("files", len(resp.Files)),
		zap.Int("failures", len(resp.Failures)),
	)

	return resp, nil
}

// ExportInvoice files the invoice in the user's accounting portal, attaching
// the stored document when one exists.
func (d *Driver) ExportInvoice(ctx context.Context, userID uuid.UUID, provider models.Provider, inv *models.Invoice) error {
	submitter, ok := d.submitters[provider]
	if !ok {
		return fmt.Errorf("%w: cannot export invoices to %s", ErrUnsupportedProvider, provider)
	}

	creds, err := d.credentials.CredentialsFor(ctx, userID, provider)
	if err != nil {
		return err
	}

	var fileName string
	var fileData []byte
	if inv.FilePath != "" {
		fileData, err = os.ReadFile(inv.FilePath)
		if err != nil {
			d.logger.Warn("Invoice document not readable, exporting without attachment",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err),
			)
			fileData = nil
		} else {
			fileName = filepath.Base(inv.FilePath)
		}
	}

	err = d.withSession(ctx, func(page *Page) error {
		return submitter.SubmitInvoice(ctx, page, creds, inv, fileName, fileData)
	})
	if err != nil {
		return err
	}

	d.logger.Info("Invoice exported",
		zap.String("provider", string(provider)),
		zap.String("invoice_id", inv.ID.String()),
	)

	return nil
}

// withSession creates a remote browser session, attaches a tab to it and
// runs fn. The session is stopped exactly once on every path, including
// panics inside fn and script timeouts.
func (d *Driver) withSession(ctx context.Context, fn func(page *Page) error) error {
	session, err := d.sessions.Create(ctx)
	if err != nil {
		return fmt.Errorf("failed to create browser session: %w", err)
	}
	defer func() {
		// The run context may already be canceled; stop on a fresh one.
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := d.sessions.Stop(stopCtx, session.ID); err != nil {
			d.logger.Warn("Failed to stop browser session",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(runCtx, session.WSEndpoint)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	// Downloads complete on the session host, so the watcher pulls the
	// bytes back through the session API by GUID.
	watcher := newDownloadWatcher(d.downloadDir, func(ctx context.Context, name string) ([]byte, error) {
		return d.sessions.DownloadFile(ctx, session.ID, name)
	})
	watcher.listen(tabCtx)

	page := &Page{
		ctx:       tabCtx,
		downloads: watcher,
	}

	// The download path names a directory on the session host's disk.
	err = chromedp.Run(tabCtx,
		cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(d.downloadDir).
			WithEventsEnabled(true),
	)
	if err != nil {
		return fmt.Errorf("failed to configure downloads: %w", err)
	}

	return fn(page)
}
