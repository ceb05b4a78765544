package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

// Page is one tab in a remote browser session, handed to provider scripts.
type Page struct {
	ctx       context.Context
	downloads *downloadWatcher
}

// Run executes chromedp actions against the page.
func (p *Page) Run(actions ...chromedp.Action) error {
	return chromedp.Run(p.ctx, actions...)
}

// attachFileJS injects a file into the page's file input. The remote browser
// has no access to our filesystem, so the bytes travel as base64 and become
// a File object inside the page.
const attachFileJS = `(function(dataBase64, fileName) {
	const bytes = Uint8Array.from(atob(dataBase64), c => c.charCodeAt(0));
	const file = new File([bytes], fileName, { type: 'application/octet-stream' });
	const dataTransfer = new DataTransfer();
	dataTransfer.items.add(file);
	const input = document.querySelector('input[type="file"]');
	if (!input) {
		return false;
	}
	Object.defineProperty(input, 'files', { value: dataTransfer.files });
	input.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
})(%q, %q)`

// AttachFile puts the given bytes into the first file input on the page.
func (p *Page) AttachFile(fileName string, data []byte) error {
	script := fmt.Sprintf(attachFileJS, base64.StdEncoding.EncodeToString(data), fileName)

	var attached bool
	if err := chromedp.Run(p.ctx, chromedp.Evaluate(script, &attached)); err != nil {
		return fmt.Errorf("file injection failed: %w", err)
	}
	if !attached {
		return errors.New("no file input found on page")
	}

	return nil
}

// WaitDownload blocks until the next download completes, pulls its bytes
// back through the session API and returns the local path it was saved under,
// named as the site suggested.
func (p *Page) WaitDownload(timeout time.Duration) (string, error) {
	return p.downloads.next(timeout)
}

type downloadResult struct {
	guid string
	name string
	err  error
}

// downloadWatcher tracks CDP download events. Downloads complete on the
// session host's disk under their GUID (allowAndName behavior), never on
// ours; the watcher learns each GUID and suggested filename from the events
// and retrieves the bytes through the session API.
type downloadWatcher struct {
	dir     string
	fetch   func(ctx context.Context, name string) ([]byte, error)
	mu      sync.Mutex
	names   map[string]string
	results chan downloadResult
}

func newDownloadWatcher(dir string, fetch func(ctx context.Context, name string) ([]byte, error)) *downloadWatcher {
	return &downloadWatcher{
		dir:     dir,
		fetch:   fetch,
		names:   make(map[string]string),
		results: make(chan downloadResult, 32),
	}
}

// listen wires the watcher to the tab's browser-level download events.
func (w *downloadWatcher) listen(ctx context.Context) {
	chromedp.ListenBrowser(ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *cdpbrowser.EventDownloadWillBegin:
			w.mu.Lock()
			w.names[e.GUID] = e.SuggestedFilename
			w.mu.Unlock()
		case *cdpbrowser.EventDownloadProgress:
			switch e.State {
			case cdpbrowser.DownloadProgressStateCompleted:
				w.mu.Lock()
				name := w.names[e.GUID]
				w.mu.Unlock()
				select {
				case w.results <- downloadResult{guid: e.GUID, name: name}:
				default:
				}
			case cdpbrowser.DownloadProgressStateCanceled:
				select {
				case w.results <- downloadResult{guid: e.GUID, err: errors.New("download canceled")}:
				default:
				}
			}
		}
	})
}

func (w *downloadWatcher) next(timeout time.Duration) (string, error) {
	select {
	case res := <-w.results:
		if res.err != nil {
			return "", res.err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		data, err := w.fetch(ctx, res.guid)
		if err != nil {
			return "", fmt.Errorf("failed to retrieve download from session: %w", err)
		}

		name := res.name
		if name == "" {
			name = res.guid
		}
		dst := filepath.Join(w.dir, filepath.Base(name))
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return "", fmt.Errorf("failed to save download: %w", err)
		}
		return dst, nil
	case <-time.After(timeout):
		return "", errors.New("timed out waiting for download")
	}
}
