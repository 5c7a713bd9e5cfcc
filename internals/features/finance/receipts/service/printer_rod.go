package service

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// RodPrinter prints through a headless Chrome started by Warm or on first
// use, and shared by all requests. Each print uses its own tab.
type RodPrinter struct {
	bin string
	log *zap.Logger

	mu      sync.Mutex
	browser *rod.Browser
	launch  *launcher.Launcher

	start func() (*rod.Browser, *launcher.Launcher, error)
}

// NewRodPrinter; bin may be empty to let rod locate or download Chrome.
func NewRodPrinter(bin string, log *zap.Logger) *RodPrinter {
	if log == nil {
		log = zap.NewNop()
	}
	p := &RodPrinter{bin: bin, log: log.Named("receipt-printer")}
	p.start = p.startChrome
	return p
}

// Warm starts Chrome ahead of the first receipt. Launching (or downloading
// when no binary is configured) can outlast a request deadline.
func (p *RodPrinter) Warm() error {
	_, err := p.connect()
	return err
}

func (p *RodPrinter) connect() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.browser != nil {
		return p.browser, nil
	}

	b, l, err := p.start()
	if err != nil {
		return nil, err
	}
	p.browser, p.launch = b, l
	return b, nil
}

func (p *RodPrinter) startChrome() (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().Headless(true).NoSandbox(true)
	if p.bin != "" {
		l = l.Bin(p.bin)
	}
	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("launch chrome: %w", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connect chrome: %w", err)
	}
	p.log.Info("headless chrome started", zap.String("control_url", u))
	return b, l, nil
}

func (p *RodPrinter) PrintPDF(ctx context.Context, document []byte) ([]byte, error) {
	b, err := p.connect()
	if err != nil {
		return nil, err
	}
	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			p.log.Warn("close tab", zap.Error(cerr))
		}
	}()

	if err := page.SetDocumentContent(string(document)); err != nil {
		return nil, fmt.Errorf("set content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	// A4 in inches, 1cm margins
	width, height, margin := 8.27, 11.69, 0.39
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      &width,
		PaperHeight:     &height,
		MarginTop:       &margin,
		MarginBottom:    &margin,
		MarginLeft:      &margin,
		MarginRight:     &margin,
	})
	if err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	return io.ReadAll(stream)
}

// Close shuts Chrome down if it was started.
func (p *RodPrinter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.browser == nil {
		return nil
	}
	err := p.browser.Close()
	p.launch.Cleanup()
	p.browser, p.launch = nil, nil
	return err
}
