package util

import (
	"context"
	"io"

	"github.com/pkg/browser"
	"github.com/pkg/errors"
)

func init() {
	// 浏览器进程的输出不混入服务日志
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// OpenBrowser opens the given URL with the platform's default handler.
func OpenBrowser(ctx context.Context, url string) error {
	return openWith(ctx, url, browser.OpenURL)
}

func openWith(ctx context.Context, url string, open func(string) error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "browser launch cancelled")
	}
	if err := open(url); err != nil {
		return errors.Wrap(err, "failed to launch browser")
	}
	LogFromContext(ctx).Debug().Str("url", url).Msg("Opened wallet URL in browser")
	return nil
}
