package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// PageCount validates a rendered PDF and returns its number of pages.
func PageCount(rs io.ReadSeeker) (int, error) {
	// Keep pdfcpu from writing its config directory under the user's home.
	disableConfigDir.Do(func() { model.ConfigPath = "disable" })

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(rs, conf)
	if err != nil {
		return 0, fmt.Errorf("validate pdf: %w", err)
	}
	if ctx.PageCount < 1 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	return ctx.PageCount, nil
}
