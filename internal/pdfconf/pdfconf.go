// Package pdfconf builds the pdfcpu configuration shared by every package.
package pdfconf

import (
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var once sync.Once

// New returns a relaxed-validation pdfcpu configuration. pdfcpu's user
// config directory is never touched.
func New() *model.Configuration {
	once.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}
