// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package i18n formats the user facing notices generated by the client.
//
// Templates use positional placeholders %1, %2, ..., which are replaced with
// the respective arguments.  A template may be translated to the user's
// locale by loading a catalogue, see [LoadCatalogue].
package i18n

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/fr"
	"github.com/go-playground/locales/nb"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
)

// Translator formats a template with positional arguments.
type Translator interface {
	Translate(template string, args ...any) string
}

// DefaultLocale is used when the requested locale is not supported.
const DefaultLocale = "en"

var placeholderRE = regexp.MustCompile(`%(\d+)`)

var (
	// ErrUnsupportedLocale is returned when the catalogue locale is not known.
	ErrUnsupportedLocale = errors.New("unsupported locale")
	errBraces            = errors.New("{N} placeholders are not supported, use %N")
)

func supported() []locales.Translator {
	return []locales.Translator{en.New(), de.New(), es.New(), fr.New(), nb.New(), ru.New()}
}

// Dictionary is the Translator backed by the universal translator.
type Dictionary struct {
	trans ut.Translator
	lg    *slog.Logger
}

// Option configures the Dictionary.
type Option func(*Dictionary)

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(d *Dictionary) {
		if lg != nil {
			d.lg = lg
		}
	}
}

// New returns the Dictionary for the locale.  If the locale is not
// supported, the DefaultLocale is used.
func New(locale string, opts ...Option) *Dictionary {
	uni := ut.New(en.New(), supported()...)
	d := &Dictionary{lg: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	trans, found := uni.GetTranslator(locale)
	if !found {
		d.lg.Debug("locale not supported, using default", "locale", locale, "default", DefaultLocale)
		trans, _ = uni.GetTranslator(DefaultLocale)
	}
	d.trans = trans
	return d
}

// Locale returns the locale of the dictionary.
func (d *Dictionary) Locale() string {
	return d.trans.Locale()
}

// Add adds the translation of the template.  Both the template and the text
// use %N placeholders.
func (d *Dictionary) Add(template, text string) error {
	if strings.Contains(text, "{0}") {
		return fmt.Errorf("translation %q: %w", template, errBraces)
	}
	if err := d.trans.Add(template, text, true); err != nil {
		return fmt.Errorf("translation %q: %w", template, err)
	}
	return nil
}

// Translate returns the translation of the template with the placeholders
// replaced by args.  Integer arguments are formatted according to the
// locale.  Placeholders without a matching argument are replaced with an
// empty string.
func (d *Dictionary) Translate(template string, args ...any) string {
	params := make([]string, len(args))
	for i, a := range args {
		params[i] = d.format(a)
	}
	text, err := d.trans.T(template)
	if err != nil {
		text = template
	}
	return Substitute(text, params...)
}

func (d *Dictionary) format(a any) string {
	switch v := a.(type) {
	case int:
		return d.trans.FmtNumber(float64(v), 0)
	case int64:
		return d.trans.FmtNumber(float64(v), 0)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Substitute replaces %N placeholders in the template with the respective
// params.
func Substitute(template string, params ...string) string {
	return placeholderRE.ReplaceAllStringFunc(template, func(m string) string {
		i, err := strconv.Atoi(m[1:])
		if err != nil || i < 1 || i > len(params) {
			return ""
		}
		return params[i-1]
	})
}

// Func is an adapter to allow the use of an ordinary function as a
// Translator.
type Func func(template string, args ...any) string

func (f Func) Translate(template string, args ...any) string {
	return f(template, args...)
}

// Plain is the Translator that performs the placeholder substitution only.
var Plain = Func(func(template string, args ...any) string {
	params := make([]string, len(args))
	for i, a := range args {
		params[i] = fmt.Sprint(a)
	}
	return Substitute(template, params...)
})
