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

package i18n

// in this file: translation catalogues

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// Catalogue is the set of translations for a locale.  On disk, it's a TOML
// file:
//
//	locale = "de"
//
//	[messages]
//	"%1 parted." = "%1 hat den Kanal verlassen."
type Catalogue struct {
	Locale   string            `toml:"locale"`
	Messages map[string]string `toml:"messages"`
}

// LoadCatalogue decodes the catalogue from r.
func LoadCatalogue(r io.Reader) (*Catalogue, error) {
	var c Catalogue
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return nil, fmt.Errorf("catalogue: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("catalogue: unknown keys: %v", undec)
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	return &c, nil
}

// LoadCatalogueFile loads the catalogue from the file.
func LoadCatalogueFile(filename string) (*Catalogue, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCatalogue(f)
}

// FromCatalogue returns the Dictionary for the catalogue locale populated
// with catalogue messages.
func FromCatalogue(c *Catalogue, opts ...Option) (*Dictionary, error) {
	d := New(c.Locale, opts...)
	if d.Locale() != c.Locale {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocale, c.Locale)
	}
	for tmpl, text := range c.Messages {
		if err := d.Add(tmpl, text); err != nil {
			return nil, err
		}
	}
	return d, nil
}
