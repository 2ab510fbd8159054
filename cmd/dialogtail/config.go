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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/rusq/chatdialog/internal/network"
)

// Config is the dialogtail configuration.  It can be loaded from the TOML
// file:
//
//	server = "http://localhost:3000"
//	email = "superman@example.com"
//	connection = "irc-localhost"
//	dialog = "#convos"
//
//	[limits]
//	requests_per_minute = 100
type Config struct {
	Server     string         `toml:"server" validate:"required,url"`
	Email      string         `toml:"email" validate:"required,email"`
	Connection string         `toml:"connection" validate:"required"`
	Dialog     string         `toml:"dialog"`
	Pages      int            `toml:"pages" validate:"gte=0,lte=100"`
	Locale     string         `toml:"locale" validate:"omitempty,bcp47_language_tag"`
	Catalogue  string         `toml:"catalogue" validate:"omitempty,file"`
	Limits     network.Limits `toml:"limits"`
}

// DefConfig is the default configuration.
var DefConfig = Config{
	Server: "http://localhost:3000",
	Pages:  1,
	Locale: "en",
	Limits: network.DefLimits,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoadConfig decodes the configuration from r.  Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	var c Config
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("config: unknown keys: %v", undec)
	}
	return c, nil
}

// LoadConfigFile loads the configuration from the file.
func LoadConfigFile(filename string) (Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return LoadConfig(f)
}

// merge returns c with the non-zero values from other, except for the
// values of the flags that were set on the command line.
func (c Config) merge(other Config, set map[string]bool) Config {
	pick(&c.Server, other.Server, !set["server"])
	pick(&c.Email, other.Email, !set["email"])
	pick(&c.Connection, other.Connection, !set["connection"])
	pick(&c.Dialog, other.Dialog, !set["dialog"])
	pick(&c.Pages, other.Pages, !set["pages"])
	pick(&c.Locale, other.Locale, !set["locale"])
	pick(&c.Catalogue, other.Catalogue, !set["catalogue"])
	pick(&c.Limits.RequestsPerMinute, other.Limits.RequestsPerMinute, !set["rpm"])
	pick(&c.Limits.Burst, other.Limits.Burst, true)
	pick(&c.Limits.Boost, other.Limits.Boost, true)
	pick(&c.Limits.Retries, other.Limits.Retries, !set["retries"])
	return c
}

func pick[T comparable](dst *T, v T, ok bool) {
	var zero T
	if ok && v != zero {
		*dst = v
	}
}
