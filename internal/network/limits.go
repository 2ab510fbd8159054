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

package network

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
)

// Limits contains the API limits.
type Limits struct {
	// RequestsPerMinute is the number of API requests allowed per minute.
	RequestsPerMinute int `toml:"requests_per_minute" validate:"gte=1,lte=6000"`
	// Burst is the number of requests that can be made without waiting.
	Burst uint `toml:"burst" validate:"gte=1,lte=100"`
	// Boost is added to RequestsPerMinute.
	Boost int `toml:"boost" validate:"gte=0,lte=1000"`
	// Retries is the number of attempts for each request.
	Retries int `toml:"retries" validate:"gte=1,lte=20"`
}

// DefLimits are the default limits.
var DefLimits = Limits{
	RequestsPerMinute: 50,
	Burst:             3,
	Boost:             0,
	Retries:           3,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the limits.
func (l Limits) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("invalid limits: %w", err)
	}
	return nil
}

// Apply overrides the limits with the non-zero values from other, and
// validates the result.
func (l *Limits) Apply(other Limits) error {
	res := *l
	if other.RequestsPerMinute != 0 {
		res.RequestsPerMinute = other.RequestsPerMinute
	}
	if other.Burst != 0 {
		res.Burst = other.Burst
	}
	if other.Boost != 0 {
		res.Boost = other.Boost
	}
	if other.Retries != 0 {
		res.Retries = other.Retries
	}
	if err := res.Validate(); err != nil {
		return err
	}
	*l = res
	return nil
}

// Limiter returns the rate limiter for the limits.
func (l Limits) Limiter() *rate.Limiter {
	return NewLimiter(l.RequestsPerMinute, l.Burst, l.Boost)
}
