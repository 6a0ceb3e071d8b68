/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package richtext

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports unusable runs or settings, including internal
	// invariant violations such as a no-break group spanning a forced break.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMeasurement reports that the metrics provider could not resolve a
	// font or animation reference. It is never retried.
	ErrMeasurement = errors.New("measurement failure")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func measurementErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrMeasurement, what, err)
}
