/*
 * Copyright 2025 FleetScan Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package probe

import (
	"errors"
	"fmt"

	"github.com/fleetscan/fleetscan/pkg/models"
)

var (
	errInvalidTarget     = errors.New("invalid probe target")
	errUnknownPass       = errors.New("unknown probe pass")
	errProbeExecution    = errors.New("probe execution failed")
	errMalformedOutput   = errors.New("malformed probe output")
	errNmapBinaryMissing = errors.New("nmap binary not found")
)

// Error is a probe capability fault: the probing tool itself failed to
// execute or produced output that could not be parsed. A target that simply
// did not respond is not an Error; it yields a valid empty result.
type Error struct {
	Pass   models.ProbePass
	Target string
	Cause  string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("probe %s pass against %s failed: %s", e.Pass, e.Target, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsProbeError reports whether err is a probe capability fault.
func IsProbeError(err error) bool {
	var pe *Error
	return errors.As(err, &pe)
}

func newError(pass models.ProbePass, target, cause string, err error) *Error {
	return &Error{Pass: pass, Target: target, Cause: cause, Err: err}
}
