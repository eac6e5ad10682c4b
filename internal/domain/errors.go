/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package domain

import "errors"

var (
    ErrAuthentication  = errors.New("authentication failed")
    ErrValidation      = errors.New("validation failed")
    ErrTransient       = errors.New("service temporarily unavailable")
    ErrDataUnavailable = errors.New("data unavailable")
)
