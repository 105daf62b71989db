// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package recommend

import "errors"

// errNoCandidates reports that no eligible content items exist on either
// the cached or live path.
var errNoCandidates = errors.New("no eligible candidates available")
