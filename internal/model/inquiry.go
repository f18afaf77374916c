// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Contact inquiry statuses. The only admin-driven transition is
// pending -> responded; closed is a terminal bookkeeping state.
const (
	InquiryStatusPending   = "pending"
	InquiryStatusResponded = "responded"
	InquiryStatusClosed    = "closed"
)
