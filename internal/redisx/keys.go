package redisx

import "time"

const (
	// Pending one-time code per phone: otp:{phone} -> {"code": "...", "expires_at": "..."}
	KeyOTP = "otp:%s"

	// Cached order detail JSON: order:{order_id}
	KeyOrderCache = "order:%s"

	// Cached product listing (single key, whole catalog)
	KeyProductList = "products:all"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	// Keys for expired codes linger past the 5-minute validity window so a
	// late verify attempt reports "expired" rather than "invalid".
	TTLOTPRetention = 30 * time.Minute

	TTLOrderCache   = 5 * time.Minute
	TTLProductCache = 5 * time.Minute
	TTLDedup        = 48 * time.Hour
)
