// Package label turns registered items into scannable artifacts: the QR
// deep-link payload, PNG codes for embedding, and printable PDF labels.
package label

// DeepLink returns the exact string encoded in an item's QR code. The base
// URL is concatenated as configured; callers who need a path separator or
// query prefix include it in PUBLIC_BASE_URL themselves.
func DeepLink(baseURL, code string) string {
	return baseURL + "?code=" + code
}
