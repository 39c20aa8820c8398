package httpapi

// maxBodyBytes controls the maximum allowed request body size for JSON
// endpoints. Inline base64 images arrive in the body, so the default is
// larger than a typical JSON API would pick.
var maxBodyBytes int64 = 10 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 10 << 20
		return
	}
	maxBodyBytes = n
}
