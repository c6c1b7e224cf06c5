package ports

// Navigator moves the user agent somewhere.
type Navigator interface {
	// Replace performs a same-origin, in-app transition.
	Replace(path string) error
	// Assign performs a full-page navigation that in-app routing cannot intercept.
	Assign(url string) error
}
