//go:build !unix

package env

// HostKernel is not available on this system.
func HostKernel() string {
	return ""
}
