package ip

// Transport is a datagram source the multiplexer can wait on.
type Transport interface {
	// Fd returns the file descriptor polled for readability.
	Fd() int

	// ReceiveFrom reads one datagram into data without blocking. It returns
	// 0 if nothing was read; the sender is only meaningful when n > 0. A
	// datagram longer than data fills it entirely.
	ReceiveFrom(data []byte) (n int, remote Endpoint)
}
