package ip

// PacketListener receives datagrams from a SocketReceiveMultiplexer. data is
// only valid for the duration of the call. A returned error is logged and
// does not stop the multiplexer.
type PacketListener interface {
	ProcessPacket(data []byte, remote Endpoint) error
}

// PacketListenerFunc adapts a function to a PacketListener.
//
// A func value cannot be compared, so a PacketListenerFunc can be attached
// but never detached. Wrap it in a pointer type if detaching is needed.
type PacketListenerFunc func(data []byte, remote Endpoint) error

func (f PacketListenerFunc) ProcessPacket(data []byte, remote Endpoint) error {
	return f(data, remote)
}

// TimerListener is called by a SocketReceiveMultiplexer when a periodic timer expires.
type TimerListener interface {
	TimerExpired()
}

// TimerListenerFunc adapts a function to a TimerListener. Like
// PacketListenerFunc it cannot be detached.
type TimerListenerFunc func()

func (f TimerListenerFunc) TimerExpired() { f() }
