// Package ip provides the UDP transport for OSC: a raw socket wrapper, an
// IPv4 endpoint value type, and SocketReceiveMultiplexer, a single-goroutine
// poll(2) loop that hands received datagrams to PacketListeners and runs
// periodic TimerListeners.
//
// A typical receiver binds a socket and runs a multiplexer until another
// goroutine calls AsynchronousBreak:
//
//	s, err := ip.NewReceiveSocket(ip.Endpoint{Address: ip.AnyAddress, Port: 8000})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	mux, err := ip.NewSocketReceiveMultiplexer()
//	if err != nil {
//		return err
//	}
//	defer mux.Close()
//
//	mux.AttachSocketListener(s, listener)
//	return mux.Run()
//
// All listener callbacks run on the goroutine that called Run and must not
// block.
package ip
