package osc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/chabad360/go-oscpack/ip"
)

// Method is an interface for OSC Methods. The message is only valid for the
// duration of the call.
type Method interface {
	HandleMessage(msg ReceivedMessage, remote ip.Endpoint) error
}

// MethodFunc implements the Method interface. Type definition for an OSC Method function.
type MethodFunc func(msg ReceivedMessage, remote ip.Endpoint) error

// HandleMessage calls itself with the given OSC Message. Implements the Method interface.
func (f MethodFunc) HandleMessage(msg ReceivedMessage, remote ip.Endpoint) error {
	return f(msg, remote)
}

// Dispatcher handles the dispatching of received OSC Packets to Methods for their given Address.
// Bundles are dispatched immediately, regardless of their time tag.
type Dispatcher struct {
	methods map[string]Method
}

var (
	_ MessageHandler    = (*Dispatcher)(nil)
	_ ip.PacketListener = (*Dispatcher)(nil)
)

// AddMethod adds a new OSC Method for the given OSC Address.
func (d *Dispatcher) AddMethod(addr string, method Method) error {
	if d.methods == nil {
		d.methods = make(map[string]Method)
	}

	if strings.ContainsAny(addr, "*?,[]{}# ") {
		return fmt.Errorf("AddMethod: OSC Method may not contain any characters in \"*?,[]{}# \"")
	}

	if _, ok := d.methods[addr]; ok {
		return fmt.Errorf("AddMethod: OSC Method exists already")
	}

	d.methods[addr] = method
	return nil
}

// AddMethodFunc allows you to just pass a MethodFunc.
func (d *Dispatcher) AddMethodFunc(addr string, method MethodFunc) error {
	return d.AddMethod(addr, method)
}

// ProcessPacket decodes data and dispatches every message it contains.
// Implements ip.PacketListener.
func (d *Dispatcher) ProcessPacket(data []byte, remote ip.Endpoint) error {
	return walkPacket(NewReceivedPacket(data), remote, d)
}

// ProcessMessage calls every Method whose address matches the message's
// address pattern. All Methods run even if some fail; their errors are
// joined. Implements MessageHandler.
func (d *Dispatcher) ProcessMessage(msg ReceivedMessage, remote ip.Endpoint) error {
	if msg.AddressPatternIsUInt32() {
		return fmt.Errorf("ProcessMessage: integer address pattern %d has no method", msg.AddressPatternAsUInt32())
	}

	r, err := getRegEx(msg.AddressPattern())
	if err != nil {
		return fmt.Errorf("ProcessMessage: invalid address pattern %q: %w", msg.AddressPattern(), err)
	}

	var errs []error
	for addr, method := range d.methods {
		if r.MatchString(addr) {
			if err := method.HandleMessage(msg, remote); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			}
		}
	}
	return errors.Join(errs...)
}

// getRegEx returns a regexp.Regexp matching whole addresses for the given
// address pattern.
func getRegEx(pattern string) (*regexp.Regexp, error) {
	r := strings.NewReplacer(
		".", `\.`,
		"(", `\(`,
		")", `\)`,
		"+", `\+`,
		"$", `\$`,
		"^", `\^`,
		"|", `\|`,
		`\`, `\\`,
		"*", "[^/]*",
		"{", "(",
		",", "|",
		"}", ")",
		"?", "[^/]",
		"[!", "[^",
	)
	pattern = r.Replace(pattern)

	return regexp.Compile("^" + pattern + "$")
}
