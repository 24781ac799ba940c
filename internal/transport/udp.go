package transport

import (
	"context"
	goerrors "errors"
	"fmt"
	"net"
	"runtime"
	"strconv"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/joshuafuller/zeroconf/internal/errors"
	"github.com/joshuafuller/zeroconf/internal/protocol"
)

var errTransportClosed = net.ErrClosed

var (
	groupIPv4 = &net.UDPAddr{IP: net.ParseIP(protocol.MulticastAddrIPv4), Port: protocol.Port}
	groupIPv6 = &net.UDPAddr{IP: net.ParseIP(protocol.MulticastAddrIPv6), Port: protocol.Port}
)

// perPacketInterface reports whether the outgoing interface can be chosen
// with a control message on each write. Elsewhere the socket's multicast
// interface option is switched under sendMu before each write.
var perPacketInterface = runtime.GOOS == "linux" || runtime.GOOS == "darwin" || runtime.GOOS == "ios"

// UDPTransport is a Transport over the mDNS multicast groups.
//
// RFC 6762 §5: one IPv4 socket joined to 224.0.0.251 and one IPv6 socket
// joined to ff02::fb, both bound to port 5353 with address reuse so other
// mDNS software on the host keeps working. Each socket has a receive loop
// that fans datagrams out to the active Listen calls.
type UDPTransport struct {
	cfg      config
	log      *zap.Logger
	adapters []Adapter
	byIndex  map[int]Adapter

	conns []net.PacketConn
	v4    *ipv4.PacketConn
	v6    *ipv6.PacketConn

	sendMu sync.Mutex
	hub    *hub
	wg     sync.WaitGroup
}

var _ Transport = (*UDPTransport)(nil)

// NewUDPTransport opens the multicast sockets and joins the mDNS groups on
// every selected adapter.
func NewUDPTransport(opts ...Option) (*UDPTransport, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	t := &UDPTransport{
		cfg:     cfg,
		log:     cfg.logger.Named("transport"),
		byIndex: make(map[int]Adapter),
		hub:     newHub(),
	}

	ifaces, err := cfg.selectInterfaces()
	if err != nil {
		return nil, &errors.NetworkError{Operation: "enumerate interfaces", Err: err}
	}
	for _, iface := range ifaces {
		adapter, ok := adapterFor(iface)
		if !ok {
			t.log.Debug("skipping interface without addresses", zap.String("adapter", iface.Name))
			continue
		}
		t.adapters = append(t.adapters, adapter)
		t.byIndex[adapter.Index] = adapter
	}
	if len(t.adapters) == 0 {
		return nil, &errors.NetworkError{
			Operation: "enumerate interfaces",
			Details:   "no multicast-capable interface with an address",
		}
	}

	if err := t.openIPv4(ifaces); err != nil {
		return nil, err
	}
	if cfg.ipv6 {
		if err := t.openIPv6(ifaces); err != nil {
			// IPv4 alone is enough to discover most responders.
			t.log.Warn("IPv6 multicast unavailable", zap.Error(err))
		}
	}

	t.wg.Add(1)
	go t.receive(t.read4)
	if t.v6 != nil {
		t.wg.Add(1)
		go t.receive(t.read6)
	}

	t.log.Debug("transport open",
		zap.Int("adapters", len(t.adapters)),
		zap.Bool("ipv6", t.v6 != nil))
	return t, nil
}

func listenReusable(network, address string) (net.PacketConn, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) {
				sockErr = setSocketOptions(fd)
			}); err != nil {
				return err
			}
			return sockErr
		},
	}
	return lc.ListenPacket(context.Background(), network, address)
}

func (t *UDPTransport) openIPv4(ifaces []net.Interface) error {
	conn, err := listenReusable("udp4", net.JoinHostPort("0.0.0.0", strconv.Itoa(protocol.Port)))
	if err != nil {
		return &errors.NetworkError{
			Operation: "create socket",
			Err:       err,
			Details:   fmt.Sprintf("failed to bind udp4 port %d", protocol.Port),
		}
	}

	pc := ipv4.NewPacketConn(conn)
	joined := 0
	for i := range ifaces {
		if err := pc.JoinGroup(&ifaces[i], &net.UDPAddr{IP: groupIPv4.IP}); err != nil {
			t.log.Warn("join IPv4 group failed", zap.String("adapter", ifaces[i].Name), zap.Error(err))
			continue
		}
		joined++
	}
	if joined == 0 {
		_ = conn.Close()
		return &errors.NetworkError{
			Operation: "join multicast group",
			Details:   fmt.Sprintf("could not join %s on any interface", protocol.MulticastAddrIPv4),
		}
	}

	// Interface index on receive is best effort; Windows does not report it.
	if err := pc.SetControlMessage(ipv4.FlagInterface, true); err != nil {
		t.log.Debug("IPv4 control messages unavailable", zap.Error(err))
	}
	_ = pc.SetMulticastLoopback(true)

	t.conns = append(t.conns, conn)
	t.v4 = pc
	return nil
}

func (t *UDPTransport) openIPv6(ifaces []net.Interface) error {
	conn, err := listenReusable("udp6", net.JoinHostPort("::", strconv.Itoa(protocol.Port)))
	if err != nil {
		return &errors.NetworkError{
			Operation: "create socket",
			Err:       err,
			Details:   fmt.Sprintf("failed to bind udp6 port %d", protocol.Port),
		}
	}

	pc := ipv6.NewPacketConn(conn)
	joined := 0
	for i := range ifaces {
		if err := pc.JoinGroup(&ifaces[i], &net.UDPAddr{IP: groupIPv6.IP}); err != nil {
			t.log.Debug("join IPv6 group failed", zap.String("adapter", ifaces[i].Name), zap.Error(err))
			continue
		}
		joined++
	}
	if joined == 0 {
		_ = conn.Close()
		return &errors.NetworkError{
			Operation: "join multicast group",
			Details:   fmt.Sprintf("could not join %s on any interface", protocol.MulticastAddrIPv6),
		}
	}

	if err := pc.SetControlMessage(ipv6.FlagInterface, true); err != nil {
		t.log.Debug("IPv6 control messages unavailable", zap.Error(err))
	}
	_ = pc.SetMulticastLoopback(true)

	t.conns = append(t.conns, conn)
	t.v6 = pc
	return nil
}

type readFunc func(buf []byte) (n, ifIndex int, src net.Addr, err error)

func (t *UDPTransport) read4(buf []byte) (int, int, net.Addr, error) {
	n, cm, src, err := t.v4.ReadFrom(buf)
	ifIndex := 0
	if cm != nil {
		ifIndex = cm.IfIndex
	}
	return n, ifIndex, src, err
}

func (t *UDPTransport) read6(buf []byte) (int, int, net.Addr, error) {
	n, cm, src, err := t.v6.ReadFrom(buf)
	ifIndex := 0
	if cm != nil {
		ifIndex = cm.IfIndex
	}
	return n, ifIndex, src, err
}

// Consecutive read failures back off from minReadBackoff, doubling up to
// maxReadBackoff.
const (
	minReadBackoff = 5 * time.Millisecond
	maxReadBackoff = time.Second
)

func readBackoff(failures int) time.Duration {
	d := minReadBackoff
	for i := 1; i < failures && d < maxReadBackoff; i++ {
		d *= 2
	}
	return min(d, maxReadBackoff)
}

// receive reads datagrams until the socket is closed.
func (t *UDPTransport) receive(read readFunc) {
	defer t.wg.Done()

	failures := 0
	for {
		bufPtr := GetBuffer()
		buf := *bufPtr

		n, ifIndex, src, err := read(buf)
		if err != nil {
			PutBuffer(bufPtr)
			if t.hub.isClosed() || goerrors.Is(err, net.ErrClosed) {
				return
			}
			failures++
			delay := readBackoff(failures)
			t.log.Debug("receive failed",
				zap.Int("failures", failures),
				zap.Duration("backoff", delay),
				zap.Error(err))
			select {
			case <-t.hub.done:
				return
			case <-t.cfg.clock.After(delay):
			}
			continue
		}
		failures = 0

		// The pool owns buf; handlers own data.
		data := make([]byte, n)
		copy(data, buf[:n])
		PutBuffer(bufPtr)

		t.hub.dispatch(Packet{Adapter: t.adapterByIndex(ifIndex), Source: src, Data: data})
	}
}

func (t *UDPTransport) adapterByIndex(index int) Adapter {
	if adapter, ok := t.byIndex[index]; ok {
		return adapter
	}
	return Adapter{Index: index}
}

// Send multicasts packet on each adapter over every open address family.
func (t *UDPTransport) Send(ctx context.Context, packet []byte, adapters []Adapter) error {
	if err := ctx.Err(); err != nil {
		return &errors.NetworkError{
			Operation: "send query",
			Err:       err,
			Details:   "context canceled before send",
		}
	}
	if t.hub.isClosed() {
		return errClosed("send query")
	}
	if len(adapters) == 0 {
		adapters = t.adapters
	}

	var errs error
	for _, adapter := range adapters {
		if err := t.sendOn(packet, adapter); err != nil {
			t.log.Warn("send failed", zap.String("adapter", adapter.Name), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (t *UDPTransport) sendOn(packet []byte, adapter Adapter) error {
	var errs error
	sent := false

	// An adapter described only by index is tried over IPv4.
	if t.v4 != nil && (adapter.HasIPv4() || len(adapter.Addresses) == 0) {
		sent = true
		if err := t.send4(packet, adapter); err != nil {
			errs = multierr.Append(errs, &errors.NetworkError{Operation: "send query", Adapter: adapter.Name, Err: err, Details: "ipv4"})
		}
	}
	if t.v6 != nil && adapter.HasIPv6() {
		sent = true
		if err := t.send6(packet, adapter); err != nil {
			errs = multierr.Append(errs, &errors.NetworkError{Operation: "send query", Adapter: adapter.Name, Err: err, Details: "ipv6"})
		}
	}

	if !sent {
		return &errors.NetworkError{Operation: "send query", Adapter: adapter.Name, Details: "no open socket for adapter address family"}
	}
	return errs
}

func (t *UDPTransport) send4(packet []byte, adapter Adapter) error {
	var cm *ipv4.ControlMessage
	if perPacketInterface {
		cm = &ipv4.ControlMessage{IfIndex: adapter.Index}
	} else {
		t.sendMu.Lock()
		defer t.sendMu.Unlock()
		iface, err := net.InterfaceByIndex(adapter.Index)
		if err != nil {
			return err
		}
		if err := t.v4.SetMulticastInterface(iface); err != nil {
			return err
		}
	}

	n, err := t.v4.WriteTo(packet, cm, groupIPv4)
	return checkWrite(n, len(packet), err)
}

func (t *UDPTransport) send6(packet []byte, adapter Adapter) error {
	var cm *ipv6.ControlMessage
	if perPacketInterface {
		cm = &ipv6.ControlMessage{IfIndex: adapter.Index}
	} else {
		t.sendMu.Lock()
		defer t.sendMu.Unlock()
		iface, err := net.InterfaceByIndex(adapter.Index)
		if err != nil {
			return err
		}
		if err := t.v6.SetMulticastInterface(iface); err != nil {
			return err
		}
	}

	dst := &net.UDPAddr{IP: groupIPv6.IP, Port: protocol.Port, Zone: adapter.Name}
	n, err := t.v6.WriteTo(packet, cm, dst)
	return checkWrite(n, len(packet), err)
}

func checkWrite(n, want int, err error) error {
	if err != nil {
		return err
	}
	if n != want {
		return fmt.Errorf("partial write: %d/%d bytes", n, want)
	}
	return nil
}

// Listen implements Transport.
func (t *UDPTransport) Listen(ctx context.Context, duration time.Duration, handler Handler, ready func()) error {
	return t.hub.listen(ctx, t.cfg.clock, duration, handler, func(*subscription) {
		if ready != nil {
			ready()
		}
	})
}

// Adapters returns the adapters selected when the transport was opened.
func (t *UDPTransport) Adapters() ([]Adapter, error) {
	return append([]Adapter(nil), t.adapters...), nil
}

// Close stops the receive loops and closes both sockets. Closing twice
// returns a NetworkError.
func (t *UDPTransport) Close() error {
	if !t.hub.close() {
		return errClosed("close socket")
	}

	var errs error
	for _, conn := range t.conns {
		if err := conn.Close(); err != nil {
			errs = multierr.Append(errs, &errors.NetworkError{
				Operation: "close socket",
				Err:       err,
				Details:   "failed to close UDP connection",
			})
		}
	}
	t.wg.Wait()
	return errs
}
