package dsync

import (
	"errors"
	"net"
	"sort"
	"strconv"
	"sync"
	"syscall"
	"time"
)

// DefaultTimeout bounds one request/response exchange.
const DefaultTimeout = 500 * time.Millisecond

// QueryOutcome is the result of one exchange with one target. Exactly
// one outcome exists per target per round: Sample and RTTUs are set on
// success, Err on failure, never both.
type QueryOutcome struct {
	Target Target
	Sample *TelemetrySample
	RTTUs  float64
	Err    error
}

// Online reports whether the exchange produced a decoded sample.
func (o QueryOutcome) Online() bool { return o.Err == nil }

// Poller queries a fixed target set. Construct one per process run and
// call Poll for each round; rounds share no state.
type Poller struct {
	targets []Target
	timeout time.Duration
}

func NewPoller(targets []Target, timeout time.Duration) *Poller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Poller{targets: targets, timeout: timeout}
}

// Poll runs one exchange per target, all concurrently, and returns one
// outcome per target sorted by name. Each exchange is bounded by the
// poller's timeout independently, so round latency is max(timeout), not
// the sum; a failed or slow target never affects another's outcome.
func (p *Poller) Poll() []QueryOutcome {
	outcomes := make([]QueryOutcome, len(p.targets))

	var wg sync.WaitGroup
	for i, target := range p.targets {
		wg.Add(1)
		go func(i int, target Target) {
			defer wg.Done()
			outcomes[i] = p.exchange(target)
		}(i, target)
	}
	wg.Wait()

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Target.Name < outcomes[j].Target.Name
	})
	return outcomes
}

// exchange performs one query against one target over its own connected
// UDP socket, closed on every exit path. Connecting scopes reads to the
// queried peer, so a stray datagram from another host never lands here.
func (p *Poller) exchange(target Target) QueryOutcome {
	addr := target.Address
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(Port))
	}

	conn, err := net.Dial("udp", addr)
	if err != nil {
		return failure(target, transportError(err))
	}
	defer conn.Close()

	requestID := uint32(time.Now().UnixMilli())
	request := EncodeRequest(requestID)

	start := time.Now()
	if err := conn.SetReadDeadline(start.Add(p.timeout)); err != nil {
		return failure(target, transportError(err))
	}
	if _, err := conn.Write(request); err != nil {
		return failure(target, transportError(err))
	}

	buffer := make([]byte, ResponseSize)
	n, err := conn.Read(buffer)
	rtt := time.Since(start)
	if err != nil {
		return failure(target, transportError(err))
	}

	sample, err := DecodeResponse(buffer[:n], requestID)
	if err != nil {
		return failure(target, err)
	}

	return QueryOutcome{
		Target: target,
		Sample: sample,
		RTTUs:  float64(rtt.Nanoseconds()) / 1000.0,
	}
}

// failure is the single constructor for failed outcomes; every codec
// and transport error path funnels through it.
func failure(target Target, err error) QueryOutcome {
	return QueryOutcome{Target: target, Err: err}
}

func transportError(err error) *TransportError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: TransportTimeout, Cause: err}
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return &TransportError{Kind: TransportUnreachable, Cause: err}
	}
	return &TransportError{Kind: TransportOther, Cause: err}
}
