// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"equalizer/internal/analysis"
	applog "equalizer/internal/log"
)

// HeaderSize is the fixed packet prefix: sequence, timestamp, count.
const HeaderSize = 4 + 8 + 2

// PacketSender sends one datagram.
type PacketSender interface {
	Send(data []byte) error
}

// UDPPublisher periodically fetches the displayed spectrum, pools it down to
// at most maxBins magnitudes, packs it into a binary packet and sends it
// through a PacketSender. It runs in a separate goroutine managed by Start
// and Stop.
type UDPPublisher struct {
	sender   PacketSender
	source   analysis.SpectrumProvider
	interval time.Duration
	maxBins  int

	ticker   *time.Ticker   // Ticker that triggers packet sending.
	doneChan chan struct{}  // Signals the publisher goroutine to stop.
	stopOnce sync.Once      // Ensures the stop logic runs only once per Start/Stop cycle.
	wg       sync.WaitGroup // Waits for the publisher goroutine to finish during Stop.
	mu       sync.Mutex     // Protects ticker and doneChan during Start/Stop.

	sequenceNum uint32 // Monotonically increasing sequence number for packets.

	// Reused by the publisher goroutine only.
	udpF32Buffer []float32
	packetBuffer *bytes.Buffer
}

// NewUDPPublisher creates and initializes a new UDPPublisher.
// If the provided interval is invalid (<= 0), it defaults to 33ms (~30Hz).
// maxBins must lie in [1, math.MaxUint16].
func NewUDPPublisher(interval time.Duration, maxBins int, sender PacketSender, source analysis.SpectrumProvider) (*UDPPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("UDPPublisher: spectrum source cannot be nil")
	}
	if maxBins <= 0 || maxBins > math.MaxUint16 {
		return nil, fmt.Errorf("UDPPublisher: max bins %d out of range", maxBins)
	}

	if interval <= 0 {
		interval = 33 * time.Millisecond
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}

	applog.Infof("UDPPublisher: Initializing (Interval: %s, Max bins: %d)", interval, maxBins)

	return &UDPPublisher{
		sender:       sender,
		source:       source,
		interval:     interval,
		maxBins:      maxBins,
		udpF32Buffer: make([]float32, 0, maxBins),
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Start begins the periodic publishing process. Calling Start on a running
// publisher is a no-op.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				applog.Debugf("UDPPublisher: Publisher goroutine received stop signal.")
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it to
// exit. It is safe to call Stop multiple times.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("UDPPublisher: Publisher goroutine finished.")
	return nil
}

/*
UDP Packet Structure (BigEndian)

|<---- 4 Bytes ---->|<------ 8 Bytes ------>|<-- 2 Bytes -->|<----- N * 4 Bytes ----->|
+-------------------+-----------------------+---------------+-------------------------+
|  Sequence Number  |       Timestamp       |   Magnitude   |       Magnitudes        |
|      (uint32)     |   (int64, unix ns)    |     Count     |      (N * float32)      |
|                   |                       |    (uint16)   |                         |
+-------------------+-----------------------+---------------+-------------------------+
*/

// buildAndSendPacket pools the current spectrum, packs it and sends it.
// An empty spectrum (nothing loaded yet) is skipped.
func (p *UDPPublisher) buildAndSendPacket() {
	spectrum := p.source.DisplayedSpectrum()
	if spectrum.Len() == 0 {
		return
	}

	p.udpF32Buffer = Pool(p.udpF32Buffer[:0], spectrum.Magnitudes, p.maxBins)
	p.sequenceNum++

	if err := EncodePacket(p.packetBuffer, p.sequenceNum, time.Now().UnixNano(), p.udpF32Buffer); err != nil {
		applog.Errorf("UDPPublisher: Error packing data into binary buffer: %v", err)
		return
	}

	packetBytes := p.packetBuffer.Bytes()
	if err := p.sender.Send(packetBytes); err == nil {
		applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, len(packetBytes))
	}
}

// Pool reduces mags to at most n values by taking the maximum of each
// contiguous group, appending the result to dst. Peaks survive pooling.
func Pool(dst []float32, mags []float64, n int) []float32 {
	if len(mags) <= n {
		for _, v := range mags {
			dst = append(dst, float32(v))
		}
		return dst
	}
	for i := range n {
		lo := i * len(mags) / n
		hi := (i + 1) * len(mags) / n
		peak := mags[lo]
		for _, v := range mags[lo+1 : hi] {
			peak = math.Max(peak, v)
		}
		dst = append(dst, float32(peak))
	}
	return dst
}

// EncodePacket resets buf and writes one packet into it.
func EncodePacket(buf *bytes.Buffer, seq uint32, timestamp int64, mags []float32) error {
	if len(mags) > math.MaxUint16 {
		return fmt.Errorf("too many magnitudes for one packet: %d", len(mags))
	}
	buf.Reset()
	err := binary.Write(buf, binary.BigEndian, seq)
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, timestamp)
	}
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, uint16(len(mags)))
	}
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, mags)
	}
	return err
}

// Packet is a decoded spectrum datagram.
type Packet struct {
	Sequence   uint32
	Timestamp  int64
	Magnitudes []float32
}

// DecodePacket parses a datagram written by EncodePacket.
func DecodePacket(data []byte) (Packet, error) {
	if len(data) < HeaderSize {
		return Packet{}, fmt.Errorf("packet too short: %d bytes", len(data))
	}
	p := Packet{
		Sequence:  binary.BigEndian.Uint32(data[0:4]),
		Timestamp: int64(binary.BigEndian.Uint64(data[4:12])),
	}
	count := int(binary.BigEndian.Uint16(data[12:14]))
	if len(data) != HeaderSize+4*count {
		return Packet{}, fmt.Errorf("packet length %d does not match %d magnitudes", len(data), count)
	}
	p.Magnitudes = make([]float32, count)
	for i := range p.Magnitudes {
		off := HeaderSize + 4*i
		p.Magnitudes[i] = math.Float32frombits(binary.BigEndian.Uint32(data[off : off+4]))
	}
	return p, nil
}

// Close implements the io.Closer interface. It stops the publisher goroutine.
func (p *UDPPublisher) Close() error {
	return p.Stop()
}

// Ensure UDPPublisher satisfies the io.Closer interface at compile time.
var _ interface{ Close() error } = (*UDPPublisher)(nil)
