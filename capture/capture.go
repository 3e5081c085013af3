// Package capture implements the capture driver (C3): it opens a pcap
// handle filtered to one remote host, drives a query backend while the
// kernel buffers whatever traffic that query generates, then drains and
// decodes the buffered packets into a replay record.
//
// Grounded on original_source/src/lib.rs's create_pcap_capture/capture, and
// on the dreadl0ck/gopacket/pcap idiom seen in DrJosh9000-caplog's
// packets.Capture.Live (OpenLive, SetBPFFilter) and the cipdip pcap-replay
// command's device/handle usage.
package capture

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/dreadl0ck/gopacket/layers"
	"github.com/dreadl0ck/gopacket/pcap"
	"github.com/dreadl0ck/gopacket/pcapgo"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Douile/gqreplay/decoder"
	"github.com/Douile/gqreplay/internal/logctx"
	"github.com/Douile/gqreplay/internal/qerrors"
	"github.com/Douile/gqreplay/queryimpl"
	"github.com/Douile/gqreplay/record"
	"github.com/Douile/gqreplay/types"
)

const snapLen = 65536

// Driver owns one open pcap handle, filtered to a single remote host, and
// the local interface addresses used to classify packet direction.
type Driver struct {
	handle     *pcap.Handle
	localAddrs []net.IP
	log        *zap.Logger
}

// Open resolves a capture device (by name, or the first usable device when
// deviceName is empty) and puts it into immediate-mode live capture.
func Open(deviceName string) (*Driver, error) {
	devices, err := pcap.FindAllDevs()
	if err != nil {
		return nil, errors.Wrap(err, "listing capture devices")
	}

	dev, err := selectDevice(devices, deviceName)
	if err != nil {
		return nil, err
	}

	inactive, err := pcap.NewInactiveHandle(dev.Name)
	if err != nil {
		return nil, errors.Wrap(err, "creating inactive capture handle")
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(snapLen); err != nil {
		return nil, errors.Wrap(err, "setting snap length")
	}
	if err := inactive.SetPromisc(true); err != nil {
		return nil, errors.Wrap(err, "setting promiscuous mode")
	}
	if err := inactive.SetImmediateMode(true); err != nil {
		return nil, errors.Wrap(err, "setting immediate mode")
	}
	if err := inactive.SetTimeout(time.Second); err != nil {
		return nil, errors.Wrap(err, "setting capture timeout")
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, errors.Wrap(err, "activating capture handle")
	}

	localAddrs := make([]net.IP, 0, len(dev.Addresses))
	for _, addr := range dev.Addresses {
		localAddrs = append(localAddrs, addr.IP)
	}

	return &Driver{handle: handle, localAddrs: localAddrs, log: logctx.Named("capture")}, nil
}

// selectDevice mirrors pcap::Device::lookup()'s default-device behavior:
// named lookup when deviceName is given, otherwise the first device that
// has at least one address (dreadl0ck/gopacket/pcap has no equivalent
// default-lookup helper).
func selectDevice(devices []pcap.Interface, deviceName string) (*pcap.Interface, error) {
	if deviceName != "" {
		for i := range devices {
			if devices[i].Name == deviceName {
				return &devices[i], nil
			}
		}
		return nil, errors.Wrapf(qerrors.ErrNoCaptureDevice, "device %q not found", deviceName)
	}

	for i := range devices {
		if len(devices[i].Addresses) > 0 {
			return &devices[i], nil
		}
	}

	return nil, qerrors.ErrNoCaptureDevice
}

// Close releases the underlying pcap handle.
func (d *Driver) Close() {
	d.handle.Close()
}

// Capture filters the handle to opts.Address, runs backend against opts
// while the kernel buffers whatever matching traffic that produces, then
// switches the handle to non-blocking mode and drains every buffered packet
// into a replay record. When savePath is non-empty, every captured raw
// frame is also written to a pcap sidecar file as it's drained.
//
// A backend failure does not abort the drain: the partially built record
// (whatever packets were captured) is still returned alongside the wrapped
// error, so a caller can inspect or keep the partial trace instead of
// losing it, per the capture-drain-after-query error policy. A frame that
// fails to strip its link layer or decode, by contrast, aborts the run
// immediately with no record returned: the run has no way to tell a
// malformed frame from a capture filter that's catching the wrong traffic,
// and draining degrades from "a trustworthy trace" to "alleged packets".
func (d *Driver) Capture(ctx context.Context, opts types.QueryOptions, backend queryimpl.Backend, savePath string) (*record.QueryReplay, error) {
	filter := fmt.Sprintf("host %s", opts.Address)
	if err := d.handle.SetBPFFilter(filter); err != nil {
		return nil, errors.Wrapf(err, "setting bpf filter %q", filter)
	}

	var sideWriter *pcapgo.Writer
	if savePath != "" {
		f, err := os.Create(savePath)
		if err != nil {
			return nil, errors.Wrapf(err, "creating pcap sidecar %q", savePath)
		}
		defer f.Close()

		w := pcapgo.NewWriter(f)
		if err := w.WriteFileHeader(snapLen, d.handle.LinkType()); err != nil {
			return nil, errors.Wrap(err, "writing pcap sidecar header")
		}
		sideWriter = w
	}

	d.log.Info("querying backend", zap.String("game", opts.Game), zap.String("address", opts.Address))
	responseValue, queryErr := backend.Query(ctx, opts)

	if err := d.handle.SetNonBlocking(true); err != nil {
		return nil, errors.Wrap(err, "switching capture handle to non-blocking mode")
	}

	var packets []types.Packet
	for {
		data, ci, err := d.handle.NextPacketNB()
		if err != nil {
			break
		}

		if sideWriter != nil {
			if err := sideWriter.WritePacket(ci, data); err != nil {
				d.log.Warn("writing pcap sidecar frame", zap.Error(err))
			}
		}

		payload, err := networkLayerPayload(d.handle.LinkType(), data)
		if err != nil {
			return nil, errors.Wrap(err, "stripping link layer")
		}

		pkt, err := decoder.Parse(payload, d.localAddrs)
		if err != nil {
			return nil, errors.Wrap(err, "decoding captured frame")
		}
		packets = append(packets, *pkt)
	}

	d.log.Info("drained capture buffer", zap.Int("packets", len(packets)))

	if queryErr != nil {
		return &record.QueryReplay{
			ReplayVersion: record.Version,
			Query:         opts,
			Packets:       packets,
		}, errors.Wrap(queryErr, "querying backend")
	}

	serverOptions, err := decoder.DeriveServerOptions(packets)
	if err != nil {
		return nil, err
	}

	return &record.QueryReplay{
		ReplayVersion: record.Version,
		Query:         opts,
		Server:        *serverOptions,
		Packets:       packets,
		Value:         responseValue,
	}, nil
}

// networkLayerPayload strips a link-layer header so the remainder begins at
// the network layer, which is what decoder.Parse expects. Ethernet is
// decoded properly; other link types are passed through unchanged (a raw-IP
// or BSD loopback capture device already starts at or near the network
// layer).
func networkLayerPayload(linkType layers.LinkType, data []byte) ([]byte, error) {
	if linkType != layers.LinkTypeEthernet {
		return data, nil
	}

	var eth layers.Ethernet
	if err := eth.DecodeFromBytes(data, emptyDecodeFeedback{}); err != nil {
		return nil, errors.Wrap(err, "decoding ethernet header")
	}
	return eth.Payload, nil
}

type emptyDecodeFeedback struct{}

func (emptyDecodeFeedback) SetTruncated() {}

