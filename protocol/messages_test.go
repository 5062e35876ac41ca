package protocol_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/ola/protocol"
)

var _ = Describe("Messages", func() {
	It("decodes nested devices and ports", func() {
		in := &protocol.DeviceInfoReply{Devices: []protocol.DeviceInfo{{
			DeviceAlias: 1,
			PluginID:    2,
			DeviceName:  "Dummy Device",
			DeviceID:    "2-1",
			InputPorts:  []protocol.PortInfo{{PortID: 1, Universe: 3, Active: true}},
			OutputPorts: []protocol.PortInfo{
				{PortID: 4, SupportsRDM: true, Description: "out 4"},
				{PortID: 0},
			},
		}}}

		data, err := in.Marshal()
		Expect(err).To(Succeed())

		var out protocol.DeviceInfoReply
		Expect(out.Unmarshal(data)).To(Succeed())
		Expect(out).To(Equal(*in))
	})

	It("keeps negative int32 values", func() {
		in := &protocol.UniverseRequest{Universe: -1}
		data, err := in.Marshal()
		Expect(err).To(Succeed())

		var out protocol.UniverseRequest
		Expect(out.Unmarshal(data)).To(Succeed())
		Expect(out.Universe).To(Equal(int32(-1)))
	})

	It("encodes UID device ids as fixed32", func() {
		in := &protocol.UIDListReply{Universe: 1, UIDs: []protocol.UID{{EstaID: 0x7a70, DeviceID: 0xFFFFFFFF}}}
		data, err := in.Marshal()
		Expect(err).To(Succeed())

		var out protocol.UIDListReply
		Expect(out.Unmarshal(data)).To(Succeed())
		Expect(out.UIDs).To(Equal(in.UIDs))
	})

	It("ignores unknown fields", func() {
		data, err := (&protocol.PluginDescriptionReply{Name: "Dummy", Description: "Foo"}).Marshal()
		Expect(err).To(Succeed())

		var out protocol.Ack
		Expect(out.Unmarshal(data)).To(Succeed())
	})

	It("rejects a reply of another type", func() {
		// DmxData's field 2 is bytes, a UniverseRequest never carries one but a
		// DiscoveryRequest carries a bool there.
		data, err := (&protocol.DiscoveryRequest{Universe: 1, Full: true}).Marshal()
		Expect(err).To(Succeed())

		var out protocol.DmxData
		err = out.Unmarshal(data)
		Expect(errors.Is(err, protocol.ErrWireType)).To(BeTrue())
	})

	It("rejects a reply missing required fields", func() {
		var out protocol.PluginDescriptionReply
		err := out.Unmarshal(nil)
		Expect(errors.Is(err, protocol.ErrMissingField)).To(BeTrue())
	})

	It("omits the optional universe when unset", func() {
		data, err := (&protocol.OptionalUniverseRequest{}).Marshal()
		Expect(err).To(Succeed())
		Expect(data).To(BeEmpty())
	})
})
