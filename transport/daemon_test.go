package transport_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/ola/model"
	"github.com/luma/ola/ola"
	"github.com/luma/ola/protocol"
	"github.com/luma/ola/rdm"
	"github.com/luma/ola/transport"
)

// wait resolves call within a few seconds.
func wait[T any](call *ola.Call[T]) (T, ola.RequestStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	value, status, err := call.Wait(ctx)
	ExpectWithOffset(1, err).To(Succeed())

	return value, status
}

var _ = Describe("transport / Daemon with the ola client", func() {
	var (
		tcp    *transport.TCP
		client *ola.Client
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		tcp = makeTCPServer()

		var err error
		client, err = ola.Dial(ctx, tcp.Addr().String(), zap.NewNop())
		Expect(err).To(Succeed())
	})

	AfterEach(func() {
		Expect(client.Close()).To(Succeed())
		cancel()
		Expect(tcp.Close()).To(Succeed())
		Expect(tcp.Store().Close()).To(Succeed())
	})

	It("lists plugins, devices and universes", func() {
		plugins, status := wait(client.GetPlugins(nil))
		Expect(status.Succeeded()).To(BeTrue())
		Expect(plugins).To(Equal([]model.Plugin{{ID: 1, Name: "Dummy"}}))

		devices, status := wait(client.GetDevices(1, nil))
		Expect(status.Succeeded()).To(BeTrue())
		Expect(devices).To(HaveLen(1))
		Expect(devices[0].Name()).To(Equal("Dummy Device"))
		Expect(devices[0].OutputPorts()).To(HaveLen(1))

		devices, status = wait(client.GetDevices(2, nil))
		Expect(status.Succeeded()).To(BeTrue())
		Expect(devices).To(BeEmpty())

		universes, status := wait(client.GetUniverses(nil))
		Expect(status.Succeeded()).To(BeTrue())
		Expect(universes).To(HaveLen(1))
		Expect(universes[0].MergeMode()).To(Equal(model.HTP))
	})

	It("reports failures through the status", func() {
		description, status := wait(client.GetPluginDescription(22322, nil))
		Expect(status.State()).To(Equal(ola.Failed))
		Expect(status.Message()).To(ContainSubstring("plugin does not exist"))
		Expect(description).To(BeEmpty())
	})

	It("writes and reads DMX", func() {
		ok, status := wait(client.SendDmx(1, []int{0, 127, 255}, nil))
		Expect(status.Succeeded()).To(BeTrue())
		Expect(ok).To(BeTrue())

		frame, status := wait(client.GetDmx(1, nil))
		Expect(status.Succeeded()).To(BeTrue())
		Expect(frame).To(Equal(ola.DmxFrame{Universe: 1, Levels: []int{0, 127, 255}}))

		Expect(client.StreamDmx(1, []int{9})).To(Succeed())
		Eventually(func() []int {
			frame, _ := wait(client.GetDmx(1, nil))
			return frame.Levels
		}).Should(Equal([]int{9}))
	})

	It("pushes frames to registered clients", func() {
		frames := make(chan ola.DmxFrame, 10)

		_, status := wait(client.RegisterUniverse(1, protocol.Register, func(frame ola.DmxFrame) {
			frames <- frame
		}, nil))
		Expect(status.Succeeded()).To(BeTrue())

		_, status = wait(client.SendDmx(1, []int{4, 5}, nil))
		Expect(status.Succeeded()).To(BeTrue())

		Eventually(frames).Should(Receive(Equal(ola.DmxFrame{Universe: 1, Levels: []int{4, 5}})))

		_, status = wait(client.RegisterUniverse(1, protocol.Unregister, nil, nil))
		Expect(status.Succeeded()).To(BeTrue())

		_, status = wait(client.SendDmx(1, []int{6}, nil))
		Expect(status.Succeeded()).To(BeTrue())
		Consistently(frames, 200*time.Millisecond).ShouldNot(Receive())
	})

	It("renames universes and changes their merge mode", func() {
		_, status := wait(client.SetUniverseName(1, "Stage", nil))
		Expect(status.Succeeded()).To(BeTrue())

		_, status = wait(client.SetMergeMode(1, model.LTP, nil))
		Expect(status.Succeeded()).To(BeTrue())

		universes, _ := wait(client.GetUniverses(nil))
		Expect(universes[0].Name()).To(Equal("Stage"))
		Expect(universes[0].MergeMode()).To(Equal(model.LTP))

		_, status = wait(client.SetUniverseName(99, "Nowhere", nil))
		Expect(status.State()).To(Equal(ola.Failed))
	})

	It("patches ports", func() {
		_, status := wait(client.PatchPort(1, 0, true, protocol.Patch, 2, nil))
		Expect(status.Succeeded()).To(BeTrue())

		devices, _ := wait(client.GetDevices(0, nil))
		Expect(devices[0].OutputPorts()[0].Universe).To(Equal(2))

		universes, _ := wait(client.GetUniverses(nil))
		Expect(universes).To(HaveLen(2))

		_, status = wait(client.PatchPort(1, 0, false, protocol.Patch, 2, nil))
		Expect(status.State()).To(Equal(ola.Failed))
	})

	It("configures devices", func() {
		reply, status := wait(client.ConfigureDevice(1, []int{1, 255}, nil))
		Expect(status.Succeeded()).To(BeTrue())
		Expect(reply).To(Equal([]int{1, 255}))
	})

	It("accepts time code", func() {
		ok, status := wait(client.SendTimeCode(protocol.TimeCodeEBU, 10, 0, 0, 1, nil))
		Expect(status.Succeeded()).To(BeTrue())
		Expect(ok).To(BeTrue())
	})

	It("lists RDM responders and talks to them", func() {
		uids, status := wait(client.GetUIDs(1, nil))
		Expect(status.Succeeded()).To(BeTrue())
		Expect(uids).To(Equal([]rdm.UID{rdm.MustUID(0x7a70, 1), rdm.MustUID(0x7a70, 2)}))

		uids, status = wait(client.RunDiscovery(1, false, nil))
		Expect(status.Succeeded()).To(BeTrue())
		Expect(uids).To(HaveLen(2))

		resp, status := wait(client.SetRDM(1, uids[0], 0, 0x0082, []int{42}, nil))
		Expect(status.Succeeded()).To(BeTrue())
		Expect(resp.ResponseCode).To(Equal(protocol.RDMCompletedOK))
		Expect(resp.CommandClass).To(Equal(protocol.RDMSetResponse))

		resp, status = wait(client.GetRDM(1, uids[0], 0, 0x0082, nil, nil))
		Expect(status.Succeeded()).To(BeTrue())
		Expect(resp.Data).To(Equal([]int{42}))
		Expect(*resp.SourceUID).To(Equal(uids[0]))

		resp, status = wait(client.GetRDM(1, rdm.MustUID(1, 1), 0, 0x0082, nil, nil))
		Expect(status.Succeeded()).To(BeTrue())
		Expect(resp.ResponseCode).To(Equal(protocol.RDMUnknownUID))
	})

	It("closes the client from inside a callback", func() {
		closed := make(chan error, 1)

		client.GetPluginDescription(1, func(ola.RequestStatus, string) {
			closed <- client.Close()
		})

		Eventually(closed, 3*time.Second).Should(Receive(BeNil()))
	})

	It("fails calls made after the client closes", func() {
		Expect(client.Close()).To(Succeed())

		_, status := wait(client.GetPlugins(nil))
		Expect(status.State()).To(Equal(ola.Failed))
	})
})
