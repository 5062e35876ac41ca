package transport_test

import (
	"bufio"
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/ola/protocol"
	"github.com/luma/ola/storage"
	"github.com/luma/ola/transport"
)

var _ = Describe("transport", func() {
	Describe("TCP", func() {
		var tcp *transport.TCP

		BeforeEach(func() {
			tcp = makeTCPServer()
		})

		AfterEach(func() {
			Expect(tcp.Close()).To(Succeed())
			Expect(tcp.Store().Close()).To(Succeed())
		})

		call := func(conn net.Conn, r *bufio.Reader, msg *protocol.RpcMessage) *protocol.RpcMessage {
			Expect(protocol.WriteMessage(conn, msg)).To(Succeed())

			Expect(conn.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
			resp, err := protocol.ReadMessage(r, 0)
			Expect(err).To(Succeed())

			return resp
		}

		It("listens on the desired port", func() {
			conn, err := net.Dial("tcp", tcp.Addr().String())
			Expect(err).To(Succeed())
			conn.Close()
		})

		It("answers requests with the matching request ID", func() {
			conn, err := net.Dial("tcp", tcp.Addr().String())
			Expect(err).To(Succeed())
			defer conn.Close()

			req, err := protocol.NewRequest(1234, protocol.GetPluginDescription, &protocol.PluginDescriptionRequest{PluginID: 1})
			Expect(err).To(Succeed())

			resp := call(conn, bufio.NewReader(conn), req)
			Expect(resp.Type).To(Equal(protocol.TypeResponse))
			Expect(resp.ID).To(Equal(uint32(1234)))

			var reply protocol.PluginDescriptionReply
			Expect(reply.Unmarshal(resp.Buffer)).To(Succeed())
			Expect(reply.Name).To(Equal("Dummy"))
		})

		It("fails requests the daemon cannot satisfy", func() {
			conn, err := net.Dial("tcp", tcp.Addr().String())
			Expect(err).To(Succeed())
			defer conn.Close()

			req, err := protocol.NewRequest(7, protocol.GetPluginDescription, &protocol.PluginDescriptionRequest{PluginID: 22322})
			Expect(err).To(Succeed())

			resp := call(conn, bufio.NewReader(conn), req)
			Expect(resp.Type).To(Equal(protocol.TypeResponseFailed))
			Expect(string(resp.Buffer)).To(ContainSubstring("plugin does not exist"))
		})

		It("answers unknown methods with RESPONSE_NOT_IMPLEMENTED", func() {
			conn, err := net.Dial("tcp", tcp.Addr().String())
			Expect(err).To(Succeed())
			defer conn.Close()

			resp := call(conn, bufio.NewReader(conn), &protocol.RpcMessage{
				Type: protocol.TypeRequest,
				ID:   9,
				Name: "Reload",
			})
			Expect(resp.Type).To(Equal(protocol.TypeResponseNotImplemented))
			Expect(resp.ID).To(Equal(uint32(9)))
		})

		It("does not answer stream requests", func() {
			conn, err := net.Dial("tcp", tcp.Addr().String())
			Expect(err).To(Succeed())
			defer conn.Close()

			stream, err := protocol.NewStreamRequest(protocol.StreamDmxData, &protocol.DmxData{Universe: 1, Data: []byte{7}})
			Expect(err).To(Succeed())
			Expect(protocol.WriteMessage(conn, stream)).To(Succeed())

			req, err := protocol.NewRequest(2, protocol.GetDmx, &protocol.UniverseRequest{Universe: 1})
			Expect(err).To(Succeed())

			resp := call(conn, bufio.NewReader(conn), req)
			Expect(resp.ID).To(Equal(uint32(2)))

			var data protocol.DmxData
			Expect(data.Unmarshal(resp.Buffer)).To(Succeed())
			Expect(data.Data).To(Equal([]byte{7}))
		})

		It("pushes frames to connections registered for the universe", func() {
			conn, err := net.Dial("tcp", tcp.Addr().String())
			Expect(err).To(Succeed())
			defer conn.Close()
			r := bufio.NewReader(conn)

			req, err := protocol.NewRequest(1, protocol.RegisterForDmx, &protocol.RegisterDmxRequest{Universe: 1, Action: protocol.Register})
			Expect(err).To(Succeed())
			Expect(call(conn, r, req).Type).To(Equal(protocol.TypeResponse))

			Expect(tcp.Store().Set(context.Background(), storage.DmxKey(1), []int{1, 2, 3})).To(Succeed())

			Expect(conn.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
			push, err := protocol.ReadMessage(r, 0)
			Expect(err).To(Succeed())
			Expect(push.Type).To(Equal(protocol.TypeRequest))
			Expect(push.Name).To(Equal("UpdateDmxData"))

			var data protocol.DmxData
			Expect(data.Unmarshal(push.Buffer)).To(Succeed())
			Expect(data.Universe).To(Equal(int32(1)))
			Expect(data.Data).To(Equal([]byte{1, 2, 3}))
		})

		It("closes the connection when the client sends DISCONNECT", func() {
			conn, err := net.Dial("tcp", tcp.Addr().String())
			Expect(err).To(Succeed())
			defer conn.Close()

			Expect(protocol.WriteMessage(conn, &protocol.RpcMessage{Type: protocol.TypeDisconnect})).To(Succeed())

			waitForClose(conn)
		})
	})
})

func waitForClose(conn net.Conn) {
	// Wait for our client to be disconnected by the server
	Expect(conn.SetReadDeadline(time.Now().Add(30 * time.Second))).To(Succeed())

	one := make([]byte, 1)
	_, err := conn.Read(one)
	Expect(err).To(HaveOccurred())

	if netErr, ok := err.(net.Error); ok {
		Expect(netErr.Timeout()).To(BeFalse(), "The client was never closed by the server")
	}
}

func makeTCPServer() *transport.TCP {
	store := storage.NewInmemoryStore()
	Expect(storage.Seed(context.Background(), store)).To(Succeed())

	tcp := transport.NewTCP(transport.Options{
		Host:  "127.0.0.1",
		Port:  0,
		Log:   zap.NewNop(),
		Store: store,
	})

	Expect(tcp.Start(context.Background())).To(Succeed())

	return tcp
}
