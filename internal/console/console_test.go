package console_test

import (
	"bytes"
	"context"
	"io"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/ola/internal/console"
	"github.com/luma/ola/ola"
	"github.com/luma/ola/storage"
	"github.com/luma/ola/transport"
)

// scriptedTerminal replays lines and records everything printed.
type scriptedTerminal struct {
	mu      sync.Mutex
	lines   []string
	out     bytes.Buffer
	prompts []string
	closed  bool
}

func (t *scriptedTerminal) Readline() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.lines) == 0 {
		return "", io.EOF
	}

	line := t.lines[0]
	t.lines = t.lines[1:]

	return line, nil
}

func (t *scriptedTerminal) SetPrompt(prompt string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prompts = append(t.prompts, prompt)
}

func (t *scriptedTerminal) Stdout() io.Writer {
	return writerFunc(func(p []byte) (int, error) {
		t.mu.Lock()
		defer t.mu.Unlock()

		return t.out.Write(p)
	})
}

func (t *scriptedTerminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	return nil
}

func (t *scriptedTerminal) output() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.out.String()
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) {
	return f(p)
}

var _ = Describe("console", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		tcp    *transport.TCP
		client *ola.Client
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())

		store := storage.NewInmemoryStore()
		Expect(storage.Seed(ctx, store)).To(Succeed())

		tcp = transport.NewTCP(transport.Options{Host: "127.0.0.1", Store: store, Log: zap.NewNop()})
		Expect(tcp.Start(ctx)).To(Succeed())

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

	run := func(lines ...string) *scriptedTerminal {
		term := &scriptedTerminal{lines: lines}
		Expect(console.New(client, term, zap.NewNop()).Run(ctx)).To(Succeed())
		Expect(term.closed).To(BeTrue())

		return term
	}

	It("prints the menu and quits", func() {
		term := run("0")

		Expect(term.output()).To(ContainSubstring(" 1. List plugins"))
		Expect(term.output()).To(ContainSubstring("Exiting..."))
	})

	It("stops when input ends", func() {
		term := run()
		Expect(term.output()).To(ContainSubstring("Exiting..."))
	})

	It("lists plugins", func() {
		term := run("1", "0")
		Expect(term.output()).To(ContainSubstring("Plugin name: Dummy plugin ID 1"))
	})

	It("describes a plugin", func() {
		term := run("2", "1", "0")
		Expect(term.output()).To(ContainSubstring("The dummy plugin"))
		Expect(term.prompts).To(ContainElement("Plugin ID: "))
	})

	It("lists devices with their ports", func() {
		term := run("3", "0", "0")
		Expect(term.output()).To(ContainSubstring("Device 1: Dummy Device (id 1-1, plugin 1)"))
		Expect(term.output()).To(ContainSubstring("output port 0, universe 1"))
	})

	It("sends and reads DMX", func() {
		term := run("6", "1", "1, 2,3", "5", "1", "0")
		Expect(term.output()).To(ContainSubstring("Universe 1: 1,2,3"))
	})

	It("changes universe settings", func() {
		term := run("7", "1", "Stage", "8", "1", "LTP", "4", "0")
		Expect(term.output()).To(ContainSubstring("Universe 1: Stage (LTP)"))
	})

	It("lists RDM devices", func() {
		term := run("10", "1", "11", "1", "y", "0")
		Expect(term.output()).To(ContainSubstring("7A70:00000001"))
		Expect(term.output()).To(ContainSubstring("7A70:00000002"))
	})

	It("reports errors and keeps going", func() {
		term := run("42", "2", "abc", "2", "22322", "6", "1", "300", "0")

		out := term.output()
		Expect(out).To(ContainSubstring("Unknown option: 42"))
		Expect(out).To(ContainSubstring(`"abc" is not a number`))
		Expect(out).To(ContainSubstring("request FAILED"))
		Expect(out).To(ContainSubstring("must be a number between 0 and 255"))
		Expect(out).To(ContainSubstring("Exiting..."))
	})
})
