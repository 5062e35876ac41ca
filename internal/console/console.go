package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/luma/ola/model"
	"github.com/luma/ola/ola"
	"github.com/luma/ola/protocol"
	"github.com/luma/ola/rdm"
)

const (
	menuPrompt = "ola> "

	// DefaultTimeout is how long the console waits for the daemon to answer
	DefaultTimeout = 5 * time.Second
)

// ErrQuit is returned by an action to stop the console.
var ErrQuit = errors.New("quit")

// Terminal reads lines and prints output. *readline.Instance implements it.
type Terminal interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Stdout() io.Writer
	Close() error
}

// NewTerminal returns a readline terminal on stdin and stdout.
func NewTerminal() (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          menuPrompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return rl, nil
}

type action struct {
	label string
	run   func(ctx context.Context) error
}

// Console is a numbered menu of client operations.
type Console struct {
	client  *ola.Client
	term    Terminal
	timeout time.Duration
	actions []action
	log     *zap.Logger
}

func New(client *ola.Client, term Terminal, log *zap.Logger) *Console {
	if log == nil {
		log = zap.NewNop()
	}

	c := &Console{
		client:  client,
		term:    term,
		timeout: DefaultTimeout,
		log:     log,
	}

	c.actions = []action{
		{"Quit", func(context.Context) error { return ErrQuit }},
		{"List plugins", c.listPlugins},
		{"Describe plugin", c.describePlugin},
		{"List devices", c.listDevices},
		{"List universes", c.listUniverses},
		{"Get DMX", c.getDmx},
		{"Send DMX", c.sendDmx},
		{"Set universe name", c.setUniverseName},
		{"Set merge mode", c.setMergeMode},
		{"Register for DMX", c.registerForDmx},
		{"Get UIDs", c.getUIDs},
		{"Run RDM discovery", c.runDiscovery},
	}

	return c
}

// Run shows the menu until the user quits, input ends, or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	defer c.term.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		c.printMenu()
		c.term.SetPrompt(menuPrompt)

		line, err := c.term.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			c.println("Exiting...")
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		choice, err := strconv.Atoi(line)
		if err != nil || choice < 0 || choice >= len(c.actions) {
			c.printf("Unknown option: %s\n", line)
			continue
		}

		err = c.actions[choice].run(ctx)
		if errors.Is(err, ErrQuit) {
			c.println("Exiting...")
			return nil
		}

		if err != nil {
			c.log.Debug("Console action failed", zap.String("action", c.actions[choice].label), zap.Error(err))
			c.printf("Error: %v\n", err)
		}
	}
}

func (c *Console) printMenu() {
	c.println()
	for i, a := range c.actions {
		c.printf("%2d. %s\n", i, a.label)
	}
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.term.Stdout(), format, args...)
}

func (c *Console) println(args ...interface{}) {
	fmt.Fprintln(c.term.Stdout(), args...)
}

// ask prompts for a single value.
func (c *Console) ask(prompt string) (string, error) {
	c.term.SetPrompt(prompt + ": ")

	line, err := c.term.Readline()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func (c *Console) askInt(prompt string) (int, error) {
	s, err := c.ask(prompt)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}

	return n, nil
}

// wait waits for call and reports anything but success as an error.
func wait[T any](ctx context.Context, c *Console, call *ola.Call[T]) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	value, status, err := call.Wait(ctx)
	if err != nil {
		return value, err
	}

	if !status.Succeeded() {
		return value, fmt.Errorf("request %s", status)
	}

	return value, nil
}

func (c *Console) listPlugins(ctx context.Context) error {
	plugins, err := wait(ctx, c, c.client.GetPlugins(nil))
	if err != nil {
		return err
	}

	for _, p := range plugins {
		c.println(p.String())
	}

	return nil
}

func (c *Console) describePlugin(ctx context.Context) error {
	id, err := c.askInt("Plugin ID")
	if err != nil {
		return err
	}

	description, err := wait(ctx, c, c.client.GetPluginDescription(id, nil))
	if err != nil {
		return err
	}

	c.println(description)
	return nil
}

func (c *Console) listDevices(ctx context.Context) error {
	filter, err := c.askInt("Plugin ID (0 for all)")
	if err != nil {
		return err
	}

	devices, err := wait(ctx, c, c.client.GetDevices(filter, nil))
	if err != nil {
		return err
	}

	for _, d := range devices {
		c.printf("Device %d: %s (id %s, plugin %d)\n", d.Alias(), d.Name(), d.ID(), d.PluginID())
		c.printPorts("input", d.InputPorts())
		c.printPorts("output", d.OutputPorts())
	}

	return nil
}

func (c *Console) printPorts(direction string, ports []model.Port) {
	for _, p := range ports {
		c.printf("  %s port %d, universe %d, active %t, RDM %t: %s\n",
			direction, p.ID, p.Universe, p.Active, p.SupportsRDM, p.Description)
	}
}

func (c *Console) listUniverses(ctx context.Context) error {
	universes, err := wait(ctx, c, c.client.GetUniverses(nil))
	if err != nil {
		return err
	}

	for _, u := range universes {
		c.printf("Universe %d: %s (%s)\n", u.ID(), u.Name(), u.MergeMode())
	}

	return nil
}

func (c *Console) getDmx(ctx context.Context) error {
	universe, err := c.askInt("Universe")
	if err != nil {
		return err
	}

	frame, err := wait(ctx, c, c.client.GetDmx(universe, nil))
	if err != nil {
		return err
	}

	c.printf("Universe %d: %s\n", frame.Universe, formatLevels(frame.Levels))
	return nil
}

func (c *Console) sendDmx(ctx context.Context) error {
	universe, err := c.askInt("Universe")
	if err != nil {
		return err
	}

	s, err := c.ask("Levels (comma separated)")
	if err != nil {
		return err
	}

	levels, err := parseLevels(s)
	if err != nil {
		return err
	}

	if _, err := wait(ctx, c, c.client.SendDmx(universe, levels, nil)); err != nil {
		return err
	}

	c.println("OK")
	return nil
}

func (c *Console) setUniverseName(ctx context.Context) error {
	universe, err := c.askInt("Universe")
	if err != nil {
		return err
	}

	name, err := c.ask("Name")
	if err != nil {
		return err
	}

	if _, err := wait(ctx, c, c.client.SetUniverseName(universe, name, nil)); err != nil {
		return err
	}

	c.println("OK")
	return nil
}

func (c *Console) setMergeMode(ctx context.Context) error {
	universe, err := c.askInt("Universe")
	if err != nil {
		return err
	}

	s, err := c.ask("Merge mode (HTP or LTP)")
	if err != nil {
		return err
	}

	mode, err := model.ParseMergeMode(s)
	if err != nil {
		return err
	}

	if _, err := wait(ctx, c, c.client.SetMergeMode(universe, mode, nil)); err != nil {
		return err
	}

	c.println("OK")
	return nil
}

func (c *Console) registerForDmx(ctx context.Context) error {
	universe, err := c.askInt("Universe")
	if err != nil {
		return err
	}

	handler := func(frame ola.DmxFrame) {
		c.printf("Universe %d: %s\n", frame.Universe, formatLevels(frame.Levels))
	}

	if _, err := wait(ctx, c, c.client.RegisterUniverse(universe, protocol.Register, handler, nil)); err != nil {
		return err
	}

	c.println("OK")
	return nil
}

func (c *Console) getUIDs(ctx context.Context) error {
	universe, err := c.askInt("Universe")
	if err != nil {
		return err
	}

	uids, err := wait(ctx, c, c.client.GetUIDs(universe, nil))
	if err != nil {
		return err
	}

	c.printUIDs(uids)
	return nil
}

func (c *Console) runDiscovery(ctx context.Context) error {
	universe, err := c.askInt("Universe")
	if err != nil {
		return err
	}

	s, err := c.ask("Full discovery (y/n)")
	if err != nil {
		return err
	}

	full := strings.HasPrefix(strings.ToLower(s), "y")

	uids, err := wait(ctx, c, c.client.RunDiscovery(universe, full, nil))
	if err != nil {
		return err
	}

	c.printUIDs(uids)
	return nil
}

func (c *Console) printUIDs(uids []rdm.UID) {
	if len(uids) == 0 {
		c.println("No devices found")
		return
	}

	for _, uid := range uids {
		c.println(uid.String())
	}
}

func formatLevels(levels []int) string {
	parts := make([]string, len(levels))
	for i, v := range levels {
		parts[i] = strconv.Itoa(v)
	}

	return strings.Join(parts, ",")
}

// parseLevels reads comma separated levels in [0, 255].
func parseLevels(s string) ([]int, error) {
	if s == "" {
		return []int{}, nil
	}

	fields := strings.Split(s, ",")
	levels := make([]int, 0, len(fields))

	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || v < 0 || v > 255 {
			return nil, fmt.Errorf("level %q must be a number between 0 and 255", f)
		}

		levels = append(levels, v)
	}

	return levels, nil
}
