package sh

import (
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/motionworks/usmc.go/pkg/usmc"
	"github.com/motionworks/usmc.go/pkg/usmc/sim"
)

// Shell provides ishell backed interactive shell over a device registry.
type Shell struct {
	Interactive bool
	AutoProbe   bool

	Shell    *ishell.Shell
	Driver   *usmc.Driver
	Selected int
}

const (
	shellKey         = "$shell"
	unselectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly bool
	simCount int

	// commands
	commands = []*ishell.Cmd{
		&ProbeCmd,
		&ListCmd,
		&SelectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.IntVar(&simCount, "sim", 2, "Number of emulated devices.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell over the driver.
func New(driver *usmc.Driver) *Shell {
	s := &Shell{
		Interactive: !evalOnly,

		Shell:    ishell.New(),
		Driver:   driver,
		Selected: -1,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unselectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeSelected wraps command func requires a selected device.
func MustBeSelected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Selected < 0 {
			c.Err(fmt.Errorf("no device selected"))
			return
		}
		fn(c)
	}
}

// Device returns the selected device id.
func Device(c *ishell.Context) int {
	return ShellFrom(c).Selected
}

// Select makes the device with the given id the command target.
func (s *Shell) Select(id int) error {
	serial, err := s.Driver.Serial(id)
	if err != nil {
		return err
	}
	s.Selected = id
	s.Shell.SetPrompt(fmt.Sprintf("[%d %s] > ", id, serial))
	return nil
}

// Probe attaches devices and auto-selects the first one found.
func (s *Shell) Probe() error {
	n, err := s.Driver.Probe()
	if err != nil {
		return err
	}
	if s.Interactive {
		s.Shell.Printf("Attached %d devices\n", n)
	}
	if s.Selected < 0 && s.Driver.Count() > 0 {
		return s.Select(0)
	}
	return nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoProbe {
		if err := s.Probe(); err != nil {
			log.Fatalf("probe failed: %v", err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// ProbeCmd attaches devices.
	ProbeCmd = ishell.Cmd{
		Name:    "probe",
		Aliases: []string{"p"},
		Help:    "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Probe(); err != nil {
				c.Err(err)
			}
		},
	}

	// ListCmd lists attached devices.
	ListCmd = ishell.Cmd{
		Name:    "list",
		Aliases: []string{"l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if s.Driver.Count() == 0 {
				c.Println("No devices attached")
				return
			}
			for id := 0; id < s.Driver.Count(); id++ {
				serial, err := s.Driver.Serial(id)
				if err != nil {
					c.Err(err)
					return
				}
				version, err := s.Driver.Version(id)
				if err != nil {
					c.Err(err)
					return
				}
				c.Printf("%d: serial=%s version=%04x\n", id, serial, version)
			}
		},
	}

	// SelectCmd makes a device the command target.
	SelectCmd = ishell.Cmd{
		Name:    "select",
		Aliases: []string{"s"},
		Help:    "ID",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("ID required"))
				return
			}
			id, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(fmt.Errorf("Invalid ID: %v", err))
				return
			}
			if err := ShellFrom(c).Select(id); err != nil {
				c.Err(err)
			}
		},
	}
)

// Main is a helper to provide a single call in main. The registry runs
// over emulated devices.
func Main() {
	flag.Parse()
	devs := make([]*sim.Device, simCount)
	for i := range devs {
		devs[i] = &sim.Device{
			Serial:     fmt.Sprintf("%016d", i+1),
			Version:    0x2407,
			TempRaw:    23000,
			VoltageRaw: 39000,
		}
	}
	driver := usmc.NewDriver(sim.New(devs...))
	defer driver.Close()
	s := New(driver)
	s.AutoProbe = true
	s.Run(flag.Args()...)
}
