package motor

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/motionworks/usmc.go/pkg/cli/sh"
)

var (
	// StateCmd queries a fresh state snapshot.
	StateCmd = ishell.Cmd{
		Name:    "state",
		Aliases: []string{"st"},
		Help:    "",
		Func: sh.MustBeSelected(func(c *ishell.Context) {
			state, err := sh.ShellFrom(c).Driver.State(sh.Device(c))
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("pos=%d div=%d temp=%.1fC volt=%.1fV power=%v running=%v\n",
				state.CurPos, state.SDivisor, state.Temp, state.Voltage,
				state.Power, state.Running)
			c.Printf("tr1=%v tr2=%v rottr=%v rottrerr=%v loft=%v afterreset=%v\n",
				state.Trailer1, state.Trailer2, state.RotTr, state.RotTrErr,
				state.Loft, state.AfterReset)
		}),
	}

	// EncoderCmd queries a fresh encoder snapshot.
	EncoderCmd = ishell.Cmd{
		Name:    "encoder",
		Aliases: []string{"enc"},
		Help:    "",
		Func: sh.MustBeSelected(func(c *ishell.Context) {
			enc, err := sh.ShellFrom(c).Driver.EncoderState(sh.Device(c))
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("encoder=%d motor=%d\n", enc.EncoderPos, enc.ECurPos)
		}),
	}

	// MoveCmd starts a move to an absolute position.
	MoveCmd = ishell.Cmd{
		Name:    "move",
		Aliases: []string{"m"},
		Help:    "POS(steps)",
		Func: sh.MustBeSelected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("POS required"))
				return
			}
			pos, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(fmt.Errorf("Invalid POS: %v", err))
				return
			}
			if err := sh.ShellFrom(c).Driver.MoveTo(sh.Device(c), pos); err != nil {
				c.Err(err)
			}
		}),
	}

	// StopCmd halts the motor.
	StopCmd = ishell.Cmd{
		Name: "stop",
		Help: "",
		Func: sh.MustBeSelected(func(c *ishell.Context) {
			if err := sh.ShellFrom(c).Driver.Stop(sh.Device(c)); err != nil {
				c.Err(err)
			}
		}),
	}

	// SpeedCmd shows or sets the move speed.
	SpeedCmd = ishell.Cmd{
		Name: "speed",
		Help: "[SPEED(steps/s)]",
		Func: sh.MustBeSelected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			if len(c.Args) < 1 {
				speed, err := s.Driver.Speed(sh.Device(c))
				if err != nil {
					c.Err(err)
					return
				}
				c.Printf("%g\n", speed)
				return
			}
			speed, err := strconv.ParseFloat(c.Args[0], 64)
			if err != nil {
				c.Err(fmt.Errorf("Invalid SPEED: %v", err))
				return
			}
			if err := s.Driver.SetSpeed(sh.Device(c), speed); err != nil {
				c.Err(err)
			}
		}),
	}

	// SetPosCmd redefines the current position.
	SetPosCmd = ishell.Cmd{
		Name: "setpos",
		Help: "POS(steps)",
		Func: sh.MustBeSelected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("POS required"))
				return
			}
			pos, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(fmt.Errorf("Invalid POS: %v", err))
				return
			}
			if err := sh.ShellFrom(c).Driver.SetCurrentPosition(sh.Device(c), pos); err != nil {
				c.Err(err)
			}
		}),
	}

	// ModeCmd shows the cached soft configuration.
	ModeCmd = ishell.Cmd{
		Name: "mode",
		Help: "",
		Func: sh.MustBeSelected(func(c *ishell.Context) {
			mode, err := sh.ShellFrom(c).Driver.Mode(sh.Device(c))
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%+v\n", mode)
		}),
	}

	// ParamsCmd shows the cached limits.
	ParamsCmd = ishell.Cmd{
		Name: "params",
		Help: "",
		Func: sh.MustBeSelected(func(c *ishell.Context) {
			params, err := sh.ShellFrom(c).Driver.Parameters(sh.Device(c))
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%+v\n", params)
		}),
	}

	// SaveCmd persists the configuration to flash.
	SaveCmd = ishell.Cmd{
		Name: "save",
		Help: "",
		Func: sh.MustBeSelected(func(c *ishell.Context) {
			if err := sh.ShellFrom(c).Driver.SaveToFlash(sh.Device(c)); err != nil {
				c.Err(err)
			}
		}),
	}
)

func init() {
	sh.AddCmds(
		&StateCmd,
		&EncoderCmd,
		&MoveCmd,
		&StopCmd,
		&SpeedCmd,
		&SetPosCmd,
		&ModeCmd,
		&ParamsCmd,
		&SaveCmd,
	)
}
