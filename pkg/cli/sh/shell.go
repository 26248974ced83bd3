// Package sh provides an interactive shell on a link.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/amulet.go/pkg/framework"
	"github.com/robotalks/amulet.go/pkg/env"
	"github.com/robotalks/amulet.go/pkg/node"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	// Timeout bounds each command.
	Timeout time.Duration

	Shell  *ishell.Shell
	Config *env.Config
	Env    *env.Env

	cancel func()
}

const (
	shellKey       = "$shell"
	closedPrompt   = "[closed] > "
	defaultTimeout = 5 * time.Second
)

var (
	evalOnly   bool
	outputJSON bool

	commands []*ishell.Cmd
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds registers commands, used during init.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     defaultTimeout,
		Shell:       ishell.New(),
		Config:      conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Open opens the link and starts its loop.
func (s *Shell) Open() error {
	e, err := s.Config.NewEnv()
	if err != nil {
		return err
	}
	s.Close()
	ctx, cancel := context.WithCancel(context.Background())
	s.Env, s.cancel = e, cancel
	go fx.NewLoop().Add(e).Run(ctx)
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", s.Config.Port))
	return nil
}

// Close stops the loop and closes the link.
func (s *Shell) Close() {
	if s.Env == nil {
		return
	}
	s.cancel()
	s.Env.Close()
	s.Env = nil
	s.Shell.SetPrompt(closedPrompt)
}

// Do runs op on the link and waits for the result.
func (s *Shell) Do(c *ishell.Context, op node.Op) error {
	if s.Env == nil {
		err := fmt.Errorf("link closed")
		c.Err(err)
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	if err := s.Env.Node.Wait(ctx, op); err != nil {
		c.Err(err)
		return err
	}
	return nil
}

// Print prints v as JSON or with fmt.
func (s *Shell) Print(c *ishell.Context, v interface{}) {
	if !s.OutputJSON {
		c.Println(v)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// Run opens the link and runs args or the interactive shell.
func (s *Shell) Run(args ...string) {
	if err := s.Open(); err != nil {
		log.Fatalf("open %q failed: %v", s.Config.Port, err)
	}
	defer s.Close()
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

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).Run(flag.Args()...)
}
